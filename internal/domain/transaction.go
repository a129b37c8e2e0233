/**
 * @description
 * Transaction is one immutable ledger entry describing a money movement.
 * Entries reference accounts by number only; the ledger outlives account objects.
 */
package domain

import "time"

// TransactionType identifies the kind of ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "CONSIGNACION"
	TransactionTypeWithdrawal     TransactionType = "RETIRO"
	TransactionTypeTransferDebit  TransactionType = "TRANSFERENCIA_DEBITO"
	TransactionTypeTransferCredit TransactionType = "TRANSFERENCIA_CREDITO"
)

// Transaction is a ledger record. ID is assigned by the store.
type Transaction struct {
	ID                 int64           `json:"id"`
	Type               TransactionType `json:"tipo"`
	Amount             Money           `json:"monto"`
	Timestamp          time.Time       `json:"fecha"`
	OriginAccount      *string         `json:"numero_cuenta_origen"`
	DestinationAccount *string         `json:"numero_cuenta_destino"`
}

// NewDepositTransaction records money entering destination.
func NewDepositTransaction(destination string, amount Money, now time.Time) *Transaction {
	return &Transaction{
		Type:               TransactionTypeDeposit,
		Amount:             amount,
		Timestamp:          now,
		DestinationAccount: &destination,
	}
}

// NewWithdrawalTransaction records money leaving origin.
func NewWithdrawalTransaction(origin string, amount Money, now time.Time) *Transaction {
	return &Transaction{
		Type:          TransactionTypeWithdrawal,
		Amount:        amount,
		Timestamp:     now,
		OriginAccount: &origin,
	}
}

// NewTransferTransactions returns the debit and credit legs of a transfer.
// Both legs reference origin and destination.
func NewTransferTransactions(origin, destination string, amount Money, now time.Time) (debit, credit *Transaction) {
	debit = &Transaction{
		Type:               TransactionTypeTransferDebit,
		Amount:             amount,
		Timestamp:          now,
		OriginAccount:      strPtr(origin),
		DestinationAccount: strPtr(destination),
	}
	credit = &Transaction{
		Type:               TransactionTypeTransferCredit,
		Amount:             amount,
		Timestamp:          now,
		OriginAccount:      strPtr(origin),
		DestinationAccount: strPtr(destination),
	}
	return debit, credit
}

// SignedAmountFor returns the effect of this entry on the given account's balance:
// positive when money arrives, negative when it leaves, zero when unrelated.
func (t *Transaction) SignedAmountFor(number string) Money {
	switch t.Type {
	case TransactionTypeDeposit, TransactionTypeTransferCredit:
		if t.DestinationAccount != nil && *t.DestinationAccount == number {
			return t.Amount
		}
	case TransactionTypeWithdrawal, TransactionTypeTransferDebit:
		if t.OriginAccount != nil && *t.OriginAccount == number {
			return ZeroMoney().Subtract(t.Amount)
		}
	}
	return ZeroMoney()
}

func strPtr(s string) *string { return &s }
