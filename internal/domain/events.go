/**
 * @description
 * Event payloads published to the message broker after a state change has been
 * persisted. Consumers should treat them as notifications, not as the source of truth.
 */
package domain

// Routing keys used on the banking events exchange.
const (
	EventClientCreated        = "client.created"
	EventClientUpdated        = "client.updated"
	EventClientDeleted        = "client.deleted"
	EventAccountCreated       = "account.created"
	EventAccountStatusChanged = "account.status_changed"
	EventAccountCancelled     = "account.cancelled"
	EventTransactionRecorded  = "transaction.recorded"
	EventTransferCreditFailed = "transfer.credit_failed"
	EventLedgerMismatch       = "ledger.mismatch"
)

// ClientEvent is published for client lifecycle changes.
type ClientEvent struct {
	ClientID             int64  `json:"client_id"`
	IdentificationType   string `json:"identification_type"`
	IdentificationNumber string `json:"identification_number"`
}

// AccountEvent is published for account lifecycle changes.
type AccountEvent struct {
	AccountID int64         `json:"account_id"`
	ClientID  int64         `json:"client_id"`
	Number    string        `json:"number"`
	Type      AccountType   `json:"type"`
	Status    AccountStatus `json:"status"`
	Balance   Money         `json:"balance"`
}

// TransferCreditFailedEvent signals that the debit leg of a transfer was applied
// but the credit leg was not. The origin account needs manual attention.
type TransferCreditFailedEvent struct {
	OriginAccount      string `json:"origin_account"`
	DestinationAccount string `json:"destination_account"`
	Amount             Money  `json:"amount"`
	Reason             string `json:"reason"`
}

// LedgerMismatchEvent reports an account whose balance differs from its ledger.
type LedgerMismatchEvent struct {
	AccountNumber string `json:"account_number"`
	Balance       Money  `json:"balance"`
	LedgerNet     Money  `json:"ledger_net"`
	Difference    Money  `json:"difference"`
}

// NewAccountEvent snapshots an account for publication.
func NewAccountEvent(a *Account) AccountEvent {
	return AccountEvent{
		AccountID: a.ID,
		ClientID:  a.ClientID,
		Number:    a.Number,
		Type:      a.Type(),
		Status:    a.Status(),
		Balance:   a.Balance(),
	}
}
