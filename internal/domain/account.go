/**
 * @description
 * This file defines the Account aggregate and its state machine.
 *
 * Two account kinds exist: savings (AHORROS) and checking (CORRIENTE). They share
 * all state and differ only in the number prefix and the withdrawal policy, so
 * the kind is a small unexported variant carried by a single Account struct.
 *
 * @notes
 * - Status: ACTIVA <-> INACTIVA while not cancelled; CANCELADA is terminal.
 * - The balance is replaced wholesale on every mutation.
 */
package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType is the persisted discriminator of an account kind.
type AccountType string

const (
	AccountTypeSavings  AccountType = "AHORROS"
	AccountTypeChecking AccountType = "CORRIENTE"
)

// ParseAccountType resolves a discriminator case-insensitively.
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(strings.ToUpper(strings.TrimSpace(raw))) {
	case AccountTypeSavings:
		return AccountTypeSavings, nil
	case AccountTypeChecking:
		return AccountTypeChecking, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAccountType, raw)
	}
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVA"
	AccountStatusInactive  AccountStatus = "INACTIVA"
	AccountStatusCancelled AccountStatus = "CANCELADA"
)

const (
	savingsPrefix  = "53"
	checkingPrefix = "33"

	// AccountNumberBodyLimit is the exclusive upper bound of the numeric body.
	AccountNumberBodyLimit = 100_000_000
	accountNumberBodyWidth = 8
)

// accountKind carries the behaviour that differs between account types.
type accountKind interface {
	accountType() AccountType
	prefix() string
	withdraw(balance, amount Money) (Money, error)
}

type savingsKind struct{}

func (savingsKind) accountType() AccountType { return AccountTypeSavings }
func (savingsKind) prefix() string { return savingsPrefix }

// Savings accounts never go below zero.
func (savingsKind) withdraw(balance, amount Money) (Money, error) {
	next := balance.Subtract(amount)
	if next.IsNegative() {
		return balance, ErrInsufficientFunds
	}
	return next, nil
}

type checkingKind struct{}

func (checkingKind) accountType() AccountType { return AccountTypeChecking }
func (checkingKind) prefix() string { return checkingPrefix }

// Checking accounts have no overdraft guard.
func (checkingKind) withdraw(balance, amount Money) (Money, error) {
	return balance.Subtract(amount), nil
}

func kindFor(t AccountType) (accountKind, error) {
	switch t {
	case AccountTypeSavings:
		return savingsKind{}, nil
	case AccountTypeChecking:
		return checkingKind{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAccountType, t)
	}
}

// Account is a financial product owned by a client.
type Account struct {
	ID         int64
	ClientID   int64
	Number     string
	GMFExempt  bool
	CreatedAt  time.Time
	ModifiedAt time.Time

	kind    accountKind
	balance Money
	status  AccountStatus
}

// AccountState is the flat representation used to restore an account from storage.
type AccountState struct {
	ID         int64
	ClientID   int64
	Type       AccountType
	Number     string
	Balance    Money
	Status     AccountStatus
	GMFExempt  bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// FormatAccountNumber builds the full account number for a type and numeric body.
func FormatAccountNumber(t AccountType, body int64) (string, error) {
	kind, err := kindFor(t)
	if err != nil {
		return "", err
	}
	if body < 0 || body >= AccountNumberBodyLimit {
		return "", fmt.Errorf("%w: body %d out of range", ErrInvalidAccountNumber, body)
	}
	return fmt.Sprintf("%s%0*d", kind.prefix(), accountNumberBodyWidth, body), nil
}

// NewAccount opens an active, zero-balance account of the given type.
func NewAccount(clientID int64, t AccountType, body int64, gmfExempt bool, now time.Time) (*Account, error) {
	kind, err := kindFor(t)
	if err != nil {
		return nil, err
	}
	number, err := FormatAccountNumber(t, body)
	if err != nil {
		return nil, err
	}
	return &Account{
		ClientID:   clientID,
		Number:     number,
		GMFExempt:  gmfExempt,
		CreatedAt:  now,
		ModifiedAt: now,
		kind:       kind,
		balance:    ZeroMoney(),
		status:     AccountStatusActive,
	}, nil
}

// RestoreAccount rebuilds an account exactly as it was persisted.
func RestoreAccount(s AccountState) (*Account, error) {
	kind, err := kindFor(s.Type)
	if err != nil {
		return nil, err
	}
	switch s.Status {
	case AccountStatusActive, AccountStatusInactive, AccountStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusValue, s.Status)
	}
	return &Account{
		ID:         s.ID,
		ClientID:   s.ClientID,
		Number:     s.Number,
		GMFExempt:  s.GMFExempt,
		CreatedAt:  s.CreatedAt,
		ModifiedAt: s.ModifiedAt,
		kind:       kind,
		balance:    s.Balance,
		status:     s.Status,
	}, nil
}

// State returns a copy of the account's persisted fields.
func (a *Account) State() AccountState {
	return AccountState{
		ID:         a.ID,
		ClientID:   a.ClientID,
		Type:       a.Type(),
		Number:     a.Number,
		Balance:    a.balance,
		Status:     a.status,
		GMFExempt:  a.GMFExempt,
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.ModifiedAt,
	}
}

func (a *Account) Type() AccountType { return a.kind.accountType() }
func (a *Account) Balance() Money { return a.balance }
func (a *Account) Status() AccountStatus { return a.status }
func (a *Account) IsActive() bool { return a.status == AccountStatusActive }

// Deposit credits the account. Status is gated by the caller.
func (a *Account) Deposit(amount Money, now time.Time) {
	a.balance = a.balance.Add(amount)
	a.ModifiedAt = now
}

// Withdraw debits the account according to its kind's policy.
// On error the balance is left untouched.
func (a *Account) Withdraw(amount Money, now time.Time) error {
	next, err := a.kind.withdraw(a.balance, amount)
	if err != nil {
		return err
	}
	a.balance = next
	a.ModifiedAt = now
	return nil
}

// Activate moves the account back to ACTIVA. Cancelled accounts cannot be reactivated.
func (a *Account) Activate(now time.Time) error {
	if a.status == AccountStatusCancelled {
		return ErrInvalidStateTransition
	}
	if a.status != AccountStatusActive {
		a.status = AccountStatusActive
		a.ModifiedAt = now
	}
	return nil
}

// Inactivate only acts on active accounts; any other state is left as is.
func (a *Account) Inactivate(now time.Time) {
	if a.status != AccountStatusActive {
		return
	}
	a.status = AccountStatusInactive
	a.ModifiedAt = now
}

// Cancel closes the account. It requires a zero balance.
func (a *Account) Cancel(now time.Time) error {
	if !a.balance.IsZero() {
		return ErrBalanceNotZero
	}
	if a.status == AccountStatusCancelled {
		return ErrAlreadyCancelled
	}
	a.status = AccountStatusCancelled
	a.ModifiedAt = now
	return nil
}
