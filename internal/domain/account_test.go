package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	openedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	later    = openedAt.Add(time.Hour)
)

func money(t *testing.T, s string) Money {
	t.Helper()
	m, err := ParseMoney(s)
	require.NoError(t, err)
	return m
}

func newTestAccount(t *testing.T, kind AccountType, balance string) *Account {
	t.Helper()
	a, err := NewAccount(100, kind, 1, false, openedAt)
	require.NoError(t, err)
	if balance != "" {
		a.Deposit(money(t, balance), openedAt)
	}
	return a
}

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name       string
		kind       AccountType
		body       int64
		wantNumber string
		wantErr    error
	}{
		{name: "savings", kind: AccountTypeSavings, body: 1, wantNumber: "5300000001"},
		{name: "checking", kind: AccountTypeChecking, body: 12345678, wantNumber: "3312345678"},
		{name: "max body", kind: AccountTypeSavings, body: AccountNumberBodyLimit - 1, wantNumber: "5399999999"},
		{name: "zero body", kind: AccountTypeChecking, body: 0, wantNumber: "3300000000"},
		{name: "body too large", kind: AccountTypeSavings, body: AccountNumberBodyLimit, wantErr: ErrInvalidAccountNumber},
		{name: "negative body", kind: AccountTypeSavings, body: -1, wantErr: ErrInvalidAccountNumber},
		{name: "unknown type", kind: AccountType("CDT"), body: 1, wantErr: ErrUnsupportedAccountType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAccount(7, tt.kind, tt.body, true, openedAt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, a.Number)
			assert.Len(t, a.Number, 10)
			assert.Equal(t, tt.kind, a.Type())
			assert.Equal(t, AccountStatusActive, a.Status())
			assert.True(t, a.Balance().IsZero())
			assert.True(t, a.GMFExempt)
			assert.Equal(t, int64(7), a.ClientID)
		})
	}
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType(" ahorros ")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeSavings, got)

	got, err = ParseAccountType("Corriente")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeChecking, got)

	_, err = ParseAccountType("PLAZO_FIJO")
	assert.ErrorIs(t, err, ErrUnsupportedAccountType)
}

func TestAccount_Deposit(t *testing.T) {
	a := newTestAccount(t, AccountTypeSavings, "")
	before := a.Balance()

	a.Deposit(money(t, "200.00"), later)

	assert.Equal(t, "200.00", a.Balance().String())
	assert.Equal(t, "0.00", before.String(), "previous balance value must not be mutated")
	assert.Equal(t, later, a.ModifiedAt)
}

func TestSavingsWithdraw_InsufficientFundsLeavesBalance(t *testing.T) {
	for _, amount := range []string{"100.01", "500.00", "1000000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t, AccountTypeSavings, "100.00")

			err := a.Withdraw(money(t, amount), later)

			assert.ErrorIs(t, err, ErrInsufficientFunds)
			assert.Equal(t, "100.00", a.Balance().String())
			assert.Equal(t, openedAt, a.ModifiedAt)
		})
	}
}

func TestSavingsWithdraw_ExactBalance(t *testing.T) {
	a := newTestAccount(t, AccountTypeSavings, "100.00")

	require.NoError(t, a.Withdraw(money(t, "100.00"), later))
	assert.True(t, a.Balance().IsZero())
	assert.Equal(t, later, a.ModifiedAt)
}

func TestCheckingWithdraw_AllowsNegativeBalance(t *testing.T) {
	for _, amount := range []string{"100.01", "500.00"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t, AccountTypeChecking, "100.00")

			require.NoError(t, a.Withdraw(money(t, amount), later))

			want := money(t, "100.00").Subtract(money(t, amount))
			assert.True(t, a.Balance().IsNegative())
			assert.True(t, want.Equal(a.Balance()))
		})
	}
}

func TestAccount_Cancel(t *testing.T) {
	t.Run("non-zero balance", func(t *testing.T) {
		for _, kind := range []AccountType{AccountTypeSavings, AccountTypeChecking} {
			a := newTestAccount(t, kind, "0.01")
			assert.ErrorIs(t, a.Cancel(later), ErrBalanceNotZero)
			assert.Equal(t, AccountStatusActive, a.Status())
		}
	})

	t.Run("zero balance", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "0.00")
		require.NoError(t, a.Cancel(later))
		assert.Equal(t, AccountStatusCancelled, a.Status())
		assert.Equal(t, later, a.ModifiedAt)
	})

	t.Run("already cancelled", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeChecking, "")
		require.NoError(t, a.Cancel(later))
		assert.ErrorIs(t, a.Cancel(later.Add(time.Minute)), ErrAlreadyCancelled)
		assert.Equal(t, later, a.ModifiedAt)
	})

	t.Run("negative checking balance", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeChecking, "")
		require.NoError(t, a.Withdraw(money(t, "5"), later))
		assert.ErrorIs(t, a.Cancel(later), ErrBalanceNotZero)
	})

	t.Run("inactive account with zero balance", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "")
		a.Inactivate(later)
		require.NoError(t, a.Cancel(later))
		assert.Equal(t, AccountStatusCancelled, a.Status())
	})
}

func TestAccount_StatusTransitions(t *testing.T) {
	t.Run("inactivate then activate", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "")

		a.Inactivate(later)
		assert.Equal(t, AccountStatusInactive, a.Status())
		assert.Equal(t, later, a.ModifiedAt)

		reactivated := later.Add(time.Hour)
		require.NoError(t, a.Activate(reactivated))
		assert.Equal(t, AccountStatusActive, a.Status())
		assert.Equal(t, reactivated, a.ModifiedAt)
	})

	t.Run("activate when already active does not restamp", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "")
		require.NoError(t, a.Activate(later))
		assert.Equal(t, openedAt, a.ModifiedAt)
	})

	t.Run("inactivate when inactive is a no-op", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeChecking, "")
		a.Inactivate(later)
		a.Inactivate(later.Add(time.Hour))
		assert.Equal(t, AccountStatusInactive, a.Status())
		assert.Equal(t, later, a.ModifiedAt)
	})

	t.Run("cancelled cannot be activated", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "")
		require.NoError(t, a.Cancel(later))
		assert.ErrorIs(t, a.Activate(later.Add(time.Hour)), ErrInvalidStateTransition)
		assert.Equal(t, AccountStatusCancelled, a.Status())
	})

	t.Run("cancelled ignores inactivate", func(t *testing.T) {
		a := newTestAccount(t, AccountTypeSavings, "")
		require.NoError(t, a.Cancel(later))
		a.Inactivate(later.Add(time.Hour))
		assert.Equal(t, AccountStatusCancelled, a.Status())
		assert.Equal(t, later, a.ModifiedAt)
	})
}

func TestRestoreAccount(t *testing.T) {
	state := AccountState{
		ID:         9,
		ClientID:   3,
		Type:       AccountTypeChecking,
		Number:     "3300000042",
		Balance:    NewMoney(decimal.RequireFromString("-12.5")),
		Status:     AccountStatusInactive,
		GMFExempt:  true,
		CreatedAt:  openedAt,
		ModifiedAt: later,
	}

	a, err := RestoreAccount(state)
	require.NoError(t, err)
	assert.Equal(t, state, a.State())

	state.Status = "BLOQUEADA"
	_, err = RestoreAccount(state)
	assert.ErrorIs(t, err, ErrInvalidStatusValue)

	state.Status = AccountStatusActive
	state.Type = "CDT"
	_, err = RestoreAccount(state)
	assert.ErrorIs(t, err, ErrUnsupportedAccountType)
}
