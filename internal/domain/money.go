package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits every Money value carries.
const MoneyScale = 2

// Money is an immutable monetary quantity normalized to two decimal places.
// Rounding is half-up (ties away from zero) on construction and after every operation.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney normalizes a decimal into Money.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(MoneyScale)}
}

// MoneyOf builds Money from an optional decimal. A nil input is rejected.
func MoneyOf(amount *decimal.Decimal) (Money, error) {
	if amount == nil {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(*amount), nil
}

// ParseMoney parses a decimal string such as "200.00".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return NewMoney(d), nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

func (m Money) IsZero() bool {
	return m.amount.Round(MoneyScale).IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Equal compares normalized values, so 1.5 and 1.50 are equal.
func (m Money) Equal(other Money) bool {
	return m.amount.Round(MoneyScale).Equal(other.amount.Round(MoneyScale))
}

func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// Decimal exposes the underlying value, always at scale 2.
func (m Money) Decimal() decimal.Decimal {
	return m.amount.Round(MoneyScale)
}

// String renders the value with exactly two fraction digits.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON writes the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidAmount
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	*m = NewMoney(d)
	return nil
}
