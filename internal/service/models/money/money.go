package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
)

var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is an immutable monetary value. All arithmetic returns new values;
// a Money never holds a negative amount.
type Money struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency currency.Currency `json:"currency"`
}

// New builds a Money, rejecting negative amounts.
func New(amount decimal.Decimal, cur currency.Currency) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}

	if cur == "" {
		cur = currency.Default
	}

	return Money{Amount: amount, Currency: cur}, nil
}

// Zero returns a zero value in the given currency.
func Zero(cur currency.Currency) Money {
	m, _ := New(decimal.Zero, cur)
	return m
}

// Add sums two values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// MulInt multiplies the value by a non-negative quantity.
func (m Money) MulInt(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, fmt.Errorf("%w: quantity %d", ErrNegativeAmount, quantity)
	}

	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: m.Currency}, nil
}

// Equal reports structural equality: same currency and exactly equal amount.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// LessThan reports whether m is strictly below other. Comparing across
// currencies is a programming error and fails.
func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return m.Amount.LessThan(other.Amount), nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency.String()
}
