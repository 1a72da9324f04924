package currency

import (
	"database/sql/driver"
	"errors"
)

// Currency is the ISO code tag carried by every monetary value. A deployment
// runs in a single currency.
type Currency string

const (
	CurrencyRUB Currency = "RUB"
)

// Default is assumed when a value arrives without an explicit tag.
const Default = CurrencyRUB

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

func ParseCurrency(s string) (Currency, error) {
	switch s {
	case CurrencyRUB.String():
		return CurrencyRUB, nil
	default:
		return "", ErrInvalidCurrency
	}
}
