package coin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
)

var (
	ErrNegativeCount     = errors.New("coin count must not be negative")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// Coin is the float record for one denomination: how many coins of that face
// value the machine currently holds.
type Coin struct {
	ID           uuid.UUID   `json:"id"`
	Denomination money.Money `json:"denomination"`
	Quantity     int         `json:"quantity"`
}

// New builds a float record for a denomination.
func New(denomination money.Money, quantity int) (*Coin, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, quantity)
	}

	return &Coin{
		ID:           uuid.New(),
		Denomination: denomination,
		Quantity:     quantity,
	}, nil
}

// AddCoins credits count coins to the record.
func (c *Coin) AddCoins(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}

	c.Quantity += count

	return nil
}

// RemoveCoins debits count coins. It fails before the quantity would go
// negative.
func (c *Coin) RemoveCoins(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	if c.Quantity < count {
		return fmt.Errorf("%w: denomination %s has %d, need %d",
			ErrInsufficientCoins, c.Denomination, c.Quantity, count)
	}

	c.Quantity -= count

	return nil
}
