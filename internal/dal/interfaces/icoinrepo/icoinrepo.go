package icoinrepo

import (
	"context"

	"github.com/vendlabs/vending-svc/internal/service/models/coin"
)

// ICoinRepository is the contract for the coin float. List and ListForUpdate
// return records descending by denomination; the calculator and the
// insufficient-float diagnostics rely on that ordering.
type ICoinRepository interface {
	List(ctx context.Context) ([]coin.Coin, error)
	// ListForUpdate locks the float rows for the calling transaction so a
	// concurrent placement cannot spend the same coins.
	ListForUpdate(ctx context.Context) ([]coin.Coin, error)
	UpdateQuantity(ctx context.Context, c *coin.Coin) error
	// ApplyPayment credits the inserted coins and debits the change coins as
	// one unit. Inserted denominations unknown to the float are skipped;
	// debiting below zero fails with coin.ErrInsufficientCoins.
	ApplyPayment(ctx context.Context, inserted map[string]int, change coin.ChangePlan) error
}
