package iorderrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/order"
)

var ErrOrderNotFound = errors.New("order not found")

// IOrderRepository is the contract for order persistence. Orders are
// append-only: there is no update.
type IOrderRepository interface {
	Insert(ctx context.Context, o *order.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
