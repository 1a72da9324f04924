package orderitem

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// OrderItem is one line of an order. It is a value object: two lines with
// identical fields are interchangeable.
type OrderItem struct {
	ProductID   uuid.UUID   `json:"productId"`
	ProductName string      `json:"productName"`
	BrandID     uuid.UUID   `json:"brandId"`
	BrandName   string      `json:"brandName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unitPrice"`
	TotalPrice  money.Money `json:"totalPrice"`
}

// New builds a line and derives its total price. Quantity must be positive;
// zero is rejected here rather than at the request boundary.
func New(productID uuid.UUID, productName string, brandID uuid.UUID, brandName string, quantity int, unitPrice money.Money) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	total, err := unitPrice.MulInt(quantity)
	if err != nil {
		return OrderItem{}, err
	}

	return OrderItem{
		ProductID:   productID,
		ProductName: productName,
		BrandID:     brandID,
		BrandName:   brandName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  total,
	}, nil
}

// Equal reports component-wise equality of two lines.
func (i OrderItem) Equal(other OrderItem) bool {
	return i.ProductID == other.ProductID &&
		i.ProductName == other.ProductName &&
		i.BrandID == other.BrandID &&
		i.BrandName == other.BrandName &&
		i.Quantity == other.Quantity &&
		i.UnitPrice.Equal(other.UnitPrice) &&
		i.TotalPrice.Equal(other.TotalPrice)
}
