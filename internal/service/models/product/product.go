package product

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
)

var (
	ErrBlankName     = errors.New("product name must not be blank")
	ErrNegativeStock = errors.New("stock quantity must not be negative")
)

// Product is a catalog item dispensed by the machine.
type Product struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         money.Money `json:"price"`
	BrandID       uuid.UUID   `json:"brandId"`
	StockQuantity int         `json:"stockQuantity"`
}

func New(name, description string, price money.Money, brandID uuid.UUID, stockQuantity int) (*Product, error) {
	if name == "" {
		return nil, ErrBlankName
	}
	if stockQuantity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeStock, stockQuantity)
	}

	return &Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   description,
		Price:         price,
		BrandID:       brandID,
		StockQuantity: stockQuantity,
	}, nil
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

func (p *Product) HasSufficientStock(requested int) bool {
	return p.StockQuantity >= requested
}

func (p *Product) UpdatePrice(price money.Money) {
	p.Price = price
}

// UpdateStock sets the absolute stock level. Negative targets are rejected.
func (p *Product) UpdateStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStock, quantity)
	}

	p.StockQuantity = quantity

	return nil
}

func (p *Product) AddStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStock, quantity)
	}

	p.StockQuantity += quantity

	return nil
}
