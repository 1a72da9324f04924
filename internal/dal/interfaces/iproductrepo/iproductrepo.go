package iproductrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
)

var ErrProductNotFound = errors.New("product not found")

// QueryProductsModel represents filter parameters for the product catalog.
type QueryProductsModel struct {
	BrandID  *uuid.UUID
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// IProductRepository is the contract for product persistence.
type IProductRepository interface {
	Query(ctx context.Context, filter *QueryProductsModel) ([]product.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	// GetForUpdate loads a product with a row lock so concurrent order
	// placements serialize on its stock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Insert(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, stockQuantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
