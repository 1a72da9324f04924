package ibrandrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
)

var ErrBrandNotFound = errors.New("brand not found")

// IBrandRepository is the contract for brand persistence.
type IBrandRepository interface {
	List(ctx context.Context) ([]brand.Brand, error)
	GetByID(ctx context.Context, id uuid.UUID) (*brand.Brand, error)
	Insert(ctx context.Context, b *brand.Brand) error
	Update(ctx context.Context, b *brand.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}
