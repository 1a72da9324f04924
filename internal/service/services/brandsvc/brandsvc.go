package brandsvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
)

// BrandService serves the brand catalog.
type BrandService struct {
	brandRepo ibrandrepo.IBrandRepository
}

func NewBrandService(brandRepo ibrandrepo.IBrandRepository) *BrandService {
	return &BrandService{
		brandRepo: brandRepo,
	}
}

func (s *BrandService) GetBrands(ctx context.Context) ([]brand.Brand, error) {
	return s.brandRepo.List(ctx)
}

func (s *BrandService) GetBrand(ctx context.Context, id uuid.UUID) (*brand.Brand, error) {
	return s.brandRepo.GetByID(ctx, id)
}

func (s *BrandService) CreateBrand(ctx context.Context, name, description string) (*brand.Brand, error) {
	b, err := brand.New(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.brandRepo.Insert(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *BrandService) UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*brand.Brand, error) {
	b, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.UpdateInfo(name, description); err != nil {
		return nil, err
	}

	if err := s.brandRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *BrandService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.brandRepo.Delete(ctx, id)
}
