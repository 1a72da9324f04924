package productsvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
)

// ProductView is a catalog product with its brand name denormalized for
// display.
type ProductView struct {
	product.Product
	BrandName string `json:"brandName"`
}

// PriceRange is the min/max price over in-stock products.
type PriceRange struct {
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
}

// ProductService serves the product catalog.
type ProductService struct {
	productRepo iproductrepo.IProductRepository
	brandRepo   ibrandrepo.IBrandRepository
}

func NewProductService(productRepo iproductrepo.IProductRepository, brandRepo ibrandrepo.IBrandRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		brandRepo:   brandRepo,
	}
}

// GetProducts lists catalog products matching the filter.
func (s *ProductService) GetProducts(ctx context.Context, filter *iproductrepo.QueryProductsModel) ([]ProductView, error) {
	products, err := s.productRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	names, err := s.brandNames(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ProductView, 0, len(products))
	for _, p := range products {
		result = append(result, ProductView{Product: p, BrandName: names.lookup(p.BrandID)})
	}

	return result, nil
}

// GetProduct retrieves a single product by id.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	names, err := s.brandNames(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductView{Product: *p, BrandName: names.lookup(p.BrandID)}, nil
}

// CreateProduct adds a product to the catalog. The brand must exist.
func (s *ProductService) CreateProduct(
	ctx context.Context,
	name, description string,
	price money.Money,
	brandID uuid.UUID,
	stockQuantity int,
) (*ProductView, error) {
	b, err := s.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}

	p, err := product.New(name, description, price, brandID, stockQuantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Insert(ctx, p); err != nil {
		return nil, err
	}

	return &ProductView{Product: *p, BrandName: b.Name}, nil
}

// UpdateProduct changes a product's price and stock level.
func (s *ProductService) UpdateProduct(
	ctx context.Context,
	id uuid.UUID,
	name, description string,
	price money.Money,
	stockQuantity int,
) (*ProductView, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = description
	p.UpdatePrice(price)
	if err := p.UpdateStock(stockQuantity); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	names, err := s.brandNames(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductView{Product: *p, BrandName: names.lookup(p.BrandID)}, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetPriceRange reports the cheapest and most expensive in-stock product,
// optionally within one brand. An empty catalog yields a zero range.
func (s *ProductService) GetPriceRange(ctx context.Context, brandID *uuid.UUID) (*PriceRange, error) {
	filter := &iproductrepo.QueryProductsModel{BrandID: brandID}
	products, err := s.productRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	r := &PriceRange{MinPrice: decimal.Zero, MaxPrice: decimal.Zero}
	first := true
	for _, p := range products {
		if !p.InStock() {
			continue
		}
		amount := p.Price.Amount
		if first {
			r.MinPrice, r.MaxPrice = amount, amount
			first = false
			continue
		}
		if amount.LessThan(r.MinPrice) {
			r.MinPrice = amount
		}
		if amount.GreaterThan(r.MaxPrice) {
			r.MaxPrice = amount
		}
	}

	return r, nil
}

type brandNameIndex map[uuid.UUID]string

func (idx brandNameIndex) lookup(id uuid.UUID) string {
	if name, ok := idx[id]; ok {
		return name
	}
	return "Unknown"
}

func (s *ProductService) brandNames(ctx context.Context) (brandNameIndex, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := make(brandNameIndex, len(brands))
	for _, b := range brands {
		idx[b.ID] = b.Name
	}

	return idx, nil
}
