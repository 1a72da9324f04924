package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
)

var productColumns = []string{
	"id",
	"name",
	"description",
	"price_amount::text",
	"price_currency",
	"brand_id",
	"stock_quantity",
}

// ProductDal represents product data access layer model.
type ProductDal struct {
	ID            uuid.UUID
	Name          string
	Description   string
	PriceAmount   string
	PriceCurrency string
	BrandID       uuid.UUID
	StockQuantity int
}

// ToModel converts ProductDal to service layer Product model.
func (d *ProductDal) ToModel() (*product.Product, error) {
	amount, err := decimal.NewFromString(d.PriceAmount)
	if err != nil {
		return nil, err
	}
	cur, err := currency.ParseCurrency(d.PriceCurrency)
	if err != nil {
		return nil, err
	}
	price, err := money.New(amount, cur)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         price,
		BrandID:       d.BrandID,
		StockQuantity: d.StockQuantity,
	}, nil
}

type PostgresProductRepository struct {
	conn postgres.Querier
}

func NewPostgresProductRepository(conn postgres.Querier) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(ctx context.Context, filter *iproductrepo.QueryProductsModel) ([]product.Product, error) {
	builder := sq.Select(productColumns...).
		From("products").
		OrderBy("name ASC").
		PlaceholderFormat(sq.Dollar)

	if filter != nil {
		if filter.BrandID != nil {
			builder = builder.Where(sq.Eq{"brand_id": *filter.BrandID})
		}
		if filter.MinPrice != nil {
			builder = builder.Where(sq.GtOrEq{"price_amount": filter.MinPrice.String()})
		}
		if filter.MaxPrice != nil {
			builder = builder.Where(sq.LtOrEq{"price_amount": filter.MaxPrice.String()})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.ID,
			&dal.Name,
			&dal.Description,
			&dal.PriceAmount,
			&dal.PriceCurrency,
			&dal.BrandID,
			&dal.StockQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.getOne(ctx, id, false)
}

// GetForUpdate locks the product row for the calling transaction.
func (r *PostgresProductRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.getOne(ctx, id, true)
}

func (r *PostgresProductRepository) getOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*product.Product, error) {
	builder := sq.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal ProductDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.ID,
		&dal.Name,
		&dal.Description,
		&dal.PriceAmount,
		&dal.PriceCurrency,
		&dal.BrandID,
		&dal.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", iproductrepo.ErrProductNotFound, id)
		}

		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return dal.ToModel()
}

func (r *PostgresProductRepository) Insert(ctx context.Context, p *product.Product) error {
	query, args, err := sq.Insert("products").
		Columns("id", "name", "description", "price_amount", "price_currency", "brand_id", "stock_quantity").
		Values(
			p.ID,
			p.Name,
			p.Description,
			p.Price.Amount.String(),
			p.Price.Currency.String(),
			p.BrandID,
			p.StockQuantity,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, p *product.Product) error {
	query, args, err := sq.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price_amount", p.Price.Amount.String()).
		Set("price_currency", p.Price.Currency.String()).
		Set("stock_quantity", p.StockQuantity).
		Where(sq.Eq{"id": p.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", iproductrepo.ErrProductNotFound, p.ID)
	}

	return nil
}

func (r *PostgresProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, stockQuantity int) error {
	query, args, err := sq.Update("products").
		Set("stock_quantity", stockQuantity).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", iproductrepo.ErrProductNotFound, id)
	}

	return nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Delete("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
