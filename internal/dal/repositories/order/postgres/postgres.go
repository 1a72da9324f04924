package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iorderrepo"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/order"
	"github.com/vendlabs/vending-svc/internal/service/models/orderitem"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	ID            uuid.UUID
	OrderDate     time.Time
	TotalAmount   string
	TotalCurrency string
}

// ToModel converts OrderDal to service layer Order model. Items are loaded
// separately.
func (d *OrderDal) ToModel() (*order.Order, error) {
	amount, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	cur, err := currency.ParseCurrency(d.TotalCurrency)
	if err != nil {
		return nil, err
	}
	total, err := money.New(amount, cur)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:        d.ID,
		OrderDate: d.OrderDate,
		Total:     total,
		Items:     []orderitem.OrderItem{},
	}, nil
}

// OrderItemDal represents order line data access layer model.
type OrderItemDal struct {
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	BrandID       uuid.UUID
	BrandName     string
	Quantity      int
	UnitPrice     string
	TotalPrice    string
	PriceCurrency string
}

// ToModel converts OrderItemDal to the orderitem value object.
func (d *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(d.PriceCurrency)
	if err != nil {
		return nil, err
	}
	unitAmount, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, err
	}
	totalAmount, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		return nil, err
	}
	unit, err := money.New(unitAmount, cur)
	if err != nil {
		return nil, err
	}
	total, err := money.New(totalAmount, cur)
	if err != nil {
		return nil, err
	}

	return &orderitem.OrderItem{
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		BrandID:     d.BrandID,
		BrandName:   d.BrandName,
		Quantity:    d.Quantity,
		UnitPrice:   unit,
		TotalPrice:  total,
	}, nil
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists an order with its lines.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	query, args, err := sq.Insert("orders").
		Columns("id", "order_date", "total_amount", "total_currency").
		Values(o.ID, o.OrderDate, o.Total.Amount.String(), o.Total.Currency.String()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	builder := sq.Insert("order_items").
		Columns(
			"order_id",
			"product_id",
			"product_name",
			"brand_id",
			"brand_name",
			"quantity",
			"unit_price",
			"total_price",
			"price_currency",
		).
		PlaceholderFormat(sq.Dollar)
	for _, item := range o.Items {
		builder = builder.Values(
			o.ID,
			item.ProductID,
			item.ProductName,
			item.BrandID,
			item.BrandName,
			item.Quantity,
			item.UnitPrice.Amount.String(),
			item.TotalPrice.Amount.String(),
			item.UnitPrice.Currency.String(),
		)
	}

	query, args, err = builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}

	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := sq.Select("id", "order_date", "total_amount::text", "total_currency").
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(&dal.ID, &dal.OrderDate, &dal.TotalAmount, &dal.TotalCurrency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", iorderrepo.ErrOrderNotFound, id)
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	items, err := r.queryItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	model.Items = items[id]

	return model, nil
}

// Query retrieves orders in insertion order, optionally bounded by date.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select("id", "order_date", "total_amount::text", "total_currency").
		From("orders").
		OrderBy("order_date ASC").
		PlaceholderFormat(sq.Dollar)

	if filter != nil {
		if filter.StartDate != nil {
			builder = builder.Where(sq.GtOrEq{"order_date": *filter.StartDate})
		}
		if filter.EndDate != nil {
			builder = builder.Where(sq.LtOrEq{"order_date": *filter.EndDate})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	var ids []uuid.UUID
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(&dal.ID, &dal.OrderDate, &dal.TotalAmount, &dal.TotalCurrency); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
		ids = append(ids, model.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(result) == 0 {
		return []order.Order{}, nil
	}

	itemsByOrder, err := r.queryItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		if items, ok := itemsByOrder[result[i].ID]; ok {
			result[i].Items = items
		}
	}

	return result, nil
}

func (r *PostgresOrderRepository) queryItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]orderitem.OrderItem, error) {
	query, args, err := sq.Select(
		"order_id",
		"product_id",
		"product_name",
		"brand_id",
		"brand_name",
		"quantity",
		"unit_price::text",
		"total_price::text",
		"price_currency",
	).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]orderitem.OrderItem)
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.OrderID,
			&dal.ProductID,
			&dal.ProductName,
			&dal.BrandID,
			&dal.BrandName,
			&dal.Quantity,
			&dal.UnitPrice,
			&dal.TotalPrice,
			&dal.PriceCurrency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result[dal.OrderID] = append(result[dal.OrderID], *model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
