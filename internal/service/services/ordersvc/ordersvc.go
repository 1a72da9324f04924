package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/viper"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/icoinrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iorderrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/dal/uow"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/service/models/order"
	"github.com/vendlabs/vending-svc/internal/service/models/outbox"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
	"github.com/vendlabs/vending-svc/internal/service/services/changecalc"
	"go.opentelemetry.io/otel"
)

var (
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientPayment = errors.New("inserted coins do not cover the order total")
	ErrChangeUnavailable   = errors.New("machine cannot dispense change")
	ErrPlacementContention = errors.New("order placement conflicted with a concurrent purchase, try again")
)

// OrderPlacedQueue is the RabbitMQ queue order placement events are
// published to.
const OrderPlacedQueue = "vending.order.placed"

const confirmationMessage = "Thank you for your purchase! Please take your items and change."

// lockNotAvailable is the Postgres error code raised when lock_timeout
// expires on a FOR UPDATE wait.
const lockNotAvailable = "55P03"

// PlaceOrderItem is one requested line of a purchase.
type PlaceOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlacementResult is what the machine hands back on a successful purchase.
type PlacementResult struct {
	Order   *order.Order    `json:"order"`
	Change  coin.ChangePlan `json:"change"`
	Message string          `json:"message"`
}

// OrderService runs the purchase transaction and serves order queries.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	calc     *changecalc.Calculator
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BrandRepository() ibrandrepo.IBrandRepository
	ProductRepository() iproductrepo.IProductRepository
	CoinRepository() icoinrepo.ICoinRepository
	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		calc: changecalc.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: no unit of work source configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source. Used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// PlaceOrder runs one purchase end to end: stock validation, payment
// validation, change computation, then an all-or-nothing commit of stock
// decrements, float mutation, order insert, and the order-placed event.
//
// Two signals mean a concurrent placement got in the way: a coin debit
// failing at commit time (the float this change plan counted on was spent),
// and a lock_timeout expiring on a FOR UPDATE wait. The whole placement is
// retried once against fresh state, then surfaced as a contention error.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	items []PlaceOrderItem,
	insertedCoins map[string]int,
) (*PlacementResult, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "PlaceOrder")
	defer span.End()

	result, err := s.placeOrder(ctx, items, insertedCoins)
	if err != nil && isContention(err) {
		slog.Warn("Placement lost a race, retrying", "error", err)

		result, err = s.placeOrder(ctx, items, insertedCoins)
		if err != nil && isContention(err) {
			return nil, fmt.Errorf("%w: %s", ErrPlacementContention, err)
		}
	}

	return result, err
}

// isContention reports whether err is a lost race with a concurrent
// placement rather than a business failure.
func isContention(err error) bool {
	if errors.Is(err, coin.ErrInsufficientCoins) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable
}

func (s *OrderService) placeOrder(
	ctx context.Context,
	items []PlaceOrderItem,
	insertedCoins map[string]int,
) (result *PlacementResult, err error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	insertedSum, err := coin.SumCoinMap(insertedCoins)
	if err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := work.Rollback(); rbErr != nil {
				slog.Error("Failed to roll back placement", "error", rbErr)
			}
		}
	}()

	brandNames, err := s.brandNames(ctx, work)
	if err != nil {
		return nil, err
	}

	// Validate every requested line against locked stock before touching
	// anything. Stock decrements are staged in memory and persisted only
	// after payment and change both check out.
	ord := order.New(time.Now().UTC())
	products := make(map[uuid.UUID]*product.Product, len(items))
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			p, err = work.ProductRepository().GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			products[item.ProductID] = p
		}

		if !p.HasSufficientStock(item.Quantity) {
			return nil, fmt.Errorf("%w: product %s has %d, requested %d",
				ErrInsufficientStock, p.Name, p.StockQuantity, item.Quantity)
		}
		if err := p.UpdateStock(p.StockQuantity - item.Quantity); err != nil {
			return nil, err
		}

		brandName, ok := brandNames[p.BrandID]
		if !ok {
			brandName = "Unknown"
		}
		if err := ord.AddItem(p.ID, p.Name, p.BrandID, brandName, item.Quantity, p.Price); err != nil {
			return nil, err
		}
	}

	if insertedSum.LessThan(ord.Total.Amount) {
		return nil, fmt.Errorf("%w: inserted %s, total %s",
			ErrInsufficientPayment, insertedSum, ord.Total.Amount)
	}

	// Decide the change plan against the locked float before any mutation.
	changeAmount := insertedSum.Sub(ord.Total.Amount)
	changePlan := coin.ChangePlan{}
	if changeAmount.IsPositive() {
		coins, err := work.CoinRepository().ListForUpdate(ctx)
		if err != nil {
			return nil, err
		}

		changePlan, err = s.calc.CalculateChange(coins, changeAmount)
		if err != nil {
			if errors.Is(err, changecalc.ErrInfeasibleChange) {
				return nil, fmt.Errorf("%w: %s change requested", ErrChangeUnavailable, changeAmount)
			}

			return nil, err
		}
	}

	// Every validation passed; commit all mutations together.
	for _, p := range products {
		if err := work.ProductRepository().UpdateStock(ctx, p.ID, p.StockQuantity); err != nil {
			return nil, err
		}
	}

	if err := work.CoinRepository().ApplyPayment(ctx, insertedCoins, changePlan); err != nil {
		return nil, err
	}

	if err := work.OrderRepository().Insert(ctx, ord); err != nil {
		return nil, err
	}

	if err := s.stageOrderPlacedEvent(ctx, work, ord); err != nil {
		return nil, err
	}

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return &PlacementResult{
		Order:   ord,
		Change:  changePlan,
		Message: confirmationMessage,
	}, nil
}

func (s *OrderService) brandNames(ctx context.Context, work unitOfWork) (map[uuid.UUID]string, error) {
	brands, err := work.BrandRepository().List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(brands))
	for _, b := range brands {
		names[b.ID] = b.Name
	}

	return names, nil
}

// stageOrderPlacedEvent records the placement in the outbox inside the same
// transaction; the outbox worker delivers it to RabbitMQ afterwards.
func (s *OrderService) stageOrderPlacedEvent(ctx context.Context, work unitOfWork, ord *order.Order) error {
	payload, err := json.Marshal(ord)
	if err != nil {
		return fmt.Errorf("failed to marshal order placed event: %w", err)
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:   OrderPlacedQueue,
		RoutingKey:  OrderPlacedQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}

// GetOrders retrieves orders, optionally bounded by date range.
func (s *OrderService) GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	return work.OrderRepository().Query(ctx, filter)
}

// GetOrder retrieves a single order by id.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	work := s.newUOW()

	return work.OrderRepository().GetByID(ctx, id)
}
