package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/icoinrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iorderrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/order"
	"github.com/vendlabs/vending-svc/internal/service/models/outbox"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
)

// fakeStore is an in-memory backing store shared by the fake repositories.
// Mutations land in a staging copy and reach the store only on Commit,
// mirroring the transactional behavior of the real unit of work.
type fakeStore struct {
	brands   []brand.Brand
	products map[uuid.UUID]*product.Product
	coins    map[string]*coin.Coin
	orders   []*order.Order
	outbox   []outbox.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[uuid.UUID]*product.Product{},
		coins:    map[string]*coin.Coin{},
	}
}

func (s *fakeStore) addBrand(t *testing.T, name string) uuid.UUID {
	t.Helper()
	b, err := brand.New(name, "")
	require.NoError(t, err)
	s.brands = append(s.brands, *b)

	return b.ID
}

func (s *fakeStore) addProduct(t *testing.T, name string, price int64, brandID uuid.UUID, stock int) uuid.UUID {
	t.Helper()
	m, err := money.New(decimal.NewFromInt(price), currency.CurrencyRUB)
	require.NoError(t, err)
	p, err := product.New(name, "", m, brandID, stock)
	require.NoError(t, err)
	s.products[p.ID] = p

	return p.ID
}

func (s *fakeStore) addCoin(t *testing.T, denomination int64, quantity int) {
	t.Helper()
	m, err := money.New(decimal.NewFromInt(denomination), currency.CurrencyRUB)
	require.NoError(t, err)
	c, err := coin.New(m, quantity)
	require.NoError(t, err)
	s.coins[m.Amount.String()] = c
}

func (s *fakeStore) coinQuantity(denomination string) int {
	if c, ok := s.coins[denomination]; ok {
		return c.Quantity
	}

	return 0
}

// fakeUOW implements the unit of work over a fakeStore. Begin snapshots the
// store into a staging area; Commit publishes the staging area back.
type fakeUOW struct {
	store *fakeStore

	stagedProducts map[uuid.UUID]*product.Product
	stagedCoins    map[string]*coin.Coin
	stagedOrders   []*order.Order
	stagedOutbox   []outbox.Message

	began      bool
	committed  bool
	rolledBack bool
}

func newFakeUOW(store *fakeStore) *fakeUOW {
	return &fakeUOW{store: store}
}

func (u *fakeUOW) Begin(_ context.Context) error {
	u.began = true
	u.stagedProducts = map[uuid.UUID]*product.Product{}
	for id, p := range u.store.products {
		cp := *p
		u.stagedProducts[id] = &cp
	}
	u.stagedCoins = map[string]*coin.Coin{}
	for denom, c := range u.store.coins {
		cp := *c
		u.stagedCoins[denom] = &cp
	}

	return nil
}

func (u *fakeUOW) Commit() error {
	u.committed = true
	u.store.products = u.stagedProducts
	u.store.coins = u.stagedCoins
	u.store.orders = append(u.store.orders, u.stagedOrders...)
	u.store.outbox = append(u.store.outbox, u.stagedOutbox...)

	return nil
}

func (u *fakeUOW) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}

	return nil
}

func (u *fakeUOW) BrandRepository() ibrandrepo.IBrandRepository     { return &fakeBrandRepo{u} }
func (u *fakeUOW) ProductRepository() iproductrepo.IProductRepository {
	return &fakeProductRepo{u}
}
func (u *fakeUOW) CoinRepository() icoinrepo.ICoinRepository    { return &fakeCoinRepo{u} }
func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository { return &fakeOrderRepo{u} }
func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{u}
}

type fakeBrandRepo struct{ u *fakeUOW }

func (r *fakeBrandRepo) List(_ context.Context) ([]brand.Brand, error) {
	return r.u.store.brands, nil
}

func (r *fakeBrandRepo) GetByID(_ context.Context, id uuid.UUID) (*brand.Brand, error) {
	for i := range r.u.store.brands {
		if r.u.store.brands[i].ID == id {
			return &r.u.store.brands[i], nil
		}
	}

	return nil, ibrandrepo.ErrBrandNotFound
}

func (r *fakeBrandRepo) Insert(_ context.Context, b *brand.Brand) error {
	r.u.store.brands = append(r.u.store.brands, *b)
	return nil
}

func (r *fakeBrandRepo) Update(_ context.Context, _ *brand.Brand) error { return nil }
func (r *fakeBrandRepo) Delete(_ context.Context, _ uuid.UUID) error    { return nil }

type fakeProductRepo struct{ u *fakeUOW }

func (r *fakeProductRepo) Query(_ context.Context, _ *iproductrepo.QueryProductsModel) ([]product.Product, error) {
	result := make([]product.Product, 0, len(r.u.store.products))
	for _, p := range r.u.store.products {
		result = append(result, *p)
	}

	return result, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	return r.GetForUpdate(context.Background(), id)
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*product.Product, error) {
	staged := r.u.stagedProducts
	if staged == nil {
		staged = r.u.store.products
	}
	p, ok := staged[id]
	if !ok {
		return nil, iproductrepo.ErrProductNotFound
	}
	cp := *p

	return &cp, nil
}

func (r *fakeProductRepo) Insert(_ context.Context, p *product.Product) error {
	r.u.store.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stockQuantity int) error {
	p, ok := r.u.stagedProducts[id]
	if !ok {
		return iproductrepo.ErrProductNotFound
	}

	return p.UpdateStock(stockQuantity)
}

func (r *fakeProductRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeCoinRepo struct{ u *fakeUOW }

func (r *fakeCoinRepo) List(_ context.Context) ([]coin.Coin, error) {
	return r.ListForUpdate(context.Background())
}

func (r *fakeCoinRepo) ListForUpdate(_ context.Context) ([]coin.Coin, error) {
	staged := r.u.stagedCoins
	if staged == nil {
		staged = r.u.store.coins
	}
	result := make([]coin.Coin, 0, len(staged))
	for _, c := range staged {
		result = append(result, *c)
	}

	return result, nil
}

func (r *fakeCoinRepo) UpdateQuantity(_ context.Context, c *coin.Coin) error {
	r.u.stagedCoins[c.Denomination.Amount.String()] = c
	return nil
}

func (r *fakeCoinRepo) ApplyPayment(_ context.Context, inserted map[string]int, change coin.ChangePlan) error {
	for denom, count := range inserted {
		c, ok := r.u.stagedCoins[denom]
		if !ok {
			continue
		}
		if err := c.AddCoins(count); err != nil {
			return err
		}
	}

	for denom, count := range change {
		c, ok := r.u.stagedCoins[denom]
		if !ok {
			return coin.ErrInsufficientCoins
		}
		if err := c.RemoveCoins(count); err != nil {
			return err
		}
	}

	return nil
}

type fakeOrderRepo struct{ u *fakeUOW }

func (r *fakeOrderRepo) Insert(_ context.Context, o *order.Order) error {
	r.u.stagedOrders = append(r.u.stagedOrders, o)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	for _, o := range r.u.store.orders {
		if o.ID == id {
			return o, nil
		}
	}

	return nil, iorderrepo.ErrOrderNotFound
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	result := make([]order.Order, 0, len(r.u.store.orders))
	for _, o := range r.u.store.orders {
		if filter != nil && filter.StartDate != nil && o.OrderDate.Before(*filter.StartDate) {
			continue
		}
		if filter != nil && filter.EndDate != nil && o.OrderDate.After(*filter.EndDate) {
			continue
		}
		result = append(result, *o)
	}

	return result, nil
}

type fakeOutboxRepo struct{ u *fakeUOW }

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	r.u.stagedOutbox = append(r.u.stagedOutbox, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.Message, error) {
	return r.u.store.outbox, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, _ int64) error { return nil }

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

func seededStore(t *testing.T) (*fakeStore, uuid.UUID, uuid.UUID) {
	t.Helper()

	store := newFakeStore()
	colaBrand := store.addBrand(t, "Coca-Cola")
	spriteBrand := store.addBrand(t, "Sprite")
	colaID := store.addProduct(t, "Coca-Cola", 85, colaBrand, 10)
	spriteID := store.addProduct(t, "Sprite", 70, spriteBrand, 1)
	store.addCoin(t, 1, 80)
	store.addCoin(t, 2, 30)
	store.addCoin(t, 5, 10)
	store.addCoin(t, 10, 10)

	return store, colaID, spriteID
}

func newService(store *fakeStore) (*OrderService, *[]*fakeUOW) {
	var uows []*fakeUOW
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		u := newFakeUOW(store)
		uows = append(uows, u)

		return u
	}))

	return svc, &uows
}

func TestPlaceOrderSuccess(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, uows := newService(store)

	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	require.NoError(t, err)
	require.Len(t, *uows, 1)
	assert.True(t, (*uows)[0].committed)

	require.Len(t, result.Order.Items, 1)
	assert.True(t, result.Order.Total.Amount.Equal(decimal.NewFromInt(85)))
	assert.Equal(t, "Coca-Cola", result.Order.Items[0].BrandName)
	assert.NotEmpty(t, result.Message)

	// 90 inserted, 85 due: 5 back.
	assert.Equal(t, coin.ChangePlan{"5": 1}, result.Change)

	// Stock decremented, inserted coins credited, change debited.
	assert.Equal(t, 9, store.products[colaID].StockQuantity)
	assert.Equal(t, 19, store.coinQuantity("10"))
	assert.Equal(t, 9, store.coinQuantity("5"))

	// Exactly one order and one staged event.
	require.Len(t, store.orders, 1)
	require.Len(t, store.outbox, 1)
	assert.Equal(t, OrderPlacedQueue, store.outbox[0].QueueName)
	assert.JSONEq(t, mustJSON(t, store.orders[0]), string(store.outbox[0].Payload))
}

func TestPlaceOrderMultipleUnitsUnknownDenomination(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	// Two units at 85 paid with two 100-coins: 30 change. The float does
	// not track hundreds, so the credit is skipped but the value counts.
	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 2}},
		map[string]int{"100": 2},
	)

	require.NoError(t, err)
	assert.True(t, result.Order.Total.Amount.Equal(decimal.NewFromInt(170)))
	assert.Equal(t, coin.ChangePlan{"10": 3}, result.Change)
	assert.Equal(t, 8, store.products[colaID].StockQuantity)
	assert.Equal(t, 7, store.coinQuantity("10"))
	assert.Equal(t, 0, store.coinQuantity("100"))
}

func TestPlaceOrderExactPaymentNoChange(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 8, "5": 1},
	)

	require.NoError(t, err)
	assert.True(t, result.Change.IsEmpty())
	assert.Equal(t, 18, store.coinQuantity("10"))
	assert.Equal(t, 11, store.coinQuantity("5"))
}

func TestPlaceOrderEmpty(t *testing.T) {
	store, _, _ := seededStore(t)
	svc, _ := newService(store)

	_, err := svc.PlaceOrder(context.Background(), nil, map[string]int{"10": 9})

	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, store.orders)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	store, _, spriteID := seededStore(t)
	svc, uows := newService(store)

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: spriteID, Quantity: 2}},
		map[string]int{"10": 20},
	)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.True(t, (*uows)[0].rolledBack)
	assert.Equal(t, 1, store.products[spriteID].StockQuantity)
	assert.Equal(t, 10, store.coinQuantity("10"))
	assert.Empty(t, store.orders)
	assert.Empty(t, store.outbox)
}

func TestPlaceOrderInsufficientPayment(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 8},
	)

	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Equal(t, 10, store.products[colaID].StockQuantity)
	assert.Equal(t, 10, store.coinQuantity("10"))
}

func TestPlaceOrderChangeUnavailable(t *testing.T) {
	store := newFakeStore()
	brandID := store.addBrand(t, "Coca-Cola")
	colaID := store.addProduct(t, "Coca-Cola", 85, brandID, 10)
	store.addCoin(t, 10, 10)

	svc, _ := newService(store)

	// 90 inserted, 85 due: 5 change needed but only tens in the float.
	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	assert.ErrorIs(t, err, ErrChangeUnavailable)
	assert.Equal(t, 10, store.products[colaID].StockQuantity)
	assert.Equal(t, 10, store.coinQuantity("10"))
	assert.Empty(t, store.orders)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	store, _, _ := seededStore(t)
	svc, _ := newService(store)

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: uuid.New(), Quantity: 1}},
		map[string]int{"10": 9},
	)

	assert.ErrorIs(t, err, iproductrepo.ErrProductNotFound)
}

func TestPlaceOrderDuplicateLinesShareStock(t *testing.T) {
	store, _, spriteID := seededStore(t)
	svc, _ := newService(store)

	// Two lines for the same product with one unit in stock.
	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{
			{ProductID: spriteID, Quantity: 1},
			{ProductID: spriteID, Quantity: 1},
		},
		map[string]int{"10": 20},
	)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, store.products[spriteID].StockQuantity)
}

func TestPlaceOrderNonPositiveQuantity(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 0}},
		map[string]int{"10": 9},
	)

	assert.Error(t, err)
	assert.Empty(t, store.orders)
}

func TestPlaceOrderRetriesOnCoinContention(t *testing.T) {
	store, colaID, _ := seededStore(t)

	// First attempt sees a stale float and loses the coin debit race;
	// second attempt runs against fresh state and succeeds.
	attempts := 0
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		attempts++
		if attempts == 1 {
			return &contentionUOW{fakeUOW: newFakeUOW(store)}
		}

		return newFakeUOW(store)
	}))

	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, coin.ChangePlan{"5": 1}, result.Change)
	require.Len(t, store.orders, 1)
}

func TestPlaceOrderContentionOnBothAttempts(t *testing.T) {
	store, colaID, _ := seededStore(t)

	attempts := 0
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		attempts++

		return &contentionUOW{fakeUOW: newFakeUOW(store)}
	}))

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	assert.ErrorIs(t, err, ErrPlacementContention)
	assert.Equal(t, 2, attempts)
	assert.Empty(t, store.orders)
}

// contentionUOW fails every coin debit the way a lost FOR UPDATE race does.
type contentionUOW struct {
	*fakeUOW
}

func (u *contentionUOW) CoinRepository() icoinrepo.ICoinRepository {
	return &contentionCoinRepo{fakeCoinRepo{u.fakeUOW}}
}

type contentionCoinRepo struct {
	fakeCoinRepo
}

func (r *contentionCoinRepo) ApplyPayment(_ context.Context, _ map[string]int, _ coin.ChangePlan) error {
	return coin.ErrInsufficientCoins
}

func TestPlaceOrderRetriesOnLockTimeout(t *testing.T) {
	store, colaID, _ := seededStore(t)

	// First attempt waits on another placement's row lock until lock_timeout
	// expires; second attempt finds the row free and succeeds.
	attempts := 0
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		attempts++
		if attempts == 1 {
			return &lockTimeoutUOW{fakeUOW: newFakeUOW(store)}
		}

		return newFakeUOW(store)
	}))

	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, coin.ChangePlan{"5": 1}, result.Change)
	require.Len(t, store.orders, 1)
}

func TestPlaceOrderLockTimeoutOnBothAttempts(t *testing.T) {
	store, colaID, _ := seededStore(t)

	attempts := 0
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		attempts++

		return &lockTimeoutUOW{fakeUOW: newFakeUOW(store)}
	}))

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)

	assert.ErrorIs(t, err, ErrPlacementContention)
	assert.Equal(t, 2, attempts)
	assert.Empty(t, store.orders)
}

// lockTimeoutUOW fails every row lock the way an expired lock_timeout does.
type lockTimeoutUOW struct {
	*fakeUOW
}

func (u *lockTimeoutUOW) ProductRepository() iproductrepo.IProductRepository {
	return &lockTimeoutProductRepo{fakeProductRepo{u.fakeUOW}}
}

type lockTimeoutProductRepo struct {
	fakeProductRepo
}

func (r *lockTimeoutProductRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*product.Product, error) {
	return nil, fmt.Errorf("getting product %s for update: %w", id, &pgconn.PgError{
		Code:    "55P03",
		Message: "canceling statement due to lock timeout",
	})
}

func TestGetOrders(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	_, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)
	require.NoError(t, err)

	orders, err := svc.GetOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	future := time.Now().Add(time.Hour)
	orders, err = svc.GetOrders(context.Background(), &order.QueryOrdersModel{StartDate: &future})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetOrder(t *testing.T) {
	store, colaID, _ := seededStore(t)
	svc, _ := newService(store)

	result, err := svc.PlaceOrder(
		context.Background(),
		[]PlaceOrderItem{{ProductID: colaID, Quantity: 1}},
		map[string]int{"10": 9},
	)
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, iorderrepo.ErrOrderNotFound)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)

	return string(data)
}
