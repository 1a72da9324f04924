package uow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/viper"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/icoinrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iorderrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	brandrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/brand/postgres"
	coinrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/coin/postgres"
	orderrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/product/postgres"
)

// unitOfWork binds the repositories to one pgx transaction so an order
// placement reads, decides, and commits against a single consistent view of
// stock and float. Before Begin the repositories run on the pool.
type unitOfWork struct {
	client *postgres.Client
	tx     pgx.Tx
	ctx    context.Context

	brandRepo   ibrandrepo.IBrandRepository
	productRepo iproductrepo.IProductRepository
	coinRepo    icoinrepo.ICoinRepository
	orderRepo   iorderrepo.IOrderRepository
	outboxRepo  ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:      client,
		brandRepo:   brandrepo.NewPostgresBrandRepository(client.Pool()),
		productRepo: productrepo.NewPostgresProductRepository(client.Pool()),
		coinRepo:    coinrepo.NewPostgresCoinRepository(client.Pool()),
		orderRepo:   orderrepo.NewPostgresOrderRepository(client.Pool()),
		outboxRepo:  outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) BrandRepository() ibrandrepo.IBrandRepository {
	return u.brandRepo
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) CoinRepository() icoinrepo.ICoinRepository {
	return u.coinRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin opens the transaction and rebinds the repositories to it. A
// lock_timeout bounds every row-lock wait so contention surfaces as an error
// instead of a stuck placement.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	lockTimeout := viper.GetString("postgres.lock_timeout")
	if lockTimeout == "" {
		lockTimeout = "3s"
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	u.tx = tx
	u.ctx = ctx
	u.brandRepo = brandrepo.NewPostgresBrandRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.coinRepo = coinrepo.NewPostgresCoinRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(u.ctx)
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(u.ctx)
}
