package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/dal/rabbitmq"
	brandrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/brand/postgres"
	coinrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/coin/postgres"
	outboxrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/vendlabs/vending-svc/internal/dal/repositories/product/postgres"
	"github.com/vendlabs/vending-svc/internal/otel"
	"github.com/vendlabs/vending-svc/internal/service/services/brandsvc"
	"github.com/vendlabs/vending-svc/internal/service/services/coinsvc"
	"github.com/vendlabs/vending-svc/internal/service/services/ordersvc"
	"github.com/vendlabs/vending-svc/internal/service/services/productsvc"
	httptransport "github.com/vendlabs/vending-svc/internal/transport/http"
	outboxworker "github.com/vendlabs/vending-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    ordersvc.OrderPlacedQueue,
		Durable: true,
	}); err != nil {
		panic("failed to declare order placed queue: " + err.Error())
	}

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	productSvc := productsvc.NewProductService(
		productrepo.NewPostgresProductRepository(postgresClient.Pool()),
		brandrepo.NewPostgresBrandRepository(postgresClient.Pool()),
	)
	brandSvc := brandsvc.NewBrandService(
		brandrepo.NewPostgresBrandRepository(postgresClient.Pool()),
	)
	coinSvc := coinsvc.NewCoinService(
		coinrepo.NewPostgresCoinRepository(postgresClient.Pool()),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, productSvc, brandSvc, coinSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   worker,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
