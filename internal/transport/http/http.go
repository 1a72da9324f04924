package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/order"
	"github.com/vendlabs/vending-svc/internal/service/services/ordersvc"
	"github.com/vendlabs/vending-svc/internal/service/services/productsvc"
	brandshandler "github.com/vendlabs/vending-svc/internal/transport/http/brands"
	coinshandler "github.com/vendlabs/vending-svc/internal/transport/http/coins"
	getorder "github.com/vendlabs/vending-svc/internal/transport/http/get_order"
	listorders "github.com/vendlabs/vending-svc/internal/transport/http/list_orders"
	placeorder "github.com/vendlabs/vending-svc/internal/transport/http/place_order"
	productshandler "github.com/vendlabs/vending-svc/internal/transport/http/products"
	"github.com/vendlabs/vending-svc/pkg/http/middleware/trace"
	"github.com/vendlabs/vending-svc/pkg/logger"
)

type orderService interface {
	PlaceOrder(ctx context.Context, items []ordersvc.PlaceOrderItem, insertedCoins map[string]int) (*ordersvc.PlacementResult, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type productService interface {
	GetProducts(ctx context.Context, filter *iproductrepo.QueryProductsModel) ([]productsvc.ProductView, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductView, error)
	CreateProduct(ctx context.Context, name, description string, price money.Money, brandID uuid.UUID, stockQuantity int) (*productsvc.ProductView, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, name, description string, price money.Money, stockQuantity int) (*productsvc.ProductView, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetPriceRange(ctx context.Context, brandID *uuid.UUID) (*productsvc.PriceRange, error)
}

type brandService interface {
	GetBrands(ctx context.Context) ([]brand.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*brand.Brand, error)
	CreateBrand(ctx context.Context, name, description string) (*brand.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*brand.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type coinService interface {
	GetCoins(ctx context.Context) ([]coin.Coin, error)
}

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	orderSvc   orderService
	productSvc productService
	brandSvc   brandService
	coinSvc    coinService
}

func NewHTTPTransport(
	orderSvc orderService,
	productSvc productService,
	brandSvc brandService,
	coinSvc coinService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:     server,
		router:     router,
		orderSvc:   orderSvc,
		productSvc: productSvc,
		brandSvc:   brandSvc,
		coinSvc:    coinSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/brands", func(r chi.Router) {
			r.Get("/", h.listBrands)
			r.Post("/", h.createBrand)
			r.Get("/{id}", h.getBrand)
			r.Put("/{id}", h.updateBrand)
			r.Delete("/{id}", h.deleteBrand)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/price-range", h.priceRange)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		r.Get("/coins", h.listCoins)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.placeOrder)
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
		})
	})
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	productshandler.List(w, r, h.productSvc)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	productshandler.Get(w, r, h.productSvc)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	productshandler.Create(w, r, h.productSvc)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	productshandler.Update(w, r, h.productSvc)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productshandler.Delete(w, r, h.productSvc)
}

func (h *HTTPTransport) priceRange(w http.ResponseWriter, r *http.Request) {
	productshandler.PriceRange(w, r, h.productSvc)
}

func (h *HTTPTransport) listBrands(w http.ResponseWriter, r *http.Request) {
	brandshandler.List(w, r, h.brandSvc)
}

func (h *HTTPTransport) getBrand(w http.ResponseWriter, r *http.Request) {
	brandshandler.Get(w, r, h.brandSvc)
}

func (h *HTTPTransport) createBrand(w http.ResponseWriter, r *http.Request) {
	brandshandler.Create(w, r, h.brandSvc)
}

func (h *HTTPTransport) updateBrand(w http.ResponseWriter, r *http.Request) {
	brandshandler.Update(w, r, h.brandSvc)
}

func (h *HTTPTransport) deleteBrand(w http.ResponseWriter, r *http.Request) {
	brandshandler.Delete(w, r, h.brandSvc)
}

func (h *HTTPTransport) listCoins(w http.ResponseWriter, r *http.Request) {
	coinshandler.List(w, r, h.coinSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
