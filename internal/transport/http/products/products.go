package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/services/productsvc"
	"github.com/vendlabs/vending-svc/internal/transport/http/httperr"
)

type service interface {
	GetProducts(ctx context.Context, filter *iproductrepo.QueryProductsModel) ([]productsvc.ProductView, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductView, error)
	CreateProduct(ctx context.Context, name, description string, price money.Money, brandID uuid.UUID, stockQuantity int) (*productsvc.ProductView, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, name, description string, price money.Money, stockQuantity int) (*productsvc.ProductView, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetPriceRange(ctx context.Context, brandID *uuid.UUID) (*productsvc.PriceRange, error)
}

type queryProductsRequest struct {
	BrandID  string `schema:"brandId,omitempty"`
	MinPrice string `schema:"minPrice,omitempty"`
	MaxPrice string `schema:"maxPrice,omitempty"`
}

func (q *queryProductsRequest) toModel() (*iproductrepo.QueryProductsModel, error) {
	filter := &iproductrepo.QueryProductsModel{}

	if q.BrandID != "" {
		id, err := uuid.Parse(q.BrandID)
		if err != nil {
			return nil, err
		}
		filter.BrandID = &id
	}
	if q.MinPrice != "" {
		d, err := decimal.NewFromString(q.MinPrice)
		if err != nil {
			return nil, err
		}
		filter.MinPrice = &d
	}
	if q.MaxPrice != "" {
		d, err := decimal.NewFromString(q.MaxPrice)
		if err != nil {
			return nil, err
		}
		filter.MaxPrice = &d
	}

	return filter, nil
}

type productRequest struct {
	Name          string          `json:"name"          validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"         validate:"required"`
	PriceCurrency string          `json:"priceCurrency"`
	BrandID       uuid.UUID       `json:"brandId"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
}

func (r *productRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *productRequest) price() (money.Money, error) {
	cur := currency.Default
	if r.PriceCurrency != "" {
		var err error
		cur, err = currency.ParseCurrency(r.PriceCurrency)
		if err != nil {
			return money.Money{}, err
		}
	}

	return money.New(r.Price, cur)
}

func List(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error parsing product filter", "error", err)

		return
	}

	result, err := service.GetProducts(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing products", "error", err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Get(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	result, err := service.GetProduct(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting product", "error", err, "product_id", id)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Create(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decode(w, r)
	if !ok {
		return
	}

	price, err := req.price()
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error parsing product price", "error", err)

		return
	}

	result, err := service.CreateProduct(r.Context(), req.Name, req.Description, price, req.BrandID, req.StockQuantity)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating product", "error", err)

		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func Update(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := decode(w, r)
	if !ok {
		return
	}

	price, err := req.price()
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error parsing product price", "error", err)

		return
	}

	result, err := service.UpdateProduct(r.Context(), id, req.Name, req.Description, price, req.StockQuantity)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating product", "error", err, "product_id", id)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Delete(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := service.DeleteProduct(r.Context(), id); err != nil {
		httperr.Write(w, err)
		slog.Error("Error deleting product", "error", err, "product_id", id)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func PriceRange(w http.ResponseWriter, r *http.Request, service service) {
	var brandID *uuid.UUID
	if raw := r.URL.Query().Get("brandId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			slog.Error("Error parsing brand id", "error", err)

			return
		}
		brandID = &id
	}

	result, err := service.GetPriceRange(r.Context(), brandID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting price range", "error", err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error parsing product id", "error", err)

		return uuid.Nil, false
	}

	return id, true
}

func decode(w http.ResponseWriter, r *http.Request) (*productRequest, bool) {
	req := &productRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding product request", "error", err)

		return nil, false
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating product request", "error", err)

		return nil, false
	}

	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
