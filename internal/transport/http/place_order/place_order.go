package placeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/services/ordersvc"
	"github.com/vendlabs/vending-svc/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, items []ordersvc.PlaceOrderItem, insertedCoins map[string]int) (*ordersvc.PlacementResult, error)
}

// itemInPlaceOrderRequest represents one requested line.
type itemInPlaceOrderRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"  validate:"gt=0"`
}

// placeOrderRequest represents a purchase: requested lines plus the coins
// physically inserted, keyed by denomination.
type placeOrderRequest struct {
	Items         []itemInPlaceOrderRequest `json:"items"         validate:"required,min=1,dive"`
	InsertedCoins map[string]int            `json:"insertedCoins" validate:"required,dive,gte=0"`
}

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *placeOrderRequest) toModel() []ordersvc.PlaceOrderItem {
	items := make([]ordersvc.PlaceOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = ordersvc.PlaceOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return items
}

// PlaceOrder handles the purchase request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	result, err := service.PlaceOrder(r.Context(), req.toModel(), req.InsertedCoins)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error sending response for place order", "error", err)
	}
}
