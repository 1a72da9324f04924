package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iorderrepo"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/iproductrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/orderitem"
	"github.com/vendlabs/vending-svc/internal/service/models/product"
	"github.com/vendlabs/vending-svc/internal/service/services/ordersvc"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Write maps a service error to an HTTP status and writes a JSON body.
// Business failures are distinguished from infrastructure faults: the former
// get 4xx, the latter a generic 500 without leaking internals.
func Write(w http.ResponseWriter, err error) {
	status := statusFor(err)

	body := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		slog.Error("Unhandled service error", "error", err)
		body.Error = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		slog.Error("Error writing error response", "error", encErr)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, iproductrepo.ErrProductNotFound),
		errors.Is(err, ibrandrepo.ErrBrandNotFound),
		errors.Is(err, iorderrepo.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ordersvc.ErrInsufficientStock),
		errors.Is(err, ordersvc.ErrInsufficientPayment),
		errors.Is(err, ordersvc.ErrChangeUnavailable),
		errors.Is(err, ordersvc.ErrPlacementContention):
		return http.StatusConflict
	case errors.Is(err, ordersvc.ErrEmptyOrder),
		errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, currency.ErrInvalidCurrency),
		errors.Is(err, coin.ErrNegativeCount),
		errors.Is(err, orderitem.ErrInvalidQuantity),
		errors.Is(err, product.ErrBlankName),
		errors.Is(err, product.ErrNegativeStock),
		errors.Is(err, brand.ErrBlankName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
