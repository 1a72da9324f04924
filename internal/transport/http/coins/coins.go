package coins

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/transport/http/httperr"
)

type service interface {
	GetCoins(ctx context.Context) ([]coin.Coin, error)
}

// List reports the machine's float, largest denomination first.
func List(w http.ResponseWriter, r *http.Request, service service) {
	result, err := service.GetCoins(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing coins", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
