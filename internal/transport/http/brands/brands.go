package brands

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
	"github.com/vendlabs/vending-svc/internal/transport/http/httperr"
)

type service interface {
	GetBrands(ctx context.Context) ([]brand.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*brand.Brand, error)
	CreateBrand(ctx context.Context, name, description string) (*brand.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*brand.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type brandRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

func (r *brandRequest) Validate() error {
	return validator.New().Struct(r)
}

func List(w http.ResponseWriter, r *http.Request, service service) {
	result, err := service.GetBrands(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing brands", "error", err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Get(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	result, err := service.GetBrand(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting brand", "error", err, "brand_id", id)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Create(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decode(w, r)
	if !ok {
		return
	}

	result, err := service.CreateBrand(r.Context(), req.Name, req.Description)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating brand", "error", err)

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

	result, err := service.UpdateBrand(r.Context(), id, req.Name, req.Description)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating brand", "error", err, "brand_id", id)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func Delete(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := service.DeleteBrand(r.Context(), id); err != nil {
		httperr.Write(w, err)
		slog.Error("Error deleting brand", "error", err, "brand_id", id)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error parsing brand id", "error", err)

		return uuid.Nil, false
	}

	return id, true
}

func decode(w http.ResponseWriter, r *http.Request) (*brandRequest, bool) {
	req := &brandRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding brand request", "error", err)

		return nil, false
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating brand request", "error", err)

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
