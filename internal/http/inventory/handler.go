package inventory

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/money"
)

type Service interface {
	SetPrice(ctx context.Context, userID, id uuid.UUID, price *int64) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Patch("/{id}/price", h.setPrice)
}

// setPriceRequest carries a decimal price such as "12.50"; null takes the
// card off sale.
type setPriceRequest struct {
	Price *string `json:"price"`
}

type setPriceResponse struct {
	ID    uuid.UUID `json:"id"`
	Price *string   `json:"price"`
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	id, ok := respond.PathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req setPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var price *int64

	if req.Price != nil {
		cents, err := money.ParseCents(*req.Price)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		price = &cents
	}

	if err := h.svc.SetPrice(r.Context(), caller, id, price); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := setPriceResponse{ID: id}
	if price != nil {
		formatted := money.Format(*price)
		resp.Price = &formatted
	}

	respond.JSON(w, http.StatusOK, resp)
}
