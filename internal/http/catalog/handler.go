package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	"github.com/MrJamesThe3rd/binder/internal/http/respond"
)

type Service interface {
	Resolve(ctx context.Context, name, setCode string) (*catalog.Card, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cards", h.find)
}

type cardResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	SetCode string    `json:"set_code"`
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	name, set := r.URL.Query().Get("name"), r.URL.Query().Get("set")
	if name == "" || set == "" {
		http.Error(w, "name and set query parameters are required", http.StatusBadRequest)
		return
	}

	card, err := h.svc.Resolve(r.Context(), name, set)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, cardResponse{ID: card.ID, Name: card.Name, SetCode: card.SetCode})
}
