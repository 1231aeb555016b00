package transaction

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

type CartService interface {
	AddToCart(ctx context.Context, buyerID, userCardID uuid.UUID) (uuid.UUID, error)
	RemoveFromCart(ctx context.Context, buyerID, userCardID uuid.UUID) error
	Carts(ctx context.Context, buyerID uuid.UUID) ([]*transaction.Transaction, error)
	CartStatus(ctx context.Context, caller uuid.UUID, userCardIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type Names interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// CartHandler serves the buyer's view of their open and pending transactions.
type CartHandler struct {
	svc   CartService
	names Names
}

func NewCartHandler(svc CartService, names Names) *CartHandler {
	return &CartHandler{svc: svc, names: names}
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.carts)
	r.Post("/items", h.add)
	r.Delete("/items/{userCardID}", h.remove)
	r.Post("/status", h.status)
}

type addRequest struct {
	UserCardID uuid.UUID `json:"user_card_id"`
}

type addResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserCardID == uuid.Nil {
		http.Error(w, "user_card_id is required", http.StatusBadRequest)
		return
	}

	id, err := h.svc.AddToCart(r.Context(), caller, req.UserCardID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, addResponse{TransactionID: id})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	cardID, ok := respond.PathID(w, chi.URLParam(r, "userCardID"))
	if !ok {
		return
	}

	if err := h.svc.RemoveFromCart(r.Context(), caller, cardID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) carts(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	txs, err := h.svc.Carts(r.Context(), caller)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	sellers := make([]uuid.UUID, len(txs))
	for i, t := range txs {
		sellers[i] = t.SellerID
	}

	names, err := h.names.DisplayNames(r.Context(), sellers)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]cartResponse, len(txs))
	for i, t := range txs {
		resp[i] = toCartResponse(t, names[t.SellerID])
	}

	respond.JSON(w, http.StatusOK, resp)
}

type statusRequest struct {
	UserCardIDs []uuid.UUID `json:"user_card_ids"`
}

func (h *CartHandler) status(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.svc.CartStatus(r.Context(), caller, req.UserCardIDs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, status)
}
