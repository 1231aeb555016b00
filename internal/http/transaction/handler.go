package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/conversation"
	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

type Service interface {
	Get(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error)
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Submit(ctx context.Context, buyerID, id uuid.UUID) (*transaction.Transaction, error)
	Accept(ctx context.Context, sellerID, id uuid.UUID) (*transaction.Transaction, error)
	Complete(ctx context.Context, buyerID, id uuid.UUID) (*transaction.Transaction, error)
	Cancel(ctx context.Context, buyerID, id uuid.UUID, reason string) (*transaction.Transaction, error)
	ClearCart(ctx context.Context, buyerID, id uuid.UUID) error
}

type Conversations interface {
	Messages(ctx context.Context, caller, transactionID uuid.UUID) ([]*conversation.Message, error)
	Post(ctx context.Context, caller, transactionID uuid.UUID, body string) (*conversation.Message, error)
}

type Handler struct {
	svc           Service
	conversations Conversations
}

func NewHandler(svc Service, conversations Conversations) *Handler {
	return &Handler{svc: svc, conversations: conversations}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/submit", h.transition(h.svc.Submit))
	r.Post("/{id}/accept", h.transition(h.svc.Accept))
	r.Post("/{id}/complete", h.transition(h.svc.Complete))
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/clear", h.clear)
	r.Get("/{id}/messages", h.messages)
	r.Post("/{id}/messages", h.postMessage)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	filter := transaction.ListFilter{UserID: caller}
	q := r.URL.Query()

	switch role := transaction.Role(q.Get("role")); role {
	case transaction.RoleNone, transaction.RoleBuyer, transaction.RoleSeller:
		filter.Role = role
	default:
		http.Error(w, "role must be buyer or seller", http.StatusBadRequest)
		return
	}

	if s := q.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			filter.Statuses = append(filter.Statuses, transaction.Status(strings.TrimSpace(part)))
		}
	}

	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"start_date", &filter.StartDate}, {"end_date", &filter.EndDate}} {
		s := q.Get(p.key)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, p.key+" must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		*p.dst = &t
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.params(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

type transitionFunc func(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error)

func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, id, ok := h.params(w, r)
		if !ok {
			return
		}

		t, err := fn(r.Context(), caller, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponse(t))
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.params(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.svc.Cancel(r.Context(), caller, id, req.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.svc.ClearCart(r.Context(), caller, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.params(w, r)
	if !ok {
		return
	}

	msgs, err := h.conversations.Messages(r.Context(), caller, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = toMessageResponse(m)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.params(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.conversations.Post(r.Context(), caller, id, req.Body)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, ok := respond.PathID(w, chi.URLParam(r, "id"))

	return caller, id, ok
}
