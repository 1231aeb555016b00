package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	"github.com/MrJamesThe3rd/binder/internal/conversation"
	"github.com/MrJamesThe3rd/binder/internal/http/auth"
	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
	"github.com/MrJamesThe3rd/binder/internal/money"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

var statuses = []struct {
	err    error
	status int
}{
	{transaction.ErrNotFound, http.StatusNotFound},
	{catalog.ErrCardNotFound, http.StatusNotFound},
	{inventory.ErrNotFound, http.StatusNotFound},
	{transaction.ErrInvalidState, http.StatusConflict},
	{transaction.ErrTransactionLocked, http.StatusConflict},
	{transaction.ErrEmptyCart, http.StatusUnprocessableEntity},
	{transaction.ErrSelfTrade, http.StatusUnprocessableEntity},
	{transaction.ErrValidation, http.StatusUnprocessableEntity},
	{conversation.ErrInvalidMessage, http.StatusUnprocessableEntity},
	{inventory.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{money.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{importer.ErrUnknownLayout, http.StatusUnprocessableEntity},
}

// Status maps a service error onto an HTTP status code.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}

	return http.StatusInternalServerError
}

// Error writes err as a plain-text response. Unmapped errors are logged and
// hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", status)

		return
	}

	http.Error(w, err.Error(), status)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Caller returns the authenticated user or writes 401.
func Caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}

	return id, ok
}

// PathID parses a uuid route parameter value or writes 400.
func PathID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}
