package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/report"
)

type Service interface {
	Sales(ctx context.Context, sellerID uuid.UUID, start, end time.Time) ([]report.Row, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/sales", h.sales)
}

// sales returns the caller's completed sales as CSV, or as a text digest
// with format=summary.
func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	start, ok := dateParam(w, r, "start_date")
	if !ok {
		return
	}

	end, ok := dateParam(w, r, "end_date")
	if !ok {
		return
	}

	if !end.IsZero() {
		// Inclusive of the whole end day.
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	rows, err := h.svc.Sales(r.Context(), caller, start, end)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "summary" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if _, err := w.Write([]byte(report.Summary(rows))); err != nil {
			slog.Error("failed to write summary", "error", err)
		}

		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(start, end)))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}

func dateParam(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Time{}, true
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		http.Error(w, key+" must be YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}

	return t, true
}
