package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/binder/internal/http/catalog"
	"github.com/MrJamesThe3rd/binder/internal/http/importcsv"
	"github.com/MrJamesThe3rd/binder/internal/http/inventory"
	"github.com/MrJamesThe3rd/binder/internal/http/report"
	"github.com/MrJamesThe3rd/binder/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Authenticate resolves the caller for every /api/v1 route.
	Authenticate func(http.Handler) http.Handler
}

type Handlers struct {
	Cart         *transaction.CartHandler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Inventory    *inventory.Handler
	Catalog      *catalog.Handler
	Reports      *report.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Authenticate != nil {
			r.Use(opts.Authenticate)
		}

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Cart.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Inventory.Routes(r)
		})

		r.Route("/catalog", h.Catalog.Routes)
		r.Route("/reports", h.Reports.Routes)
	})

	return router
}
