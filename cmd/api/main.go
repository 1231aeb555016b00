package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/binder/internal/catalog/store"
	"github.com/MrJamesThe3rd/binder/internal/config"
	"github.com/MrJamesThe3rd/binder/internal/conversation"
	conversationStore "github.com/MrJamesThe3rd/binder/internal/conversation/store"
	"github.com/MrJamesThe3rd/binder/internal/database"
	"github.com/MrJamesThe3rd/binder/internal/events"
	binderHttp "github.com/MrJamesThe3rd/binder/internal/http"
	"github.com/MrJamesThe3rd/binder/internal/http/auth"
	catalogHandler "github.com/MrJamesThe3rd/binder/internal/http/catalog"
	importHandler "github.com/MrJamesThe3rd/binder/internal/http/importcsv"
	inventoryHandler "github.com/MrJamesThe3rd/binder/internal/http/inventory"
	reportHandler "github.com/MrJamesThe3rd/binder/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/binder/internal/http/transaction"
	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
	inventoryStore "github.com/MrJamesThe3rd/binder/internal/inventory/store"
	"github.com/MrJamesThe3rd/binder/internal/profile"
	profileStore "github.com/MrJamesThe3rd/binder/internal/profile/store"
	"github.com/MrJamesThe3rd/binder/internal/report"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
	txStore "github.com/MrJamesThe3rd/binder/internal/transaction/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Auth.Secret == "" {
		return errors.New("AUTH_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		ConnLifetime: cfg.DB.ConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}

	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Error("failed to close kafka producer", "error", err)
			}
		}()
	}

	router := binderHttp.New(binderHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Authenticate:   auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer).Middleware,
	}, handlers(cfg, db, publisher))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "kafka", publisher != nil, "redis", cfg.Redis.Addr != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newPublisher(cfg *config.Config) (*events.KafkaPublisher, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	publisher, err := events.Dial(cfg.Events.Brokers, cfg.App.Name, cfg.Events.Topic)
	if err != nil {
		return nil, err
	}

	return publisher, nil
}

func newProfileCache(cfg *config.Config) profile.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}

	return profile.NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}))
}

func handlers(cfg *config.Config, db *sql.DB, publisher *events.KafkaPublisher) binderHttp.Handlers {
	var txEvents transaction.Publisher
	if publisher != nil {
		txEvents = publisher
	}

	var (
		inventoryService    = inventory.NewService(inventoryStore.New(db))
		catalogService      = catalog.NewService(catalogStore.New(db))
		transactionService  = transaction.NewService(txStore.New(db), inventoryService, txEvents)
		conversationService = conversation.NewService(conversationStore.New(db), transactionService)
		profileService      = profile.NewService(profileStore.New(db), newProfileCache(cfg), cfg.Redis.ProfileTTL)
		importService       = importer.NewService(catalogService, inventoryService, cfg.Import.Workers)
		reportService       = report.NewService(transactionService, profileService)
	)

	return binderHttp.Handlers{
		Cart:         txHandler.NewCartHandler(transactionService, profileService),
		Transactions: txHandler.NewHandler(transactionService, conversationService),
		Import:       importHandler.NewHandler(importService, cfg.Import.MaxUploadSize),
		Inventory:    inventoryHandler.NewHandler(inventoryService),
		Catalog:      catalogHandler.NewHandler(catalogService),
		Reports:      reportHandler.NewHandler(reportService),
	}
}
