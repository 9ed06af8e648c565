package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-wallet/config"
	"storefront-wallet/internal/adapter/catalog"
	httpHandler "storefront-wallet/internal/adapter/http/handler"
	pgStorage "storefront-wallet/internal/adapter/storage/postgres"
	redisStorage "storefront-wallet/internal/adapter/storage/redis"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/internal/service"
	"storefront-wallet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage_backend", cfg.Storage.Backend).
		Msg("Starting Storefront Wallet")

	ctx := context.Background()

	// Initialize the snapshot store on the configured backend
	var (
		store          ports.SnapshotStore
		healthCheckers []ports.HealthChecker
	)
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		store = pgStorage.NewSnapshotStore(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	case "redis":
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		store = redisStorage.NewSnapshotStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	default:
		log.Fatal().Str("backend", cfg.Storage.Backend).Msg("Unknown storage backend")
	}

	// Initialize the catalog client
	catalogClient := catalog.New(cfg.Catalog, log)

	// Initialize business services
	walletSvc := service.NewWalletService(store, log)
	cartSvc := service.NewCartService(walletSvc, store, log)

	// Restore persisted state. A failed load leaves the services empty but
	// usable, so the server still comes up.
	if err := walletSvc.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("Wallet hydration failed, starting empty")
	}
	if err := cartSvc.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("Cart hydration failed, starting empty")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		CartSvc:        cartSvc,
		Catalog:        catalogClient,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
