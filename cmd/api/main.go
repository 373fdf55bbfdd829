// Command api is the Last Man Standing API server: the tick trigger endpoint
// backing the round-lifecycle engine, the fixture import endpoint, health
// checks, metrics, and the league read surface.
//
// Usage:
//
//	lms-api
//	API_PORT=8080 lms-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Joshmanser1/last-man-standing/internal/api"
	"github.com/Joshmanser1/last-man-standing/internal/api/handler"
	"github.com/Joshmanser1/last-man-standing/internal/cache"
	"github.com/Joshmanser1/last-man-standing/internal/config"
	"github.com/Joshmanser1/last-man-standing/internal/db"
	"github.com/Joshmanser1/last-man-standing/internal/engine"
	"github.com/Joshmanser1/last-man-standing/internal/fpl"
	"github.com/Joshmanser1/last-man-standing/internal/maintenance"
	"github.com/Joshmanser1/last-man-standing/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Schema bootstrap runs before the pool: connections prepare statements
	// against these tables on connect.
	if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.New(pool)

	// FPL result source
	appCache := cache.New(cfg.CacheEnabled)
	fplClient := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, appCache, logger)
	importer := fpl.NewImporter(fplClient, st, logger)

	// Tick engine
	eng := engine.New(st, engine.Config{
		Bucket:          cfg.TickBucket,
		AdvanceFallback: cfg.AdvanceFallback,
		Deadlines:       fpl.NewDeadlines(fplClient),
		Logger:          logger,
	})

	// Start maintenance tickers (self-tick, fixture import sweep)
	go maintenance.Start(ctx, maintenance.NewDeps(eng, st, importer), maintenance.Config{
		TickInterval:   cfg.SelfTickInterval,
		ImportInterval: cfg.ImportInterval,
	}, logger)

	// Create router
	router := api.NewRouter(handler.Deps{
		Store:    st,
		Picks:    st,
		Engine:   eng,
		Importer: importer,
	}, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Last Man Standing API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
