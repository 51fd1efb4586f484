package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/badgeth/the-graph-indexer-badges/pkg/logger"
	"github.com/badgeth/the-graph-indexer-badges/pkg/pgxdb"
	"github.com/badgeth/the-graph-indexer-badges/web/config"
	"github.com/badgeth/the-graph-indexer-badges/web/handler"
	"github.com/badgeth/the-graph-indexer-badges/web/store/pgxstore"
)

var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load configuration, .env first if present
	_ = godotenv.Load()
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Indexer API service starting",
		slog.String("version", version),
		slog.String("date", date),
	)

	// Initialize database connection
	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize store
	store, storeCloser := pgxstore.New(db)
	defer storeCloser()

	// Create HTTP server
	mux := http.NewServeMux()

	// Register handlers with real store
	indexersHandler := handler.NewGrtGetIndexers(store)
	indexersHandler.AddRoutes(mux)

	indexerHandler := handler.NewGrtGetIndexer(store)
	indexerHandler.AddRoutes(mux)

	// Wrap with logging middleware
	loggedMux := logger.NewMiddleware(log)(mux)

	// Create server address
	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)

	server := &http.Server{
		Addr:    addr,
		Handler: loggedMux,
	}

	// Start server in a goroutine
	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.InfoContext(ctx, "Server exited gracefully")
}
