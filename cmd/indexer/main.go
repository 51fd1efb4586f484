package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/badgeth/the-graph-indexer-badges/ingest"
	"github.com/badgeth/the-graph-indexer-badges/ingest/config"
	"github.com/badgeth/the-graph-indexer-badges/ingest/store/pgxstore"
	"github.com/badgeth/the-graph-indexer-badges/migrator"
	"github.com/badgeth/the-graph-indexer-badges/pkg/graphfeed"
	"github.com/badgeth/the-graph-indexer-badges/pkg/logger"
	"github.com/badgeth/the-graph-indexer-badges/pkg/pgxdb"
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

	// Database connection
	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply migrations
	log.InfoContext(ctx, "Applying database migrations")
	if err := migrator.ApplyMigrations(db, "./migrator/migrations"); err != nil {
		log.ErrorContext(ctx, "Failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Seed the checkpoint row if no previous run left one behind
	if err := migrator.InitializeCheckpoint(ctx, db, cfg.InitialCheckpoint); err != nil {
		log.ErrorContext(ctx, "Failed to initialize checkpoint", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize store
	store, storeCloser := pgxstore.New(db)
	defer storeCloser()

	// HTTP client & feed client
	httpClient := &http.Client{Timeout: cfg.HttpClientTimeout}
	feedClient := graphfeed.NewClient(httpClient, cfg.FeedAPIURL)

	// Create ingest service
	ingestService := ingest.NewService(
		feedClient,
		store,
		ingest.WithChunkSize(cfg.ChunkSize),
		ingest.WithPollInterval(cfg.PollInterval),
	)

	// Expose Prometheus metrics on a separate listener
	metricsCloser := startMetricsServer(ctx, cfg.MetricsAddr, log)
	defer metricsCloser()

	// Start service
	log.InfoContext(ctx, "Starting indexer ingest service",
		slog.Uint64("chunkSize", cfg.ChunkSize),
		slog.Int64("initialCheckpoint", cfg.InitialCheckpoint),
	)
	events, done := ingestService.Start(ctx)

	// Subscribe to events for logging
	subCloser := setupEventLogging(ctx, events, log)
	defer subCloser()

	// Wait for shutdown
	<-done
	log.InfoContext(ctx, "Ingest service stopped gracefully")
}

// startMetricsServer serves the Prometheus registry until the returned closer runs
func startMetricsServer(ctx context.Context, addr string, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.InfoContext(ctx, "Metrics server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Metrics server failed", slog.Any("error", err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}
}

// setupEventLogging configures event handlers using slog directly
func setupEventLogging(ctx context.Context, events <-chan ingest.Event, log *slog.Logger) func() {
	return ingest.NewSubscriber(events,
		ingest.OnBackfillStarted(func(event ingest.BackfillStarted) {
			log.InfoContext(ctx, "Backfill started",
				slog.String("startedAt", event.StartedAt.Format(logger.BritishTimeFormat)),
				slog.Int64("checkpointID", event.CheckpointID),
			)
		}),
		ingest.OnBackfillSyncCompleted(func(event ingest.BackfillSyncCompleted) {
			log.InfoContext(ctx, "Backfill batch completed",
				slog.Int("fetched", event.Fetched),
				slog.Int("indexers", event.Indexers),
				slog.Int64("checkpointID", event.CheckpointID),
				slog.Uint64("chunkSize", event.ChunkSize),
			)
		}),
		ingest.OnBackfillDone(func(event ingest.BackfillDone) {
			log.InfoContext(ctx, "Backfill completed",
				slog.Int64("totalProcessed", event.TotalProcessed),
				slog.Duration("duration", event.Duration),
			)
		}),
		ingest.OnBackfillError(func(event ingest.BackfillError) {
			log.ErrorContext(ctx, "Backfill failed", slog.Any("error", event.Err))
		}),
		ingest.OnPollingStarted(func(event ingest.PollingStarted) {
			log.InfoContext(ctx, "Polling started",
				slog.Duration("interval", event.Interval),
			)
		}),
		ingest.OnPollingSyncCompleted(func(event ingest.PollingSyncCompleted) {
			if event.Fetched > 0 {
				log.InfoContext(ctx, "Polling cycle completed",
					slog.Int("fetched", event.Fetched),
					slog.Int("indexers", event.Indexers),
					slog.Int64("checkpointID", event.CheckpointID),
					slog.Uint64("chunkSize", event.ChunkSize),
				)
			} else {
				log.InfoContext(ctx, "Polling cycle completed, no new events")
			}
		}),
		ingest.OnPollingShutdown(func(event ingest.PollingShutdown) {
			log.InfoContext(ctx, "Polling stopped",
				slog.String("reason", event.Reason.Error()),
			)
		}),
		ingest.OnPollingError(func(event ingest.PollingError) {
			log.ErrorContext(ctx, "Polling failed", slog.Any("error", event.Err))
		}),
	)
}
