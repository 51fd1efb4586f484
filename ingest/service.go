package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/badgeth/the-graph-indexer-badges/pkg/clock"
	"github.com/badgeth/the-graph-indexer-badges/pkg/graphfeed"
	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// Option configures the Service
// ------------------------------------------------
type Option func(*Service)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithPollInterval sets the polling interval
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) { s.pollInterval = d }
}

// WithChunkSize sets the number of feed events per batch
func WithChunkSize(n uint64) Option {
	return func(s *Service) { s.chunkSize = n }
}

// Service implements two-phase ingestion: backfill then live polling
// ------------------------------------------------------------------
type Service struct {
	feed         Client
	store        Store
	clock        Clock
	pollInterval time.Duration
	chunkSize    uint64
	events       chan Event
}

// NewService constructs a Service with required dependencies and options
// ----------------------------------------------------------------------
// By default, it uses a real clock, 10s poll interval, and 1000 chunk size.
func NewService(feed Client, store Store, opts ...Option) *Service {
	s := &Service{
		feed:         feed,
		store:        store,
		clock:        clock.SystemClock{},
		pollInterval: DefaultPollInterval,
		chunkSize:    DefaultChunkSize,
		events:       make(chan Event, 10),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the ingestion loop and returns the events channel and done
// channel.
//
// Shutdown pattern:
//  1. Cancel context to request shutdown: cancel()
//  2. Service stops producing events and closes events channel
//  3. Wait for complete shutdown: <-done
//
// Example:
//
//	events, done := service.Start(ctx)
//	defer func() {
//	  cancel()    // 1. Request shutdown
//	  <-done      // 2. Wait for complete shutdown
//	}()
//
// The context signals when to stop, the done channel confirms when stopped.
func (s *Service) Start(ctx context.Context) (<-chan Event, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(s.events)
		defer close(done)
		s.run(ctx)
	}()
	return s.events, done
}

// run orchestrates the backfill and polling, respecting context cancellation
// --------------------------------------------------------------------------
func (s *Service) run(ctx context.Context) {
	// Backfill
	start := s.clock.Now()

	// Get starting checkpoint ID for observability
	startingCheckpointID, err := s.store.LastProcessedID(ctx)
	if err != nil {
		s.events <- BackfillError{Err: fmt.Errorf("%w: %w", ErrCheckpointRetrieval, err)}
		return
	}

	s.events <- BackfillStarted{
		StartedAt:    start,
		CheckpointID: startingCheckpointID,
	}

	var total int64
	for {
		result, err := s.syncBatch(ctx, s.chunkSize)
		if err != nil {
			s.events <- BackfillError{Err: err}
			return
		}
		if result.Count == 0 {
			break
		}
		total += int64(result.Count)

		// Emit sync completed event for each batch
		s.events <- BackfillSyncCompleted{
			Fetched:      result.Count,
			Indexers:     result.Indexers,
			CheckpointID: result.CheckpointID,
			ChunkSize:    s.chunkSize,
		}
	}

	stop := s.clock.Now().Sub(start)
	s.events <- BackfillDone{
		TotalProcessed: total,
		Duration:       stop,
	}

	// Polling
	s.events <- PollingStarted{Interval: s.pollInterval}
	for {
		select {
		case <-ctx.Done():
			s.events <- PollingShutdown{Reason: ctx.Err()}
			return
		case <-s.clock.After(s.pollInterval):
			result, err := s.syncBatch(ctx, s.chunkSize)
			if err != nil {
				s.events <- PollingError{Err: err}
				continue
			}

			// Always emit polling sync completed event
			s.events <- PollingSyncCompleted{
				Fetched:      result.Count,
				Indexers:     result.Indexers,
				CheckpointID: result.CheckpointID,
				ChunkSize:    s.chunkSize,
			}
		}
	}
}

// syncBatch fetches the next chunk of feed events, folds it through a fresh
// ledger in feed order, and persists the resulting change set atomically
// together with the advanced checkpoint.
func (s *Service) syncBatch(ctx context.Context, chunkSize uint64) (SyncResult, error) {
	// respect cancellation
	select {
	case <-ctx.Done():
		return SyncResult{}, ctx.Err()
	default:
	}

	// load checkpoint
	checkpointID, err := s.store.LastProcessedID(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", ErrCheckpointRetrieval, err)
	}

	// fetch events past the checkpoint
	req := graphfeed.EventsRequest{
		Limit:         chunkSize,
		IDGreaterThan: checkpointID,
	}
	batch, err := s.feed.GetEvents(ctx, req)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", ErrFeedRequestFailed, err)
	}

	if len(batch) == 0 {
		return SyncResult{Count: 0, CheckpointID: checkpointID}, nil
	}

	// Fold the batch through a fresh ledger; any failure taints the whole
	// batch and nothing is persisted.
	ledger := staking.NewLedger(s.store)
	for _, feedEvent := range batch {
		stakingEvent, err := convertFeedEvent(feedEvent)
		if err != nil {
			return SyncResult{}, fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}

		if err := ledger.Apply(ctx, stakingEvent); err != nil {
			return SyncResult{}, fmt.Errorf("%w: event %d: %w", ErrEventApplyFailed, feedEvent.ID, err)
		}
	}

	// save change set; store advances the checkpoint in the same transaction
	changes := ledger.Changes()
	newCheckpointID := batch[len(batch)-1].ID
	if err := s.store.SaveBatch(ctx, changes, newCheckpointID); err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", ErrSaveBatchFailed, err)
	}

	observeBatch(len(batch), len(changes.Indexers), newCheckpointID)

	return SyncResult{
		Count:        len(batch),
		Indexers:     len(changes.Indexers),
		CheckpointID: newCheckpointID,
	}, nil
}
