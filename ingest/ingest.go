// Package ingest feeds the staking ledger from a decoded event feed: it
// backfills from the last durable checkpoint until the feed is drained, then
// keeps polling for fresh events. Every batch is folded through a fresh
// ledger and persisted together with the advanced checkpoint in a single
// transaction, so a crash never splits a batch.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/badgeth/the-graph-indexer-badges/pkg/graphfeed"
	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// Sentinel errors for failure cases
var (
	ErrCheckpointRetrieval = errors.New("checkpoint retrieval failed")
	ErrFeedRequestFailed   = errors.New("feed request failed")
	ErrConversionFailed    = errors.New("staking event conversion failed")
	ErrEventApplyFailed    = errors.New("event application failed")
	ErrSaveBatchFailed     = errors.New("save batch failed")
)

// Default configuration values
const (
	DefaultChunkSize    = uint64(1000)
	DefaultPollInterval = 10 * time.Second
)

// Client fetches decoded staking events from the feed
// ---------------------------------------------------
type Client interface {
	GetEvents(ctx context.Context, req graphfeed.EventsRequest) ([]graphfeed.StakingEvent, error)
}

// Store provides persistence for ledger output and the feed checkpoint
type Store interface {
	staking.Loader
	// LastProcessedID returns the ID of the last processed feed event
	LastProcessedID(ctx context.Context) (int64, error)
	// SaveBatch persists a change set and advances the checkpoint to the
	// given feed ID in one transaction.
	SaveBatch(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error
}

// SyncResult contains the results of a sync batch operation
type SyncResult struct {
	Count        int
	Indexers     int
	CheckpointID int64
}

// Clock abstracts time for production and testing
// ------------------------------------------------
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

// Event represents a service lifecycle event
// ------------------------------------------
type Event any

type BackfillDone struct {
	TotalProcessed int64
	Duration       time.Duration
}

type BackfillStarted struct {
	StartedAt    time.Time
	CheckpointID int64
}

type BackfillSyncCompleted struct {
	Fetched      int
	Indexers     int
	CheckpointID int64
	ChunkSize    uint64
}

type BackfillError struct {
	Err error
}

type PollingSyncCompleted struct {
	Fetched      int
	Indexers     int
	CheckpointID int64
	ChunkSize    uint64
}

type PollingStarted struct {
	Interval time.Duration
}

type PollingShutdown struct {
	Reason error // Why shutdown occurred (ctx.Err())
}

type PollingError struct {
	Err error
}
