package ingest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgeth/the-graph-indexer-badges/ingest"
	"github.com/badgeth/the-graph-indexer-badges/pkg/graphfeed"
	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// TestServiceBackfillBehavior tests core backfill business logic
func TestServiceBackfillBehavior(t *testing.T) {
	t.Parallel()

	t.Run("it folds and stores staking events from the feed", func(t *testing.T) {
		t.Parallel()

		// Arrange
		expectedEvents := []graphfeed.StakingEvent{stakeEvent(1), stakeEvent(2)}
		server := feedWithStakingEvents(expectedEvents...)
		defer server.Close()

		savedBatchesCh, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		done := runBackfillUntilComplete(t, svc)
		<-done

		// Assert
		assertIndexerStakeSaved(t, savedBatchesCh, expectedEvents)
		assertCheckpointAdvancedTo(t, store, 2)
	})

	t.Run("it updates checkpoint after successful batch", func(t *testing.T) {
		t.Parallel()

		// Arrange
		expectedEvent := stakeEvent(5)
		server := feedWithStakingEvents(expectedEvent)
		defer server.Close()

		_, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		done := runBackfillUntilComplete(t, svc)
		<-done

		// Assert
		assertCheckpointAdvancedTo(t, store, 5)
	})

	t.Run("it processes multiple batches sequentially", func(t *testing.T) {
		t.Parallel()

		// Arrange
		expectedEvents := []graphfeed.StakingEvent{stakeEvent(1), stakeEvent(2), stakeEvent(3)}
		server := feedWithStakingEvents(expectedEvents...)
		defer server.Close()

		savedBatchesCh, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		done := runBackfillUntilComplete(t, svc)
		<-done

		// Assert
		assertIndexerStakeSaved(t, savedBatchesCh, expectedEvents)
		assertCheckpointAdvancedTo(t, store, 3)
	})

	t.Run("it folds delegation events into pool accounting", func(t *testing.T) {
		t.Parallel()

		// Arrange
		expectedEvent := delegatedEvent(4)
		server := feedWithStakingEvents(expectedEvent)
		defer server.Close()

		savedBatchesCh, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		done := runBackfillUntilComplete(t, svc)
		<-done

		// Assert
		assertDelegationPoolRecorded(t, savedBatchesCh, expectedEvent)
	})

	t.Run("it advances the checkpoint past events that change nothing", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithStakingEvents(withdrawnEvent(7))
		defer server.Close()

		savedBatchesCh, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		done := runBackfillUntilComplete(t, svc)
		<-done

		// Assert
		assertChangeSetsEmpty(t, savedBatchesCh)
		assertCheckpointAdvancedTo(t, store, 7)
	})

	t.Run("it rejects a batch containing a malformed event", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithStakingEvents(malformedEvent(8))
		defer server.Close()

		_, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		errorCh := runBackfillExpectingError(t, svc)

		// Assert
		assertBackfillFailedWithConversionError(t, errorCh)
		assertCheckpointAdvancedTo(t, store, 0)
	})

	t.Run("it reports save failures without advancing the checkpoint", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithStakingEvents(stakeEvent(1))
		defer server.Close()

		store := storeFailingOnSave()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		errorCh := runBackfillExpectingError(t, svc)

		// Assert
		assertBackfillFailedWithSaveError(t, errorCh)
		assertCheckpointAdvancedTo(t, store, 0)
	})

	t.Run("it handles feed errors during backfill", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedReturningError()
		defer server.Close()

		_, store := storeCapturingBatches()
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		errorCh := runBackfillExpectingError(t, svc)

		// Assert
		assertBackfillFailedWithFeedError(t, errorCh)
	})
}

// TestServicePollingBehavior tests core polling business logic
func TestServicePollingBehavior(t *testing.T) {
	t.Parallel()

	t.Run("it polls at configured intervals after backfill", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithPollingResponses(emptyPoll(), pollWithEvent(1))
		defer server.Close()

		store := storeWithCheckpoint(0)
		clock, svc := clockControlledPolling(server, store)

		// Act
		cycles := runPollingCycles(t, svc, clock, 2)

		// Assert
		assertEmptyPollOccurred(t, cycles[0])
		assertPollFoundEvents(t, cycles[1], 1)
	})

	t.Run("it continues from last checkpoint during polling", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithPollingResponses(pollWithEvent(6))
		defer server.Close()

		store := storeWithCheckpoint(5) // Start with checkpoint at 5
		clock, svc := clockControlledPolling(server, store)

		// Act
		cycles := runPollingCycles(t, svc, clock, 1)

		// Assert
		assertPollFoundEvents(t, cycles[0], 1)
		assertCheckpointAdvancedTo(t, store, 6)
	})

	t.Run("it handles feed errors during polling", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithPollingErrors()
		defer server.Close()

		store := storeWithCheckpoint(0)
		clock, svc := clockControlledPolling(server, store)

		// Act
		errorCh := runPollingExpectingError(t, svc, clock)

		// Assert
		assertPollingFailedWithFeedError(t, errorCh)
	})
}

// TestServiceEventEmission tests observability and event emission
func TestServiceEventEmission(t *testing.T) {
	t.Parallel()

	t.Run("it emits backfill lifecycle events", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithStakingEvents(stakeEvent(1))
		defer server.Close()

		store := storeWithCheckpoint(0)
		svc := ingestWithChunkSize(1)(server, store)

		// Act
		events := runBackfillCapturingEvents(t, svc)

		// Assert
		assertBackfillStartedEvent(t, events.started)
		assertBackfillSyncCompletedEvents(t, events.syncCompleted, 1)
		assertBackfillDoneEvent(t, events.done, 1)
	})

	t.Run("it emits polling lifecycle events", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithPollingResponses(pollWithEvent(1))
		defer server.Close()

		store := storeWithCheckpoint(0)
		clock, svc := clockControlledPolling(server, store)

		// Act
		events := runPollingCapturingEvents(t, svc, clock)

		// Assert
		assertPollingStartedEvent(t, events.started)
		assertPollingCycleEvent(t, events.cycle, 1)
	})

	t.Run("it emits shutdown events", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := feedWithPollingResponses()
		defer server.Close()

		store := storeWithCheckpoint(0)
		clock, svc := clockControlledPolling(server, store)

		// Act
		shutdown := runPollingCapturingShutdown(t, svc, clock)

		// Assert
		assertShutdownEventOccurred(t, shutdown)
	})
}

// Test data helpers

func stakeEvent(id int64) graphfeed.StakingEvent {
	timestampStr := fmt.Sprintf("2024-01-01T00:%02d:00Z", id)
	timestamp, _ := time.Parse(time.RFC3339, timestampStr)
	return graphfeed.StakingEvent{
		ID:          id,
		Type:        graphfeed.TypeStakeDeposited,
		BlockNumber: uint64(100 + id),
		Timestamp:   timestamp,
		Indexer:     fmt.Sprintf("0x%040x", id),
		Tokens:      fmt.Sprintf("%d000000000000000000", id), // id whole GRT in base units
	}
}

func delegatedEvent(id int64) graphfeed.StakingEvent {
	e := stakeEvent(id)
	e.Type = graphfeed.TypeStakeDelegated
	e.Delegator = fmt.Sprintf("0x%040x", 1000+id)
	e.Shares = e.Tokens
	return e
}

func withdrawnEvent(id int64) graphfeed.StakingEvent {
	e := stakeEvent(id)
	e.Type = graphfeed.TypeStakeWithdrawn
	return e
}

func malformedEvent(id int64) graphfeed.StakingEvent {
	e := stakeEvent(id)
	e.Indexer = "not-an-address"
	return e
}

func feedResponse(events ...graphfeed.StakingEvent) string {
	payload, _ := json.Marshal(events)
	return string(payload)
}

func emptyResponse() string {
	return `[]`
}

func endOfBackfill() string {
	return emptyResponse()
}

func emptyPoll() string {
	return emptyResponse()
}

func pollWithEvent(id int64) string {
	return feedResponse(stakeEvent(id))
}

// Test setup helpers

func createTestClock() *fakeClock {
	return &fakeClock{tick: make(chan time.Time, 10)}
}

func createFeedClient(server *httptest.Server) *graphfeed.Client {
	// Single try so feed-error scenarios fail fast instead of sleeping
	// through retry backoff
	return graphfeed.NewClient(http.DefaultClient, server.URL, graphfeed.WithMaxTries(1))
}

// Domain-specific test builders for expressing business scenarios

func feedWithStakingEvents(events ...graphfeed.StakingEvent) *httptest.Server {
	responses := make([]string, 0, len(events)+1)
	for _, e := range events {
		responses = append(responses, feedResponse(e))
	}
	responses = append(responses, endOfBackfill())
	return createTestServer(responses)
}

func feedWithPollingResponses(pollResponses ...string) *httptest.Server {
	responses := []string{endOfBackfill()}
	responses = append(responses, pollResponses...)
	return createTestServer(responses)
}

func feedWithPollingErrors() *httptest.Server {
	callCount := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount == 1 {
			// First call (backfill) succeeds with empty response
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(endOfBackfill()))
		} else {
			// Subsequent calls (polling) return errors
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "polling error"}`))
		}
	}))
}

func feedReturningError() *httptest.Server {
	return createErrorServer()
}

func storeCapturingBatches() (chan staking.ChangeSet, *mockStore) {
	savedBatchesCh := make(chan staking.ChangeSet, 10)
	store := createTestStore(0, func(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error {
		savedBatchesCh <- changes
		return nil
	})
	return savedBatchesCh, store
}

func storeWithCheckpoint(checkpointID int64) *mockStore {
	return createTestStore(checkpointID, nil)
}

func storeFailingOnSave() *mockStore {
	return createTestStore(0, func(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error {
		return fmt.Errorf("disk full")
	})
}

func ingestWithChunkSize(chunkSize uint64) func(*httptest.Server, *mockStore) *ingest.Service {
	return func(server *httptest.Server, store *mockStore) *ingest.Service {
		return ingest.NewService(createFeedClient(server), store, ingest.WithChunkSize(chunkSize))
	}
}

func clockControlledPolling(server *httptest.Server, store *mockStore) (*fakeClock, *ingest.Service) {
	clock := createTestClock()
	svc := ingest.NewService(createFeedClient(server), store,
		ingest.WithClock(clock),
		ingest.WithPollInterval(1*time.Millisecond),
		ingest.WithChunkSize(1),
	)
	return clock, svc
}

// Domain-specific assertions

func assertIndexerStakeSaved(t *testing.T, savedBatchesCh chan staking.ChangeSet, expected []graphfeed.StakingEvent) {
	t.Helper()
	close(savedBatchesCh)

	saved := make(map[string]*staking.Indexer)
	for changes := range savedBatchesCh {
		for _, ix := range changes.Indexers {
			saved[ix.ID] = ix
		}
	}

	require.Len(t, saved, len(expected), "Expected %d indexers to be saved", len(expected))
	for _, event := range expected {
		ix, ok := saved[event.Indexer]
		require.True(t, ok, "Indexer %s should have been saved", event.Indexer)

		tokens, parsed := new(big.Int).SetString(event.Tokens, 10)
		require.True(t, parsed)
		expectedStake := staking.TokensToDecimal(tokens)
		assert.True(t, expectedStake.Equal(ix.OwnStake),
			"Indexer %s should have own stake %s, got %s", event.Indexer, expectedStake, ix.OwnStake)
	}
}

func assertDelegationPoolRecorded(t *testing.T, savedBatchesCh chan staking.ChangeSet, event graphfeed.StakingEvent) {
	t.Helper()
	close(savedBatchesCh)

	var all []staking.ChangeSet
	for changes := range savedBatchesCh {
		all = append(all, changes)
	}
	require.Len(t, all, 1, "Expected a single change set")

	changes := all[0]
	require.Len(t, changes.Indexers, 1, "Delegation should touch exactly one indexer")
	require.Len(t, changes.DelegatedStakes, 1, "First delegation should create the identity record")

	tokens, parsed := new(big.Int).SetString(event.Tokens, 10)
	require.True(t, parsed)
	expectedPool := staking.TokensToDecimal(tokens)

	ix := changes.Indexers[0]
	assert.Equal(t, event.Indexer, ix.ID, "Indexer ID should be the lowercase event address")
	assert.True(t, expectedPool.Equal(ix.DelegatedStake),
		"Delegated stake should equal the delegated tokens, got %s", ix.DelegatedStake)

	ds := changes.DelegatedStakes[0]
	assert.Equal(t, staking.DelegatedStakeID(ix.ID, event.Delegator), ds.ID,
		"Identity record should be keyed by (indexer, delegator)")
}

func assertChangeSetsEmpty(t *testing.T, savedBatchesCh chan staking.ChangeSet) {
	t.Helper()
	close(savedBatchesCh)

	for changes := range savedBatchesCh {
		assert.True(t, changes.Empty(), "Expected an empty change set, got %+v", changes)
	}
}

func assertCheckpointAdvancedTo(t *testing.T, store *mockStore, expectedID int64) {
	t.Helper()
	checkpoint, err := store.LastProcessedID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, expectedID, checkpoint, "Checkpoint should advance to feed event ID %d", expectedID)
}

func assertEmptyPollOccurred(t *testing.T, cycle ingest.PollingSyncCompleted) {
	t.Helper()
	assert.Equal(t, 0, cycle.Fetched, "Expected empty poll to fetch 0 events")
}

func assertPollFoundEvents(t *testing.T, cycle ingest.PollingSyncCompleted, expectedCount int) {
	t.Helper()
	assert.Equal(t, expectedCount, cycle.Fetched, "Expected poll to fetch %d events", expectedCount)
	assert.Greater(t, cycle.CheckpointID, int64(0), "Expected valid checkpoint ID")
}

func assertBackfillFailedWithFeedError(t *testing.T, errorCh <-chan error) {
	t.Helper()
	backfillError := <-errorCh
	require.NotNil(t, backfillError, "Expected backfill to fail with an error")
	assert.ErrorIs(t, backfillError, ingest.ErrFeedRequestFailed, "Error should be a feed request failure")
}

func assertBackfillFailedWithConversionError(t *testing.T, errorCh <-chan error) {
	t.Helper()
	backfillError := <-errorCh
	require.NotNil(t, backfillError, "Expected backfill to fail with an error")
	assert.ErrorIs(t, backfillError, ingest.ErrConversionFailed, "Error should be a conversion failure")
}

func assertBackfillFailedWithSaveError(t *testing.T, errorCh <-chan error) {
	t.Helper()
	backfillError := <-errorCh
	require.NotNil(t, backfillError, "Expected backfill to fail with an error")
	assert.ErrorIs(t, backfillError, ingest.ErrSaveBatchFailed, "Error should be a save failure")
}

func assertPollingFailedWithFeedError(t *testing.T, errorCh <-chan error) {
	t.Helper()
	pollingError := <-errorCh
	require.NotNil(t, pollingError, "Expected polling to fail with an error")
	assert.ErrorIs(t, pollingError, ingest.ErrFeedRequestFailed, "Error should be a feed request failure")
}

func runBackfillUntilComplete(t *testing.T, svc *ingest.Service) <-chan struct{} {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnBackfillDone(func(e ingest.BackfillDone) { cancel() }),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
	})

	return done
}

func runBackfillExpectingError(t *testing.T, svc *ingest.Service) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)
	errorCh := make(chan error, 1)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnBackfillError(func(e ingest.BackfillError) {
			errorCh <- e.Err
			cancel()
		}),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
		<-done
	})

	return errorCh
}

func runPollingCycles(t *testing.T, svc *ingest.Service, clock *fakeClock, cycleCount int) []ingest.PollingSyncCompleted {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)

	pollCyclesCh := make(chan ingest.PollingSyncCompleted, 10)
	cyclesReceived := 0

	subCloser := ingest.NewSubscriber(events,
		ingest.OnPollingSyncCompleted(func(e ingest.PollingSyncCompleted) {
			pollCyclesCh <- e
			cyclesReceived++
			if cyclesReceived == cycleCount {
				close(pollCyclesCh)
				cancel()
			}
		}),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
		<-done
	})

	// Drive polling ticks
	for range cycleCount {
		clock.tick <- time.Now()
	}

	// Collect cycles from channel
	var cycles []ingest.PollingSyncCompleted
	for cycle := range pollCyclesCh {
		cycles = append(cycles, cycle)
	}

	return cycles
}

func runPollingExpectingError(t *testing.T, svc *ingest.Service, clock *fakeClock) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)
	errorCh := make(chan error, 1)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnPollingError(func(e ingest.PollingError) {
			errorCh <- e.Err
			cancel()
		}),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
		<-done
	})

	// Drive polling tick to trigger error
	clock.tick <- time.Now()

	return errorCh
}

func createTestServer(responses []string) *httptest.Server {
	callCount := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount < len(responses) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(responses[callCount]))
			callCount++
		} else {
			_, _ = w.Write([]byte(emptyResponse())) // Default to empty for extra calls
		}
	}))
}

func createErrorServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "server error"}`))
	}))
}

func createTestStore(lastID int64, onSave func(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error) *mockStore {
	return &mockStore{
		lastID: lastID,
		onSave: onSave,
	}
}

// Mock implementations

// fakeClock implements Clock interface for deterministic testing
type fakeClock struct {
	tick chan time.Time
}

func (f *fakeClock) After(_ time.Duration) <-chan time.Time {
	return f.tick
}

func (f *fakeClock) Now() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// mockStore implements Store interface for testing
type mockStore struct {
	lastID int64
	onSave func(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error
}

// Loader methods report absent records, so every test scenario starts its
// accounting from zero state

func (m *mockStore) LoadIndexer(ctx context.Context, id string) (*staking.Indexer, error) {
	return nil, nil
}

func (m *mockStore) LoadSnapshot(ctx context.Context, id string) (*staking.Snapshot, error) {
	return nil, nil
}

func (m *mockStore) LoadDelegatedStake(ctx context.Context, id string) (*staking.DelegatedStake, error) {
	return nil, nil
}

func (m *mockStore) LastProcessedID(ctx context.Context) (int64, error) {
	return m.lastID, nil
}

func (m *mockStore) SaveBatch(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error {
	if m.onSave != nil {
		err := m.onSave(ctx, changes, checkpointID)
		if err == nil {
			m.lastID = checkpointID
		}
		return err
	}

	m.lastID = checkpointID

	return nil
}

// Event capture types for testing

type capturedBackfillEvents struct {
	started       ingest.BackfillStarted
	syncCompleted []ingest.BackfillSyncCompleted
	done          ingest.BackfillDone
}

type capturedPollingEvents struct {
	started ingest.PollingStarted
	cycle   ingest.PollingSyncCompleted
}

func runBackfillCapturingEvents(t *testing.T, svc *ingest.Service) capturedBackfillEvents {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)

	backfillStartedCh := make(chan ingest.BackfillStarted, 1)
	backfillSyncCompletedCh := make(chan ingest.BackfillSyncCompleted, 10) // Buffer for multiple sync events
	backfillDoneCh := make(chan ingest.BackfillDone, 1)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnBackfillStarted(func(e ingest.BackfillStarted) { backfillStartedCh <- e }),
		ingest.OnBackfillSyncCompleted(func(e ingest.BackfillSyncCompleted) { backfillSyncCompletedCh <- e }),
		ingest.OnBackfillDone(func(e ingest.BackfillDone) {
			backfillDoneCh <- e
			cancel()
		}),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
	})

	<-done

	// Collect all sync completed events
	close(backfillSyncCompletedCh)
	var syncCompleted []ingest.BackfillSyncCompleted
	for event := range backfillSyncCompletedCh {
		syncCompleted = append(syncCompleted, event)
	}

	return capturedBackfillEvents{
		started:       <-backfillStartedCh,
		syncCompleted: syncCompleted,
		done:          <-backfillDoneCh,
	}
}

func runPollingCapturingEvents(t *testing.T, svc *ingest.Service, clock *fakeClock) capturedPollingEvents {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)

	pollingStartedCh := make(chan ingest.PollingStarted, 1)
	pollingCycleCh := make(chan ingest.PollingSyncCompleted, 1)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnPollingStarted(func(e ingest.PollingStarted) { pollingStartedCh <- e }),
		ingest.OnPollingSyncCompleted(func(e ingest.PollingSyncCompleted) {
			pollingCycleCh <- e
			cancel()
		}),
	)

	t.Cleanup(func() {
		subCloser()
		cancel()
		<-done
	})

	// Drive polling tick
	clock.tick <- time.Now()

	return capturedPollingEvents{
		started: <-pollingStartedCh,
		cycle:   <-pollingCycleCh,
	}
}

func runPollingCapturingShutdown(t *testing.T, svc *ingest.Service, clock *fakeClock) ingest.PollingShutdown {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())

	events, done := svc.Start(ctx)

	shutdownCh := make(chan ingest.PollingShutdown, 1)

	subCloser := ingest.NewSubscriber(events,
		ingest.OnPollingStarted(func(e ingest.PollingStarted) {
			// Once polling starts, cancel to trigger shutdown
			cancel()
		}),
		ingest.OnPollingShutdown(func(e ingest.PollingShutdown) {
			shutdownCh <- e
		}),
	)

	t.Cleanup(func() {
		subCloser()
	})

	<-done

	select {
	case shutdown := <-shutdownCh:
		return shutdown
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected shutdown event was not received")
		return ingest.PollingShutdown{} // unreachable
	}
}

func assertBackfillStartedEvent(t *testing.T, event ingest.BackfillStarted) {
	t.Helper()
	assert.False(t, event.StartedAt.IsZero(), "Backfill should have a valid start time")
	assert.GreaterOrEqual(t, event.CheckpointID, int64(0), "Backfill should have a valid starting checkpoint ID")
}

func assertBackfillSyncCompletedEvents(t *testing.T, events []ingest.BackfillSyncCompleted, expectedCount int) {
	t.Helper()
	assert.Len(t, events, expectedCount, "Should emit %d BackfillSyncCompleted events", expectedCount)

	for i, event := range events {
		assert.Greater(t, event.Fetched, 0, "Sync event %d should have fetched some records", i)
		assert.Greater(t, event.Indexers, 0, "Sync event %d should have touched at least one indexer", i)
		assert.GreaterOrEqual(t, event.CheckpointID, int64(0), "Sync event %d should have a valid checkpoint ID", i)
		assert.Greater(t, event.ChunkSize, uint64(0), "Sync event %d should have a valid chunk size", i)
	}
}

func assertBackfillDoneEvent(t *testing.T, event ingest.BackfillDone, expectedTotalProcessed int64) {
	t.Helper()
	assert.Equal(t, expectedTotalProcessed, event.TotalProcessed, "Backfill should process %d events", expectedTotalProcessed)
	assert.True(t, event.Duration > 0, "Backfill duration should be positive")
}

func assertPollingStartedEvent(t *testing.T, event ingest.PollingStarted) {
	t.Helper()
	assert.Equal(t, 1*time.Millisecond, event.Interval, "Polling should start with configured interval")
}

func assertPollingCycleEvent(t *testing.T, event ingest.PollingSyncCompleted, expectedFetched int) {
	t.Helper()
	assert.Equal(t, expectedFetched, event.Fetched, "Polling cycle should fetch %d events", expectedFetched)
}

func assertShutdownEventOccurred(t *testing.T, shutdown ingest.PollingShutdown) {
	t.Helper()
	assert.ErrorIs(t, shutdown.Reason, context.Canceled, "Polling should shutdown due to context cancellation")
}
