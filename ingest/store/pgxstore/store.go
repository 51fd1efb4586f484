package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxc "github.com/zolstein/pgx-collect"

	"github.com/badgeth/the-graph-indexer-badges/ingest/store/dbrow"
	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// Sentinel errors for store operations
var (
	ErrTransactionFailed     = errors.New("transaction failed")
	ErrUpsertFailed          = errors.New("upsert operation failed")
	ErrInsertFailed          = errors.New("insert operation failed")
	ErrCheckpointFailed      = errors.New("checkpoint update failed")
	ErrLastProcessedIDFailed = errors.New("failed to get last processed ID")
	ErrLoadFailed            = errors.New("record load failed")
)

// SQL queries
const (
	lastProcessedIDSQL = "SELECT COALESCE(last_id, 0) FROM ingest_checkpoint"

	selectIndexerSQL = `
		SELECT id, own_stake, delegated_stake, delegation_pool_shares, allocated_stake,
		       maximum_delegation, is_over_delegated, allocation_ratio, delegation_ratio,
		       indexing_reward_cut_ratio, query_fee_cut_ratio, monthly_delegator_reward_rate,
		       delegator_parameter_cooldown_block, last_snapshot_id, created_at
		FROM indexers
		WHERE id = $1`

	selectSnapshotSQL = `
		SELECT id, indexer_id, period, own_stake_delta, delegated_stake_delta,
		       pool_rewards, parameter_update_count, created_at
		FROM indexer_snapshots
		WHERE id = $1`

	selectDelegatedStakeSQL = `
		SELECT id, indexer_id, delegator_id, created_at_block, created_at
		FROM delegated_stakes
		WHERE id = $1`

	upsertIndexerSQL = `
		INSERT INTO indexers (
			id, own_stake, delegated_stake, delegation_pool_shares, allocated_stake,
			maximum_delegation, is_over_delegated, allocation_ratio, delegation_ratio,
			indexing_reward_cut_ratio, query_fee_cut_ratio, monthly_delegator_reward_rate,
			delegator_parameter_cooldown_block, last_snapshot_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			own_stake = EXCLUDED.own_stake,
			delegated_stake = EXCLUDED.delegated_stake,
			delegation_pool_shares = EXCLUDED.delegation_pool_shares,
			allocated_stake = EXCLUDED.allocated_stake,
			maximum_delegation = EXCLUDED.maximum_delegation,
			is_over_delegated = EXCLUDED.is_over_delegated,
			allocation_ratio = EXCLUDED.allocation_ratio,
			delegation_ratio = EXCLUDED.delegation_ratio,
			indexing_reward_cut_ratio = EXCLUDED.indexing_reward_cut_ratio,
			query_fee_cut_ratio = EXCLUDED.query_fee_cut_ratio,
			monthly_delegator_reward_rate = EXCLUDED.monthly_delegator_reward_rate,
			delegator_parameter_cooldown_block = EXCLUDED.delegator_parameter_cooldown_block,
			last_snapshot_id = EXCLUDED.last_snapshot_id`

	upsertSnapshotSQL = `
		INSERT INTO indexer_snapshots (
			id, indexer_id, period, own_stake_delta, delegated_stake_delta,
			pool_rewards, parameter_update_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			own_stake_delta = EXCLUDED.own_stake_delta,
			delegated_stake_delta = EXCLUDED.delegated_stake_delta,
			pool_rewards = EXCLUDED.pool_rewards,
			parameter_update_count = EXCLUDED.parameter_update_count`

	insertDelegatedStakeSQL = `
		INSERT INTO delegated_stakes (id, indexer_id, delegator_id, created_at_block, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	insertParameterUpdateSQL = `
		INSERT INTO parameter_updates (
			id, indexer_id, indexing_reward_cut_ratio, query_fee_cut_ratio,
			effective_block, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	setCheckpointSQL = `
		INSERT INTO ingest_checkpoint (single_row, last_id) VALUES (TRUE, $1)
		ON CONFLICT (single_row) DO UPDATE SET last_id = $1`
)

// Store implements the ingest.Store interface using pgx
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL store with an existing connection pool
// Returns the store and a closer function
func New(pool *pgxpool.Pool) (*Store, func()) {
	store := &Store{pool: pool}
	closer := func() {
		pool.Close()
	}
	return store, closer
}

// LastProcessedID returns the ID of the last staking event folded into the
// database (checkpoint)
func (s *Store) LastProcessedID(ctx context.Context) (int64, error) {
	var lastID int64
	err := s.pool.QueryRow(ctx, lastProcessedIDSQL).Scan(&lastID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLastProcessedIDFailed, err)
	}
	return lastID, nil
}

// LoadIndexer fetches one indexer aggregate by address; a nil indexer with a
// nil error means the address has not been seen yet
func (s *Store) LoadIndexer(ctx context.Context, id string) (*staking.Indexer, error) {
	rows, err := s.pool.Query(ctx, selectIndexerSQL, id)
	if err != nil {
		return nil, fmt.Errorf("%w: indexer %s: %w", ErrLoadFailed, id, err)
	}

	row, err := pgxc.CollectOneRow(rows, pgxc.RowToStructByName[dbrow.Indexer])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: indexer %s: %w", ErrLoadFailed, id, err)
	}

	return row.ToStaking(), nil
}

// LoadSnapshot fetches one monthly snapshot by ID; a nil snapshot with a nil
// error means no activity has been recorded for that period
func (s *Store) LoadSnapshot(ctx context.Context, id string) (*staking.Snapshot, error) {
	rows, err := s.pool.Query(ctx, selectSnapshotSQL, id)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %w", ErrLoadFailed, id, err)
	}

	row, err := pgxc.CollectOneRow(rows, pgxc.RowToStructByName[dbrow.Snapshot])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %w", ErrLoadFailed, id, err)
	}

	return row.ToStaking(), nil
}

// LoadDelegatedStake fetches one (indexer, delegator) identity record by ID;
// a nil record with a nil error means the pair has never delegated
func (s *Store) LoadDelegatedStake(ctx context.Context, id string) (*staking.DelegatedStake, error) {
	rows, err := s.pool.Query(ctx, selectDelegatedStakeSQL, id)
	if err != nil {
		return nil, fmt.Errorf("%w: delegated stake %s: %w", ErrLoadFailed, id, err)
	}

	row, err := pgxc.CollectOneRow(rows, pgxc.RowToStructByName[dbrow.DelegatedStake])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: delegated stake %s: %w", ErrLoadFailed, id, err)
	}

	return row.ToStaking(), nil
}

// SaveBatch persists every record a ledger touched and advances the ingest
// checkpoint in the same transaction. A batch where every event filtered out
// still moves the checkpoint, so the watermark reflects the last event
// examined rather than the last one that changed state.
func (s *Store) SaveBatch(ctx context.Context, changes staking.ChangeSet, checkpointID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // No-op if commit succeeds

	// Indexers and snapshots are mutable aggregates: replaying a batch after
	// a crash must overwrite the partial state, so they upsert. Delegated
	// stakes and parameter updates are written once and never change, so
	// replays skip them.
	for _, ix := range changes.Indexers {
		if _, err := tx.Exec(ctx, upsertIndexerSQL, dbrow.IndexerToArgs(ix)...); err != nil {
			return fmt.Errorf("%w: indexer %s: %w", ErrUpsertFailed, ix.ID, err)
		}
	}

	for _, snap := range changes.Snapshots {
		if _, err := tx.Exec(ctx, upsertSnapshotSQL, dbrow.SnapshotToArgs(snap)...); err != nil {
			return fmt.Errorf("%w: snapshot %s: %w", ErrUpsertFailed, snap.ID, err)
		}
	}

	for _, ds := range changes.DelegatedStakes {
		if _, err := tx.Exec(ctx, insertDelegatedStakeSQL, dbrow.DelegatedStakeToArgs(ds)...); err != nil {
			return fmt.Errorf("%w: delegated stake %s: %w", ErrInsertFailed, ds.ID, err)
		}
	}

	for _, pu := range changes.ParameterUpdates {
		if _, err := tx.Exec(ctx, insertParameterUpdateSQL, dbrow.ParameterUpdateToArgs(pu)...); err != nil {
			return fmt.Errorf("%w: parameter update %s: %w", ErrInsertFailed, pu.ID, err)
		}
	}

	// Update checkpoint (singleton table with proper upsert)
	if _, err := tx.Exec(ctx, setCheckpointSQL, checkpointID); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointFailed, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return nil
}
