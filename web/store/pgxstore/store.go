package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxc "github.com/zolstein/pgx-collect"

	"github.com/badgeth/the-graph-indexer-badges/web/graph"
	"github.com/badgeth/the-graph-indexer-badges/web/store/dbrow"
)

// Sentinel errors for store operations
var (
	ErrQueryFailed = errors.New("indexer query failed")
)

// IndexersFinder implements indexer querying using pgx
type IndexersFinder struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL indexers finder with an existing connection pool
// Returns the finder and a closer function
func New(pool *pgxpool.Pool) (*IndexersFinder, func()) {
	finder := &IndexersFinder{pool: pool}
	closer := func() {
		pool.Close()
	}
	return finder, closer
}

// FindIndexers queries indexers based on the provided criteria
// Uses LIMIT n+1 technique for efficient pagination without separate count query
func (f *IndexersFinder) FindIndexers(ctx context.Context, criteria graph.IndexersCriteria) (*graph.IndexersPage, error) {
	query, args := NewIndexersQuery().ForCriteria(criteria).Build()

	rows, err := f.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	dbRows, err := pgxc.CollectRows(rows, pgxc.RowToStructByName[dbrow.Indexer])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	// Determine if there are more pages using LIMIT n+1 technique
	hasMore := len(dbRows) > int(criteria.Size)
	if hasMore {
		// Remove the extra record we requested to detect "has more"
		dbRows = dbRows[:criteria.Size]
	}

	indexers := make([]graph.Indexer, len(dbRows))
	for i, dbRow := range dbRows {
		indexers[i] = dbRow.ToGraph()
	}

	return &graph.IndexersPage{
		Indexers: indexers,
		HasMore:  hasMore,
		Number:   criteria.Page,
		Size:     criteria.Size,
	}, nil
}

// FindIndexerByAddress loads a single indexer by its canonical address; a nil
// indexer with a nil error means no record exists
func (f *IndexersFinder) FindIndexerByAddress(ctx context.Context, address graph.Address) (*graph.Indexer, error) {
	rows, err := f.pool.Query(ctx, indexerByAddressQuery, address.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	dbRow, err := pgxc.CollectOneRow(rows, pgxc.RowToStructByName[dbrow.Indexer])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	indexer := dbRow.ToGraph()

	return &indexer, nil
}
