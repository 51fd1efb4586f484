package dbrow

import (
	"time"

	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// DelegatedStake represents an (indexer, delegator) identity record as stored
// in the database
type DelegatedStake struct {
	ID             string    `db:"id"`
	IndexerID      string    `db:"indexer_id"`
	DelegatorID    string    `db:"delegator_id"`
	CreatedAtBlock int64     `db:"created_at_block"`
	CreatedAt      time.Time `db:"created_at"`
}

// ToStaking converts a database row back into the domain record
func (r DelegatedStake) ToStaking() *staking.DelegatedStake {
	return &staking.DelegatedStake{
		ID:             r.ID,
		IndexerID:      r.IndexerID,
		DelegatorID:    r.DelegatorID,
		CreatedAtBlock: uint64(r.CreatedAtBlock),
		CreatedAt:      r.CreatedAt,
	}
}

// DelegatedStakeToArgs flattens a staking delegated stake into positional
// arguments matching the column order of the pgxstore insert
func DelegatedStakeToArgs(ds *staking.DelegatedStake) []any {
	return []any{
		ds.ID,
		ds.IndexerID,
		ds.DelegatorID,
		int64(ds.CreatedAtBlock),
		ds.CreatedAt,
	}
}
