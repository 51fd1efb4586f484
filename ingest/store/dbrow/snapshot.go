package dbrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// Snapshot represents a monthly accounting snapshot as stored in the database
type Snapshot struct {
	ID                   string          `db:"id"`
	IndexerID            string          `db:"indexer_id"`
	Period               time.Time       `db:"period"`
	OwnStakeDelta        decimal.Decimal `db:"own_stake_delta"`
	DelegatedStakeDelta  decimal.Decimal `db:"delegated_stake_delta"`
	PoolRewards          decimal.Decimal `db:"pool_rewards"`
	ParameterUpdateCount int32           `db:"parameter_update_count"`
	CreatedAt            time.Time       `db:"created_at"`
}

// ToStaking converts a database row back into the domain snapshot
func (r Snapshot) ToStaking() *staking.Snapshot {
	return &staking.Snapshot{
		ID:                   r.ID,
		IndexerID:            r.IndexerID,
		Period:               r.Period,
		OwnStakeDelta:        r.OwnStakeDelta,
		DelegatedStakeDelta:  r.DelegatedStakeDelta,
		PoolRewards:          r.PoolRewards,
		ParameterUpdateCount: r.ParameterUpdateCount,
		CreatedAt:            r.CreatedAt,
	}
}

// SnapshotToArgs flattens a staking snapshot into positional arguments
// matching the column order of the pgxstore snapshot upsert
func SnapshotToArgs(s *staking.Snapshot) []any {
	return []any{
		s.ID,
		s.IndexerID,
		s.Period,
		s.OwnStakeDelta,
		s.DelegatedStakeDelta,
		s.PoolRewards,
		s.ParameterUpdateCount,
		s.CreatedAt,
	}
}
