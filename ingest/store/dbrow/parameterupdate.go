package dbrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// ParameterUpdate represents one cut-ratio audit log entry as stored in the
// database
type ParameterUpdate struct {
	ID                     string          `db:"id"`
	IndexerID              string          `db:"indexer_id"`
	IndexingRewardCutRatio decimal.Decimal `db:"indexing_reward_cut_ratio"`
	QueryFeeCutRatio       decimal.Decimal `db:"query_fee_cut_ratio"`
	EffectiveBlock         int64           `db:"effective_block"`
	CreatedAt              time.Time       `db:"created_at"`
}

// ToStaking converts a database row back into the domain entry
func (r ParameterUpdate) ToStaking() *staking.ParameterUpdate {
	return &staking.ParameterUpdate{
		ID:                     r.ID,
		IndexerID:              r.IndexerID,
		IndexingRewardCutRatio: r.IndexingRewardCutRatio,
		QueryFeeCutRatio:       r.QueryFeeCutRatio,
		EffectiveBlock:         uint64(r.EffectiveBlock),
		CreatedAt:              r.CreatedAt,
	}
}

// ParameterUpdateToArgs flattens a staking parameter update into positional
// arguments matching the column order of the pgxstore insert
func ParameterUpdateToArgs(pu *staking.ParameterUpdate) []any {
	return []any{
		pu.ID,
		pu.IndexerID,
		pu.IndexingRewardCutRatio,
		pu.QueryFeeCutRatio,
		int64(pu.EffectiveBlock),
		pu.CreatedAt,
	}
}
