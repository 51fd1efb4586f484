package dbrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// Indexer represents an indexer accounting record as stored in the database
type Indexer struct {
	ID                              string          `db:"id"`
	OwnStake                        decimal.Decimal `db:"own_stake"`
	DelegatedStake                  decimal.Decimal `db:"delegated_stake"`
	DelegationPoolShares            decimal.Decimal `db:"delegation_pool_shares"`
	AllocatedStake                  decimal.Decimal `db:"allocated_stake"`
	MaximumDelegation               decimal.Decimal `db:"maximum_delegation"`
	IsOverDelegated                 bool            `db:"is_over_delegated"`
	AllocationRatio                 decimal.Decimal `db:"allocation_ratio"`
	DelegationRatio                 decimal.Decimal `db:"delegation_ratio"`
	IndexingRewardCutRatio          decimal.Decimal `db:"indexing_reward_cut_ratio"`
	QueryFeeCutRatio                decimal.Decimal `db:"query_fee_cut_ratio"`
	MonthlyDelegatorRewardRate      decimal.Decimal `db:"monthly_delegator_reward_rate"`
	DelegatorParameterCooldownBlock *int64          `db:"delegator_parameter_cooldown_block"`
	LastSnapshotID                  string          `db:"last_snapshot_id"`
	CreatedAt                       time.Time       `db:"created_at"`
}

// ToStaking converts a database row back into the domain aggregate
func (r Indexer) ToStaking() *staking.Indexer {
	var cooldown *uint64
	if r.DelegatorParameterCooldownBlock != nil {
		block := uint64(*r.DelegatorParameterCooldownBlock)
		cooldown = &block
	}

	return &staking.Indexer{
		ID:                              r.ID,
		OwnStake:                        r.OwnStake,
		DelegatedStake:                  r.DelegatedStake,
		DelegationPoolShares:            r.DelegationPoolShares,
		AllocatedStake:                  r.AllocatedStake,
		MaximumDelegation:               r.MaximumDelegation,
		IsOverDelegated:                 r.IsOverDelegated,
		AllocationRatio:                 r.AllocationRatio,
		DelegationRatio:                 r.DelegationRatio,
		IndexingRewardCutRatio:          r.IndexingRewardCutRatio,
		QueryFeeCutRatio:                r.QueryFeeCutRatio,
		MonthlyDelegatorRewardRate:      r.MonthlyDelegatorRewardRate,
		DelegatorParameterCooldownBlock: cooldown,
		LastSnapshotID:                  r.LastSnapshotID,
		CreatedAt:                       r.CreatedAt,
	}
}

// IndexerToArgs flattens a staking indexer into positional arguments matching
// the column order of the pgxstore indexer upsert
func IndexerToArgs(ix *staking.Indexer) []any {
	var cooldown *int64
	if ix.DelegatorParameterCooldownBlock != nil {
		block := int64(*ix.DelegatorParameterCooldownBlock)
		cooldown = &block
	}

	return []any{
		ix.ID,
		ix.OwnStake,
		ix.DelegatedStake,
		ix.DelegationPoolShares,
		ix.AllocatedStake,
		ix.MaximumDelegation,
		ix.IsOverDelegated,
		ix.AllocationRatio,
		ix.DelegationRatio,
		ix.IndexingRewardCutRatio,
		ix.QueryFeeCutRatio,
		ix.MonthlyDelegatorRewardRate,
		cooldown,
		ix.LastSnapshotID,
		ix.CreatedAt,
	}
}
