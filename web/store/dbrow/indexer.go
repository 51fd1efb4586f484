package dbrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/badgeth/the-graph-indexer-badges/web/graph"
)

// Indexer represents an indexer record as queried from the database
type Indexer struct {
	ID                              string          `db:"id"`
	OwnStake                        decimal.Decimal `db:"own_stake"`
	DelegatedStake                  decimal.Decimal `db:"delegated_stake"`
	AllocatedStake                  decimal.Decimal `db:"allocated_stake"`
	MaximumDelegation               decimal.Decimal `db:"maximum_delegation"`
	IsOverDelegated                 bool            `db:"is_over_delegated"`
	AllocationRatio                 decimal.Decimal `db:"allocation_ratio"`
	DelegationRatio                 decimal.Decimal `db:"delegation_ratio"`
	IndexingRewardCutRatio          decimal.Decimal `db:"indexing_reward_cut_ratio"`
	QueryFeeCutRatio                decimal.Decimal `db:"query_fee_cut_ratio"`
	MonthlyDelegatorRewardRate      decimal.Decimal `db:"monthly_delegator_reward_rate"`
	DelegatorParameterCooldownBlock *int64          `db:"delegator_parameter_cooldown_block"`
	CreatedAt                       time.Time       `db:"created_at"`
}

// ToGraph converts the database row to the read model
func (r Indexer) ToGraph() graph.Indexer {
	var cooldownBlock *uint64
	if r.DelegatorParameterCooldownBlock != nil {
		block := uint64(*r.DelegatorParameterCooldownBlock)
		cooldownBlock = &block
	}

	return graph.Indexer{
		Address:                         r.ID,
		OwnStake:                        r.OwnStake,
		DelegatedStake:                  r.DelegatedStake,
		AllocatedStake:                  r.AllocatedStake,
		MaximumDelegation:               r.MaximumDelegation,
		IsOverDelegated:                 r.IsOverDelegated,
		AllocationRatio:                 r.AllocationRatio,
		DelegationRatio:                 r.DelegationRatio,
		IndexingRewardCutRatio:          r.IndexingRewardCutRatio,
		QueryFeeCutRatio:                r.QueryFeeCutRatio,
		MonthlyDelegatorRewardRate:      r.MonthlyDelegatorRewardRate,
		DelegatorParameterCooldownBlock: cooldownBlock,
		CreatedAt:                       r.CreatedAt,
	}
}
