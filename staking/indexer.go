package staking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Indexer is the aggregate accounting state of one staking participant. All
// stake figures are whole-GRT decimals; DelegationPoolShares is integer
// valued. The derived fields are stored alongside the primary ones and every
// mutator refreshes the derived set it affects, so a persisted record is
// never internally inconsistent.
// -------------------------------------------------------------------------
type Indexer struct {
	ID             string
	OwnStake       decimal.Decimal
	DelegatedStake decimal.Decimal
	// DelegationPoolShares is seeded with one phantom share so the pool's
	// share price is defined before the first delegation mints real shares.
	DelegationPoolShares decimal.Decimal
	AllocatedStake       decimal.Decimal

	MaximumDelegation decimal.Decimal
	IsOverDelegated   bool
	AllocationRatio   decimal.Decimal
	DelegationRatio   decimal.Decimal

	IndexingRewardCutRatio decimal.Decimal
	QueryFeeCutRatio       decimal.Decimal
	// MonthlyDelegatorRewardRate divides the previous period's pool rewards
	// by the present delegated stake: a yield estimate, not a precise APY.
	MonthlyDelegatorRewardRate decimal.Decimal

	// DelegatorParameterCooldownBlock is the block before which the cut
	// ratios may not change again; nil means no active cooldown.
	DelegatorParameterCooldownBlock *uint64

	LastSnapshotID string
	CreatedAt      time.Time
}

// NewIndexer returns the zero-state aggregate for an address first seen at
// the given time. Constructing anew and loading a freshly persisted record
// are interchangeable: numeric fields start at zero, shares at one.
func NewIndexer(id string, firstSeen time.Time) *Indexer {
	return &Indexer{
		ID:                         id,
		OwnStake:                   decimal.Zero,
		DelegatedStake:             decimal.Zero,
		DelegationPoolShares:       decimal.NewFromInt(1),
		AllocatedStake:             decimal.Zero,
		MaximumDelegation:          decimal.Zero,
		AllocationRatio:            decimal.Zero,
		DelegationRatio:            decimal.Zero,
		IndexingRewardCutRatio:     decimal.Zero,
		QueryFeeCutRatio:           decimal.Zero,
		MonthlyDelegatorRewardRate: decimal.Zero,
		CreatedAt:                  firstSeen,
	}
}

// SharePrice is the pool value per share. Rewards compound into
// DelegatedStake without minting shares, so this never decreases except when
// locks or slashes remove principal.
func (ix *Indexer) SharePrice() decimal.Decimal {
	if ix.DelegationPoolShares.IsZero() {
		return decimal.Zero
	}
	return ix.DelegatedStake.Div(ix.DelegationPoolShares)
}

// Mutators - the single write path for each piece of primary state
// -----------------------------------------------------------------

// UpdateOwnStake applies a signed own-stake delta, records it in the open
// snapshot and refreshes every derived field that depends on own stake.
func (ix *Indexer) UpdateOwnStake(delta decimal.Decimal, snap *Snapshot) {
	snap.RecordOwnStakeDelta(delta)
	ix.OwnStake = ix.OwnStake.Add(delta)
	ix.refreshDelegationHealth()
	ix.refreshAllocationRatio()
	ix.refreshDelegationRatio()
}

// UpdateDelegatedStake applies a signed pool-value delta together with a
// share delta. The two move in lockstep on delegate and undelegate events
// but independently on reward compounding, where value rises on a zero
// share delta and the share price appreciates.
func (ix *Indexer) UpdateDelegatedStake(stakeDelta, sharesDelta decimal.Decimal, snap *Snapshot, previousPeriodRewards decimal.Decimal) {
	snap.RecordDelegatedStakeDelta(stakeDelta)
	ix.DelegatedStake = ix.DelegatedStake.Add(stakeDelta)
	ix.DelegationPoolShares = ix.DelegationPoolShares.Add(sharesDelta)
	ix.refreshDelegationHealth()
	ix.refreshAllocationRatio()
	ix.refreshDelegationRatio()
	ix.refreshRewardRate(previousPeriodRewards)
}

// UpdateAllocatedStake applies a signed allocation delta. Only the
// allocation ratio depends on it.
func (ix *Indexer) UpdateAllocatedStake(delta decimal.Decimal) {
	ix.AllocatedStake = ix.AllocatedStake.Add(delta)
	ix.refreshAllocationRatio()
}

// UpdateParameters stores newly effective cut ratios and arms or clears the
// parameter cooldown gate.
func (ix *Indexer) UpdateParameters(indexingCut, queryCut decimal.Decimal, block, cooldownBlocks uint64) {
	ix.IndexingRewardCutRatio = indexingCut
	ix.QueryFeeCutRatio = queryCut
	if cooldownBlocks == 0 {
		ix.DelegatorParameterCooldownBlock = nil
		return
	}
	until := block + cooldownBlocks
	ix.DelegatorParameterCooldownBlock = &until
}

func (ix *Indexer) refreshDelegationHealth() {
	ix.MaximumDelegation = ix.OwnStake.Mul(DelegationCeilingMultiplier)
	ix.IsOverDelegated = ix.DelegatedStake.GreaterThan(ix.MaximumDelegation)
}

// refreshAllocationRatio relates allocated stake to usable capacity. When
// over-delegated the delegated component is capped at the ceiling: surplus
// delegation is unusable and must not make the ratio look low.
func (ix *Indexer) refreshAllocationRatio() {
	usableDelegation := ix.DelegatedStake
	if ix.IsOverDelegated {
		usableDelegation = ix.MaximumDelegation
	}
	capacity := ix.OwnStake.Add(usableDelegation)
	if capacity.IsZero() {
		ix.AllocationRatio = decimal.Zero
		return
	}
	ix.AllocationRatio = ix.AllocatedStake.Div(capacity)
}

// refreshDelegationRatio leaves the ratio unclamped: above one it reports
// how far past the ceiling the pool sits, with IsOverDelegated as the
// boolean signal.
func (ix *Indexer) refreshDelegationRatio() {
	if ix.OwnStake.IsZero() {
		ix.DelegationRatio = decimal.Zero
		return
	}
	ix.DelegationRatio = ix.DelegatedStake.Div(ix.MaximumDelegation)
}

func (ix *Indexer) refreshRewardRate(previousPeriodRewards decimal.Decimal) {
	if ix.DelegatedStake.IsZero() {
		ix.MonthlyDelegatorRewardRate = decimal.Zero
		return
	}
	ix.MonthlyDelegatorRewardRate = previousPeriodRewards.Div(ix.DelegatedStake)
}
