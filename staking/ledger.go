// Package staking maintains the running financial state of Graph-protocol
// indexers from an ordered stream of decoded staking-contract events: own
// stake, the share-priced delegation pool with compounding rewards, allocated
// stake, derived capacity ratios, monthly accounting snapshots, and the
// audit log of reward-split changes.
package staking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for failure cases
var (
	ErrIndexerLoadFailed        = errors.New("indexer load failed")
	ErrSnapshotLoadFailed       = errors.New("snapshot load failed")
	ErrDelegatedStakeLoadFailed = errors.New("delegated stake load failed")
	ErrUnhandledEvent           = errors.New("unhandled event type")
)

// Ledger applies ordered staking events and tracks every record it touches,
// so the host can persist one batch of events atomically. Events for one
// indexer must arrive in on-chain order; the ledger itself is not safe for
// concurrent use.
// -------------------------------------------------------------------------
type Ledger struct {
	loader Loader

	indexers         map[string]*Indexer
	snapshots        map[string]*Snapshot
	delegatedStakes  map[string]*DelegatedStake
	parameterUpdates []*ParameterUpdate
	// closedRewards memoizes pool-reward totals of periods already closed in
	// the store, keyed by snapshot ID.
	closedRewards map[string]decimal.Decimal
}

// NewLedger constructs a Ledger reading prior state through the given
// loader.
func NewLedger(loader Loader) *Ledger {
	l := &Ledger{loader: loader}
	l.Reset()

	return l
}

// Reset drops all tracked state. Call it once a batch's changes have been
// persisted and before the ledger is reused.
func (l *Ledger) Reset() {
	l.indexers = make(map[string]*Indexer)
	l.snapshots = make(map[string]*Snapshot)
	l.delegatedStakes = make(map[string]*DelegatedStake)
	l.parameterUpdates = nil
	l.closedRewards = make(map[string]decimal.Decimal)
}

// Apply routes one event to its handler. On error the tracked state is
// tainted: discard the ledger without persisting and replay the batch.
func (l *Ledger) Apply(ctx context.Context, ev Event) error {
	switch ev.(type) {
	case StakeWithdrawn, StakeDelegatedWithdrawn, AllocationCollected:
		// Withdrawals finalize transfers already applied at lock time, and
		// collected fees reach the pool through RebateClaimed.
		return nil
	}

	m := ev.meta()
	ix, err := l.indexer(ctx, AddressID(m.Indexer), m.Time)
	if err != nil {
		return err
	}

	switch e := ev.(type) {
	case StakeDeposited:
		return l.applyOwnStakeDelta(ctx, ix, TokensToDecimal(e.Tokens), m.Time)
	case StakeLocked:
		return l.applyOwnStakeDelta(ctx, ix, TokensToDecimal(e.Tokens).Neg(), m.Time)
	case StakeSlashed:
		return l.applyOwnStakeDelta(ctx, ix, TokensToDecimal(e.Tokens).Neg(), m.Time)
	case StakeDelegated:
		if _, err := l.ensureDelegatedStake(ctx, ix.ID, AddressID(e.Delegator), m); err != nil {
			return err
		}

		return l.applyDelegatedStakeDelta(ctx, ix, TokensToDecimal(e.Tokens), SharesToDecimal(e.Shares), m.Time)
	case StakeDelegatedLocked:
		return l.applyDelegatedStakeDelta(ctx, ix, TokensToDecimal(e.Tokens).Neg(), SharesToDecimal(e.Shares).Neg(), m.Time)
	case AllocationCreated:
		ix.UpdateAllocatedStake(TokensToDecimal(e.Tokens))
		return nil
	case AllocationClosed:
		ix.UpdateAllocatedStake(TokensToDecimal(e.Tokens).Neg())
		return nil
	case RewardsAssigned:
		return l.applyRewards(ctx, ix, TokensToDecimal(e.Amount), m.Time)
	case RebateClaimed:
		return l.applyPoolReward(ctx, ix, TokensToDecimal(e.DelegationFees), m.Time)
	case DelegationParametersUpdated:
		return l.applyParameters(ctx, ix, e, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
	}
}

// Changes returns everything the ledger touched, ordered deterministically.
func (l *Ledger) Changes() ChangeSet {
	cs := ChangeSet{
		Indexers:         make([]*Indexer, 0, len(l.indexers)),
		Snapshots:        make([]*Snapshot, 0, len(l.snapshots)),
		DelegatedStakes:  make([]*DelegatedStake, 0, len(l.delegatedStakes)),
		ParameterUpdates: append([]*ParameterUpdate(nil), l.parameterUpdates...),
	}

	for _, ix := range l.indexers {
		cs.Indexers = append(cs.Indexers, ix)
	}
	for _, snap := range l.snapshots {
		cs.Snapshots = append(cs.Snapshots, snap)
	}
	for _, ds := range l.delegatedStakes {
		cs.DelegatedStakes = append(cs.DelegatedStakes, ds)
	}

	sort.Slice(cs.Indexers, func(i, j int) bool { return cs.Indexers[i].ID < cs.Indexers[j].ID })
	sort.Slice(cs.Snapshots, func(i, j int) bool { return cs.Snapshots[i].ID < cs.Snapshots[j].ID })
	sort.Slice(cs.DelegatedStakes, func(i, j int) bool { return cs.DelegatedStakes[i].ID < cs.DelegatedStakes[j].ID })

	return cs
}

// Event handlers
// --------------

func (l *Ledger) applyOwnStakeDelta(ctx context.Context, ix *Indexer, delta decimal.Decimal, at time.Time) error {
	snap, err := l.snapshot(ctx, ix, at)
	if err != nil {
		return err
	}

	ix.UpdateOwnStake(delta, snap)

	return nil
}

func (l *Ledger) applyDelegatedStakeDelta(ctx context.Context, ix *Indexer, stakeDelta, sharesDelta decimal.Decimal, at time.Time) error {
	snap, err := l.snapshot(ctx, ix, at)
	if err != nil {
		return err
	}

	previousRewards, err := l.previousPeriodRewards(ctx, ix.ID, at)
	if err != nil {
		return err
	}

	ix.UpdateDelegatedStake(stakeDelta, sharesDelta, snap, previousRewards)

	return nil
}

// applyRewards splits an indexing reward between the indexer and the pool.
// With nothing delegated the full amount stays with the indexer and there is
// nothing to record: the indexer's cut re-enters the ledger as own stake
// through a later StakeDeposited.
func (l *Ledger) applyRewards(ctx context.Context, ix *Indexer, total decimal.Decimal, at time.Time) error {
	if ix.DelegatedStake.IsZero() {
		return nil
	}

	_, delegatorShare := SplitReward(total, ix.IndexingRewardCutRatio)

	return l.applyPoolReward(ctx, ix, delegatorShare, at)
}

// applyPoolReward compounds value into the delegation pool without minting
// shares, raising the share price for every existing holder.
func (l *Ledger) applyPoolReward(ctx context.Context, ix *Indexer, amount decimal.Decimal, at time.Time) error {
	snap, err := l.snapshot(ctx, ix, at)
	if err != nil {
		return err
	}

	snap.RecordPoolReward(amount)

	previousRewards, err := l.previousPeriodRewards(ctx, ix.ID, at)
	if err != nil {
		return err
	}

	ix.UpdateDelegatedStake(amount, decimal.Zero, snap, previousRewards)

	return nil
}

func (l *Ledger) applyParameters(ctx context.Context, ix *Indexer, e DelegationParametersUpdated, m EventMeta) error {
	snap, err := l.snapshot(ctx, ix, m.Time)
	if err != nil {
		return err
	}

	indexingCut := CutToRatio(e.IndexingRewardCut)
	queryCut := CutToRatio(e.QueryFeeCut)

	ix.UpdateParameters(indexingCut, queryCut, m.Block, e.CooldownBlocks)
	snap.IncrementParameterUpdateCount()
	l.parameterUpdates = append(l.parameterUpdates, NewParameterUpdate(ix.ID, indexingCut, queryCut, m.Block, m.Time))

	return nil
}

// Entity resolution
// -----------------

// indexer returns the tracked aggregate for the address, loading it from the
// store or constructing zero state on first observation.
func (l *Ledger) indexer(ctx context.Context, id string, firstSeen time.Time) (*Indexer, error) {
	if ix, ok := l.indexers[id]; ok {
		return ix, nil
	}

	ix, err := l.loader.LoadIndexer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexerLoadFailed, err)
	}
	if ix == nil {
		ix = NewIndexer(id, firstSeen)
	}

	l.indexers[id] = ix

	return ix, nil
}

// snapshot resolves the open snapshot covering at, creating it on the first
// mutation in a new period. The indexer's LastSnapshotID follows along.
func (l *Ledger) snapshot(ctx context.Context, ix *Indexer, at time.Time) (*Snapshot, error) {
	id := SnapshotID(ix.ID, PeriodOf(at))

	snap, ok := l.snapshots[id]
	if !ok {
		loaded, err := l.loader.LoadSnapshot(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotLoadFailed, err)
		}

		snap = loaded
		if snap == nil {
			snap = NewSnapshot(ix.ID, at)
		}
		l.snapshots[id] = snap
	}

	ix.LastSnapshotID = snap.ID

	return snap, nil
}

// ensureDelegatedStake makes the identity record for the pair exist; the
// first write wins and later sightings change nothing.
func (l *Ledger) ensureDelegatedStake(ctx context.Context, indexerID, delegatorID string, m EventMeta) (*DelegatedStake, error) {
	id := DelegatedStakeID(indexerID, delegatorID)

	if ds, ok := l.delegatedStakes[id]; ok {
		return ds, nil
	}

	ds, err := l.loader.LoadDelegatedStake(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelegatedStakeLoadFailed, err)
	}
	if ds == nil {
		ds = NewDelegatedStake(indexerID, delegatorID, m.Block, m.Time)
	}

	l.delegatedStakes[id] = ds

	return ds, nil
}

// previousPeriodRewards sums the pool rewards recorded in the period before
// the one covering at. Open snapshots tracked by this ledger shadow
// persisted ones, so a batch crossing a period boundary sees its own writes.
func (l *Ledger) previousPeriodRewards(ctx context.Context, indexerID string, at time.Time) (decimal.Decimal, error) {
	id := SnapshotID(indexerID, PreviousPeriod(PeriodOf(at)))

	if snap, ok := l.snapshots[id]; ok {
		return snap.PoolRewards, nil
	}
	if rewards, ok := l.closedRewards[id]; ok {
		return rewards, nil
	}

	snap, err := l.loader.LoadSnapshot(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrSnapshotLoadFailed, err)
	}

	rewards := decimal.Zero
	if snap != nil {
		rewards = snap.PoolRewards
	}
	l.closedRewards[id] = rewards

	return rewards, nil
}
