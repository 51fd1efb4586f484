package staking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// snapshotPeriodFormat renders the period component of a snapshot ID.
const snapshotPeriodFormat = "2006-01"

// Snapshot accumulates one indexer's accounting deltas over one calendar
// month. A snapshot is created on the first mutation inside its period and
// is never written again once a later period opens; the immutable history
// feeds the reward-rate estimate and audits.
type Snapshot struct {
	ID        string
	IndexerID string
	// Period is the first instant of the covered month, UTC.
	Period               time.Time
	OwnStakeDelta        decimal.Decimal
	DelegatedStakeDelta  decimal.Decimal
	PoolRewards          decimal.Decimal
	ParameterUpdateCount int32
	CreatedAt            time.Time
}

// PeriodOf truncates a block timestamp to its accounting period boundary.
func PeriodOf(at time.Time) time.Time {
	at = at.UTC()
	return time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PreviousPeriod returns the boundary of the period immediately before the
// given one.
func PreviousPeriod(period time.Time) time.Time {
	return period.AddDate(0, -1, 0)
}

// SnapshotID keys a snapshot by indexer identity and period.
func SnapshotID(indexerID string, period time.Time) string {
	return fmt.Sprintf("%s-%s", indexerID, period.UTC().Format(snapshotPeriodFormat))
}

// NewSnapshot opens the snapshot covering the given time.
func NewSnapshot(indexerID string, at time.Time) *Snapshot {
	period := PeriodOf(at)

	return &Snapshot{
		ID:                  SnapshotID(indexerID, period),
		IndexerID:           indexerID,
		Period:              period,
		OwnStakeDelta:       decimal.Zero,
		DelegatedStakeDelta: decimal.Zero,
		PoolRewards:         decimal.Zero,
		CreatedAt:           at,
	}
}

// RecordOwnStakeDelta accumulates a signed own-stake change for the period.
func (s *Snapshot) RecordOwnStakeDelta(delta decimal.Decimal) {
	s.OwnStakeDelta = s.OwnStakeDelta.Add(delta)
}

// RecordDelegatedStakeDelta accumulates a signed pool-value change for the
// period.
func (s *Snapshot) RecordDelegatedStakeDelta(delta decimal.Decimal) {
	s.DelegatedStakeDelta = s.DelegatedStakeDelta.Add(delta)
}

// RecordPoolReward accumulates rewards routed to the delegation pool; the
// following period's reward-rate estimate reads this figure.
func (s *Snapshot) RecordPoolReward(amount decimal.Decimal) {
	s.PoolRewards = s.PoolRewards.Add(amount)
}

// IncrementParameterUpdateCount counts a cut-ratio change within the period.
func (s *Snapshot) IncrementParameterUpdateCount() {
	s.ParameterUpdateCount++
}
