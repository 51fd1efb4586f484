package staking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/badgeth/the-graph-indexer-badges/staking"
)

func TestAccountingPeriods(t *testing.T) {
	t.Parallel()

	t.Run("it truncates timestamps to the month boundary", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2024, 3, 17, 15, 42, 7, 0, time.UTC)

		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), staking.PeriodOf(at))
	})

	t.Run("it derives the period from the UTC clock", func(t *testing.T) {
		t.Parallel()

		// 23:30 on 31 January in UTC-5 is already February in UTC
		est := time.FixedZone("EST", -5*3600)
		at := time.Date(2024, 1, 31, 23, 30, 0, 0, est)

		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), staking.PeriodOf(at))
	})

	t.Run("it steps the previous period across a year boundary", func(t *testing.T) {
		t.Parallel()

		january := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), staking.PreviousPeriod(january))
	})

	t.Run("it keys snapshots by indexer and calendar month", func(t *testing.T) {
		t.Parallel()

		period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		assert.Equal(t, indexerID+"-2024-03", staking.SnapshotID(indexerID, period))
	})
}

func TestSnapshotAccumulation(t *testing.T) {
	t.Parallel()

	t.Run("it opens with zeroed aggregates for the covering period", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2024, 3, 17, 15, 42, 7, 0, time.UTC)
		snap := staking.NewSnapshot(indexerID, at)

		assert.Equal(t, indexerID+"-2024-03", snap.ID)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), snap.Period)
		assert.Equal(t, at, snap.CreatedAt)
		assertDecimal(t, "0", snap.OwnStakeDelta)
		assertDecimal(t, "0", snap.DelegatedStakeDelta)
		assertDecimal(t, "0", snap.PoolRewards)
		assert.Zero(t, snap.ParameterUpdateCount)
	})

	t.Run("it nets stake deltas over the period", func(t *testing.T) {
		t.Parallel()

		snap := staking.NewSnapshot(indexerID, firstSeen())

		snap.RecordOwnStakeDelta(dec("100"))
		snap.RecordOwnStakeDelta(dec("-40"))
		snap.RecordDelegatedStakeDelta(dec("500"))
		snap.RecordDelegatedStakeDelta(dec("-125"))

		assertDecimal(t, "60", snap.OwnStakeDelta)
		assertDecimal(t, "375", snap.DelegatedStakeDelta)
	})

	t.Run("it sums pool rewards separately from principal movement", func(t *testing.T) {
		t.Parallel()

		snap := staking.NewSnapshot(indexerID, firstSeen())

		snap.RecordPoolReward(dec("80"))
		snap.RecordPoolReward(dec("20"))

		assertDecimal(t, "100", snap.PoolRewards)
		assertDecimal(t, "0", snap.DelegatedStakeDelta)
	})

	t.Run("it counts parameter changes within the period", func(t *testing.T) {
		t.Parallel()

		snap := staking.NewSnapshot(indexerID, firstSeen())

		snap.IncrementParameterUpdateCount()
		snap.IncrementParameterUpdateCount()

		assert.Equal(t, int32(2), snap.ParameterUpdateCount)
	})
}
