package staking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParameterUpdate is one entry in the append-only audit log of cut-ratio
// changes. Entries are write-only from the engine's point of view: nothing
// here ever reads them back.
type ParameterUpdate struct {
	ID                     string
	IndexerID              string
	IndexingRewardCutRatio decimal.Decimal
	QueryFeeCutRatio       decimal.Decimal
	EffectiveBlock         uint64
	CreatedAt              time.Time
}

// ParameterUpdateID keys an entry by indexer identity and the block at which
// the parameters became effective.
func ParameterUpdateID(indexerID string, block uint64) string {
	return fmt.Sprintf("%s-%d", indexerID, block)
}

// NewParameterUpdate records one cut-ratio change.
func NewParameterUpdate(indexerID string, indexingCut, queryCut decimal.Decimal, block uint64, at time.Time) *ParameterUpdate {
	return &ParameterUpdate{
		ID:                     ParameterUpdateID(indexerID, block),
		IndexerID:              indexerID,
		IndexingRewardCutRatio: indexingCut,
		QueryFeeCutRatio:       queryCut,
		EffectiveBlock:         block,
		CreatedAt:              at,
	}
}
