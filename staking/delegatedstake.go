package staking

import "time"

// DelegatedStake pins down the identity of one (indexer, delegator) pair.
// The record is written once, on the first delegation observed for the pair,
// and never updated; delegator-level accounting keys off its ID.
type DelegatedStake struct {
	ID             string
	IndexerID      string
	DelegatorID    string
	CreatedAtBlock uint64
	CreatedAt      time.Time
}

// DelegatedStakeID derives the composite key for an (indexer, delegator)
// pair.
func DelegatedStakeID(indexerID, delegatorID string) string {
	return indexerID + "-" + delegatorID
}

// NewDelegatedStake records the first sighting of a pair.
func NewDelegatedStake(indexerID, delegatorID string, block uint64, at time.Time) *DelegatedStake {
	return &DelegatedStake{
		ID:             DelegatedStakeID(indexerID, delegatorID),
		IndexerID:      indexerID,
		DelegatorID:    delegatorID,
		CreatedAtBlock: block,
		CreatedAt:      at,
	}
}

// CreatedInBlock reports whether the record came into existence in the block
// currently being processed. Callers use it to decide whether a companion
// delegator-side record still needs bootstrapping.
func (s *DelegatedStake) CreatedInBlock(block uint64) bool {
	return s.CreatedAtBlock == block
}
