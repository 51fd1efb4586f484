package staking

import "context"

// Loader retrieves previously persisted accounting records. A nil entity
// with a nil error means the record does not exist yet.
type Loader interface {
	LoadIndexer(ctx context.Context, id string) (*Indexer, error)
	LoadSnapshot(ctx context.Context, id string) (*Snapshot, error)
	LoadDelegatedStake(ctx context.Context, id string) (*DelegatedStake, error)
}

// ChangeSet holds every record a ledger touched while applying a batch of
// events, ready to be persisted in a single transaction. Entity slices are
// sorted by ID; parameter updates keep append order.
type ChangeSet struct {
	Indexers         []*Indexer
	Snapshots        []*Snapshot
	DelegatedStakes  []*DelegatedStake
	ParameterUpdates []*ParameterUpdate
}

// Empty reports whether the batch touched nothing.
func (c ChangeSet) Empty() bool {
	return len(c.Indexers) == 0 &&
		len(c.Snapshots) == 0 &&
		len(c.DelegatedStakes) == 0 &&
		len(c.ParameterUpdates) == 0
}
