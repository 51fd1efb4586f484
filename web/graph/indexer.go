package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for indexer query validation
var (
	ErrInvalidOverDelegated = errors.New("invalid over_delegated")
	ErrInvalidPerPage       = errors.New("invalid per_page")
)

// Indexer is the read model of one indexer's accounting state as maintained
// by the ingestion pipeline. Amounts are GRT, ratios are unitless fractions.
type Indexer struct {
	Address                         string
	OwnStake                        decimal.Decimal
	DelegatedStake                  decimal.Decimal
	AllocatedStake                  decimal.Decimal
	MaximumDelegation               decimal.Decimal
	IsOverDelegated                 bool
	AllocationRatio                 decimal.Decimal
	DelegationRatio                 decimal.Decimal
	IndexingRewardCutRatio          decimal.Decimal
	QueryFeeCutRatio                decimal.Decimal
	MonthlyDelegatorRewardRate      decimal.Decimal
	DelegatorParameterCooldownBlock *uint64
	CreatedAt                       time.Time
}

// IndexersFinder defines the interface for querying indexers
type IndexersFinder interface {
	FindIndexers(ctx context.Context, criteria IndexersCriteria) (*IndexersPage, error)
	FindIndexerByAddress(ctx context.Context, address Address) (*Indexer, error)
}

// IndexersCriteria specifies criteria for querying indexers using domain Value Objects
type IndexersCriteria struct {
	OverDelegated OverDelegatedFilter
	Page          Page
	Size          PerPage
}

// ItemsPerPage returns the number of items per page
func (c IndexersCriteria) ItemsPerPage() uint64 {
	return c.Size.Uint64()
}

// ItemsToSkip returns the number of items to skip (offset)
func (c IndexersCriteria) ItemsToSkip() uint64 {
	return (c.Page.Uint64() - 1) * c.Size.Uint64()
}

// NewIndexersCriteria creates IndexersCriteria from raw request values with validation
func NewIndexersCriteria(overDelegated string, page, perPage uint64) (IndexersCriteria, error) {
	filter, err := ParseOverDelegatedFilter(overDelegated)
	if err != nil {
		return IndexersCriteria{}, fmt.Errorf("%w: %w", ErrInvalidOverDelegated, err)
	}

	size, err := ParsePerPageFromUint64(perPage)
	if err != nil {
		return IndexersCriteria{}, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
	}

	return IndexersCriteria{
		OverDelegated: filter,
		Page:          ParsePageFromUint64(page),
		Size:          size,
	}, nil
}
