package bind

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/badgeth/the-graph-indexer-badges/web/api"
	"github.com/badgeth/the-graph-indexer-badges/web/graph"
)

// Sentinel errors for request binding
var (
	ErrInvalidAddress       = errors.New("invalid address parameter")
	ErrInvalidOverDelegated = errors.New("invalid over_delegated parameter")
	ErrInvalidPage          = errors.New("invalid page parameter")
	ErrInvalidPerPage       = errors.New("invalid per_page parameter")

	// Specific address validation errors
	ErrAddressNotHex = errors.New("address must be a valid hex address")

	// Specific over_delegated validation errors
	ErrOverDelegatedUnknown = errors.New("over_delegated must be one of: any, only, exclude")

	// Specific page validation errors
	ErrPageNotNumeric  = errors.New("page must be numeric")
	ErrPageNotPositive = errors.New("page must be positive")

	// Specific per_page validation errors
	ErrPerPageNotNumeric  = errors.New("per_page must be numeric")
	ErrPerPageNotPositive = errors.New("per_page must be positive")
	ErrPerPageTooLarge    = errors.New("per_page must be between 1 and 100")
)

// GetIndexersRequest binds HTTP request to IndexersRequest with defaults
func GetIndexersRequest(r *http.Request) (api.IndexersRequest, error) {
	req := api.IndexersRequest{
		OverDelegated: "", // Empty means no ceiling filtering
		Page:          1,  // Default to first page
		PerPage:       50, // Default pagination size
	}

	query := r.URL.Query()

	// Parse over_delegated parameter
	if filterParam := query.Get("over_delegated"); filterParam != "" {
		filter, err := parseOverDelegatedValue(filterParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidOverDelegated, err)
		}
		req.OverDelegated = filter
	}

	// Parse page parameter
	if pageParam := query.Get("page"); pageParam != "" {
		page, err := parsePageNumber(pageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		req.Page = page
	}

	// Parse per_page parameter
	if perPageParam := query.Get("per_page"); perPageParam != "" {
		perPage, err := parsePerPageLimit(perPageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
		}
		req.PerPage = perPage
	}

	return req, nil
}

// GetIndexerRequest binds the address path value to IndexerRequest
func GetIndexerRequest(r *http.Request) (api.IndexerRequest, error) {
	address, err := parseIndexerAddress(r.PathValue("address"))
	if err != nil {
		return api.IndexerRequest{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return api.IndexerRequest{Address: address}, nil
}

// parseIndexerAddress validates that the address path value is a well-formed hex address
func parseIndexerAddress(addressParam string) (string, error) {
	if !common.IsHexAddress(addressParam) {
		return "", ErrAddressNotHex
	}

	return addressParam, nil
}

// parseOverDelegatedValue validates the ceiling filter against its recognized values
func parseOverDelegatedValue(filterParam string) (string, error) {
	switch filterParam {
	case "any", "only", "exclude":
		return filterParam, nil
	default:
		return "", ErrOverDelegatedUnknown
	}
}

// parsePageNumber validates that the page parameter is a positive integer
func parsePageNumber(pageParam string) (uint64, error) {
	// Must parse as a number
	page, err := strconv.ParseUint(pageParam, 10, 64)
	if err != nil {
		return 0, ErrPageNotNumeric
	}

	// Must be positive
	if page == 0 {
		return 0, ErrPageNotPositive
	}

	return page, nil
}

// parsePerPageLimit validates that the per_page parameter is within acceptable limits
func parsePerPageLimit(perPageParam string) (uint64, error) {
	// Must parse as a number
	perPage, err := strconv.ParseUint(perPageParam, 10, 64)
	if err != nil {
		return 0, ErrPerPageNotNumeric
	}

	// Must be positive and within reasonable limits
	if perPage == 0 {
		return 0, ErrPerPageNotPositive
	}

	if perPage > 100 {
		return 0, ErrPerPageTooLarge
	}

	return perPage, nil
}

// GetIndexersResponse binds domain indexers to API response format
func GetIndexersResponse(indexers []graph.Indexer) api.IndexersResponse {
	apiIndexers := make([]api.Indexer, len(indexers))
	for i, indexer := range indexers {
		apiIndexers[i] = toAPIIndexer(indexer)
	}

	return api.IndexersResponse{
		Data: apiIndexers,
	}
}

// GetIndexerResponse binds a single domain indexer to API response format
func GetIndexerResponse(indexer graph.Indexer) api.IndexerResponse {
	return api.IndexerResponse{
		Data: toAPIIndexer(indexer),
	}
}

func toAPIIndexer(indexer graph.Indexer) api.Indexer {
	return api.Indexer{
		Address:                         indexer.Address,
		OwnStake:                        indexer.OwnStake.String(),
		DelegatedStake:                  indexer.DelegatedStake.String(),
		AllocatedStake:                  indexer.AllocatedStake.String(),
		MaximumDelegation:               indexer.MaximumDelegation.String(),
		IsOverDelegated:                 indexer.IsOverDelegated,
		AllocationRatio:                 indexer.AllocationRatio.String(),
		DelegationRatio:                 indexer.DelegationRatio.String(),
		IndexingRewardCutRatio:          indexer.IndexingRewardCutRatio.String(),
		QueryFeeCutRatio:                indexer.QueryFeeCutRatio.String(),
		MonthlyDelegatorRewardRate:      indexer.MonthlyDelegatorRewardRate.String(),
		DelegatorParameterCooldownBlock: indexer.DelegatorParameterCooldownBlock,
		CreatedAt:                       indexer.CreatedAt.Format(time.RFC3339),
	}
}
