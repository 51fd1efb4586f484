package api

// IndexersRequest represents the query parameters for GET /grt/indexers
type IndexersRequest struct {
	OverDelegated string `query:"over_delegated"` // Optional ceiling filter: any, only or exclude
	Page          uint64 `query:"page"`           // Page number for pagination (default: 1)
	PerPage       uint64 `query:"per_page"`       // Number of items per page (default: 50, max: 100)
}

// IndexerRequest represents the path parameters for GET /grt/indexers/{address}
type IndexerRequest struct {
	Address string // Indexer address in hex format
}

// Indexer represents a single indexer in the API response
type Indexer struct {
	Address                         string  `json:"address"`
	OwnStake                        string  `json:"ownStake"`
	DelegatedStake                  string  `json:"delegatedStake"`
	AllocatedStake                  string  `json:"allocatedStake"`
	MaximumDelegation               string  `json:"maximumDelegation"`
	IsOverDelegated                 bool    `json:"isOverDelegated"`
	AllocationRatio                 string  `json:"allocationRatio"`
	DelegationRatio                 string  `json:"delegationRatio"`
	IndexingRewardCutRatio          string  `json:"indexingRewardCutRatio"`
	QueryFeeCutRatio                string  `json:"queryFeeCutRatio"`
	MonthlyDelegatorRewardRate      string  `json:"monthlyDelegatorRewardRate"`
	DelegatorParameterCooldownBlock *uint64 `json:"delegatorParameterCooldownBlock"`
	CreatedAt                       string  `json:"createdAt"`
}

// IndexersResponse represents the API response format for GET /grt/indexers
type IndexersResponse struct {
	Data []Indexer `json:"data"`
}

// IndexerResponse represents the API response format for GET /grt/indexers/{address}
type IndexerResponse struct {
	Data Indexer `json:"data"`
}
