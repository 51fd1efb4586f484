package graphfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ssgreg/repeat"
)

// Event type discriminators used by the staking feed.
const (
	TypeStakeDeposited              = "StakeDeposited"
	TypeStakeLocked                 = "StakeLocked"
	TypeStakeWithdrawn              = "StakeWithdrawn"
	TypeStakeSlashed                = "StakeSlashed"
	TypeStakeDelegated              = "StakeDelegated"
	TypeStakeDelegatedLocked        = "StakeDelegatedLocked"
	TypeStakeDelegatedWithdrawn     = "StakeDelegatedWithdrawn"
	TypeAllocationCreated           = "AllocationCreated"
	TypeAllocationCollected         = "AllocationCollected"
	TypeAllocationClosed            = "AllocationClosed"
	TypeRewardsAssigned             = "RewardsAssigned"
	TypeRebateClaimed               = "RebateClaimed"
	TypeDelegationParametersUpdated = "DelegationParametersUpdated"
)

// Retry tuning for transient feed failures
const (
	defaultMaxTries       = 5
	defaultRetryBaseDelay = time.Second
)

// Client represents a Graph staking feed API client
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxTries       int
	retryBaseDelay time.Duration
}

// Option configures optional client behaviour
type Option func(*Client)

// WithMaxTries overrides how many times a failed fetch is attempted
func WithMaxTries(tries int) Option {
	return func(c *Client) {
		c.maxTries = tries
	}
}

// WithRetryBaseDelay overrides the initial backoff delay between attempts
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = delay
	}
}

// NewClient creates a new staking feed API client
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxTries:       defaultMaxTries,
		retryBaseDelay: defaultRetryBaseDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// EventsRequest represents parameters for fetching staking events
type EventsRequest struct {
	Limit         uint64
	IDGreaterThan int64
}

// StakingEvent is one decoded staking-contract event as served by the feed.
// Token and share amounts are raw base-unit integers encoded as strings;
// fee cuts are parts-per-million.
type StakingEvent struct {
	ID                int64     `json:"id"`
	Type              string    `json:"type"`
	BlockNumber       uint64    `json:"blockNumber"`
	Timestamp         time.Time `json:"timestamp"`
	Indexer           string    `json:"indexer"`
	Delegator         string    `json:"delegator,omitempty"`
	Tokens            string    `json:"tokens,omitempty"`
	Shares            string    `json:"shares,omitempty"`
	DelegationFees    string    `json:"delegationFees,omitempty"`
	IndexingRewardCut uint32    `json:"indexingRewardCut,omitempty"`
	QueryFeeCut       uint32    `json:"queryFeeCut,omitempty"`
	CooldownBlocks    uint64    `json:"cooldownBlocks,omitempty"`
}

// GetEvents retrieves staking events with IDs greater than the given watermark,
// retrying transient failures with exponential backoff.
func (c *Client) GetEvents(ctx context.Context, req EventsRequest) ([]StakingEvent, error) {
	url := fmt.Sprintf("%s/v1/staking/events?limit=%d&id.gt=%d", c.baseURL, req.Limit, req.IDGreaterThan)

	var (
		events  []StakingEvent
		lastErr error
	)

	err := repeat.Repeat(
		repeat.Fn(func() error {
			events, lastErr = c.fetchEvents(ctx, url)
			if lastErr != nil {
				return repeat.HintTemporary(lastErr)
			}
			return nil
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(c.maxTries),
		repeat.FnOnError(func(err error) error {
			slog.DebugContext(ctx, "retrying staking event fetch", "error", err)
			return err
		}),
		repeat.WithDelay(
			repeat.SetContextHintStop(),
			repeat.ExponentialBackoff(c.retryBaseDelay).Set(),
		),
	)
	if err != nil {
		// lastErr keeps the cause unwrappable for callers; the repeat
		// wrapper hides it from errors.Is.
		return nil, lastErr
	}

	return events, nil
}

func (c *Client) fetchEvents(ctx context.Context, url string) ([]StakingEvent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var events []StakingEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return events, nil
}
