package ingest

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/badgeth/the-graph-indexer-badges/pkg/graphfeed"
	"github.com/badgeth/the-graph-indexer-badges/staking"
)

// convertFeedEvent maps one raw feed event onto its typed staking event.
// This is the validation boundary: an unknown discriminator, a malformed
// address or a malformed numeric string rejects the event, and with it the
// whole batch, before any ledger state is touched.
func convertFeedEvent(f graphfeed.StakingEvent) (staking.Event, error) {
	meta, err := feedEventMeta(f)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case graphfeed.TypeStakeDeposited:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.StakeDeposited{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeStakeLocked:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.StakeLocked{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeStakeWithdrawn:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.StakeWithdrawn{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeStakeSlashed:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.StakeSlashed{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeStakeDelegated:
		delegator, err := feedAddress(f, "delegator", f.Delegator)
		if err != nil {
			return nil, err
		}
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		shares, err := feedAmount(f, "shares", f.Shares)
		if err != nil {
			return nil, err
		}
		return staking.StakeDelegated{EventMeta: meta, Delegator: delegator, Tokens: tokens, Shares: shares}, nil

	case graphfeed.TypeStakeDelegatedLocked:
		delegator, err := feedAddress(f, "delegator", f.Delegator)
		if err != nil {
			return nil, err
		}
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		shares, err := feedAmount(f, "shares", f.Shares)
		if err != nil {
			return nil, err
		}
		return staking.StakeDelegatedLocked{EventMeta: meta, Delegator: delegator, Tokens: tokens, Shares: shares}, nil

	case graphfeed.TypeStakeDelegatedWithdrawn:
		delegator, err := feedAddress(f, "delegator", f.Delegator)
		if err != nil {
			return nil, err
		}
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.StakeDelegatedWithdrawn{EventMeta: meta, Delegator: delegator, Tokens: tokens}, nil

	case graphfeed.TypeAllocationCreated:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.AllocationCreated{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeAllocationCollected:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.AllocationCollected{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeAllocationClosed:
		tokens, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.AllocationClosed{EventMeta: meta, Tokens: tokens}, nil

	case graphfeed.TypeRewardsAssigned:
		amount, err := feedAmount(f, "tokens", f.Tokens)
		if err != nil {
			return nil, err
		}
		return staking.RewardsAssigned{EventMeta: meta, Amount: amount}, nil

	case graphfeed.TypeRebateClaimed:
		fees, err := feedAmount(f, "delegationFees", f.DelegationFees)
		if err != nil {
			return nil, err
		}
		return staking.RebateClaimed{EventMeta: meta, DelegationFees: fees}, nil

	case graphfeed.TypeDelegationParametersUpdated:
		return staking.DelegationParametersUpdated{
			EventMeta:         meta,
			IndexingRewardCut: f.IndexingRewardCut,
			QueryFeeCut:       f.QueryFeeCut,
			CooldownBlocks:    f.CooldownBlocks,
		}, nil

	default:
		return nil, fmt.Errorf("event %d: unknown type %q", f.ID, f.Type)
	}
}

// feedEventMeta validates the fields every event carries.
func feedEventMeta(f graphfeed.StakingEvent) (staking.EventMeta, error) {
	if !common.IsHexAddress(f.Indexer) {
		return staking.EventMeta{}, fmt.Errorf("event %d: invalid indexer address %q", f.ID, f.Indexer)
	}

	return staking.EventMeta{
		Indexer: common.HexToAddress(f.Indexer),
		Block:   f.BlockNumber,
		Time:    f.Timestamp,
	}, nil
}

func feedAddress(f graphfeed.StakingEvent, field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("event %d: invalid %s address %q", f.ID, field, value)
	}
	return common.HexToAddress(value), nil
}

func feedAmount(f graphfeed.StakingEvent, field, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("event %d: invalid %s amount %q", f.ID, field, value)
	}
	return amount, nil
}
