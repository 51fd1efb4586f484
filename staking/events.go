package staking

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AddressID derives the stable lowercase-hex identity that keys indexers and
// delegators.
func AddressID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// EventMeta carries the chain coordinates shared by every staking event
// -----------------------------------------------------------------------
type EventMeta struct {
	Indexer common.Address
	Block   uint64
	Time    time.Time
}

func (m EventMeta) meta() EventMeta { return m }

// Event is one decoded staking-contract event. The set is closed: every
// event type below embeds EventMeta and is dispatched by Ledger.Apply.
type Event interface {
	meta() EventMeta
}

// StakeDeposited reports an indexer adding own stake.
type StakeDeposited struct {
	EventMeta
	Tokens *big.Int
}

// StakeLocked reports an indexer starting to withdraw own stake. The value
// leaves the ledger here, not at withdrawal.
type StakeLocked struct {
	EventMeta
	Tokens *big.Int
}

// StakeWithdrawn finalizes a transfer of previously locked own stake.
type StakeWithdrawn struct {
	EventMeta
	Tokens *big.Int
}

// StakeSlashed reports own stake confiscated by the protocol.
type StakeSlashed struct {
	EventMeta
	Tokens *big.Int
}

// StakeDelegated reports a delegator adding tokens to the pool. Shares holds
// the share count minted by the contract at the prevailing share price.
type StakeDelegated struct {
	EventMeta
	Delegator common.Address
	Tokens    *big.Int
	Shares    *big.Int
}

// StakeDelegatedLocked reports a delegator starting to undelegate. Shares
// holds the share count burned.
type StakeDelegatedLocked struct {
	EventMeta
	Delegator common.Address
	Tokens    *big.Int
	Shares    *big.Int
}

// StakeDelegatedWithdrawn finalizes a transfer of previously locked
// delegated stake.
type StakeDelegatedWithdrawn struct {
	EventMeta
	Delegator common.Address
	Tokens    *big.Int
}

// AllocationCreated reports stake committed to an allocation.
type AllocationCreated struct {
	EventMeta
	Tokens *big.Int
}

// AllocationCollected reports query fees collected for an allocation. The
// fee value reaches the pool later through RebateClaimed.
type AllocationCollected struct {
	EventMeta
	Tokens *big.Int
}

// AllocationClosed reports stake released from an allocation.
type AllocationClosed struct {
	EventMeta
	Tokens *big.Int
}

// RewardsAssigned reports freshly issued indexing rewards for the indexer
// and its delegation pool combined.
type RewardsAssigned struct {
	EventMeta
	Amount *big.Int
}

// RebateClaimed reports a query-fee rebate. DelegationFees is the portion
// routed to the delegation pool; the indexer's own portion re-enters as a
// StakeDeposited event when re-staked.
type RebateClaimed struct {
	EventMeta
	DelegationFees *big.Int
}

// DelegationParametersUpdated reports the indexer changing its reward split.
// Cuts are parts per million; CooldownBlocks is the number of blocks the new
// parameters are locked in for, zero meaning no cooldown.
type DelegationParametersUpdated struct {
	EventMeta
	IndexingRewardCut uint32
	QueryFeeCut       uint32
	CooldownBlocks    uint64
}
