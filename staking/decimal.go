package staking

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// On-chain scaling factors: token amounts arrive as base units (1 GRT =
// 1e18), fee cuts as parts per million.
const (
	tokenExponent = -18
	cutExponent   = -6
)

// DelegationCeilingMultiplier caps usable delegation at 16 GRT per GRT of
// own stake.
var DelegationCeilingMultiplier = decimal.NewFromInt(16)

// TokensToDecimal converts a raw base-unit token amount to whole GRT.
func TokensToDecimal(raw *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, tokenExponent)
}

// SharesToDecimal converts a raw pool share count to its integer-valued
// decimal form.
func SharesToDecimal(raw *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, 0)
}

// CutToRatio converts a parts-per-million fee cut to a ratio in [0, 1].
func CutToRatio(ppm uint32) decimal.Decimal {
	return decimal.New(int64(ppm), cutExponent)
}

// SplitReward divides a reward between the indexer and its delegation pool.
// The indexer retains total × cut and delegators receive the exact
// remainder, so the two parts always sum back to the total.
func SplitReward(total, cut decimal.Decimal) (indexerShare, delegatorShare decimal.Decimal) {
	indexerShare = total.Mul(cut)
	delegatorShare = total.Sub(indexerShare)
	return indexerShare, delegatorShare
}
