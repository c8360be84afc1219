package domain

import (
	"context"
	"errors"
	"math/big"
	"strconv"
)

// ErrBalanceCheck marks an infrastructure failure while measuring a balance
// (RPC or score API unreachable). It is distinct from ErrInsufficientBalance
// so operators can tell "held too few tokens" from "could not check".
var ErrBalanceCheck = errors.New("balance check failed")

// BalanceStrategy selects how a gate measures token balances.
type BalanceStrategy int

const (
	// StrategySnapshot reads the balance as of the gate's pinned block.
	StrategySnapshot BalanceStrategy = iota
	// StrategyLive reads the balance at the current chain head.
	StrategyLive
)

// BalancePrec is the big.Float mantissa precision used for balance math.
// 256 bits hold any uint256 token amount exactly, so dividing a raw balance
// by 10^decimals introduces no error at the grant threshold.
const BalancePrec = 256

// BalanceOracle measures an address's token balance for a gate, in
// human-scaled (whole token) units. Implementations must never return a
// negative balance; an address absent from the result set has balance 0.
type BalanceOracle interface {
	Balance(ctx context.Context, gate *Gate, address string) (*big.Float, error)
}

// MeetsThreshold reports whether balance satisfies the gate's minimum token
// requirement. The comparison is inclusive: an exact match grants.
//
// The threshold is interpreted as its decimal rendering (0.1 means one tenth
// of a token, not the nearest float64), re-parsed at BalancePrec. That makes
// the required value land on the same 256-bit rounding of the true decimal as
// the live oracle's quotient, so both strategies agree at the exact boundary
// for fractional minimums.
func MeetsThreshold(balance *big.Float, numTokens float64) bool {
	required, _, err := big.ParseFloat(strconv.FormatFloat(numTokens, 'f', -1, 64), 10, BalancePrec, big.ToNearestEven)
	if err != nil {
		return false
	}
	return balance.Cmp(required) >= 0
}

// TokenInspector resolves ERC-20 metadata and the current block number at
// gate creation time.
type TokenInspector interface {
	TokenDetails(ctx context.Context, contract string) (name string, decimals uint8, err error)
	CurrentBlock(ctx context.Context) (int64, error)
}
