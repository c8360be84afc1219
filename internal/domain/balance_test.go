package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		numTokens float64
		want      bool
	}{
		{"above threshold", "150", 100, true},
		{"exact match grants", "100", 100, true},
		{"below threshold", "99.999999", 100, false},
		{"zero balance", "0", 1, false},
		{"zero threshold", "0", 0, true},
		{"fractional threshold met", "0.5", 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, _, err := big.ParseFloat(tt.balance, 10, BalancePrec, big.ToNearestEven)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, MeetsThreshold(balance, tt.numTokens))
		})
	}
}

func TestMeetsThreshold_OneBaseUnitShort(t *testing.T) {
	// 100 tokens minus one base unit at 18 decimals must not round up to the
	// threshold.
	raw, _ := new(big.Int).SetString("99999999999999999999", 10)
	balance := new(big.Float).SetPrec(BalancePrec).SetInt(raw)
	balance.Quo(balance, new(big.Float).SetPrec(BalancePrec).SetInt64(1e18))
	assert.False(t, MeetsThreshold(balance, 100))
}

// scaleRaw mirrors the live oracle's exact division of a raw integer amount
// by 10^decimals.
func scaleRaw(raw *big.Int, decimals int64) *big.Float {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	bal := new(big.Float).SetPrec(BalancePrec).SetInt(raw)
	return bal.Quo(bal, new(big.Float).SetPrec(BalancePrec).SetInt(scale))
}

func TestMeetsThreshold_FractionalBoundary(t *testing.T) {
	// 0.1 is not float64-representable; the threshold must still mean one
	// tenth of a token. A raw balance of exactly 10^17 at 18 decimals grants,
	// one base unit less denies.
	exact := scaleRaw(big.NewInt(100_000_000_000_000_000), 18)
	assert.True(t, MeetsThreshold(exact, 0.1))

	short := scaleRaw(big.NewInt(100_000_000_000_000_000-1), 18)
	assert.False(t, MeetsThreshold(short, 0.1))
}

func TestMeetsThreshold_StrategiesAgreeAtFractionalBoundary(t *testing.T) {
	// The exact quotient (live path) and the float64 score (snapshot path)
	// must reach the same verdict for the same holder at the threshold.
	live := scaleRaw(big.NewInt(100_000_000_000_000_000), 18)
	snapshot := new(big.Float).SetPrec(BalancePrec).SetFloat64(0.1)
	assert.Equal(t, MeetsThreshold(live, 0.1), MeetsThreshold(snapshot, 0.1))
	assert.True(t, MeetsThreshold(live, 0.1))
}

func TestGate_Strategy(t *testing.T) {
	assert.Equal(t, StrategySnapshot, (&Gate{}).Strategy())
	assert.Equal(t, StrategyLive, (&Gate{DynamicCheck: true}).Strategy())
}

func TestGate_HasCapacity(t *testing.T) {
	assert.True(t, (&Gate{NumInvites: 5, UsedInvites: 4}).HasCapacity())
	assert.False(t, (&Gate{NumInvites: 5, UsedInvites: 5}).HasCapacity())
}
