package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaterepo/internal/domain"
)

type fakeChain struct {
	callFn  func(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	blockFn func(ctx context.Context) (uint64, error)
}

func (f *fakeChain) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.callFn(ctx, msg)
}

func (f *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	return f.blockFn(ctx)
}

const (
	testContract = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	testHolder   = "0x00000000000000000000000000000000DeaDBeef"
)

func uint256Bytes(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestLiveOracle_Balance(t *testing.T) {
	// 1.5 tokens at 18 decimals
	raw, _ := new(big.Int).SetString("1500000000000000000", 10)
	chain := &fakeChain{
		callFn: func(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
			assert.Equal(t, common.HexToAddress(testContract), *msg.To)
			assert.Equal(t, balanceOfSelector, msg.Data[:4])
			assert.Equal(t, uint256Bytes(common.HexToAddress(testHolder).Big()), msg.Data[4:])
			return uint256Bytes(raw), nil
		},
	}

	gate := &domain.Gate{Contract: testContract, ContractDecimals: 18}
	balance, err := NewLiveOracle(chain).Balance(context.Background(), gate, testHolder)
	require.NoError(t, err)

	want := big.NewFloat(1.5).SetPrec(domain.BalancePrec)
	assert.Zero(t, balance.Cmp(want))
}

func TestLiveOracle_Balance_ThresholdBoundary(t *testing.T) {
	// Exactly 100 tokens at 18 decimals meets a 100-token threshold; one base
	// unit less does not.
	exact, _ := new(big.Int).SetString("100000000000000000000", 10)
	oneShort := new(big.Int).Sub(exact, big.NewInt(1))

	// 0.1 tokens is a tenth of a token even though 0.1 has no exact float64.
	fracExact := big.NewInt(100_000_000_000_000_000)
	fracShort := new(big.Int).Sub(fracExact, big.NewInt(1))

	tests := []struct {
		name      string
		raw       *big.Int
		numTokens float64
		want      bool
	}{
		{"exact amount meets", exact, 100, true},
		{"one base unit short denies", oneShort, 100, false},
		{"exact fractional amount meets", fracExact, 0.1, true},
		{"fractional one base unit short denies", fracShort, 0.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &fakeChain{
				callFn: func(_ context.Context, _ ethereum.CallMsg) ([]byte, error) {
					return uint256Bytes(tt.raw), nil
				},
			}
			gate := &domain.Gate{Contract: testContract, ContractDecimals: 18, NumTokens: tt.numTokens}
			balance, err := NewLiveOracle(chain).Balance(context.Background(), gate, testHolder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.MeetsThreshold(balance, gate.NumTokens))
		})
	}
}

func TestLiveOracle_Balance_ZeroDecimals(t *testing.T) {
	chain := &fakeChain{
		callFn: func(_ context.Context, _ ethereum.CallMsg) ([]byte, error) {
			return uint256Bytes(big.NewInt(42)), nil
		},
	}
	gate := &domain.Gate{Contract: testContract, ContractDecimals: 0}
	balance, err := NewLiveOracle(chain).Balance(context.Background(), gate, testHolder)
	require.NoError(t, err)
	assert.Zero(t, balance.Cmp(big.NewFloat(42)))
}

func TestLiveOracle_Balance_RPCError(t *testing.T) {
	chain := &fakeChain{
		callFn: func(_ context.Context, _ ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("connection refused")
		},
	}
	gate := &domain.Gate{Contract: testContract, ContractDecimals: 18}
	_, err := NewLiveOracle(chain).Balance(context.Background(), gate, testHolder)
	assert.ErrorIs(t, err, domain.ErrBalanceCheck)
}

func TestLiveOracle_Balance_InvalidContract(t *testing.T) {
	gate := &domain.Gate{Contract: "not-an-address", ContractDecimals: 18}
	_, err := NewLiveOracle(&fakeChain{}).Balance(context.Background(), gate, testHolder)
	assert.ErrorIs(t, err, domain.ErrBalanceCheck)
}
