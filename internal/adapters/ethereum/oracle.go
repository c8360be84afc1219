package ethereum

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"gaterepo/internal/domain"
)

// balanceOfSelector is the 4-byte selector for balanceOf(address).
var balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

type liveOracle struct {
	caller ethereum.ContractCaller
}

// NewLiveOracle returns a BalanceOracle that reads balanceOf(address) against
// the current chain head through an eth_call. ethclient.Client satisfies the
// caller interface.
func NewLiveOracle(caller ethereum.ContractCaller) domain.BalanceOracle {
	return &liveOracle{caller: caller}
}

func (o *liveOracle) Balance(ctx context.Context, gate *domain.Gate, address string) (*big.Float, error) {
	if !common.IsHexAddress(gate.Contract) {
		return nil, fmt.Errorf("%w: invalid contract address %q", domain.ErrBalanceCheck, gate.Contract)
	}
	contract := common.HexToAddress(gate.Contract)
	holder := common.HexToAddress(address)

	data := make([]byte, 0, 36)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(holder.Bytes(), 32)...)

	// nil block number pins the read to the latest head.
	out, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_call balanceOf: %v", domain.ErrBalanceCheck, err)
	}

	raw := new(big.Int).SetBytes(out)
	return scaleDown(raw, gate.ContractDecimals), nil
}

// scaleDown converts a raw integer token amount to whole-token units by
// dividing by 10^decimals at domain.BalancePrec precision, exact for any
// uint256 amount.
func scaleDown(raw *big.Int, decimals int) *big.Float {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	bal := new(big.Float).SetPrec(domain.BalancePrec).SetInt(raw)
	return bal.Quo(bal, new(big.Float).SetPrec(domain.BalancePrec).SetInt(scale))
}
