package ethereum

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"gaterepo/internal/domain"
)

// Selectors for the ERC-20 metadata calls used at gate creation.
var (
	nameSelector     = []byte{0x06, 0xfd, 0xde, 0x03}
	decimalsSelector = []byte{0x31, 0x3c, 0xe5, 0x67}
)

// ChainReader is the slice of the Ethereum client the inspector needs.
// ethclient.Client satisfies it.
type ChainReader interface {
	ethereum.ContractCaller
	BlockNumber(ctx context.Context) (uint64, error)
}

type tokenInspector struct {
	reader ChainReader
}

// NewTokenInspector returns a TokenInspector that resolves ERC-20 name and
// decimals via eth_call and the current block number for pinning snapshots.
func NewTokenInspector(reader ChainReader) domain.TokenInspector {
	return &tokenInspector{reader: reader}
}

func (i *tokenInspector) TokenDetails(ctx context.Context, contract string) (string, uint8, error) {
	if !common.IsHexAddress(contract) {
		return "", 0, fmt.Errorf("invalid contract address %q", contract)
	}
	addr := common.HexToAddress(contract)

	nameOut, err := i.reader.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: nameSelector}, nil)
	if err != nil {
		return "", 0, fmt.Errorf("eth_call name(): %w", err)
	}
	decOut, err := i.reader.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: decimalsSelector}, nil)
	if err != nil {
		return "", 0, fmt.Errorf("eth_call decimals(): %w", err)
	}
	if len(decOut) == 0 {
		return "", 0, fmt.Errorf("decimals(): empty result from %s", contract)
	}

	decimals := new(big.Int).SetBytes(decOut)
	if !decimals.IsUint64() || decimals.Uint64() > 255 {
		return "", 0, fmt.Errorf("decimals(): out of range result from %s", contract)
	}
	return decodeABIString(nameOut), uint8(decimals.Uint64()), nil
}

func (i *tokenInspector) CurrentBlock(ctx context.Context) (int64, error) {
	n, err := i.reader.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return int64(n), nil
}

// decodeABIString decodes a dynamically-encoded ABI string return value:
// 32-byte offset, 32-byte length, then the bytes. Non-conforming output
// (some old tokens return bytes32) yields an empty name rather than an error.
func decodeABIString(out []byte) string {
	if len(out) < 64 {
		return ""
	}
	offset := new(big.Int).SetBytes(out[:32])
	if !offset.IsInt64() || offset.Int64()+32 > int64(len(out)) {
		return ""
	}
	start := offset.Int64()
	length := new(big.Int).SetBytes(out[start : start+32])
	if !length.IsInt64() || start+32+length.Int64() > int64(len(out)) {
		return ""
	}
	return string(out[start+32 : start+32+length.Int64()])
}
