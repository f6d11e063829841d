// Package contracts holds the ABIs of the contracts the bridger talks to and
// small helpers to pack calls and decode read-only results.
package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	oftABI   = mustParseABI(OFTABI)
	erc20ABI = mustParseABI(ERC20ABI)
)

// OFT returns the parsed OFT bridge ABI
func OFT() abi.ABI {
	return oftABI
}

// ERC20 returns the parsed ERC-20 ABI
func ERC20() abi.ABI {
	return erc20ABI
}

// Caller performs read-only contract calls
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Call packs a read-only method call, executes it against the latest block and unpacks the outputs
func Call(ctx context.Context, caller Caller, contract abi.ABI, to common.Address, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	output, err := caller.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	results, err := contract.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return results, nil
}

// CallUint256 calls a method whose first output is a uint256
func CallUint256(ctx context.Context, caller Caller, contract abi.ABI, to common.Address, from common.Address, method string, args ...interface{}) (*big.Int, error) {
	results, err := Call(ctx, caller, contract, to, from, method, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, expected *big.Int", method, results[0])
	}
	return value, nil
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}
