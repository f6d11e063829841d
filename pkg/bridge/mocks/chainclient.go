package mocks

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/speedrun-hq/lzbridger/pkg/contracts"
)

// ErrUnavailable is returned by reads configured to fail
var ErrUnavailable = errors.New("connection refused")

// ChainClient is a scripted in-memory chain. Contract calls are dispatched by
// method selector against the ERC-20 and OFT ABIs.
type ChainClient struct {
	mu sync.Mutex

	// Balances are returned by successive balanceOf reads, the last one repeats
	Balances []*big.Int
	// BalanceErrs fails the read with the same index when non-nil
	BalanceErrs []error
	Allowance   *big.Int
	NativeFee   *big.Int
	ZroFee      *big.Int
	Nonce       uint64
	GasPrice    *big.Int

	AllowanceErr error
	FeeErr       error
	NonceErr     error
	GasPriceErr  error
	SendErr      error
	// SendErrs fails the send with the same index when non-nil
	SendErrs []error

	// Sent holds every transaction accepted by SendTransaction
	Sent []*types.Transaction
	// FeeArgs holds the arguments of every estimateSendFee call
	FeeArgs [][]interface{}
	// Log lists every call in order: method names for contract calls, plus
	// "nonce", "gasPrice" and "send"
	Log []string

	balanceReads int
	sends        int
}

// NewChainClient returns a client with enough defaults for a successful run
func NewChainClient() *ChainClient {
	return &ChainClient{
		Balances:  []*big.Int{big.NewInt(0)},
		Allowance: big.NewInt(0),
		NativeFee: big.NewInt(1_000_000_000_000_000),
		ZroFee:    big.NewInt(0),
		GasPrice:  big.NewInt(30_000_000_000),
	}
}

// Calls returns how many times name appears in the call log
func (c *ChainClient) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, entry := range c.Log {
		if entry == name {
			n++
		}
	}
	return n
}

// Transactions returns a copy of the accepted transactions
func (c *ChainClient) Transactions() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.Sent...)
}

// CallLog returns a copy of the call log
func (c *ChainClient) CallLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Log...)
}

func (c *ChainClient) PendingNonceAt(ctx context.Context, _ common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Log = append(c.Log, "nonce")
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if c.NonceErr != nil {
		return 0, c.NonceErr
	}
	return c.Nonce + uint64(len(c.Sent)), nil
}

func (c *ChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Log = append(c.Log, "gasPrice")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.GasPriceErr != nil {
		return nil, c.GasPriceErr
	}
	return new(big.Int).Set(c.GasPrice), nil
}

func (c *ChainClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Log = append(c.Log, "send")
	index := c.sends
	c.sends++

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.SendErr != nil {
		return c.SendErr
	}
	if index < len(c.SendErrs) && c.SendErrs[index] != nil {
		return c.SendErrs[index]
	}
	c.Sent = append(c.Sent, tx)
	return nil
}

func (c *ChainClient) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, fmt.Errorf("calldata too short")
	}

	method, err := lookupMethod(call.Data[:4])
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.Log = append(c.Log, method.Name)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch method.Name {
	case "balanceOf":
		index := c.balanceReads
		c.balanceReads++
		if index < len(c.BalanceErrs) && c.BalanceErrs[index] != nil {
			return nil, c.BalanceErrs[index]
		}
		if index >= len(c.Balances) {
			index = len(c.Balances) - 1
		}
		return method.Outputs.Pack(c.Balances[index])
	case "allowance":
		if c.AllowanceErr != nil {
			return nil, c.AllowanceErr
		}
		return method.Outputs.Pack(c.Allowance)
	case "estimateSendFee":
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		c.FeeArgs = append(c.FeeArgs, args)
		if c.FeeErr != nil {
			return nil, c.FeeErr
		}
		return method.Outputs.Pack(c.NativeFee, c.ZroFee)
	}

	return nil, fmt.Errorf("unexpected call to %s", method.Name)
}

func lookupMethod(selector []byte) (*abi.Method, error) {
	for _, parsed := range []abi.ABI{contracts.ERC20(), contracts.OFT()} {
		if method, err := parsed.MethodById(selector); err == nil {
			return method, nil
		}
	}
	return nil, fmt.Errorf("unknown selector %x", selector)
}
