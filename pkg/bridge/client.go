package bridge

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
)

// ChainClient is the RPC boundary of one chain. It is satisfied by
// *ethclient.Client and *chainclient.Client.
type ChainClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Signer signs transactions on behalf of one address
type Signer interface {
	Address() common.Address
	Sign(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Chain pairs a chain descriptor with the client used to reach it
type Chain struct {
	Descriptor chains.Descriptor
	Client     ChainClient
}

// Networks resolves chain names into reachable chains
type Networks interface {
	Network(name string) (Chain, error)
}

// StaticNetworks is a fixed set of chains keyed by lower-case name
type StaticNetworks map[string]Chain

// NewStaticNetworks indexes chains by descriptor name
func NewStaticNetworks(list ...Chain) StaticNetworks {
	networks := make(StaticNetworks, len(list))
	for _, c := range list {
		networks[strings.ToLower(c.Descriptor.Name)] = c
	}
	return networks
}

// Network implements Networks
func (n StaticNetworks) Network(name string) (Chain, error) {
	c, ok := n[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %q", chains.ErrUnknownChain, name)
	}
	return c, nil
}
