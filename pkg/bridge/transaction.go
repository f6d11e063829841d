package bridge

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionPlan is an unsigned transaction. Nonce and gas price are
// snapshots taken right before the plan is built and are never reused.
type TransactionPlan struct {
	From     common.Address
	To       common.Address
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	Value    *big.Int
	Data     []byte
}

// Transaction turns the plan into an unsigned legacy transaction
func (p TransactionPlan) Transaction() *types.Transaction {
	to := p.To
	value := p.Value
	if value == nil {
		value = new(big.Int)
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    p.Nonce,
		GasPrice: p.GasPrice,
		Gas:      p.GasLimit,
		To:       &to,
		Value:    value,
		Data:     p.Data,
	})
}

// SubmittedTransaction is a signed transaction accepted by the node
type SubmittedTransaction struct {
	Raw  []byte
	Hash common.Hash
}

// snapshot reads a fresh nonce and gas price for from
func snapshot(ctx context.Context, client ChainClient, from common.Address) (uint64, *big.Int, error) {
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return 0, nil, wrap(ErrRPCUnavailable, "failed to get nonce", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return 0, nil, wrap(ErrRPCUnavailable, "failed to get gas price", err)
	}

	return nonce, gasPrice, nil
}

// signAndSend signs a plan for the chain's EVM id and broadcasts it
func signAndSend(ctx context.Context, chain Chain, signer Signer, plan TransactionPlan) (SubmittedTransaction, error) {
	chainID := big.NewInt(chain.Descriptor.EVMChainID)

	signed, err := signer.Sign(plan.Transaction(), chainID)
	if err != nil {
		return SubmittedTransaction{}, err
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return SubmittedTransaction{}, fmt.Errorf("failed to encode transaction: %w", err)
	}

	if err := chain.Client.SendTransaction(ctx, signed); err != nil {
		return SubmittedTransaction{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return SubmittedTransaction{Raw: raw, Hash: signed.Hash()}, nil
}
