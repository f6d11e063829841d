package bridge

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/contracts"
)

// SwapExecutor builds, signs and broadcasts the sendFrom transaction
type SwapExecutor struct {
	gasLimit    uint64
	dstGasLimit uint64
}

// NewSwapExecutor creates a swap executor
func NewSwapExecutor(gasLimit, dstGasLimit uint64) *SwapExecutor {
	return &SwapExecutor{
		gasLimit:    gasLimit,
		dstGasLimit: dstGasLimit,
	}
}

// Plan builds the unsigned sendFrom transaction moving amount to the same
// address on destination. minAmount equals amount, fee is attached as value.
func (s *SwapExecutor) Plan(source Chain, destination chains.Descriptor, from common.Address, amount, fee *big.Int, nonce uint64, gasPrice *big.Int) (TransactionPlan, error) {
	callParams := contracts.LzCallParams{
		RefundAddress:     from,
		ZroPaymentAddress: common.Address{},
		AdapterParams:     AdapterParams(s.dstGasLimit, from),
	}

	data, err := contracts.OFT().Pack("sendFrom",
		from, destination.LzChainID, RecipientBytes32(from), amount, amount, callParams)
	if err != nil {
		return TransactionPlan{}, err
	}

	return TransactionPlan{
		From:     from,
		To:       source.Descriptor.Contract(chains.BridgeContract),
		GasLimit: s.gasLimit,
		GasPrice: gasPrice,
		Nonce:    nonce,
		Value:    fee,
		Data:     data,
	}, nil
}

// Execute submits the bridge transaction and returns it once the node accepted it
func (s *SwapExecutor) Execute(ctx context.Context, source Chain, destination chains.Descriptor, signer Signer, amount, fee *big.Int, nonce uint64, gasPrice *big.Int) (SubmittedTransaction, error) {
	plan, err := s.Plan(source, destination, signer.Address(), amount, fee, nonce, gasPrice)
	if err != nil {
		return SubmittedTransaction{}, wrap(ErrSubmissionFailed, "failed to pack sendFrom", err)
	}

	submitted, err := signAndSend(ctx, source, signer, plan)
	if err != nil {
		return SubmittedTransaction{}, wrap(ErrSubmissionFailed, "failed to submit swap", err)
	}
	return submitted, nil
}
