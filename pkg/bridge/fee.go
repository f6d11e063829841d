package bridge

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/contracts"
)

// FeeEstimator quotes the native messaging fee of the bridge
type FeeEstimator struct {
	useZRO bool
}

// NewFeeEstimator creates a fee estimator; useZRO is forwarded to estimateSendFee
func NewFeeEstimator(useZRO bool) *FeeEstimator {
	return &FeeEstimator{useZRO: useZRO}
}

// EstimateFee returns the nativeFee quoted by estimateSendFee on the source bridge
func (f *FeeEstimator) EstimateFee(ctx context.Context, source Chain, dstLzChainID uint16, recipient common.Address, amount *big.Int, adapterParams []byte) (*big.Int, error) {
	bridgeAddress := source.Descriptor.Contract(chains.BridgeContract)

	results, err := contracts.Call(ctx, source.Client, contracts.OFT(), bridgeAddress, recipient, "estimateSendFee",
		dstLzChainID, RecipientBytes32(recipient), amount, f.useZRO, adapterParams)
	if err != nil {
		return nil, wrap(ErrFeeEstimationFailed, "failed to estimate fee", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty estimateSendFee result", ErrFeeEstimationFailed)
	}

	nativeFee, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected nativeFee type %T", ErrFeeEstimationFailed, results[0])
	}
	return nativeFee, nil
}
