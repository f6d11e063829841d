package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// adapterParamsVersion2 carries a destination gas budget plus a native airdrop
const adapterParamsVersion2 = 2

// AdapterParams encodes LayerZero v2 adapter parameters:
// uint16 version | uint256 dstGas | uint256 nativeForDst | address recipient
func AdapterParams(dstGas uint64, recipient common.Address) []byte {
	params := make([]byte, 0, 2+32+32+common.AddressLength)
	params = append(params, byte(adapterParamsVersion2>>8), byte(adapterParamsVersion2))
	params = append(params, common.LeftPadBytes(new(big.Int).SetUint64(dstGas).Bytes(), 32)...)
	params = append(params, make([]byte, 32)...)
	params = append(params, recipient.Bytes()...)
	return params
}

// RecipientBytes32 left pads an EVM address into the bytes32 the OFT expects
func RecipientBytes32(recipient common.Address) [32]byte {
	var out [32]byte
	copy(out[32-common.AddressLength:], recipient.Bytes())
	return out
}
