package bridge

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestAdapterParamsLayout(t *testing.T) {
	recipient := common.HexToAddress("0xAbCdEf0123456789aBcDeF0123456789AbCdEf01")

	// version 2, 250000 destination gas, no airdrop, then the recipient
	expected := "0002" +
		"000000000000000000000000000000000000000000000000000000000003d090" +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		strings.ToLower(strings.TrimPrefix(recipient.Hex(), "0x"))

	params := AdapterParams(DefaultDstGasLimit, recipient)
	assert.Len(t, params, 86)
	assert.Equal(t, expected, hex.EncodeToString(params))
}

func TestRecipientBytes32(t *testing.T) {
	recipient := common.HexToAddress("0x1111111111111111111111111111111111111111")
	encoded := RecipientBytes32(recipient)

	assert.Equal(t, make([]byte, 12), encoded[:12])
	assert.Equal(t, recipient.Bytes(), encoded[12:])
}
