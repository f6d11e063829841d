package chains

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractKind selects one of the contracts a chain descriptor points at
type ContractKind int

const (
	// TokenContract is the ERC-20 side of the bridged token (balanceOf, allowance, approve)
	TokenContract ContractKind = iota
	// BridgeContract is the OFT endpoint used for estimateSendFee and sendFrom
	BridgeContract
)

func (k ContractKind) String() string {
	switch k {
	case TokenContract:
		return "token"
	case BridgeContract:
		return "bridge"
	default:
		return fmt.Sprintf("ContractKind(%d)", int(k))
	}
}

// Descriptor holds the connection and contract metadata of one chain
type Descriptor struct {
	Name          string
	RPCURL        string
	BridgeAddress common.Address
	TokenAddress  common.Address
	LzChainID     uint16
	EVMChainID    int64
	DisplayName   string
	ExplorerURL   string
}

// Contract returns the address of the requested contract kind
func (d Descriptor) Contract(kind ContractKind) common.Address {
	switch kind {
	case BridgeContract:
		return d.BridgeAddress
	default:
		return d.TokenAddress
	}
}

// TxURL returns the block explorer link for a transaction hash
func (d Descriptor) TxURL(hash common.Hash) string {
	return strings.TrimRight(d.ExplorerURL, "/") + "/tx/" + hash.Hex()
}

// Entry is one row of the static chain table
type Entry struct {
	Name          string
	DefaultRPCURL string
	BridgeAddress string
	TokenAddress  string
	LzChainID     uint16
	EVMChainID    int64
	DisplayName   string
	ExplorerURL   string
}

// btcbOFT is the BTC.b OFT deployment; outside Avalanche the OFT is also the token
const btcbOFT = "0x2297aEbD383787A160DD0d9F71508148769342E3"

// DefaultTable lists the supported chains with public RPC endpoints.
// Keyed RPC endpoints are injected through <NAME>_RPC_URL.
var DefaultTable = []Entry{
	{
		Name:          "polygon",
		DefaultRPCURL: "https://polygon-rpc.com",
		BridgeAddress: btcbOFT,
		TokenAddress:  btcbOFT,
		LzChainID:     109,
		EVMChainID:    137,
		DisplayName:   "Polygon",
		ExplorerURL:   "https://polygonscan.com",
	},
	{
		Name:          "bsc",
		DefaultRPCURL: "https://bsc-dataseed.bnbchain.org",
		BridgeAddress: btcbOFT,
		TokenAddress:  btcbOFT,
		LzChainID:     102,
		EVMChainID:    56,
		DisplayName:   "BSC",
		ExplorerURL:   "https://bscscan.com",
	},
	{
		Name:          "avalanche",
		DefaultRPCURL: "https://avalanche-c-chain-rpc.publicnode.com",
		BridgeAddress: btcbOFT,
		TokenAddress:  "0x152b9d0FdC40C096757F570A51E494bd4b943E50",
		LzChainID:     106,
		EVMChainID:    43114,
		DisplayName:   "Avalanche",
		ExplorerURL:   "https://snowtrace.io",
	},
	{
		Name:          "arbitrum",
		DefaultRPCURL: "https://arb1.arbitrum.io/rpc",
		BridgeAddress: btcbOFT,
		TokenAddress:  btcbOFT,
		LzChainID:     110,
		EVMChainID:    42161,
		DisplayName:   "Arbitrum",
		ExplorerURL:   "https://arbiscan.io",
	},
	{
		Name:          "optimism",
		DefaultRPCURL: "https://mainnet.optimism.io",
		BridgeAddress: btcbOFT,
		TokenAddress:  btcbOFT,
		LzChainID:     111,
		EVMChainID:    10,
		DisplayName:   "Optimism",
		ExplorerURL:   "https://optimistic.etherscan.io/",
	},
}

// Descriptor converts a table entry into a descriptor using the given RPC URL
func (e Entry) Descriptor(rpcURL string) Descriptor {
	if rpcURL == "" {
		rpcURL = e.DefaultRPCURL
	}
	return Descriptor{
		Name:          e.Name,
		RPCURL:        rpcURL,
		BridgeAddress: common.HexToAddress(e.BridgeAddress),
		TokenAddress:  common.HexToAddress(e.TokenAddress),
		LzChainID:     e.LzChainID,
		EVMChainID:    e.EVMChainID,
		DisplayName:   e.DisplayName,
		ExplorerURL:   e.ExplorerURL,
	}
}
