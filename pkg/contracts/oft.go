package contracts

import (
	"github.com/ethereum/go-ethereum/common"
)

// OFTABI is the subset of the OFT bridge ABI used for cross-chain sends
const OFTABI = `[
	{
		"inputs": [
			{
				"internalType": "uint16",
				"name": "_dstChainId",
				"type": "uint16"
			},
			{
				"internalType": "bytes32",
				"name": "_toAddress",
				"type": "bytes32"
			},
			{
				"internalType": "uint256",
				"name": "_amount",
				"type": "uint256"
			},
			{
				"internalType": "bool",
				"name": "_useZro",
				"type": "bool"
			},
			{
				"internalType": "bytes",
				"name": "_adapterParams",
				"type": "bytes"
			}
		],
		"name": "estimateSendFee",
		"outputs": [
			{
				"internalType": "uint256",
				"name": "nativeFee",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "zroFee",
				"type": "uint256"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "_from",
				"type": "address"
			},
			{
				"internalType": "uint16",
				"name": "_dstChainId",
				"type": "uint16"
			},
			{
				"internalType": "bytes32",
				"name": "_toAddress",
				"type": "bytes32"
			},
			{
				"internalType": "uint256",
				"name": "_amount",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "_minAmount",
				"type": "uint256"
			},
			{
				"components": [
					{
						"internalType": "address payable",
						"name": "refundAddress",
						"type": "address"
					},
					{
						"internalType": "address",
						"name": "zroPaymentAddress",
						"type": "address"
					},
					{
						"internalType": "bytes",
						"name": "adapterParams",
						"type": "bytes"
					}
				],
				"internalType": "struct ICommonOFT.LzCallParams",
				"name": "_callParams",
				"type": "tuple"
			}
		],
		"name": "sendFrom",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	}
]`

// LzCallParams mirrors the sendFrom call parameters tuple
type LzCallParams struct {
	RefundAddress     common.Address
	ZroPaymentAddress common.Address
	AdapterParams     []byte
}
