// Package wallet loads the private keys of the bridging wallets and signs
// transactions with them. Key material never leaves this package in
// printable form: String and GoString only render the derived address.
package wallet

import (
	"bufio"
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a private key together with its derived address
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// FromHex parses a hex encoded private key, with or without 0x prefix
func FromHex(privateKeyHex string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return FromKey(key), nil
}

// FromKey wraps an already parsed private key
func FromKey(key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the wallet address
func (w *Wallet) Address() common.Address {
	return w.address
}

// Sign signs a transaction for the given EVM chain id
func (w *Wallet) Sign(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// String renders the address only
func (w *Wallet) String() string {
	return w.address.Hex()
}

// GoString keeps %#v from dumping the key
func (w *Wallet) GoString() string {
	return "wallet.Wallet{" + w.address.Hex() + "}"
}

// Load reads one private key per line from a file
func Load(path string) ([]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallets file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses one private key per line; blank lines and lines starting with # are skipped
func Read(r io.Reader) ([]*Wallet, error) {
	var wallets []*Wallet

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}

		w, err := FromHex(entry)
		if err != nil {
			// the key itself is deliberately not part of the error
			return nil, fmt.Errorf("line %d: invalid private key", line)
		}
		wallets = append(wallets, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wallets: %w", err)
	}

	return wallets, nil
}
