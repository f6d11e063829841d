package models

import (
	"fmt"

	"github.com/speedrun-hq/lzbridger/pkg/wallet"
)

// SwapIntent represents one wallet's request to move its whole token balance
// from Source to Destination
type SwapIntent struct {
	Source      string
	Destination string
	Wallet      *wallet.Wallet
}

// String renders the intent without key material
func (i SwapIntent) String() string {
	return fmt.Sprintf("%s %s->%s", i.Wallet, i.Source, i.Destination)
}
