package chains

import (
	"math/big"
	"strings"
)

const (
	// TokenSymbol is the symbol of the bridged token
	TokenSymbol = "BTC.b"

	// TokenDecimals is the number of decimals of the bridged token on every supported chain
	TokenDecimals = 8
)

// FormatAmount renders a raw token amount as a decimal string, e.g. 40000 -> "0.0004"
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(amount)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)
	whole, frac := new(big.Int).QuoRem(abs, unit, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	fracStr = strings.Repeat("0", TokenDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return sign + whole.String() + "." + fracStr
}

// WeiToGwei converts a native currency amount in wei to gwei
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	return gwei
}
