package chains

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		expected string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"minimum threshold", big.NewInt(30000), "0.0003"},
		{"one satoshi", big.NewInt(1), "0.00000001"},
		{"one token", big.NewInt(100000000), "1"},
		{"mixed", big.NewInt(123456789), "1.23456789"},
		{"negative", big.NewInt(-50000000), "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.amount))
		})
	}
}

func TestWeiToGwei(t *testing.T) {
	tests := []struct {
		name     string
		wei      *big.Int
		expected float64
	}{
		{"nil", nil, 0},
		{"one gwei", big.NewInt(1000000000), 1},
		{"thirty gwei", big.NewInt(30000000000), 30},
		{"fraction", big.NewInt(1500000000), 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeiToGwei(tt.wei), 1e-9)
		})
	}
}
