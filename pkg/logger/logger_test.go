package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{" notice ", NoticeLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStdLoggerChainPrefixAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerWithWriter(&buf, false, InfoLevel)

	l.DebugWithChain(109, "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.InfoWithChain(109, "balance %s", "0.0004")
	assert.Contains(t, buf.String(), "[INFO]   [POL]  balance 0.0004")

	buf.Reset()
	l.ErrorWithChain(111, "failed")
	assert.Contains(t, buf.String(), "[ERROR]  [OP]   failed")

	buf.Reset()
	l.Notice("no chain")
	assert.Contains(t, buf.String(), "[NOTICE] no chain")

	buf.Reset()
	l.InfoWithChain(9999, "unmapped")
	assert.Contains(t, buf.String(), "[INFO]   unmapped")
}

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.InfoWithChain(102, "submitted %s", "0xabc")
	l.Notice("settling")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "submitted 0xabc", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(102), fields["lz_chain_id"])
	assert.Equal(t, "bsc", fields["chain"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestEmptyLoggerIsSilent(t *testing.T) {
	var l Logger = &EmptyLogger{}
	assert.NotPanics(t, func() {
		l.Info("x")
		l.ErrorWithChain(109, "y %d", 1)
	})
}
