package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap sugared logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger builds a zap logger, JSON encoded when json is set
func NewZapLogger(json bool, level Level) (*ZapLogger, error) {
	var config zap.Config
	if level == DebugLevel {
		config = zap.NewDevelopmentConfig()
		config.Development = true
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel(level))

	if json {
		config.Encoding = "json"
	} else {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return FromZap(z), nil
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// zapLevel maps notice onto warn, zap has no notice level
func zapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case NoticeLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func (l *ZapLogger) withChain(chainID int) *zap.SugaredLogger {
	s := l.sugar.With("lz_chain_id", chainID)
	if prefix, ok := chainNames[chainIDMap[chainID]]; ok {
		s = s.With("chain", prefix)
	}
	return s
}

var chainNames = map[Chain]string{
	Pol: "polygon",
	Bsc: "bsc",
	Ava: "avalanche",
	Arb: "arbitrum",
	Op:  "optimism",
}

func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *ZapLogger) InfoWithChain(chainID int, format string, args ...interface{}) {
	l.withChain(chainID).Infof(format, args...)
}

func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *ZapLogger) ErrorWithChain(chainID int, format string, args ...interface{}) {
	l.withChain(chainID).Errorf(format, args...)
}

func (l *ZapLogger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *ZapLogger) DebugWithChain(chainID int, format string, args ...interface{}) {
	l.withChain(chainID).Debugf(format, args...)
}

func (l *ZapLogger) Notice(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *ZapLogger) NoticeWithChain(chainID int, format string, args ...interface{}) {
	l.withChain(chainID).Warnf(format, args...)
}
