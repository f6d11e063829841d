package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the severity level of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	NoticeLevel
	ErrorLevel
)

// Chain identifies the chain prefix printed in front of a message
type Chain int

const (
	None = iota
	Pol
	Bsc
	Ava
	Arb
	Op
)

// chainIDMap is keyed by LayerZero chain id
var chainIDMap = map[int]Chain{
	109: Pol,
	102: Bsc,
	106: Ava,
	110: Arb,
	111: Op,
}

var chainPrefixes = map[Chain]string{
	None: "",
	Pol:  "[POL]  ",
	Bsc:  "[BSC]  ",
	Ava:  "[AVA]  ",
	Arb:  "[ARB]  ",
	Op:   "[OP]   ",
}

var colors = map[Chain]color.Attribute{
	None: color.FgWhite,
	Pol:  color.FgMagenta,
	Bsc:  color.FgYellow,
	Ava:  color.FgRed,
	Arb:  color.FgHiBlue,
	Op:   color.FgHiRed,
}

// ParseLevel maps a textual level to a Level, defaulting to InfoLevel
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "notice":
		return NoticeLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", level)
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case NoticeLevel:
		return "notice"
	case ErrorLevel:
		return "error"
	}
	return "info"
}

// Logger is a simple interface for logging messages.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})
	InfoWithChain(chainID int, format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})
	ErrorWithChain(chainID int, format string, args ...interface{})

	// Debug logs a debug message.
	Debug(format string, args ...interface{})
	DebugWithChain(chainID int, format string, args ...interface{})

	// Notice logs a notice message.
	Notice(format string, args ...interface{})
	NoticeWithChain(chainID int, format string, args ...interface{})
}

// EmptyLogger is a simple implementation of the Logger interface that does nothing.
type EmptyLogger struct{}

var _ Logger = (*EmptyLogger)(nil)

func (l *EmptyLogger) Info(_ string, _ ...interface{})                   {}
func (l *EmptyLogger) InfoWithChain(_ int, _ string, _ ...interface{})   {}
func (l *EmptyLogger) Error(_ string, _ ...interface{})                  {}
func (l *EmptyLogger) ErrorWithChain(_ int, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Debug(_ string, _ ...interface{})                  {}
func (l *EmptyLogger) DebugWithChain(_ int, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Notice(_ string, _ ...interface{})                 {}
func (l *EmptyLogger) NoticeWithChain(_ int, _ string, _ ...interface{}) {}

// StdLogger is a standard implementation of the Logger interface that logs messages to the console.
type StdLogger struct {
	enableColoring bool
	level          Level
	out            *log.Logger
	mu             sync.Mutex
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
		out:            log.Default(),
	}
}

// NewStdLoggerWithWriter logs to w instead of the standard logger output
func NewStdLoggerWithWriter(w io.Writer, enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
		out:            log.New(w, "", log.LstdFlags),
	}
}

// formatMessage formats the log message with the appropriate log level, chain prefix, and coloring if enabled.
func (l *StdLogger) formatMessage(level Level, chain Chain, format string) string {
	chainPrefix := chainPrefixes[chain]
	if l.enableColoring {
		chainPrefix = color.New(colors[chain]).Sprint(chainPrefix)
	}

	var levelStr string
	switch level {
	case DebugLevel:
		levelStr = "[DEBUG]  "
	case InfoLevel:
		levelStr = "[INFO]   "
	case NoticeLevel:
		levelStr = "[NOTICE] "
	case ErrorLevel:
		levelStr = "[ERROR]  "
	}

	return levelStr + chainPrefix + format
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= InfoLevel {
		l.out.Printf(l.formatMessage(InfoLevel, None, format), args...)
	}
}

func (l *StdLogger) InfoWithChain(chainID int, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := chainIDMap[chainID]

	if l.level <= InfoLevel {
		l.out.Printf(l.formatMessage(InfoLevel, chain, format), args...)
	}
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= ErrorLevel {
		l.out.Printf(l.formatMessage(ErrorLevel, None, format), args...)
	}
}

func (l *StdLogger) ErrorWithChain(chainID int, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := chainIDMap[chainID]

	if l.level <= ErrorLevel {
		l.out.Printf(l.formatMessage(ErrorLevel, chain, format), args...)
	}
}

func (l *StdLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= DebugLevel {
		l.out.Printf(l.formatMessage(DebugLevel, None, format), args...)
	}
}

func (l *StdLogger) DebugWithChain(chainID int, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := chainIDMap[chainID]

	if l.level <= DebugLevel {
		l.out.Printf(l.formatMessage(DebugLevel, chain, format), args...)
	}
}

func (l *StdLogger) Notice(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= NoticeLevel {
		l.out.Printf(l.formatMessage(NoticeLevel, None, format), args...)
	}
}

func (l *StdLogger) NoticeWithChain(chainID int, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := chainIDMap[chainID]

	if l.level <= NoticeLevel {
		l.out.Printf(l.formatMessage(NoticeLevel, chain, format), args...)
	}
}
