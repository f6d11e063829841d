package bridge

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

// EventKind names a workflow progress event
type EventKind string

const (
	EventStart             EventKind = "start"
	EventStageCompleted    EventKind = "stage-completed"
	EventBalanceSufficient EventKind = "balance-sufficient"
	EventApprovalSubmitted EventKind = "approval-submitted"
	EventSwapSubmitted     EventKind = "swap-submitted"
	EventError             EventKind = "error"
	EventFinish            EventKind = "finish"
)

// Event is a progress record of one workflow run
type Event struct {
	Kind        EventKind
	RunID       string
	Wallet      common.Address
	Source      string
	Destination string
	// LzChainID of the source chain, zero when it could not be resolved
	LzChainID uint16
	Stage     models.Stage
	// Next is the stage entered, set on stage-completed events only
	Next    models.Stage
	TxHash  common.Hash
	URL     string
	Balance *big.Int
	Err     error
	At      time.Time
}

// EventSink receives workflow events. Sinks are shared by all workflows and
// must be safe for concurrent use.
type EventSink interface {
	Handle(Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(Event)

func (f EventSinkFunc) Handle(e Event) {
	f(e)
}

// MultiSink fans an event out to several sinks
type MultiSink []EventSink

func (m MultiSink) Handle(e Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Handle(e)
		}
	}
}

// LogSink renders events through a Logger
type LogSink struct {
	Logger logger.Logger
}

func (s LogSink) Handle(e Event) {
	chainID := int(e.LzChainID)

	switch e.Kind {
	case EventStart:
		s.Logger.InfoWithChain(chainID, "Wallet: %s | Start | %s -> %s", e.Wallet.Hex(), e.Source, e.Destination)
	case EventStageCompleted:
		s.Logger.DebugWithChain(chainID, "Wallet: %s | stage %s completed", e.Wallet.Hex(), e.Stage)
	case EventBalanceSufficient:
		s.Logger.InfoWithChain(chainID, "Wallet: %s | balance %s %s on %s", e.Wallet.Hex(), chains.FormatAmount(e.Balance), chains.TokenSymbol, e.Source)
	case EventApprovalSubmitted:
		s.Logger.NoticeWithChain(chainID, "%s | %s APPROVED %s", e.Source, chains.TokenSymbol, e.URL)
	case EventSwapSubmitted:
		s.Logger.NoticeWithChain(chainID, "%s -> %s | %s | %s | Transaction: %s", e.Source, e.Destination, chains.TokenSymbol, e.Wallet.Hex(), e.URL)
	case EventError:
		s.Logger.ErrorWithChain(chainID, "Wallet: %s | %s -> %s | %s: %v", e.Wallet.Hex(), e.Source, e.Destination, ErrorKind(e.Err), e.Err)
	case EventFinish:
		s.Logger.InfoWithChain(chainID, "Wallet: %s | Finish (%s)", e.Wallet.Hex(), e.Stage)
	}
}

// EventRecorder keeps every event in memory, mostly useful in tests and for
// the final run summary
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *EventRecorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns the number of recorded events of a kind
func (r *EventRecorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
