package health

import (
	"sync"
	"time"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

// WorkflowStatus is the last known state of one workflow run
type WorkflowStatus struct {
	RunID       string    `json:"run_id"`
	Wallet      string    `json:"wallet"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Stage       string    `json:"stage"`
	ApprovalTx  string    `json:"approval_tx,omitempty"`
	SwapTx      string    `json:"swap_tx,omitempty"`
	SwapURL     string    `json:"swap_url,omitempty"`
	Balance     string    `json:"balance,omitempty"`
	Error       string    `json:"error,omitempty"`
	Done        bool      `json:"done"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tracker keeps the state of every workflow it has seen an event for.
// It implements bridge.EventSink.
type Tracker struct {
	mu    sync.RWMutex
	runs  map[string]*WorkflowStatus
	order []string
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*WorkflowStatus)}
}

// Handle updates the status of the workflow the event belongs to
func (t *Tracker) Handle(e bridge.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.runs[e.RunID]
	if !ok {
		status = &WorkflowStatus{
			RunID:       e.RunID,
			Wallet:      e.Wallet.Hex(),
			Source:      e.Source,
			Destination: e.Destination,
			StartedAt:   e.At,
		}
		t.runs[e.RunID] = status
		t.order = append(t.order, e.RunID)
	}

	status.Stage = e.Stage.String()
	if e.Kind == bridge.EventStageCompleted {
		status.Stage = e.Next.String()
	}
	status.UpdatedAt = e.At

	switch e.Kind {
	case bridge.EventBalanceSufficient:
		if e.Balance != nil {
			status.Balance = e.Balance.String()
		}
	case bridge.EventApprovalSubmitted:
		status.ApprovalTx = e.TxHash.Hex()
	case bridge.EventSwapSubmitted:
		status.SwapTx = e.TxHash.Hex()
		status.SwapURL = e.URL
	case bridge.EventError, bridge.EventFinish:
		if e.Err != nil {
			status.Error = e.Err.Error()
		}
		status.Done = true
	}
}

// Workflows returns a copy of every tracked workflow in first-seen order
func (t *Tracker) Workflows() []WorkflowStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]WorkflowStatus, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.runs[id])
	}
	return out
}

// Counts returns the number of workflows per stage name
func (t *Tracker) Counts() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]int)
	for _, status := range t.runs {
		counts[status.Stage]++
	}
	return counts
}

// Active returns the number of workflows that have not finished yet
func (t *Tracker) Active() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := 0
	for _, status := range t.runs {
		if !status.Done && status.Stage != models.StageDone.String() {
			active++
		}
	}
	return active
}
