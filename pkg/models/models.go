package models

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Stage is a step of the per-wallet bridging workflow
type Stage int

const (
	StageScheduled Stage = iota
	StageWaitingForFunds
	StageCheckingAllowance
	StageEstimatingFee
	StageSubmitting
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageScheduled:         "scheduled",
	StageWaitingForFunds:   "waiting_for_funds",
	StageCheckingAllowance: "checking_allowance",
	StageEstimatingFee:     "estimating_fee",
	StageSubmitting:        "submitting",
	StageDone:              "done",
	StageFailed:            "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further stage can follow
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// StageRecord marks the completion of a stage
type StageRecord struct {
	Stage       Stage
	CompletedAt time.Time
}

// Outcome is the result of one workflow run
type Outcome struct {
	RunID       string
	Intent      SwapIntent
	TxHash      common.Hash
	ExplorerURL string
	Err         error
	// FailedStage is the stage that was running when Err occurred
	FailedStage Stage
	Stages      []StageRecord
}

// Succeeded reports whether the swap transaction was broadcast
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.TxHash != (common.Hash{})
}

// LastStage returns the most recent completed stage
func (o Outcome) LastStage() Stage {
	if len(o.Stages) == 0 {
		return StageScheduled
	}
	return o.Stages[len(o.Stages)-1].Stage
}

// Canceled reports whether the run ended because its context was canceled
func (o Outcome) Canceled() bool {
	return o.Err != nil && (errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded))
}
