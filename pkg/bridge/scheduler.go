package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/speedrun-hq/lzbridger/pkg/metrics"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

// Scheduler runs one workflow per intent, concurrently across wallets
type Scheduler struct {
	networks Networks
	rt       Runtime
}

// NewScheduler creates a scheduler resolving chains through networks
func NewScheduler(networks Networks, rt Runtime) *Scheduler {
	return &Scheduler{
		networks: networks,
		rt:       rt.withDefaults(),
	}
}

// Run executes every intent and returns their outcomes in input order.
// Intents of distinct wallets run concurrently. Intents sharing a wallet run
// one after another since they draw from the same nonce sequence. A failing
// workflow never cancels another one.
func (s *Scheduler) Run(ctx context.Context, intents []models.SwapIntent) []models.Outcome {
	outcomes := make([]models.Outcome, len(intents))

	var g errgroup.Group
	if s.rt.Options.MaxConcurrent > 0 {
		g.SetLimit(s.rt.Options.MaxConcurrent)
	}

	for _, lane := range lanes(intents) {
		g.Go(func() error {
			for _, i := range lane {
				outcomes[i] = s.runOne(ctx, intents[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Scheduler) runOne(ctx context.Context, intent models.SwapIntent) models.Outcome {
	if intent.Wallet == nil {
		return s.reject(intent, errors.New("intent without wallet"))
	}

	source, err := s.networks.Network(intent.Source)
	if err != nil {
		return s.reject(intent, fmt.Errorf("source: %w", err))
	}
	destination, err := s.networks.Network(intent.Destination)
	if err != nil {
		return s.reject(intent, fmt.Errorf("destination: %w", err))
	}

	return NewWorkflow(intent, source, destination, s.rt).Run(ctx)
}

// reject reports an intent that could not be turned into a workflow
func (s *Scheduler) reject(intent models.SwapIntent, err error) models.Outcome {
	outcome := models.Outcome{
		RunID:       s.rt.NewRunID(),
		Intent:      intent,
		Err:         err,
		FailedStage: models.StageScheduled,
		Stages:      []models.StageRecord{{Stage: models.StageFailed, CompletedAt: s.rt.Now()}},
	}

	metrics.WorkflowErrors.WithLabelValues(intent.Source, ErrorKind(err)).Inc()

	e := Event{
		Kind:        EventError,
		RunID:       outcome.RunID,
		Source:      intent.Source,
		Destination: intent.Destination,
		Stage:       models.StageFailed,
		Err:         err,
		At:          s.rt.Now(),
	}
	if intent.Wallet != nil {
		e.Wallet = intent.Wallet.Address()
	}
	s.rt.Sink.Handle(e)

	return outcome
}

// lanes groups intent indexes by wallet address, keeping input order
func lanes(intents []models.SwapIntent) [][]int {
	var (
		result [][]int
		byAddr = make(map[common.Address]int)
	)
	for i, intent := range intents {
		if intent.Wallet == nil {
			result = append(result, []int{i})
			continue
		}
		addr := intent.Wallet.Address()

		lane, ok := byAddr[addr]
		if !ok {
			lane = len(result)
			byAddr[addr] = lane
			result = append(result, nil)
		}
		result[lane] = append(result[lane], i)
	}
	return result
}

// Summary counts outcomes
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Canceled  int
	ByKind    map[string]int
}

// Summarize tallies outcomes by result and error kind
func Summarize(outcomes []models.Outcome) Summary {
	summary := Summary{Total: len(outcomes), ByKind: make(map[string]int)}
	for _, o := range outcomes {
		switch {
		case o.Succeeded():
			summary.Succeeded++
		case o.Canceled():
			summary.Canceled++
		default:
			summary.Failed++
			summary.ByKind[ErrorKind(o.Err)]++
		}
	}
	return summary
}
