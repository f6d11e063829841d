package bridge

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

// Runtime bundles the collaborators shared by every workflow
type Runtime struct {
	Options Options
	Sleeper Sleeper
	Now     func() time.Time
	Sink    EventSink
	Logger  logger.Logger
	// NewRunID defaults to random UUIDs
	NewRunID func() string
}

func (r Runtime) withDefaults() Runtime {
	if r.Sleeper == nil {
		r.Sleeper = TimerSleeper{}
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Sink == nil {
		r.Sink = MultiSink(nil)
	}
	if r.Logger == nil {
		r.Logger = &logger.EmptyLogger{}
	}
	if r.NewRunID == nil {
		r.NewRunID = uuid.NewString
	}
	if r.Options.MinBalance == nil {
		r.Options.MinBalance = new(big.Int)
	}
	return r
}

// Workflow drives one wallet through a single bridge transfer:
// start delay, balance wait, approval, fee estimation and submission.
// A workflow is single use.
type Workflow struct {
	runID       string
	intent      models.SwapIntent
	source      Chain
	destination Chain
	signer      Signer
	rt          Runtime

	balances  *BalanceWatcher
	approvals *ApprovalManager
	fees      *FeeEstimator
	swaps     *SwapExecutor

	stage   models.Stage
	records []models.StageRecord
}

// NewWorkflow prepares a workflow for intent between two resolved chains
func NewWorkflow(intent models.SwapIntent, source, destination Chain, rt Runtime) *Workflow {
	rt = rt.withDefaults()
	w := &Workflow{
		runID:       rt.NewRunID(),
		intent:      intent,
		source:      source,
		destination: destination,
		signer:      intent.Wallet,
		rt:          rt,
		stage:       models.StageScheduled,
	}

	w.balances = NewBalanceWatcher(rt.Options.PollJitter, rt.Sleeper, rt.Logger)
	w.approvals = NewApprovalManager(rt.Options.ApproveGasLimit, rt.Options.SettleDelay, rt.Sleeper, rt.Logger,
		func(chain Chain, tx SubmittedTransaction) {
			w.emit(Event{Kind: EventApprovalSubmitted, TxHash: tx.Hash, URL: chain.Descriptor.TxURL(tx.Hash)})
		})
	w.fees = NewFeeEstimator(rt.Options.UseZRO)
	w.swaps = NewSwapExecutor(rt.Options.SwapGasLimit, rt.Options.DstGasLimit)

	return w
}

// RunID identifies this run in events and outcomes
func (w *Workflow) RunID() string {
	return w.runID
}

// Run executes the workflow until the swap is submitted or a stage fails
func (w *Workflow) Run(ctx context.Context) models.Outcome {
	started := w.rt.Now()
	sourceName, destinationName := w.source.Descriptor.Name, w.destination.Descriptor.Name

	metrics.WorkflowsStarted.WithLabelValues(sourceName, destinationName).Inc()
	metrics.ActiveWorkflows.Inc()
	metrics.WorkflowStage.WithLabelValues(w.stage.String()).Inc()
	defer func() {
		metrics.WorkflowStage.WithLabelValues(w.stage.String()).Dec()
		metrics.ActiveWorkflows.Dec()
	}()

	w.emit(Event{Kind: EventStart})

	outcome := models.Outcome{
		RunID:  w.runID,
		Intent: w.intent,
	}

	submitted, err := w.run(ctx)
	if err != nil {
		outcome.FailedStage = w.stage
		outcome.Err = err
		w.terminate(models.StageFailed)

		kind := ErrorKind(err)
		metrics.WorkflowErrors.WithLabelValues(sourceName, kind).Inc()
		metrics.WorkflowsCompleted.WithLabelValues(sourceName, destinationName, kind).Inc()
		w.emit(Event{Kind: EventError, Err: err})
	} else {
		w.complete(models.StageDone)
		w.terminate(models.StageDone)
		outcome.TxHash = submitted.Hash
		outcome.ExplorerURL = w.source.Descriptor.TxURL(submitted.Hash)

		metrics.WorkflowsCompleted.WithLabelValues(sourceName, destinationName, "success").Inc()
		metrics.WorkflowDuration.WithLabelValues(sourceName, destinationName).Observe(w.rt.Now().Sub(started).Seconds())
	}

	outcome.Stages = append([]models.StageRecord(nil), w.records...)
	w.emit(Event{Kind: EventFinish, TxHash: outcome.TxHash, URL: outcome.ExplorerURL})

	return outcome
}

func (w *Workflow) run(ctx context.Context) (SubmittedTransaction, error) {
	owner := w.signer.Address()
	opts := w.rt.Options

	// Scheduled
	if err := w.rt.Sleeper.Sleep(ctx, opts.StartJitter.Next()); err != nil {
		return SubmittedTransaction{}, err
	}
	w.complete(models.StageWaitingForFunds)

	// Waiting for funds
	balance, err := w.balances.AwaitMinimum(ctx, w.source, owner, opts.MinBalance)
	if err != nil {
		return SubmittedTransaction{}, err
	}
	w.emit(Event{Kind: EventBalanceSufficient, Balance: balance})
	w.complete(models.StageCheckingAllowance)

	// Checking allowance
	spender := w.source.Descriptor.BridgeAddress
	if _, err := w.approvals.EnsureAllowance(ctx, w.source, w.signer, spender, balance); err != nil {
		return SubmittedTransaction{}, err
	}
	w.complete(models.StageEstimatingFee)

	// Estimating fee. The nonce and gas price snapshot for Submitting is
	// taken alongside; its failure belongs to Submitting.
	var (
		fee         *big.Int
		nonce       uint64
		gasPrice    *big.Int
		feeErr      error
		snapshotErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		adapterParams := AdapterParams(opts.DstGasLimit, owner)
		fee, feeErr = w.fees.EstimateFee(ctx, w.source, w.destination.Descriptor.LzChainID, owner, balance, adapterParams)
		return feeErr
	})
	g.Go(func() error {
		nonce, gasPrice, snapshotErr = snapshot(ctx, w.source.Client, owner)
		return snapshotErr
	})
	_ = g.Wait()
	if feeErr != nil {
		return SubmittedTransaction{}, feeErr
	}
	metrics.NativeFee.WithLabelValues(w.source.Descriptor.Name, w.destination.Descriptor.Name).Observe(chains.WeiToGwei(fee))
	w.complete(models.StageSubmitting)

	if snapshotErr != nil {
		return SubmittedTransaction{}, snapshotErr
	}

	// Submitting
	submitted, err := w.swaps.Execute(ctx, w.source, w.destination.Descriptor, w.signer, balance, fee, nonce, gasPrice)
	if err != nil {
		return SubmittedTransaction{}, err
	}

	metrics.SwapsSubmitted.WithLabelValues(w.source.Descriptor.Name, w.destination.Descriptor.Name).Inc()
	amount, _ := new(big.Float).SetInt(balance).Float64()
	metrics.BridgedAmount.WithLabelValues(w.source.Descriptor.Name, w.destination.Descriptor.Name).Add(amount)
	w.emit(Event{Kind: EventSwapSubmitted, TxHash: submitted.Hash, URL: w.source.Descriptor.TxURL(submitted.Hash), Balance: balance})

	return submitted, nil
}

// complete records the end of the current stage and moves to next
func (w *Workflow) complete(next models.Stage) {
	finished := w.stage
	w.records = append(w.records, models.StageRecord{Stage: finished, CompletedAt: w.rt.Now()})
	w.emit(Event{Kind: EventStageCompleted, Stage: finished, Next: next})

	metrics.WorkflowStage.WithLabelValues(finished.String()).Dec()
	metrics.WorkflowStage.WithLabelValues(next.String()).Inc()
	w.stage = next
}

// terminate records the terminal stage itself
func (w *Workflow) terminate(final models.Stage) {
	if w.stage != final {
		metrics.WorkflowStage.WithLabelValues(w.stage.String()).Dec()
		metrics.WorkflowStage.WithLabelValues(final.String()).Inc()
		w.stage = final
	}
	w.records = append(w.records, models.StageRecord{Stage: final, CompletedAt: w.rt.Now()})
}

func (w *Workflow) emit(e Event) {
	e.RunID = w.runID
	e.Wallet = w.signer.Address()
	e.Source = w.source.Descriptor.Name
	e.Destination = w.destination.Descriptor.Name
	e.LzChainID = w.source.Descriptor.LzChainID
	if e.Kind != EventStageCompleted {
		e.Stage = w.stage
	}
	e.At = w.rt.Now()
	w.rt.Sink.Handle(e)
}
