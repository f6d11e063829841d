package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	WorkflowsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_workflows_started_total",
		Help: "The total number of started bridging workflows",
	}, []string{"source", "destination"})

	WorkflowsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_workflows_completed_total",
		Help: "The total number of finished bridging workflows by status",
	}, []string{"source", "destination", "status"})

	WorkflowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lzbridger_workflow_duration_seconds",
		Help:    "Time from workflow start to swap submission",
		Buckets: prometheus.ExponentialBuckets(30, 2, 10), // Start at 30s with 10 buckets doubling in size
	}, []string{"source", "destination"})

	ActiveWorkflows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lzbridger_active_workflows",
		Help: "The number of workflows currently running",
	})

	WorkflowStage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lzbridger_workflows_in_stage",
		Help: "The number of workflows currently in each stage",
	}, []string{"stage"})

	BalancePolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_balance_polls_total",
		Help: "The total number of token balance reads by result",
	}, []string{"chain", "result"})

	ApprovalsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_approvals_submitted_total",
		Help: "The total number of approval transactions broadcast",
	}, []string{"chain"})

	SwapsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_swaps_submitted_total",
		Help: "The total number of bridge transactions broadcast",
	}, []string{"source", "destination"})

	BridgedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_bridged_amount_units_total",
		Help: "Total token amount sent to the bridge, in the smallest token unit",
	}, []string{"source", "destination"})

	NativeFee = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lzbridger_native_fee_gwei",
		Help:    "Messaging fee quoted by the bridge in gwei",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 10),
	}, []string{"source", "destination"})

	WorkflowErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_errors_total",
		Help: "Total number of workflow errors by type",
	}, []string{"chain", "error_type"})

	GasPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lzbridger_gas_price_gwei",
		Help: "Current gas price in gwei",
	}, []string{"chain"})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzbridger_rpc_requests_total",
		Help: "The total number of RPC requests by method and result",
	}, []string{"chain", "method", "result"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lzbridger_circuit_breaker_open",
		Help: "1 when the chain's circuit breaker is open",
	}, []string{"chain"})
)
