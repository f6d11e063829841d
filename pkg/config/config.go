package config

import (
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/joho/godotenv"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

// Route is one source/destination pair bridged for every wallet
type Route struct {
	Source      string
	Destination string
}

// String returns "source -> destination"
func (r Route) String() string {
	return r.Source + " -> " + r.Destination
}

// Config holds the application configuration
type Config struct {
	WalletsFile        string
	Routes             []Route
	Chains             []chains.Descriptor
	GasMultipliers     map[string]float64
	Workflow           WorkflowConfig
	RPC                RPCConfig
	MetricsEnabled     bool
	MetricsPort        string
	MetricsAPIKey      string
	GasMonitorInterval time.Duration
	CircuitBreaker     CircuitBreakerConfig
	LoggerConfig       LoggerConfig
}

// WorkflowConfig holds the timing and transaction parameters of a swap workflow
type WorkflowConfig struct {
	MinBalance      *big.Int
	StartDelayMin   time.Duration
	StartDelayMax   time.Duration
	PollDelayMin    time.Duration
	PollDelayMax    time.Duration
	SettleDelay     time.Duration
	ApproveGasLimit uint64
	SwapGasLimit    uint64
	DstGasLimit     uint64
	UseZRO          bool
	MaxConcurrent   int
}

// RPCConfig holds the client side limits applied to every RPC endpoint
type RPCConfig struct {
	RateLimit float64
	Burst     int
	Timeout   time.Duration
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
	JSON     bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only
func FromEnv() (*Config, error) {
	routes, err := GetEnvRoutes()
	if err != nil {
		return nil, err
	}

	descriptors, err := GetEnvChainConfigs()
	if err != nil {
		return nil, err
	}

	multipliers := make(map[string]float64, len(descriptors))
	for _, descriptor := range descriptors {
		multiplier, err := GetEnvGasMultiplier(descriptor.Name)
		if err != nil {
			return nil, err
		}
		multipliers[descriptor.Name] = multiplier
	}

	workflow, err := getEnvWorkflowConfig()
	if err != nil {
		return nil, err
	}

	rps, err := GetEnvRPCRateLimit()
	if err != nil {
		return nil, err
	}
	burst, err := GetEnvRPCBurst()
	if err != nil {
		return nil, err
	}
	rpcTimeout, err := GetEnvDuration("RPC_TIMEOUT", DefaultRPCTimeout)
	if err != nil {
		return nil, err
	}

	metricsEnabled, err := GetEnvBool("METRICS_ENABLED", DefaultMetricsEnabled)
	if err != nil {
		return nil, err
	}
	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	gasMonitorInterval, err := GetEnvDuration("GAS_MONITOR_INTERVAL", DefaultGasMonitorInterval)
	if err != nil {
		return nil, err
	}

	breaker, err := getEnvCircuitBreakerConfig()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}
	logColoring, err := GetEnvBool("LOG_COLORING", true)
	if err != nil {
		return nil, err
	}
	logJSON, err := GetEnvLogFormat()
	if err != nil {
		return nil, err
	}

	config := &Config{
		WalletsFile:        GetEnvWalletsFile(),
		Routes:             routes,
		Chains:             descriptors,
		GasMultipliers:     multipliers,
		Workflow:           workflow,
		RPC:                RPCConfig{RateLimit: rps, Burst: burst, Timeout: rpcTimeout},
		MetricsEnabled:     metricsEnabled,
		MetricsPort:        metricsPort,
		MetricsAPIKey:      GetEnvMetricsAPIKey(),
		GasMonitorInterval: gasMonitorInterval,
		CircuitBreaker:     breaker,
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
			JSON:     logJSON,
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnvWorkflowConfig() (WorkflowConfig, error) {
	var (
		workflow WorkflowConfig
		err      error
	)

	if workflow.MinBalance, err = GetEnvMinBalance(); err != nil {
		return workflow, err
	}
	if workflow.StartDelayMin, err = GetEnvDuration("START_DELAY_MIN", bridge.DefaultJitterMin); err != nil {
		return workflow, err
	}
	if workflow.StartDelayMax, err = GetEnvDuration("START_DELAY_MAX", bridge.DefaultJitterMax); err != nil {
		return workflow, err
	}
	if workflow.PollDelayMin, err = GetEnvDuration("POLL_DELAY_MIN", bridge.DefaultJitterMin); err != nil {
		return workflow, err
	}
	if workflow.PollDelayMax, err = GetEnvDuration("POLL_DELAY_MAX", bridge.DefaultJitterMax); err != nil {
		return workflow, err
	}
	if workflow.SettleDelay, err = GetEnvDuration("APPROVAL_SETTLE_DELAY", bridge.DefaultSettleDelay); err != nil {
		return workflow, err
	}
	if workflow.ApproveGasLimit, err = GetEnvGasLimit("APPROVE_GAS_LIMIT", bridge.DefaultApproveGasLimit); err != nil {
		return workflow, err
	}
	if workflow.SwapGasLimit, err = GetEnvGasLimit("SWAP_GAS_LIMIT", bridge.DefaultSwapGasLimit); err != nil {
		return workflow, err
	}
	if workflow.DstGasLimit, err = GetEnvGasLimit("DST_GAS_LIMIT", bridge.DefaultDstGasLimit); err != nil {
		return workflow, err
	}
	if workflow.UseZRO, err = GetEnvBool("USE_ZRO", true); err != nil {
		return workflow, err
	}
	if workflow.MaxConcurrent, err = GetEnvMaxConcurrentWorkflows(); err != nil {
		return workflow, err
	}

	return workflow, nil
}

func getEnvCircuitBreakerConfig() (CircuitBreakerConfig, error) {
	enabled, err := GetEnvBool("CIRCUIT_BREAKER_ENABLED", DefaultCircuitBreakerEnabled)
	if err != nil {
		return CircuitBreakerConfig{}, err
	}
	threshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return CircuitBreakerConfig{}, err
	}
	window, err := GetEnvDuration("CIRCUIT_BREAKER_WINDOW", DefaultCircuitBreakerWindow)
	if err != nil {
		return CircuitBreakerConfig{}, err
	}
	reset, err := GetEnvDuration("CIRCUIT_BREAKER_RESET", DefaultCircuitBreakerReset)
	if err != nil {
		return CircuitBreakerConfig{}, err
	}

	return CircuitBreakerConfig{
		Enabled:        enabled,
		Threshold:      threshold,
		WindowDuration: window,
		ResetTimeout:   reset,
	}, nil
}

// Registry returns the chain registry built from the configured descriptors
func (c *Config) Registry() (*chains.Registry, error) {
	return chains.NewRegistry(c.Chains)
}

// BridgeOptions converts the workflow configuration into workflow options
func (c *Config) BridgeOptions() bridge.Options {
	opts := bridge.DefaultOptions()
	opts.StartJitter = bridge.Jitter{Min: c.Workflow.StartDelayMin, Max: c.Workflow.StartDelayMax}
	opts.PollJitter = bridge.Jitter{Min: c.Workflow.PollDelayMin, Max: c.Workflow.PollDelayMax}
	opts.SettleDelay = c.Workflow.SettleDelay
	if c.Workflow.MinBalance != nil {
		opts.MinBalance = new(big.Int).Set(c.Workflow.MinBalance)
	}
	opts.ApproveGasLimit = c.Workflow.ApproveGasLimit
	opts.SwapGasLimit = c.Workflow.SwapGasLimit
	opts.DstGasLimit = c.Workflow.DstGasLimit
	opts.UseZRO = c.Workflow.UseZRO
	opts.MaxConcurrent = c.Workflow.MaxConcurrent
	return opts
}

// validateConfig checks the cross field constraints the getters cannot see
func validateConfig(config *Config) error {
	if config.WalletsFile == "" {
		return fmt.Errorf("WALLETS_FILE is required")
	}

	if len(config.Routes) == 0 {
		return fmt.Errorf("at least one route is required")
	}

	registry, err := config.Registry()
	if err != nil {
		return err
	}
	for _, route := range config.Routes {
		if route.Source == route.Destination {
			return fmt.Errorf("route %s: source and destination must differ", route)
		}
		if _, err := registry.Resolve(route.Source); err != nil {
			return fmt.Errorf("route %s: %w", route, err)
		}
		if _, err := registry.Resolve(route.Destination); err != nil {
			return fmt.Errorf("route %s: %w", route, err)
		}
	}

	if config.Workflow.StartDelayMin > config.Workflow.StartDelayMax {
		return fmt.Errorf("START_DELAY_MIN must be less than or equal to START_DELAY_MAX")
	}
	if config.Workflow.PollDelayMin > config.Workflow.PollDelayMax {
		return fmt.Errorf("POLL_DELAY_MIN must be less than or equal to POLL_DELAY_MAX")
	}

	if config.CircuitBreaker.Enabled && config.CircuitBreaker.WindowDuration <= 0 {
		return fmt.Errorf("CIRCUIT_BREAKER_WINDOW must be greater than 0")
	}

	return nil
}

// Validate re-checks the configuration after command line overrides
func (c *Config) Validate() error {
	return validateConfig(c)
}
