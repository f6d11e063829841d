package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

const (
	// DefaultWalletsFile is the file holding one private key per line
	DefaultWalletsFile = "wallets.txt"

	// DefaultSourceChain is the chain tokens are bridged from
	DefaultSourceChain = "polygon"

	// DefaultDestinationChain is the chain tokens are bridged to
	DefaultDestinationChain = "bsc"

	// DefaultMinBalance is the minimum token balance, in the smallest unit, worth bridging
	DefaultMinBalance = bridge.DefaultMinBalance

	// DefaultMaxConcurrentWorkflows defines the number of wallets bridged at once, 0 means all
	DefaultMaxConcurrentWorkflows = 0

	// DefaultRPCRateLimit defines the number of requests per second sent to each RPC endpoint
	DefaultRPCRateLimit = 10.0

	// DefaultRPCBurst defines the burst size of the RPC rate limiter
	DefaultRPCBurst = 5

	// DefaultRPCTimeout bounds a single RPC request
	DefaultRPCTimeout = 30 * time.Second

	// DefaultMetricsEnabled defines whether the metrics and status server is started
	DefaultMetricsEnabled = true

	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker
	DefaultCircuitBreakerWindow = 60 * time.Second

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker
	DefaultCircuitBreakerReset = 120 * time.Second

	// DefaultGasMonitorInterval defines how often gas prices are sampled, 0 disables sampling
	DefaultGasMonitorInterval = 60 * time.Second

	// DefaultGasMultiplier leaves suggested gas prices untouched
	DefaultGasMultiplier = 1.0
)

// GetEnvWalletsFile returns the wallets file path from environment variables
func GetEnvWalletsFile() string {
	path := os.Getenv("WALLETS_FILE")
	if path == "" {
		return DefaultWalletsFile
	}
	return path
}

// GetEnvRoutes returns the chain pairs to bridge over. ROUTES takes a comma
// separated list of source:destination pairs; without it a single route is
// built from SOURCE_CHAIN and DESTINATION_CHAIN.
func GetEnvRoutes() ([]Route, error) {
	if routes := os.Getenv("ROUTES"); routes != "" {
		return ParseRoutes(routes)
	}

	source := os.Getenv("SOURCE_CHAIN")
	if source == "" {
		source = DefaultSourceChain
	}
	destination := os.Getenv("DESTINATION_CHAIN")
	if destination == "" {
		destination = DefaultDestinationChain
	}
	return []Route{{Source: strings.ToLower(source), Destination: strings.ToLower(destination)}}, nil
}

// ParseRoutes parses "polygon:bsc,arbitrum:optimism"
func ParseRoutes(value string) ([]Route, error) {
	var routes []Route
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("invalid route %q, must be 'source:destination'", entry)
		}
		routes = append(routes, Route{
			Source:      strings.ToLower(strings.TrimSpace(parts[0])),
			Destination: strings.ToLower(strings.TrimSpace(parts[1])),
		})
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("no route in %q", value)
	}
	return routes, nil
}

// GetEnvMinBalance returns the minimum balance threshold from environment variables
func GetEnvMinBalance() (*big.Int, error) {
	minBalance := os.Getenv("MIN_BALANCE")
	if minBalance == "" {
		return big.NewInt(DefaultMinBalance), nil
	}

	value, ok := new(big.Int).SetString(minBalance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid MIN_BALANCE value: %s, must be a valid integer string", minBalance)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("MIN_BALANCE must be greater than or equal to 0")
	}
	return value, nil
}

// GetEnvDuration returns a duration from environment variables. Values are
// Go duration strings ("90s", "5m") or a plain number of seconds.
func GetEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%s must be greater than or equal to 0", key)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s, must be a valid duration string", key, value)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", key)
	}
	return parsed, nil
}

// GetEnvGasLimit returns a positive gas limit from environment variables
func GetEnvGasLimit(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	limit, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s, must be a positive integer", key, value)
	}
	if limit == 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return limit, nil
}

// GetEnvBool returns a boolean from environment variables
func GetEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if value == "true" {
		return true, nil
	} else if value == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid %s value: %s, must be 'true' or 'false'", key, value)
}

// GetEnvMaxConcurrentWorkflows returns the workflow concurrency cap from environment variables
func GetEnvMaxConcurrentWorkflows() (int, error) {
	value := os.Getenv("MAX_CONCURRENT_WORKFLOWS")
	if value == "" {
		return DefaultMaxConcurrentWorkflows, nil
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_CONCURRENT_WORKFLOWS value: %s, must be an integer", value)
	}
	if count < 0 {
		return 0, fmt.Errorf("MAX_CONCURRENT_WORKFLOWS must be greater than or equal to 0")
	}
	return count, nil
}

// GetEnvRPCRateLimit returns the per endpoint request rate from environment variables
func GetEnvRPCRateLimit() (float64, error) {
	value := os.Getenv("RPC_RATE_LIMIT")
	if value == "" {
		return DefaultRPCRateLimit, nil
	}

	rps, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid RPC_RATE_LIMIT value: %s, must be a number", value)
	}
	if rps < 0 {
		return 0, fmt.Errorf("RPC_RATE_LIMIT must be greater than or equal to 0")
	}
	return rps, nil
}

// GetEnvRPCBurst returns the rate limiter burst from environment variables
func GetEnvRPCBurst() (int, error) {
	value := os.Getenv("RPC_BURST")
	if value == "" {
		return DefaultRPCBurst, nil
	}

	burst, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid RPC_BURST value: %s, must be an integer", value)
	}
	if burst <= 0 {
		return 0, fmt.Errorf("RPC_BURST must be greater than 0")
	}
	return burst, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logger.InfoLevel, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}
	return level, nil
}

// GetEnvLogFormat returns whether logs are written as JSON
func GetEnvLogFormat() (bool, error) {
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "", "console", "text":
		return false, nil
	case "json":
		return true, nil
	}
	return false, fmt.Errorf("invalid LOG_FORMAT value: %s, must be 'console' or 'json'", os.Getenv("LOG_FORMAT"))
}

// GetEnvGasMultiplier returns CHAIN_<NAME>_GAS_MULTIPLIER, defaulting to 1.0
func GetEnvGasMultiplier(chainName string) (float64, error) {
	key := fmt.Sprintf("CHAIN_%s_GAS_MULTIPLIER", strings.ToUpper(chainName))
	value := os.Getenv(key)
	if value == "" {
		return DefaultGasMultiplier, nil
	}

	multiplier, err := strconv.ParseFloat(value, 64)
	if err != nil || multiplier <= 0 {
		return 0, fmt.Errorf("invalid %s value: %s, must be a positive number", key, value)
	}
	return multiplier, nil
}

// GetEnvChainConfigs returns the descriptors of every supported chain with
// <NAME>_RPC_URL, <NAME>_BRIDGE_ADDRESS and <NAME>_TOKEN_ADDRESS applied
func GetEnvChainConfigs() ([]chains.Descriptor, error) {
	descriptors := make([]chains.Descriptor, 0, len(chains.DefaultTable))

	for _, entry := range chains.DefaultTable {
		prefix := strings.ToUpper(entry.Name)
		descriptor := entry.Descriptor(os.Getenv(prefix + "_RPC_URL"))

		if bridgeAddress := os.Getenv(prefix + "_BRIDGE_ADDRESS"); bridgeAddress != "" {
			if !common.IsHexAddress(bridgeAddress) {
				return nil, fmt.Errorf("invalid %s_BRIDGE_ADDRESS value: %s, must be a valid Ethereum address", prefix, bridgeAddress)
			}
			descriptor.BridgeAddress = common.HexToAddress(bridgeAddress)
		}

		if tokenAddress := os.Getenv(prefix + "_TOKEN_ADDRESS"); tokenAddress != "" {
			if !common.IsHexAddress(tokenAddress) {
				return nil, fmt.Errorf("invalid %s_TOKEN_ADDRESS value: %s, must be a valid Ethereum address", prefix, tokenAddress)
			}
			descriptor.TokenAddress = common.HexToAddress(tokenAddress)
		}

		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}

// GetEnvMetricsAPIKey returns the key guarding the metrics and status endpoints, empty disables the check
func GetEnvMetricsAPIKey() string {
	return os.Getenv("METRICS_API_KEY")
}
