package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/circuitbreaker"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
)

// ErrCircuitOpen is returned without contacting the node while the chain's breaker is open
var ErrCircuitOpen = errors.New("circuit breaker open")

// DefaultGasMultiplier leaves the suggested gas price untouched
const DefaultGasMultiplier = 1.0

// Backend is the subset of ethclient used by the bridger. Both
// *ethclient.Client and the simulated backend client implement it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client wraps the RPC connection of one chain with rate limiting, a circuit
// breaker and a gas price multiplier. It is safe for concurrent use.
type Client struct {
	descriptor    chains.Descriptor
	backend       Backend
	limiter       *rate.Limiter
	breaker       *circuitbreaker.CircuitBreaker
	gasMultiplier float64
	callTimeout   time.Duration
	logger        logger.Logger
	close         func()
}

// Option configures a Client
type Option func(*Client)

// WithRateLimit limits requests to rps per second with the given burst; rps <= 0 disables limiting
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker short-circuits calls while cb is open and feeds it transport failures
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithGasMultiplier scales suggested gas prices, e.g. 1.1 for a 10% buffer
func WithGasMultiplier(multiplier float64) Option {
	return func(c *Client) {
		if multiplier > 0 {
			c.gasMultiplier = multiplier
		}
	}
}

// WithCallTimeout bounds every single RPC request
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.callTimeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// Dial connects to the descriptor's RPC endpoint and checks that the node
// serves the expected EVM chain
func Dial(ctx context.Context, descriptor chains.Descriptor, opts ...Option) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, descriptor.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %s: %w", descriptor.Name, err)
	}

	client := NewWithBackend(descriptor, rpc, opts...)
	client.close = rpc.Close

	if err := client.VerifyChainID(ctx); err != nil {
		rpc.Close()
		return nil, err
	}

	return client, nil
}

// NewWithBackend wraps an existing backend
func NewWithBackend(descriptor chains.Descriptor, backend Backend, opts ...Option) *Client {
	c := &Client{
		descriptor:    descriptor,
		backend:       backend,
		gasMultiplier: DefaultGasMultiplier,
		logger:        &logger.EmptyLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Descriptor returns the chain this client talks to
func (c *Client) Descriptor() chains.Descriptor {
	return c.descriptor
}

// Breaker returns the circuit breaker, nil when none is configured
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// Close releases the underlying connection
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// VerifyChainID fails when the node reports a different EVM chain id than the descriptor
func (c *Client) VerifyChainID(ctx context.Context) error {
	var chainID *big.Int
	err := c.do(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		chainID, err = c.backend.ChainID(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	if c.descriptor.EVMChainID != 0 && chainID.Int64() != c.descriptor.EVMChainID {
		return fmt.Errorf("chain %s: node serves chain id %s, expected %d", c.descriptor.Name, chainID, c.descriptor.EVMChainID)
	}
	return nil
}

// PendingNonceAt returns the next nonce of account including pending transactions
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := c.do(ctx, "eth_getTransactionCount", func(ctx context.Context) error {
		var err error
		nonce, err = c.backend.PendingNonceAt(ctx, account)
		return err
	})
	return nonce, err
}

// SuggestGasPrice returns the node's gas price scaled by the gas multiplier
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	err := c.do(ctx, "eth_gasPrice", func(ctx context.Context) error {
		var err error
		gasPrice, err = c.backend.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return applyMultiplier(gasPrice, c.gasMultiplier), nil
}

// CallContract executes a read-only call
func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var output []byte
	err := c.do(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		output, err = c.backend.CallContract(ctx, call, blockNumber)
		return err
	})
	return output, err
}

// SendTransaction broadcasts a signed transaction
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.do(ctx, "eth_sendRawTransaction", func(ctx context.Context) error {
		return c.backend.SendTransaction(ctx, tx)
	})
}

// BlockNumber returns the latest block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.do(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		number, err = c.backend.BlockNumber(ctx)
		return err
	})
	return number, err
}

// do runs one request through the breaker and the limiter and records its result
func (c *Client) do(ctx context.Context, method string, call func(ctx context.Context) error) error {
	name := c.descriptor.Name

	if c.breaker != nil {
		if c.breaker.IsOpen() {
			metrics.RPCRequests.WithLabelValues(name, method, "circuit_open").Inc()
			return fmt.Errorf("%s on %s: %w", method, name, ErrCircuitOpen)
		}
		metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	err := call(ctx)
	if err == nil {
		metrics.RPCRequests.WithLabelValues(name, method, "success").Inc()
		return nil
	}

	errorType := ClassifyError(err)
	metrics.RPCRequests.WithLabelValues(name, method, errorType).Inc()

	// only transport failures say something about the endpoint's health
	if errorType == ErrorTypeNetwork && c.breaker != nil {
		tripped := c.breaker.RecordFailure()
		if tripped {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(1)
			c.logger.ErrorWithChain(int(c.descriptor.LzChainID), "RPC endpoint of %s marked unhealthy after %s failed: %v", name, method, err)
		}
	}

	return err
}

// applyMultiplier scales a gas price, e.g. 1.1 adds a 10% buffer
func applyMultiplier(gasPrice *big.Int, multiplier float64) *big.Int {
	if multiplier == DefaultGasMultiplier || multiplier <= 0 {
		return gasPrice
	}

	multiplied := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(multiplier),
	)

	result := new(big.Int)
	multiplied.Int(result)
	return result
}
