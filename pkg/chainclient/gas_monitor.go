package chainclient

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
)

// GasMonitor periodically samples the gas price of a chain into metrics
type GasMonitor struct {
	ctx      context.Context
	client   *Client
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
	mu       sync.RWMutex
	running  bool
	last     *big.Int
	logger   logger.Logger
}

// NewGasMonitor creates a gas monitor bound to ctx
func NewGasMonitor(ctx context.Context, client *Client, interval time.Duration, log logger.Logger) *GasMonitor {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &GasMonitor{
		ctx:      ctx,
		client:   client,
		interval: interval,
		logger:   log,
	}
}

// Start begins the periodic sampling
func (m *GasMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopChan = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true

	go m.run(m.stopChan, m.done)
}

// Stop halts the sampling and waits for the running sample to finish
func (m *GasMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.stopChan)
	done := m.done
	m.stopChan = nil
	m.running = false
	m.mu.Unlock()

	<-done
}

// IsRunning returns whether the monitor is currently running
func (m *GasMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastGasPrice returns the most recent sample, nil before the first one
func (m *GasMonitor) LastGasPrice() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *GasMonitor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sample()

	for {
		select {
		case <-ticker.C:
			m.sample()
		case <-stop:
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// sample takes a single gas price reading
func (m *GasMonitor) sample() {
	descriptor := m.client.Descriptor()

	gasPrice, err := m.client.SuggestGasPrice(m.ctx)
	if err != nil {
		if m.ctx.Err() == nil {
			m.logger.ErrorWithChain(int(descriptor.LzChainID), "Failed to update gas price for %s: %v", descriptor.Name, err)
		}
		return
	}

	m.mu.Lock()
	m.last = gasPrice
	m.mu.Unlock()

	metrics.GasPrice.WithLabelValues(descriptor.Name).Set(chains.WeiToGwei(gasPrice))
	m.logger.DebugWithChain(int(descriptor.LzChainID), "Gas price on %s: %.2f gwei", descriptor.Name, chains.WeiToGwei(gasPrice))
}
