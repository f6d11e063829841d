package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chainclient"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/circuitbreaker"
	"github.com/speedrun-hq/lzbridger/pkg/config"
	"github.com/speedrun-hq/lzbridger/pkg/health"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

// dialedNetworks resolves chains to live clients. Chains whose endpoint could
// not be dialed resolve to ErrRPCUnavailable so only their workflows fail.
type dialedNetworks struct {
	live    bridge.StaticNetworks
	failed  map[string]error
	clients []*chainclient.Client
	health  []health.Chain
}

func (n *dialedNetworks) Network(name string) (bridge.Chain, error) {
	if err, ok := n.failed[strings.ToLower(strings.TrimSpace(name))]; ok {
		return bridge.Chain{}, fmt.Errorf("%w: %s: %w", bridge.ErrRPCUnavailable, name, err)
	}
	return n.live.Network(name)
}

func (n *dialedNetworks) Close() {
	for _, client := range n.clients {
		client.Close()
	}
}

// dialNetworks connects to every named chain with the configured rate limit,
// circuit breaker and gas multiplier
func dialNetworks(ctx context.Context, cfg *config.Config, registry *chains.Registry, names []string, log logger.Logger) *dialedNetworks {
	networks := &dialedNetworks{
		live:   bridge.StaticNetworks{},
		failed: make(map[string]error),
	}

	for _, name := range names {
		descriptor, err := registry.Resolve(name)
		if err != nil {
			// left to the scheduler, which rejects intents for unknown chains
			continue
		}

		breaker := circuitbreaker.NewCircuitBreaker(
			descriptor.Name,
			cfg.CircuitBreaker.Enabled,
			cfg.CircuitBreaker.Threshold,
			cfg.CircuitBreaker.WindowDuration,
			cfg.CircuitBreaker.ResetTimeout,
			log,
		)

		multiplier, ok := cfg.GasMultipliers[descriptor.Name]
		if !ok {
			multiplier = chainclient.DefaultGasMultiplier
		}

		client, err := chainclient.Dial(ctx, descriptor,
			chainclient.WithRateLimit(cfg.RPC.RateLimit, cfg.RPC.Burst),
			chainclient.WithCircuitBreaker(breaker),
			chainclient.WithGasMultiplier(multiplier),
			chainclient.WithCallTimeout(cfg.RPC.Timeout),
			chainclient.WithLogger(log),
		)
		if err != nil {
			log.ErrorWithChain(int(descriptor.LzChainID), "Failed to connect to %s: %v", descriptor.DisplayName, err)
			networks.failed[descriptor.Name] = err
			networks.health = append(networks.health, health.Chain{Descriptor: descriptor, Breaker: breaker})
			continue
		}

		log.DebugWithChain(int(descriptor.LzChainID), "Connected to %s", descriptor.DisplayName)
		networks.clients = append(networks.clients, client)
		networks.live[descriptor.Name] = bridge.Chain{Descriptor: descriptor, Client: client}
		networks.health = append(networks.health, health.Chain{Descriptor: descriptor, Client: client, Breaker: breaker})
	}

	return networks
}

// routeChains returns the distinct chain names used by the routes, in order
func routeChains(routes []config.Route) []string {
	seen := make(map[string]bool)
	var names []string
	for _, route := range routes {
		for _, name := range []string{route.Source, route.Destination} {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
