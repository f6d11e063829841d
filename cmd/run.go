package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chainclient"
	"github.com/speedrun-hq/lzbridger/pkg/config"
	"github.com/speedrun-hq/lzbridger/pkg/health"
	"github.com/speedrun-hq/lzbridger/pkg/models"
	"github.com/speedrun-hq/lzbridger/pkg/wallet"
)

const shutdownTimeout = 5 * time.Second

// runCmd bridges the balance of every wallet over every configured route
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bridge BTC.b for every wallet",
	Long: `Loads the wallets file and starts one workflow per wallet and route.

Each workflow waits a random delay, polls the source chain until the wallet
holds at least the minimum balance, approves the bridge if needed and submits
the LayerZero transfer of the whole balance to the same address on the
destination chain. Workflows sharing a wallet run one after another.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String(
		"from",
		"",
		"Source chain (overrides SOURCE_CHAIN)")

	runCmd.Flags().String(
		"to",
		"",
		"Destination chain (overrides DESTINATION_CHAIN)")

	runCmd.Flags().String(
		"routes",
		"",
		"Comma separated source:destination pairs (overrides ROUTES, --from and --to)")

	runCmd.Flags().String(
		"metrics-port",
		"",
		"Port of the health and metrics server (overrides METRICS_PORT)")

	runCmd.Flags().Int(
		"max-concurrent",
		0,
		"Maximum number of wallets bridged at once (overrides MAX_CONCURRENT_WORKFLOWS)")

	_ = viper.BindPFlag("from", runCmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("to", runCmd.Flags().Lookup("to"))
	_ = viper.BindPFlag("routes", runCmd.Flags().Lookup("routes"))
	_ = viper.BindPFlag("metrics-port", runCmd.Flags().Lookup("metrics-port"))
	_ = viper.BindPFlag("max-concurrent", runCmd.Flags().Lookup("max-concurrent"))
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, flush := configureLogging(cfg)
	defer flush()

	wallets, err := wallet.Load(cfg.WalletsFile)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		return fmt.Errorf("no wallet in %s", cfg.WalletsFile)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	networks := dialNetworks(ctx, cfg, registry, routeChains(cfg.Routes), log)
	defer networks.Close()

	if cfg.GasMonitorInterval > 0 {
		for _, client := range networks.clients {
			monitor := chainclient.NewGasMonitor(ctx, client, cfg.GasMonitorInterval, log)
			monitor.Start()
			defer monitor.Stop()
		}
	}

	tracker := health.NewTracker()
	if cfg.MetricsEnabled {
		server := health.NewServer(cfg.MetricsPort, cfg.MetricsAPIKey, networks.health, tracker, log)
		go func() {
			_ = server.Start()
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	intents := buildIntents(wallets, cfg.Routes)
	log.Info("Starting %d workflows for %d wallets over %d routes", len(intents), len(wallets), len(cfg.Routes))

	scheduler := bridge.NewScheduler(networks, bridge.Runtime{
		Options: cfg.BridgeOptions(),
		Sink:    bridge.MultiSink{bridge.LogSink{Logger: log}, tracker},
		Logger:  log,
	})
	outcomes := scheduler.Run(ctx, intents)

	summary := bridge.Summarize(outcomes)
	printSummary(summary)

	if summary.Total > 0 && summary.Succeeded == 0 {
		return fmt.Errorf("no workflow succeeded")
	}
	return nil
}

// buildIntents creates one intent per wallet and route, wallet-major so that
// each wallet walks its routes in configured order
func buildIntents(wallets []*wallet.Wallet, routes []config.Route) []models.SwapIntent {
	intents := make([]models.SwapIntent, 0, len(wallets)*len(routes))
	for _, w := range wallets {
		for _, route := range routes {
			intents = append(intents, models.SwapIntent{
				Source:      route.Source,
				Destination: route.Destination,
				Wallet:      w,
			})
		}
	}
	return intents
}

func printSummary(summary bridge.Summary) {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("\nWorkflows: %d\n", summary.Total)
	_, _ = color.New(color.FgGreen).Printf("  succeeded: %d\n", summary.Succeeded)
	_, _ = color.New(color.FgRed).Printf("  failed:    %d\n", summary.Failed)
	_, _ = color.New(color.FgYellow).Printf("  canceled:  %d\n", summary.Canceled)

	kinds := make([]string, 0, len(summary.ByKind))
	for kind := range summary.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("    %s: %d\n", kind, summary.ByKind[kind])
	}
}
