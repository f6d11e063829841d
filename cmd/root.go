package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speedrun-hq/lzbridger/pkg/config"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "lzbridger",
	Short:        "Bridges BTC.b between EVM chains over LayerZero for a set of wallets",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool(
		"debug",
		false,
		"Enables debug output.")

	rootCmd.PersistentFlags().Bool(
		"json",
		false,
		"Enables structured logging in JSON format.")

	rootCmd.PersistentFlags().String(
		"wallets",
		"",
		"File with one private key per line (overrides WALLETS_FILE)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("wallets", rootCmd.PersistentFlags().Lookup("wallets"))

	cobra.OnInitialize(initConfig)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("lzbridger")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// loadConfig reads the environment and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if viper.IsSet("wallets") && viper.GetString("wallets") != "" {
		cfg.WalletsFile = viper.GetString("wallets")
	}
	if viper.IsSet("routes") && viper.GetString("routes") != "" {
		routes, err := config.ParseRoutes(viper.GetString("routes"))
		if err != nil {
			return nil, err
		}
		cfg.Routes = routes
	} else if viper.GetString("from") != "" || viper.GetString("to") != "" {
		route := cfg.Routes[0]
		if from := viper.GetString("from"); from != "" {
			route.Source = strings.ToLower(from)
		}
		if to := viper.GetString("to"); to != "" {
			route.Destination = strings.ToLower(to)
		}
		cfg.Routes = []config.Route{route}
	}
	if viper.IsSet("metrics-port") && viper.GetString("metrics-port") != "" {
		cfg.MetricsPort = viper.GetString("metrics-port")
	}
	if viper.IsSet("max-concurrent") && viper.GetInt("max-concurrent") > 0 {
		cfg.Workflow.MaxConcurrent = viper.GetInt("max-concurrent")
	}
	if viper.GetBool("debug") {
		cfg.LoggerConfig.Level = logger.DebugLevel
	}
	if viper.GetBool("json") {
		cfg.LoggerConfig.JSON = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureLogging builds the logger selected by the configuration. The
// returned function flushes buffered output.
func configureLogging(cfg *config.Config) (logger.Logger, func()) {
	if cfg.LoggerConfig.JSON {
		zl, err := logger.NewZapLogger(true, cfg.LoggerConfig.Level)
		if err == nil {
			return zl, func() { _ = zl.Sync() }
		}
		fmt.Fprintf(os.Stderr, "failed to build JSON logger, falling back to text: %v\n", err)
	}

	color.NoColor = color.NoColor || !cfg.LoggerConfig.Coloring
	return logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level), func() {}
}
