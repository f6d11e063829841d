package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/wallet"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print the BTC.b balance of every wallet on a chain",
	RunE:  runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)

	balancesCmd.Flags().String(
		"chain",
		"",
		"Chain to read balances on (defaults to the source chain)")

	_ = viper.BindPFlag("chain", balancesCmd.Flags().Lookup("chain"))
}

func runBalances(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, flush := configureLogging(cfg)
	defer flush()

	name := viper.GetString("chain")
	if name == "" {
		name = cfg.Routes[0].Source
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	if _, err := registry.Resolve(name); err != nil {
		return err
	}

	wallets, err := wallet.Load(cfg.WalletsFile)
	if err != nil {
		return err
	}

	networks := dialNetworks(cmd.Context(), cfg, registry, []string{name}, log)
	defer networks.Close()

	chain, err := networks.Network(name)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WALLET\t%s (%s)\n", chains.TokenSymbol, chain.Descriptor.DisplayName)
	for _, wal := range wallets {
		balance, err := bridge.ReadBalance(cmd.Context(), chain, wal.Address())
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", wal.Address().Hex(), err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", wal.Address().Hex(), chains.FormatAmount(balance))
	}
	return w.Flush()
}
