package cmd

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the supported chains and their contracts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := cfg.Registry()
		if err != nil {
			return err
		}
		printChains(registry)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func printChains(registry *chains.Registry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = color.New(color.Bold).Fprintln(w, "NAME\tLZ ID\tCHAIN ID\tBRIDGE\tTOKEN\tRPC")
	for _, name := range registry.Names() {
		d, _ := registry.Resolve(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n",
			d.Name, d.LzChainID, d.EVMChainID, d.BridgeAddress.Hex(), d.TokenAddress.Hex(), redactURL(d.RPCURL))
	}
	_ = w.Flush()
}

// redactURL keeps the scheme and host of an RPC URL, dropping paths and
// queries that commonly carry API keys
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid>"
	}
	if u.Path == "" && u.RawQuery == "" && u.User == nil {
		return u.Scheme + "://" + u.Host
	}
	return u.Scheme + "://" + u.Host + "/..."
}
