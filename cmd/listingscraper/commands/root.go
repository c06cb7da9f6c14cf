package commands

import (
	"context"
	"fmt"
	"listingscraper/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "listingscraper",
	Short: "listingscraper collects catalog listings for every location and category pair into a csv dataset.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "scraper.json5", "The config file, a sibling <name>.local.json5 overrides it.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
