package commands

import (
	"listingscraper/internal/inputs"
	"listingscraper/lib/serviceutil"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	planCmd.Flags().StringVar(&runOpts.locations, "locations", "", "Locations csv (latitude, longitude).")
	planCmd.Flags().StringVar(&runOpts.categories, "categories", "", "Categories csv (l1_category, l1_category_id, l2_category, l2_category_id).")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [--locations <path>] [--categories <path>]",
	Short: "Loads both inputs and prints how many pairs a run would request, without requesting anything.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		runOpts.apply(&cfg)

		locations, err := inputs.LoadLocations(cfg.LocationsFile)
		if err != nil {
			serviceutil.Fatal("load locations", err)
		}
		categories, err := inputs.LoadCategories(cfg.CategoriesFile)
		if err != nil {
			serviceutil.Fatal("load categories", err)
		}

		t := inputsTable(locations, categories)
		pairs := len(locations) * len(categories)
		t.AppendFooter(table.Row{"", "min. duration", estimate(pairs, cfg.DelayDuration()).String()})
		t.SetOutputMirror(os.Stdout)
		t.Render()
	},
}

// estimate is the time spent only in delays, request latency comes on top.
func estimate(pairs int, delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	return time.Duration(pairs) * delay
}
