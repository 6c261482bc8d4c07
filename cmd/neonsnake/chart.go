package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

var (
	flagChartOut    string
	flagChartWindow int
	flagChartCSV    string
	flagChartLast   int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render training progress as an HTML chart",
	Long: `Write an HTML page charting score per episode with its moving
average, and the exploration rate over time.

Examples:
  neonsnake chart
  neonsnake chart --out progress.html --window 100
  neonsnake chart --csv episodes.csv`,
	Args: cobra.NoArgs,
	Run:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&flagChartOut, "out", "training.html", "Output HTML file")
	chartCmd.Flags().IntVar(&flagChartWindow, "window", telemetry.DefaultWindow, "Moving average window in episodes")
	chartCmd.Flags().StringVar(&flagChartCSV, "csv", "", "Read episodes from a CSV log instead of the database")
	chartCmd.Flags().IntVar(&flagChartLast, "last", 0, "Only the most recent N episodes (0 = all)")
}

func runChart(_ *cobra.Command, _ []string) {
	episodes, err := loadEpisodes(flagChartCSV, flagChartLast)
	if err != nil {
		fail("%v", err)
	}
	if len(episodes) == 0 {
		fail("no episodes recorded; run 'neonsnake train' first")
	}

	f, err := os.Create(flagChartOut)
	if err != nil {
		fail("could not create %s: %v", flagChartOut, err)
	}
	if err := telemetry.WriteChart(f, episodes, flagChartWindow); err != nil {
		f.Close()
		fail("%v", err)
	}
	if err := f.Close(); err != nil {
		fail("%v", err)
	}

	fmt.Printf("Wrote %s (%d episodes)\n", flagChartOut, len(episodes))
}
