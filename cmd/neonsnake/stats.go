package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

var (
	flagStatsLast int
	flagStatsCSV  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize training episodes",
	Long: `Print score statistics over recorded training episodes, plus the
state of the saved value table and the manual score history.

Examples:
  neonsnake stats
  neonsnake stats --last 500
  neonsnake stats --csv episodes.csv`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsLast, "last", 0, "Only the most recent N episodes (0 = all)")
	statsCmd.Flags().StringVar(&flagStatsCSV, "csv", "", "Read episodes from a CSV log instead of the database")
}

func runStats(_ *cobra.Command, _ []string) {
	episodes, err := loadEpisodes(flagStatsCSV, flagStatsLast)
	if err != nil {
		fail("%v", err)
	}

	fmt.Println("Training")
	fmt.Println()
	if len(episodes) == 0 {
		fmt.Println("  No episodes recorded yet.")
		fmt.Println()
		fmt.Println("Run 'neonsnake train' to teach the agent.")
	} else {
		printSummary(telemetry.Summarize(episodes))
	}

	if flagStatsCSV != "" {
		return
	}

	store := mustOpenStore()
	defer store.Close()

	if table, episode, err := store.LoadTable(); err != nil {
		fmt.Printf("  Value table:    unreadable (%v)\n", err)
	} else if table != nil {
		fmt.Printf("  Value table:    %d states after %d episodes\n", table.Len(), episode)
	}

	stats, err := store.GetScoreStats()
	if err != nil {
		fail("%v", err)
	}
	fmt.Println()
	fmt.Println("Manual play")
	fmt.Println()
	if stats.GamesCount == 0 {
		fmt.Println("  No games recorded yet.")
		return
	}
	fmt.Printf("  Games:          %d\n", stats.GamesCount)
	fmt.Printf("  High score:     %d\n", stats.HighScore)
	fmt.Printf("  Average score:  %.2f\n", stats.AvgScore)
	fmt.Printf("  Last played:    %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
}

// loadEpisodes reads episodes from csvPath, or from the database when it
// is empty, keeping the last n (0 = all).
func loadEpisodes(csvPath string, n int) ([]telemetry.Episode, error) {
	if csvPath == "" {
		store := mustOpenStore()
		defer store.Close()
		return store.Episodes(n)
	}

	episodes, err := telemetry.ReadEpisodeLog(csvPath)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(episodes) > n {
		episodes = episodes[len(episodes)-n:]
	}
	return episodes, nil
}

func printSummary(s telemetry.Summary) {
	if s.Episodes == 0 {
		fmt.Println("  No episodes.")
		return
	}
	fmt.Printf("  Episodes:       %d\n", s.Episodes)
	fmt.Printf("  Mean score:     %.2f (sd %.2f)\n", s.MeanScore, s.StdDev)
	fmt.Printf("  Median / p90:   %.0f / %.0f\n", s.Median, s.P90)
	fmt.Printf("  Best score:     %.0f (episode %d)\n", s.MaxScore, s.BestEpisode)
	fmt.Printf("  Mean steps:     %.1f\n", s.MeanSteps)
	fmt.Printf("  Mean reward:    %.1f\n", s.MeanReward)
	fmt.Printf("  Last epsilon:   %.4f\n", s.LastEpsilon)
}
