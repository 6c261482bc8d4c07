package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/platform/tui"
)

var (
	flagScoresTUI   bool
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the score history",
	Long: `Display the top manual-play scores.

Examples:
  neonsnake scores
  neonsnake scores --limit 25
  neonsnake scores --tui`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse scores in an interactive table")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
}

func runScores(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	if flagScoresTUI {
		rc := runtimeConfig()
		if err := tui.RunScoreboard(store, rc.ScreenW, rc.ScreenH); err != nil {
			fail("%v", err)
		}
		return
	}

	scores, err := store.TopScores(flagScoresLimit)
	if err != nil {
		fail("could not retrieve scores: %v", err)
	}

	fmt.Println("High Scores")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'neonsnake play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "----", "------", "-----", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-16s  %-6d  %s\n", i+1, entry.Player, entry.Score, dateStr)
	}

	fmt.Println()
	if high, ok, err := store.LoadHighScore(); err == nil && ok {
		fmt.Printf("Best: %d\n", high)
	}
}
