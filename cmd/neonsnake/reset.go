package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagResetTable    bool
	flagResetScores   bool
	flagResetEpisodes bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget learned or recorded state",
	Long: `Delete the saved value table, the score history or the episode log.
Deleting the value table makes the next training run start from scratch
with full exploration. The high score is kept.

Examples:
  neonsnake reset --table
  neonsnake reset --scores --episodes`,
	Args: cobra.NoArgs,
	Run:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetTable, "table", false, "Delete the value table")
	resetCmd.Flags().BoolVar(&flagResetScores, "scores", false, "Delete the score history")
	resetCmd.Flags().BoolVar(&flagResetEpisodes, "episodes", false, "Delete the episode log")
}

func runReset(cmd *cobra.Command, _ []string) {
	if !flagResetTable && !flagResetScores && !flagResetEpisodes {
		//nolint:errcheck // Usage goes to stderr
		cmd.Usage()
		fail("nothing to reset; pass --table, --scores or --episodes")
	}

	store := mustOpenStore()
	defer store.Close()

	if flagResetTable {
		if err := store.DeleteTable(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Value table deleted.")
	}
	if flagResetScores {
		if err := store.ClearScores(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Score history deleted.")
	}
	if flagResetEpisodes {
		if err := store.ClearEpisodes(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Episode log deleted.")
	}
}
