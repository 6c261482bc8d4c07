// neonsnake is a terminal snake game with a self-teaching Q-learning agent.
//
// Usage:
//
//	neonsnake play               - Play in the terminal (t toggles training)
//	neonsnake train              - Train the agent headless
//	neonsnake serve              - Start SSH server for remote play
//	neonsnake scores             - Show the score history
//	neonsnake stats              - Summarize recorded training episodes
//	neonsnake chart              - Render a training progress chart
//	neonsnake export             - Export the value table or episodes to Parquet
//	neonsnake commentary         - Run or query the commentary service
//	neonsnake config             - Print the effective configuration
//	neonsnake reset              - Forget learned or recorded state
//
// Global flags:
//
//	--config <path>    - Config YAML layered over the built-in defaults
//	--seed <value>     - RNG seed for reproducible runs
//	--db <path>        - Database path (default: ~/.neonsnake/neonsnake.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register commentary backends
	_ "github.com/vovakirdan/neonsnake/internal/commentary"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "neonsnake",
	Short: "Neon Snake - snake in your terminal, with an agent that learns it",
	Long: `Neon Snake is a terminal snake game. Play it yourself, or switch to
training mode and watch a Q-learning agent teach itself to play.

The agent's value table, the high score and the score history are kept
in a local SQLite database and survive restarts.

Available commands:
  play        - Play in the terminal
  train       - Train the agent without a UI
  serve       - Start SSH server for remote play
  scores      - View the score history
  stats       - Summarize training episodes
  chart       - Render training progress as HTML
  export      - Export the value table or episodes to Parquet
  commentary  - Run or query the commentary service
  config      - Print the effective configuration
  reset       - Forget learned or recorded state

Examples:
  neonsnake play
  neonsnake train --episodes 2000 --csv episodes.csv
  neonsnake chart --out progress.html
  neonsnake serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML (layered over defaults)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath, "Path to database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(commentaryCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
}
