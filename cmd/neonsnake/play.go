package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/platform/tui"
)

var flagTraining bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start the game in the terminal.

Controls:
  Arrows/WASD  - Steer (manual mode)
  Enter/Space  - Start or restart
  Esc          - Stop and return to idle
  T            - Toggle manual/training (while idle)
  Tab          - Score history
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

In training mode the agent plays itself at high speed. Its value table is
saved every few episodes, when training stops, and on quit.

Examples:
  neonsnake play
  neonsnake play --training
  neonsnake play --config ./fast.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagTraining, "training", false, "Start in training mode")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	rc := runtimeConfig()

	logger, closeLog := tuiLogger()
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	ctrl, err := controller.New(controllerOptions(cfg, store, rc, logger))
	if err != nil {
		fail("%v", err)
	}
	if flagTraining {
		//nolint:errcheck // Idle right after New
		ctrl.SetMode(controller.ModeTraining)
	}

	var scores tui.ScoreSource
	if store != nil {
		scores = store
	}

	if err := tui.Run(ctrl, scores, logger); err != nil {
		fail("%v", err)
	}
}
