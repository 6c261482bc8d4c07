package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

var (
	flagEpisodes int
	flagInterval time.Duration
	flagRealtime bool
	flagCSVOut   string
	flagProgress int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the agent without a UI",
	Long: `Run training episodes headless, as fast as the machine allows.

Training resumes from the saved value table, if any. The table is
checkpointed every few episodes (agent.checkpoint_every) and when the run
ends, including on Ctrl+C. Every episode is recorded in the database;
--csv also writes it to a fresh CSV log.

Examples:
  neonsnake train --episodes 1000
  neonsnake train --episodes 5000 --csv episodes.csv --progress 250
  neonsnake train --realtime          # use the configured training cadence`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagEpisodes, "episodes", 500, "Number of episodes to train")
	trainCmd.Flags().DurationVar(&flagInterval, "interval", 0, "Fixed tick interval (0 = as fast as possible)")
	trainCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Tick at the configured training cadence")
	trainCmd.Flags().StringVar(&flagCSVOut, "csv", "", "Write episodes to this CSV file (truncated)")
	trainCmd.Flags().IntVar(&flagProgress, "progress", 100, "Log progress every N episodes (0 = never)")
}

// trainParams carries everything one headless training run needs.
type trainParams struct {
	Config   config.Config
	Runtime  core.RuntimeConfig
	Logger   *log.Logger
	Episodes int
	Interval time.Duration
	Realtime bool
	CSVPath  string
	Progress int
}

func runTrain(_ *cobra.Command, _ []string) error {
	if flagEpisodes < 1 {
		return errors.New("--episodes must be at least 1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr, "neonsnake-train")
	summary, err := train(ctx, trainParams{
		Config:   loadConfig(),
		Runtime:  runtimeConfig(),
		Logger:   logger,
		Episodes: flagEpisodes,
		Interval: flagInterval,
		Realtime: flagRealtime,
		CSVPath:  flagCSVOut,
		Progress: flagProgress,
	})
	if err != nil {
		logger.Error("training failed", "error", err)
		return err
	}
	printSummary(summary)
	return nil
}

// train runs the episodes and closes every sink it opened before
// returning, whatever the outcome.
func train(ctx context.Context, p trainParams) (telemetry.Summary, error) {
	logger := p.Logger

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	opts := controllerOptions(p.Config, store, p.Runtime, logger)

	run := &telemetry.Buffer{}
	recorders := telemetry.Recorders{run}
	if store != nil {
		recorders = append(recorders, store)
	}
	if p.CSVPath != "" {
		csvLog, err := telemetry.NewEpisodeLog(p.CSVPath)
		if err != nil {
			return telemetry.Summary{}, err
		}
		defer func() {
			if err := csvLog.Close(); err != nil {
				logger.Warn("could not close CSV log", "error", err)
			}
		}()
		recorders = append(recorders, csvLog)
	}
	opts.Episodes = recorders

	ctrl, err := controller.New(opts)
	if err != nil {
		return telemetry.Summary{}, err
	}
	if err := ctrl.SetMode(controller.ModeTraining); err != nil {
		return telemetry.Summary{}, err
	}

	runner := controller.NewRunner(ctrl)
	if !p.Realtime {
		runner.SetInterval(p.Interval)
	}
	runner.OnTick(func(res controller.TickResult) {
		if !res.EpisodeEnded || p.Progress <= 0 || ctrl.Episode()%p.Progress != 0 {
			return
		}
		recent := run.Episodes
		if len(recent) > p.Progress {
			recent = recent[len(recent)-p.Progress:]
		}
		s := telemetry.Summarize(recent)
		logger.Info("training",
			"episode", ctrl.Episode(),
			"mean", fmt.Sprintf("%.2f", s.MeanScore),
			"max", s.MaxScore,
			"epsilon", fmt.Sprintf("%.4f", ctrl.Agent().Epsilon()),
			"states", ctrl.Agent().Table().Len(),
		)
	})

	start := time.Now()
	logger.Info("training started", "from_episode", ctrl.Episode(), "episodes", p.Episodes)

	runErr := runner.Run(ctx, controller.UntilEpisodes(ctrl, p.Episodes))
	if err := ctrl.Close(); err != nil {
		logger.Warn("could not save value table", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return telemetry.Summarize(run.Episodes), runErr
	}

	logger.Info("training finished",
		"episodes", len(run.Episodes),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"states", ctrl.Agent().Table().Len(),
	)
	return telemetry.Summarize(run.Episodes), nil
}
