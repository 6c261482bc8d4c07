// Package config provides YAML-based configuration for the board, tick
// cadence, learning hyperparameters and commentary backend.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/neonsnake/internal/agent"
)

// Config is the full neonsnake configuration.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Timing     TimingConfig     `yaml:"timing"`
	Agent      AgentConfig      `yaml:"agent"`
	Rewards    RewardsConfig    `yaml:"rewards"`
	Commentary CommentaryConfig `yaml:"commentary"`
}

// GridConfig defines the board.
type GridConfig struct {
	Size         int `yaml:"size"`
	FoodAttempts int `yaml:"food_attempts"` // rejection-sampling budget before the (0,0) fallback
}

// TimingConfig defines tick cadence in milliseconds.
type TimingConfig struct {
	BaseIntervalMS     int `yaml:"base_interval_ms"`
	MinIntervalMS      int `yaml:"min_interval_ms"`
	SpeedupPerPointMS  int `yaml:"speedup_per_point_ms"`
	TrainingIntervalMS int `yaml:"training_interval_ms"`
}

// AgentConfig defines learning hyperparameters.
type AgentConfig struct {
	Alpha           float64 `yaml:"alpha"`
	Gamma           float64 `yaml:"gamma"`
	EpsilonStart    float64 `yaml:"epsilon_start"`
	EpsilonResume   float64 `yaml:"epsilon_resume"`
	EpsilonDecay    float64 `yaml:"epsilon_decay"`
	EpsilonFloor    float64 `yaml:"epsilon_floor"`
	CheckpointEvery int     `yaml:"checkpoint_every"` // episodes between table saves
}

// RewardsConfig is the per-tick reward schedule.
type RewardsConfig struct {
	Death  float64 `yaml:"death"`
	Food   float64 `yaml:"food"`
	Closer float64 `yaml:"closer"`
	Away   float64 `yaml:"away"`
}

// CommentaryConfig selects the post-game commentary backend.
type CommentaryConfig struct {
	Backend   string `yaml:"backend"`
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
	LatencyMS int    `yaml:"latency_ms"`
}

// Timeout returns the remote call timeout.
func (c CommentaryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Latency returns the simulated phrase-table delay.
func (c CommentaryConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMS) * time.Millisecond
}

// AgentParams converts the agent and reward sections into agent.Params.
func (c Config) AgentParams() agent.Params {
	return agent.Params{
		Alpha:         c.Agent.Alpha,
		Gamma:         c.Agent.Gamma,
		EpsilonStart:  c.Agent.EpsilonStart,
		EpsilonResume: c.Agent.EpsilonResume,
		EpsilonDecay:  c.Agent.EpsilonDecay,
		EpsilonFloor:  c.Agent.EpsilonFloor,
		Rewards: agent.Rewards{
			Death:  c.Rewards.Death,
			Food:   c.Rewards.Food,
			Closer: c.Rewards.Closer,
			Away:   c.Rewards.Away,
		},
	}
}

// Validate rejects configurations the game cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Grid.Size < 4 {
		errs = append(errs, fmt.Errorf("grid.size must be at least 4, got %d", c.Grid.Size))
	}
	if c.Grid.FoodAttempts < 1 {
		errs = append(errs, fmt.Errorf("grid.food_attempts must be positive, got %d", c.Grid.FoodAttempts))
	}

	if c.Timing.MinIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("timing.min_interval_ms must be positive, got %d", c.Timing.MinIntervalMS))
	}
	if c.Timing.BaseIntervalMS < c.Timing.MinIntervalMS {
		errs = append(errs, fmt.Errorf("timing.base_interval_ms (%d) is below min_interval_ms (%d)",
			c.Timing.BaseIntervalMS, c.Timing.MinIntervalMS))
	}
	if c.Timing.SpeedupPerPointMS < 0 {
		errs = append(errs, fmt.Errorf("timing.speedup_per_point_ms must not be negative"))
	}
	if c.Timing.TrainingIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("timing.training_interval_ms must not be negative"))
	}

	if c.Agent.Alpha <= 0 || c.Agent.Alpha > 1 {
		errs = append(errs, fmt.Errorf("agent.alpha must be in (0,1], got %v", c.Agent.Alpha))
	}
	if c.Agent.Gamma < 0 || c.Agent.Gamma > 1 {
		errs = append(errs, fmt.Errorf("agent.gamma must be in [0,1], got %v", c.Agent.Gamma))
	}
	for name, eps := range map[string]float64{
		"epsilon_start":  c.Agent.EpsilonStart,
		"epsilon_resume": c.Agent.EpsilonResume,
		"epsilon_floor":  c.Agent.EpsilonFloor,
	} {
		if eps < 0 || eps > 1 {
			errs = append(errs, fmt.Errorf("agent.%s must be in [0,1], got %v", name, eps))
		}
	}
	if c.Agent.EpsilonDecay <= 0 || c.Agent.EpsilonDecay > 1 {
		errs = append(errs, fmt.Errorf("agent.epsilon_decay must be in (0,1], got %v", c.Agent.EpsilonDecay))
	}
	if c.Agent.CheckpointEvery < 1 {
		errs = append(errs, fmt.Errorf("agent.checkpoint_every must be positive, got %d", c.Agent.CheckpointEvery))
	}

	if c.Commentary.Backend == "" {
		errs = append(errs, errors.New("commentary.backend must be set"))
	}
	if c.Commentary.Backend == "remote" && c.Commentary.URL == "" {
		errs = append(errs, errors.New("commentary.url is required for the remote backend"))
	}
	if c.Commentary.TimeoutMS < 0 || c.Commentary.LatencyMS < 0 {
		errs = append(errs, errors.New("commentary timings must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
