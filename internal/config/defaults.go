package config

import (
	_ "embed"
)

//go:embed defaults/neonsnake.yaml
var defaultYAML []byte

// Default returns the hardcoded configuration. It matches the embedded
// defaults/neonsnake.yaml and is used when that fails to parse.
func Default() Config {
	return Config{
		Grid: GridConfig{
			Size:         20,
			FoodAttempts: 100,
		},
		Timing: TimingConfig{
			BaseIntervalMS:     150,
			MinIntervalMS:      50,
			SpeedupPerPointMS:  2,
			TrainingIntervalMS: 20,
		},
		Agent: AgentConfig{
			Alpha:           0.1,
			Gamma:           0.9,
			EpsilonStart:    1.0,
			EpsilonResume:   0.1,
			EpsilonDecay:    0.995,
			EpsilonFloor:    0.01,
			CheckpointEvery: 50,
		},
		Rewards: RewardsConfig{
			Death:  -100,
			Food:   10,
			Closer: 1,
			Away:   -2,
		},
		Commentary: CommentaryConfig{
			Backend:   "phrases",
			TimeoutMS: 5000,
			LatencyMS: 300,
		},
	}
}
