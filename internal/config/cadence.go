package config

import "time"

// Cadence computes tick intervals. Manual play speeds up with score down to
// a floor; training runs at a fixed interval.
type Cadence struct {
	cfg TimingConfig
}

// NewCadence creates a cadence from the timing section.
func NewCadence(cfg TimingConfig) *Cadence {
	return &Cadence{cfg: cfg}
}

// Manual returns max(min, base - speedup*score).
func (c *Cadence) Manual(score int) time.Duration {
	ms := c.cfg.BaseIntervalMS - c.cfg.SpeedupPerPointMS*score
	if ms < c.cfg.MinIntervalMS {
		ms = c.cfg.MinIntervalMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Training returns the fixed self-play interval.
func (c *Cadence) Training() time.Duration {
	return time.Duration(c.cfg.TrainingIntervalMS) * time.Millisecond
}
