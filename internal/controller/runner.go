package controller

import (
	"context"
	"time"
)

// StopFunc decides after each tick whether a Runner should return.
type StopFunc func(c *Controller, res TickResult) bool

// UntilEpisodes stops once the controller has finished n more episodes
// than when the runner started.
func UntilEpisodes(c *Controller, n int) StopFunc {
	target := c.Episode() + n
	return func(c *Controller, _ TickResult) bool {
		return c.Episode() >= target
	}
}

// Runner drives a controller without a UI. It owns a single timer that is
// stopped before every re-arm, so at most one tick is ever pending.
type Runner struct {
	ctrl     *Controller
	interval time.Duration
	fixed    bool
	onTick   func(TickResult)
}

// NewRunner creates a runner using the controller's own cadence.
func NewRunner(c *Controller) *Runner {
	return &Runner{ctrl: c}
}

// SetInterval pins the tick interval; zero ticks as fast as possible.
func (r *Runner) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	r.interval = d
	r.fixed = true
}

// OnTick installs a hook called after every non-stale tick.
func (r *Runner) OnTick(fn func(TickResult)) {
	r.onTick = fn
}

func (r *Runner) next() time.Duration {
	if r.fixed {
		return r.interval
	}
	return r.ctrl.Interval()
}

// Run starts the controller if needed and ticks until stop reports true,
// the session leaves PLAYING (manual game over), or ctx is cancelled.
// A training session is stopped on return so its table is checkpointed.
func (r *Runner) Run(ctx context.Context, stop StopFunc) error {
	c := r.ctrl
	gen := c.Start()
	defer func() {
		if c.Mode() == ModeTraining {
			c.Stop()
		}
	}()

	timer := time.NewTimer(r.next())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		res := c.Tick(gen)
		if res.Stale {
			return nil
		}
		gen = res.Gen
		if r.onTick != nil {
			r.onTick(res)
		}

		if c.Status() != StatusPlaying {
			return nil
		}
		if stop != nil && stop(c, res) {
			return nil
		}

		// Timer has fired and been drained; Reset is safe
		timer.Reset(r.next())
	}
}
