// Package tui provides the Bubble Tea front end for the snake controller.
// It maps keys to controller actions, schedules generation-tagged ticks,
// and renders the board, HUD and scoreboard.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/neonsnake/internal/controller"
)

// commentaryTimeout bounds one async commentary request on top of whatever
// the backend enforces itself.
const commentaryTimeout = 10 * time.Second

// TickMsg triggers one controller tick. Gen ties it to the game it was
// scheduled for; ticks from an earlier game are dropped by the controller.
type TickMsg struct {
	Gen uint64
}

// CommentaryMsg carries the result of an async commentary request.
type CommentaryMsg struct {
	Gen  uint64
	Text string
}

// tickCmd schedules the next tick for generation gen after d.
func tickCmd(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}

// commentaryCmd asks the controller's commentator about score off the
// Update goroutine.
func commentaryCmd(c *controller.Controller, gen uint64, score int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commentaryTimeout)
		defer cancel()
		return CommentaryMsg{Gen: gen, Text: c.Summarize(ctx, score)}
	}
}
