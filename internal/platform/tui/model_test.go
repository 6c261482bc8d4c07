package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/engine"
	"github.com/vovakirdan/neonsnake/internal/storage"
)

type fakeScores struct {
	entries []storage.ScoreEntry
}

func (f fakeScores) TopScores(limit int) ([]storage.ScoreEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func newTestModel(t *testing.T) (Model, *controller.Controller) {
	t.Helper()
	ctrl, err := controller.New(controller.Options{Config: config.Default(), Seed: 1})
	if err != nil {
		t.Fatalf("controller.New failed: %v", err)
	}
	scores := fakeScores{entries: []storage.ScoreEntry{
		{ID: 1, Player: "local", Score: 12, CreatedAt: time.Now()},
	}}
	return NewModel(ctrl, scores, nil), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", next)
	}
	return model, cmd
}

func TestModelStartsIdle(t *testing.T) {
	m, ctrl := newTestModel(t)
	if cmd := m.Init(); cmd != nil {
		t.Error("Init should not schedule ticks while idle")
	}
	if ctrl.Status() != controller.StatusIdle {
		t.Errorf("Status = %v, expected IDLE", ctrl.Status())
	}
	if !strings.Contains(m.View(), "Press enter to play") {
		t.Error("Idle view should prompt to start")
	}
}

func TestModelStartSchedulesTick(t *testing.T) {
	m, ctrl := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if ctrl.Status() != controller.StatusPlaying {
		t.Fatalf("Status = %v, expected PLAYING", ctrl.Status())
	}
	if cmd == nil {
		t.Fatal("Start should schedule a tick")
	}

	// A second start while playing does not spawn a second tick chain
	gen := ctrl.Generation()
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || ctrl.Generation() != gen {
		t.Error("Start while playing should be a no-op")
	}
}

func TestModelTickAdvancesSnake(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	before := ctrl.Snapshot().Snake.Head()
	m, cmd := update(t, m, TickMsg{Gen: ctrl.Generation()})
	after := ctrl.Snapshot().Snake.Head()

	if after != before.Step(core.DirRight) {
		t.Errorf("Head = %v, expected %v", after, before.Step(core.DirRight))
	}
	if cmd == nil {
		t.Error("A live tick should schedule the next one")
	}

	// Stale ticks are dropped without rescheduling
	_, cmd = update(t, m, TickMsg{Gen: ctrl.Generation() - 1})
	if cmd != nil {
		t.Error("Stale tick should not reschedule")
	}
	if ctrl.Snapshot().Snake.Head() != after {
		t.Error("Stale tick should not move the snake")
	}
}

func TestModelDirectionKeys(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(t, m, runeKey('a'))
	if ctrl.Direction() != core.DirRight {
		t.Errorf("Reversal accepted: direction = %v", ctrl.Direction())
	}

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if ctrl.Direction() != core.DirUp {
		t.Errorf("Direction = %v, expected UP", ctrl.Direction())
	}
}

func TestModelGameOverCommentary(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})

	for i := 0; i < engine.DefaultSize*2 && ctrl.Status() == controller.StatusPlaying; i++ {
		m, _ = update(t, m, TickMsg{Gen: ctrl.Generation()})
	}
	if ctrl.Status() != controller.StatusGameOver {
		t.Fatalf("Status = %v, expected GAME_OVER after running into the wall", ctrl.Status())
	}
	if !strings.Contains(m.View(), "Analyzing performance") {
		t.Error("Game over view should show pending commentary")
	}

	msg := commentaryCmd(ctrl, ctrl.Generation(), ctrl.FinalScore())()
	cm, ok := msg.(CommentaryMsg)
	if !ok {
		t.Fatalf("commentaryCmd produced %T", msg)
	}
	if cm.Text != controller.FallbackCommentary {
		t.Errorf("Commentary = %q, expected fallback", cm.Text)
	}

	m, _ = update(t, m, cm)
	if ctrl.Snapshot().Commentary != controller.FallbackCommentary {
		t.Error("Commentary message should be applied")
	}
	if !strings.Contains(m.View(), "GAME OVER") {
		t.Error("Game over view should say so")
	}
}

func TestModelToggleMode(t *testing.T) {
	m, ctrl := newTestModel(t)

	m, _ = update(t, m, runeKey('t'))
	if ctrl.Mode() != controller.ModeTraining {
		t.Fatalf("Mode = %v, expected TRAINING", ctrl.Mode())
	}
	if !strings.Contains(m.View(), "EPSILON") {
		t.Error("Training view should show epsilon")
	}

	// Toggling is refused while playing
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, _ = update(t, m, runeKey('t'))
	if ctrl.Mode() != controller.ModeTraining {
		t.Error("Mode changed while playing")
	}
}

func TestModelScoreboard(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view := m.View()
	if !strings.Contains(view, "HIGH SCORES") || !strings.Contains(view, "local") {
		t.Errorf("Scoreboard view missing content:\n%s", view)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(m.View(), "HIGH SCORES") {
		t.Error("Back should return to the game")
	}
}

func TestModelScoreboardBlockedDuringManualPlay(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.board != nil {
		t.Fatal("Scoreboard opened during a manual game")
	}

	before := ctrl.Snapshot().Snake.Head()
	m, _ = update(t, m, TickMsg{Gen: ctrl.Generation()})
	if ctrl.Snapshot().Snake.Head() == before {
		t.Error("Snake should keep moving on screen")
	}
	if strings.Contains(m.View(), "HIGH SCORES") {
		t.Error("Game view should stay visible while playing")
	}

	m, _ = update(t, m, runeKey('x'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.board == nil {
		t.Error("Scoreboard should open once the game is stopped")
	}
}

func TestModelScoreboardDuringTraining(t *testing.T) {
	m, ctrl := newTestModel(t)
	m, _ = update(t, m, runeKey('t'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if ctrl.Mode() != controller.ModeTraining || ctrl.Status() != controller.StatusPlaying {
		t.Fatalf("mode=%v status=%v, expected training in progress", ctrl.Mode(), ctrl.Status())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.board == nil {
		t.Error("Scoreboard should open while training runs")
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, runeKey('q'))
	if cmd == nil {
		t.Fatal("Quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Quit command should produce tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("View should be empty after quitting")
	}
}
