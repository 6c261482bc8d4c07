package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/core"
)

// Model is the Bubble Tea model for one snake session.
type Model struct {
	ctrl     *controller.Controller
	screen   *core.Screen
	keys     *KeyMapper
	help     help.Model
	scores   ScoreSource
	board    *ScoreboardModel
	logger   *log.Logger
	width    int
	height   int
	quitting bool
}

// NewModel creates a model driving ctrl. scores may be nil, which disables
// the scoreboard.
func NewModel(ctrl *controller.Controller, scores ScoreSource, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	snap := ctrl.Snapshot()
	w, h := BoardSize(snap.GridSize)

	return Model{
		ctrl:   ctrl,
		screen: core.NewScreen(w, h),
		keys:   NewKeyMapper(DefaultKeyMap()),
		help:   help.New(),
		scores: scores,
		logger: logger,
	}
}

// Init shows the idle board; nothing ticks until the player starts.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(msg)

	case CommentaryMsg:
		m.ctrl.SetCommentary(msg.Gen, msg.Text)
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Keys()

	if m.board != nil {
		if key.Matches(msg, keys.Quit) {
			return m.quit()
		}
		updated, cmd := m.board.Update(msg)
		if sb, ok := updated.(ScoreboardModel); ok {
			if sb.IsGoingBack() {
				m.board = nil
			} else {
				m.board = &sb
			}
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Scores):
		// A manual game would keep ticking behind the board.
		manualPlay := m.ctrl.Mode() == controller.ModeManual && m.ctrl.Status() == controller.StatusPlaying
		if m.scores != nil && !manualPlay {
			sb := NewScoreboardModel(m.scores, m.width, m.height)
			m.board = &sb
		}
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		return m.quit()
	}

	if d, ok := action.Direction(); ok {
		m.ctrl.SetDirection(d)
		return m, nil
	}

	switch action {
	case core.ActionStart:
		if m.ctrl.Status() == controller.StatusPlaying {
			return m, nil
		}
		gen := m.ctrl.Start()
		return m, tickCmd(m.ctrl.Interval(), gen)

	case core.ActionStop:
		m.ctrl.Stop()

	case core.ActionToggleMode:
		if err := m.ctrl.ToggleMode(); err != nil {
			m.logger.Debug("Mode change ignored", "error", err)
		}
	}

	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	if m.board != nil {
		updated, cmd := m.board.Update(msg)
		if sb, ok := updated.(ScoreboardModel); ok {
			m.board = &sb
		}
		return m, cmd
	}
	return m, nil
}

// handleTick advances the controller and schedules the next tick at the
// cadence for the new score. A manual death also fires the commentary
// request for the game that just ended.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	res := m.ctrl.Tick(msg.Gen)
	if res.Stale {
		return m, nil
	}

	var cmds []tea.Cmd
	if res.GameOver {
		cmds = append(cmds, commentaryCmd(m.ctrl, res.Gen, m.ctrl.FinalScore()))
	}
	if m.ctrl.Status() == controller.StatusPlaying {
		cmds = append(cmds, tickCmd(m.ctrl.Interval(), res.Gen))
	}
	return m, tea.Batch(cmds...)
}

// quit checkpoints any unsaved training and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Close(); err != nil {
		m.logger.Warn("Failed to save value table on exit", "error", err)
	}
	m.quitting = true
	return m, tea.Quit
}

// saveScreenshot saves the current board to a file.
func (m *Model) saveScreenshot() {
	snap := m.ctrl.Snapshot()
	m.drawBoard(snap)

	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("Screenshot skipped", "error", err)
		return
	}
	dir := filepath.Join(home, ".neonsnake", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", strings.ToLower(snap.Mode.String()), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

func (m *Model) drawBoard(snap controller.Snapshot) {
	w, h := BoardSize(snap.GridSize)
	m.screen.Resize(w, h)
	m.screen.Clear()
	DrawBoard(m.screen, snap, 0, 0)
}

// View renders the board, the HUD and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.board != nil {
		return m.board.View()
	}

	snap := m.ctrl.Snapshot()
	m.drawBoard(snap)
	board := RenderScreen(m.screen)
	hud := renderHUD(snap)

	var body string
	if m.width > 0 && m.width < lipgloss.Width(board)+lipgloss.Width(hud) {
		body = lipgloss.JoinVertical(lipgloss.Left, board, hud)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, hud)
	}

	return body + "\n" + hintStyle.Render(m.help.View(m.keys.Keys()))
}

// Run starts the Bubble Tea program for ctrl on the local terminal.
func Run(ctrl *controller.Controller, scores ScoreSource, logger *log.Logger) error {
	model := NewModel(ctrl, scores, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
