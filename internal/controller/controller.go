// Package controller owns one game session: the IDLE/PLAYING/GAME_OVER state
// machine, per-mode tick cadence, manual input, and the training loop that
// lets the agent play episode after episode.
//
// A Controller is not safe for concurrent use. Every mutating call must come
// from the single goroutine that drives ticks (the bubbletea Update loop or a
// Runner). Summarize is the one exception: it only reads immutable fields so
// it can run as an async command.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/neonsnake/internal/agent"
	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/engine"
	"github.com/vovakirdan/neonsnake/internal/registry"
	"github.com/vovakirdan/neonsnake/internal/storage"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

// FallbackCommentary is shown when the commentary backend fails or is absent.
const FallbackCommentary = "Commentary link offline. The machine is judging you silently."

// IdleFoodOffset is how far right of the spawn cell the idle board shows food.
const IdleFoodOffset = 5

// ErrNotIdle is returned by SetMode while a game is running.
var ErrNotIdle = errors.New("controller: mode can only change while idle")

// Mode selects who steers the snake.
type Mode int

const (
	ModeManual Mode = iota
	ModeTraining
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "MANUAL"
	case ModeTraining:
		return "TRAINING"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Status is the session state machine position.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusPlaying:
		return "PLAYING"
	case StatusGameOver:
		return "GAME_OVER"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Persistence stores the high score and the value table between runs.
type Persistence interface {
	LoadHighScore() (score int, ok bool, err error)
	SaveHighScore(score int) error
	LoadTable() (*agent.Table, int, error)
	SaveTable(t *agent.Table, episode int) error
}

// ScoreRecorder keeps the history of finished manual games.
type ScoreRecorder interface {
	SaveScore(player string, score int) (int64, error)
}

// Options configures a Controller. Only Config is required.
type Options struct {
	Config      config.Config
	Store       Persistence
	Scores      ScoreRecorder
	Episodes    telemetry.Recorder
	Commentator registry.Commentator
	Logger      *log.Logger
	Seed        int64
	Player      string
}

// TickResult reports what one tick did.
type TickResult struct {
	Stale        bool // generation mismatch, nothing happened
	Ate          bool
	Died         bool
	GameOver     bool // manual death: request commentary for FinalScore
	EpisodeEnded bool // training death: snake respawned in place
	Gen          uint64
}

// Snapshot is the full observable state for rendering.
type Snapshot struct {
	Mode              Mode
	Status            Status
	GridSize          int
	Snake             engine.Snake
	Food              core.Coord
	Facing            core.Direction
	Score             int
	HighScore         int
	FinalScore        int
	Episode           int
	Epsilon           float64
	BestTraining      int
	TableSize         int
	Commentary        string
	CommentaryPending bool
	Interval          time.Duration
}

// Controller runs a single session.
type Controller struct {
	cfg         config.Config
	cadence     *config.Cadence
	grid        *engine.Grid
	agent       *agent.Agent
	store       Persistence
	scores      ScoreRecorder
	episodes    telemetry.Recorder
	commentator registry.Commentator
	logger      *log.Logger
	player      string

	mode   Mode
	status Status
	gen    uint64

	snake   engine.Snake
	food    core.Coord
	facing  core.Direction // heading of the last committed move
	pending core.Direction // heading the next manual tick will take
	score   int

	highScore         int
	finalScore        int
	commentary        string
	commentaryPending bool

	episode        int
	lastCheckpoint int
	bestTraining   int
	steps          int
	totalReward    float64
}

// New creates a controller, loading the high score and value table from
// the store. Load failures are logged and never fatal: a corrupt or
// unreadable table means a cold start.
func New(opts Options) (*Controller, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	player := opts.Player
	if player == "" {
		player = "local"
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	grid := engine.New(opts.Config.Grid.Size, rng)
	grid.SetFoodAttempts(opts.Config.Grid.FoodAttempts)

	c := &Controller{
		cfg:         opts.Config,
		cadence:     config.NewCadence(opts.Config.Timing),
		grid:        grid,
		store:       opts.Store,
		scores:      opts.Scores,
		episodes:    opts.Episodes,
		commentator: opts.Commentator,
		logger:      logger,
		player:      player,
	}

	var table *agent.Table
	if c.store != nil {
		if high, ok, err := c.store.LoadHighScore(); err != nil {
			logger.Warn("Failed to load high score", "error", err)
		} else if ok {
			c.highScore = high
		}

		t, episode, err := c.store.LoadTable()
		switch {
		case errors.Is(err, storage.ErrCorruptTable):
			logger.Warn("Saved value table is corrupt, starting fresh", "error", err)
		case err != nil:
			logger.Warn("Failed to load value table, starting fresh", "error", err)
		case t != nil:
			table = t
			c.episode = episode
			c.lastCheckpoint = episode
			logger.Info("Loaded value table", "states", t.Len(), "episode", episode)
		}
	}
	c.agent = agent.New(opts.Config.AgentParams(), table, rng)

	c.resetIdle()
	return c, nil
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Status returns the state machine position.
func (c *Controller) Status() Status { return c.status }

// Generation identifies the current run of ticks. It changes whenever
// ticking starts or stops, so a tick scheduled before the change is stale.
func (c *Controller) Generation() uint64 { return c.gen }

// Agent exposes the learner.
func (c *Controller) Agent() *agent.Agent { return c.agent }

// Episode returns the training episode counter.
func (c *Controller) Episode() int { return c.episode }

// Interval returns the delay before the next tick.
func (c *Controller) Interval() time.Duration {
	if c.mode == ModeTraining {
		return c.cadence.Training()
	}
	return c.cadence.Manual(c.score)
}

// SetDirection requests a new heading for the next manual tick. Reversals
// of the current heading and any request in training mode are ignored.
func (c *Controller) SetDirection(d core.Direction) bool {
	if c.mode != ModeManual || !d.Valid() {
		return false
	}
	if d == c.facing.Opposite() {
		return false
	}
	c.pending = d
	return true
}

// Direction returns the heading the next manual tick will take.
func (c *Controller) Direction() core.Direction { return c.pending }

// Start begins a fresh episode from IDLE or GAME_OVER. It returns the new
// generation, or the current one if already playing.
func (c *Controller) Start() uint64 {
	if c.status == StatusPlaying {
		return c.gen
	}

	c.resetEpisode()
	c.status = StatusPlaying
	c.gen++

	c.logger.Debug("Started", "mode", c.mode, "gen", c.gen)
	return c.gen
}

// Stop returns to IDLE, invalidating any scheduled tick. Stopping training
// checkpoints the table.
func (c *Controller) Stop() {
	if c.status == StatusIdle {
		return
	}
	if c.status == StatusPlaying && c.mode == ModeTraining {
		if err := c.Checkpoint(); err != nil {
			c.logger.Warn("Failed to checkpoint value table", "error", err)
		}
	}

	c.status = StatusIdle
	c.gen++
	c.resetIdle()
}

// SetMode switches between manual and training play. Only allowed when no
// game is running; per-episode state is reset, learned state is not.
func (c *Controller) SetMode(m Mode) error {
	if c.status == StatusPlaying {
		return ErrNotIdle
	}
	if m != ModeManual && m != ModeTraining {
		return fmt.Errorf("controller: unknown mode %d", int(m))
	}

	c.mode = m
	c.status = StatusIdle
	c.gen++
	c.resetIdle()
	return nil
}

// ToggleMode flips between manual and training.
func (c *Controller) ToggleMode() error {
	if c.mode == ModeManual {
		return c.SetMode(ModeTraining)
	}
	return c.SetMode(ModeManual)
}

// Tick advances the session by one step if gen is current and a game is
// running.
func (c *Controller) Tick(gen uint64) TickResult {
	if gen != c.gen || c.status != StatusPlaying {
		return TickResult{Stale: true, Gen: c.gen}
	}

	if c.mode == ModeTraining {
		return c.tickTraining()
	}
	return c.tickManual()
}

func (c *Controller) tickManual() TickResult {
	out := c.grid.Step(c.snake, c.pending, c.food)

	if out.Died {
		c.status = StatusGameOver
		c.finalScore = c.score
		c.commentaryPending = true
		c.gen++
		c.recordScore()
		return TickResult{Died: true, GameOver: true, Gen: c.gen}
	}

	c.facing = c.pending
	c.snake = out.Snake

	if out.Ate {
		c.score++
		c.food = c.grid.PlaceFood(c.snake)
		if c.score > c.highScore {
			c.highScore = c.score
			c.saveHighScore()
		}
	}

	return TickResult{Ate: out.Ate, Gen: c.gen}
}

func (c *Controller) tickTraining() TickResult {
	tr := c.agent.Act(c.grid, c.snake, c.facing, c.food)
	c.steps++
	c.totalReward += tr.Reward

	if tr.Outcome.Died {
		c.endEpisode()
		return TickResult{Died: true, EpisodeEnded: true, Gen: c.gen}
	}

	c.facing = tr.Action
	c.pending = tr.Action
	c.snake = tr.Outcome.Snake

	if tr.Outcome.Ate {
		c.score++
		c.food = c.grid.PlaceFood(c.snake)
		if c.score > c.bestTraining {
			c.bestTraining = c.score
		}
	}

	return TickResult{Ate: tr.Outcome.Ate, Gen: c.gen}
}

// endEpisode handles a training death: bookkeeping, epsilon decay,
// periodic checkpoint, then an in-place respawn.
func (c *Controller) endEpisode() {
	c.episode++

	if c.episodes != nil {
		e := telemetry.Episode{
			Episode:     c.episode,
			Score:       c.score,
			Steps:       c.steps,
			TotalReward: c.totalReward,
			Epsilon:     c.agent.Epsilon(),
			TableSize:   c.agent.Table().Len(),
		}
		if err := c.episodes.RecordEpisode(e); err != nil {
			c.logger.Warn("Failed to record episode", "episode", c.episode, "error", err)
		}
	}

	c.agent.DecayEpsilon()

	if c.episode%c.cfg.Agent.CheckpointEvery == 0 {
		if err := c.Checkpoint(); err != nil {
			c.logger.Warn("Failed to checkpoint value table", "episode", c.episode, "error", err)
		}
	}

	c.resetEpisode()
}

// Checkpoint saves the value table now. A nil store is a no-op.
func (c *Controller) Checkpoint() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.SaveTable(c.agent.Table(), c.episode); err != nil {
		return err
	}
	c.lastCheckpoint = c.episode
	c.logger.Info("Checkpoint saved", "episode", c.episode, "states", c.agent.Table().Len(),
		"epsilon", fmt.Sprintf("%.4f", c.agent.Epsilon()))
	return nil
}

// Close checkpoints unsaved training progress.
func (c *Controller) Close() error {
	if c.episode == c.lastCheckpoint {
		return nil
	}
	return c.Checkpoint()
}

// Summarize asks the commentary backend about score, degrading any failure
// to FallbackCommentary. Safe to call from another goroutine.
func (c *Controller) Summarize(ctx context.Context, score int) string {
	if c.commentator == nil {
		return FallbackCommentary
	}
	text, err := c.commentator.Summarize(ctx, score)
	if err != nil || text == "" {
		c.logger.Warn("Commentary unavailable", "score", score, "error", err)
		return FallbackCommentary
	}
	return text
}

// SetCommentary applies a commentary result. It is dropped unless the
// session is still in the GAME_OVER identified by gen.
func (c *Controller) SetCommentary(gen uint64, text string) bool {
	if gen != c.gen || c.status != StatusGameOver {
		return false
	}
	c.commentary = text
	c.commentaryPending = false
	return true
}

// FinalScore returns the score of the last manual game.
func (c *Controller) FinalScore() int { return c.finalScore }

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Mode:              c.mode,
		Status:            c.status,
		GridSize:          c.grid.Size(),
		Snake:             c.snake.Clone(),
		Food:              c.food,
		Facing:            c.facing,
		Score:             c.score,
		HighScore:         c.highScore,
		FinalScore:        c.finalScore,
		Episode:           c.episode,
		Epsilon:           c.agent.Epsilon(),
		BestTraining:      c.bestTraining,
		TableSize:         c.agent.Table().Len(),
		Commentary:        c.commentary,
		CommentaryPending: c.commentaryPending,
		Interval:          c.Interval(),
	}
}

// resetEpisode respawns at the centre facing right with fresh food.
func (c *Controller) resetEpisode() {
	c.spawn()
	c.food = c.grid.PlaceFood(c.snake)
}

// resetIdle restores the idle board: spawn plus food a few cells ahead.
func (c *Controller) resetIdle() {
	c.spawn()
	food := c.grid.Center()
	food.X += IdleFoodOffset
	if !c.grid.InBounds(food) || c.snake.Occupies(food) {
		food = c.grid.PlaceFood(c.snake)
	}
	c.food = food
}

func (c *Controller) spawn() {
	c.snake = engine.Snake{c.grid.Center()}
	c.facing = core.DirRight
	c.pending = core.DirRight
	c.score = 0
	c.steps = 0
	c.totalReward = 0
	c.commentary = ""
	c.commentaryPending = false
}

func (c *Controller) saveHighScore() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveHighScore(c.highScore); err != nil {
		c.logger.Warn("Failed to save high score", "score", c.highScore, "error", err)
	}
}

func (c *Controller) recordScore() {
	if c.scores == nil || c.finalScore <= 0 {
		return
	}
	if _, err := c.scores.SaveScore(c.player, c.finalScore); err != nil {
		c.logger.Warn("Failed to save score", "score", c.finalScore, "error", err)
	}
}
