package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/neonsnake/internal/agent"
	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/engine"
	"github.com/vovakirdan/neonsnake/internal/storage"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

type memStore struct {
	high       int
	hasHigh    bool
	highSaves  []int
	table      *agent.Table
	episode    int
	tableSaves []int
	loadErr    error
	scores     []int
}

func (m *memStore) LoadHighScore() (int, bool, error) { return m.high, m.hasHigh, nil }

func (m *memStore) SaveHighScore(s int) error {
	m.highSaves = append(m.highSaves, s)
	if s > m.high {
		m.high = s
	}
	m.hasHigh = true
	return nil
}

func (m *memStore) LoadTable() (*agent.Table, int, error) {
	if m.loadErr != nil {
		return nil, 0, m.loadErr
	}
	return m.table, m.episode, nil
}

func (m *memStore) SaveTable(t *agent.Table, episode int) error {
	m.table = t
	m.episode = episode
	m.tableSaves = append(m.tableSaves, episode)
	return nil
}

func (m *memStore) SaveScore(_ string, s int) (int64, error) {
	m.scores = append(m.scores, s)
	return int64(len(m.scores)), nil
}

type episodeLog struct{ episodes []telemetry.Episode }

func (l *episodeLog) RecordEpisode(e telemetry.Episode) error {
	l.episodes = append(l.episodes, e)
	return nil
}

type stubCommentator struct {
	text string
	err  error
}

func (s stubCommentator) Summarize(context.Context, int) (string, error) { return s.text, s.err }

func newTestController(t *testing.T, opts Options) *Controller {
	t.Helper()
	if opts.Config == (config.Config{}) {
		opts.Config = config.Default()
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNewIdleBoard(t *testing.T) {
	c := newTestController(t, Options{})
	s := c.Snapshot()

	if s.Mode != ModeManual || s.Status != StatusIdle {
		t.Errorf("Initial mode/status = %v/%v, expected MANUAL/IDLE", s.Mode, s.Status)
	}
	if len(s.Snake) != 1 || s.Snake[0] != (core.Coord{X: 10, Y: 10}) {
		t.Errorf("Snake = %v, expected [(10,10)]", s.Snake)
	}
	if s.Food != (core.Coord{X: 15, Y: 10}) {
		t.Errorf("Food = %v, expected (15,10)", s.Food)
	}
	if s.Facing != core.DirRight {
		t.Errorf("Facing = %v, expected RIGHT", s.Facing)
	}
	if s.Epsilon != 1.0 {
		t.Errorf("Epsilon = %v, expected 1.0 with no saved table", s.Epsilon)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.Alpha = 0
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
}

func TestSetDirectionRejectsReversal(t *testing.T) {
	c := newTestController(t, Options{})

	for _, d := range core.Directions {
		t.Run(d.String(), func(t *testing.T) {
			c.facing, c.pending = d, d
			if c.SetDirection(d.Opposite()) {
				t.Errorf("Reversal %v -> %v accepted", d, d.Opposite())
			}
			if c.Direction() != d {
				t.Errorf("Direction = %v, expected unchanged %v", c.Direction(), d)
			}
			if !c.SetDirection(d.TurnLeft()) {
				t.Errorf("Turn %v -> %v rejected", d, d.TurnLeft())
			}
		})
	}
}

func TestSetDirectionChecksCommittedHeading(t *testing.T) {
	c := newTestController(t, Options{})
	c.Start()

	// Facing right: up then left within one tick must not allow a U-turn
	// into the neck; left is only a reversal of the committed heading.
	if !c.SetDirection(core.DirUp) {
		t.Fatal("Up should be accepted")
	}
	if c.SetDirection(core.DirLeft) {
		t.Error("Left should still be rejected before the snake has turned")
	}
	if c.Direction() != core.DirUp {
		t.Errorf("Direction = %v, expected UP", c.Direction())
	}
}

func TestSetDirectionIgnoredInTraining(t *testing.T) {
	c := newTestController(t, Options{})
	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatal(err)
	}
	if c.SetDirection(core.DirUp) {
		t.Error("Direction input should be ignored in training mode")
	}
}

func TestScenarioEatAfterFiveTicks(t *testing.T) {
	c := newTestController(t, Options{})
	gen := c.Start()
	c.food = core.Coord{X: 15, Y: 10}

	var res TickResult
	for i := 0; i < 5; i++ {
		res = c.Tick(gen)
		if res.Died || res.Stale {
			t.Fatalf("Tick %d: unexpected %+v", i+1, res)
		}
	}

	s := c.Snapshot()
	if s.Snake.Head() != (core.Coord{X: 15, Y: 10}) {
		t.Errorf("Head = %v, expected (15,10)", s.Snake.Head())
	}
	if !res.Ate {
		t.Error("Fifth tick should eat")
	}
	if s.Score != 1 || len(s.Snake) != 2 {
		t.Errorf("Score/length = %d/%d, expected 1/2", s.Score, len(s.Snake))
	}
	if s.Snake.Occupies(s.Food) {
		t.Error("New food placed on the snake")
	}
}

func TestScenarioNeckCollisionEndsGame(t *testing.T) {
	store := &memStore{}
	c := newTestController(t, Options{Store: store, Scores: store})
	gen := c.Start()

	c.snake = engine.Snake{{X: 0, Y: 5}, {X: 0, Y: 4}}
	c.facing, c.pending = core.DirUp, core.DirUp
	c.score = 3

	res := c.Tick(gen)
	if !res.Died || !res.GameOver {
		t.Fatalf("Tick = %+v, expected death and game over", res)
	}
	if c.Status() != StatusGameOver {
		t.Errorf("Status = %v, expected GAME_OVER", c.Status())
	}
	if c.FinalScore() != 3 {
		t.Errorf("FinalScore = %d, expected 3", c.FinalScore())
	}
	s := c.Snapshot()
	if s.Snake.Head() != (core.Coord{X: 0, Y: 5}) {
		t.Errorf("Dead snake head = %v, expected unmodified (0,5)", s.Snake.Head())
	}
	if !s.CommentaryPending {
		t.Error("Game over should leave commentary pending")
	}
	if len(store.scores) != 1 || store.scores[0] != 3 {
		t.Errorf("Recorded scores = %v, expected [3]", store.scores)
	}

	// Ticks after game over are stale
	if after := c.Tick(gen); !after.Stale {
		t.Error("Tick with the pre-death generation should be stale")
	}
	if after := c.Tick(c.Generation()); !after.Stale {
		t.Error("Tick during GAME_OVER should be stale")
	}
}

func TestHighScoreSavedOnImprovement(t *testing.T) {
	store := &memStore{high: 1, hasHigh: true}
	c := newTestController(t, Options{Store: store})

	if c.Snapshot().HighScore != 1 {
		t.Fatalf("High score not loaded: %d", c.Snapshot().HighScore)
	}

	gen := c.Start()
	for i := 0; i < 2; i++ {
		c.food = c.snake.Head().Step(c.pending)
		if res := c.Tick(gen); !res.Ate {
			t.Fatalf("Tick %d should eat", i)
		}
	}

	if c.Snapshot().HighScore != 2 {
		t.Errorf("High score = %d, expected 2", c.Snapshot().HighScore)
	}
	// Score 1 ties the old record and is not saved; score 2 is
	if len(store.highSaves) != 1 || store.highSaves[0] != 2 {
		t.Errorf("High score saves = %v, expected [2]", store.highSaves)
	}
}

func TestStaleTickAfterStop(t *testing.T) {
	c := newTestController(t, Options{})
	gen := c.Start()
	c.Tick(gen)

	c.Stop()
	before := c.Snapshot()

	if res := c.Tick(gen); !res.Stale {
		t.Error("Tick from a stopped run should be stale")
	}
	after := c.Snapshot()
	if after.Snake.Head() != before.Snake.Head() || after.Status != StatusIdle {
		t.Error("Stale tick mutated state")
	}

	// A restarted run gets a new generation; the old one stays stale
	newGen := c.Start()
	if newGen == gen {
		t.Fatal("Start should issue a new generation")
	}
	if res := c.Tick(gen); !res.Stale {
		t.Error("Old generation should not drive the new run")
	}
	if res := c.Tick(newGen); res.Stale {
		t.Error("Current generation should tick")
	}
}

func TestSetModeOnlyWhenIdle(t *testing.T) {
	store := &memStore{high: 7, hasHigh: true}
	c := newTestController(t, Options{Store: store})

	c.Start()
	if err := c.SetMode(ModeTraining); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("SetMode while playing = %v, expected ErrNotIdle", err)
	}
	c.Stop()

	c.agent.Table().Set("00000000000", core.DirUp, 3)
	c.episode = 12
	c.score = 4

	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatalf("SetMode at idle failed: %v", err)
	}
	s := c.Snapshot()
	if s.Mode != ModeTraining || s.Status != StatusIdle {
		t.Errorf("Mode/status = %v/%v", s.Mode, s.Status)
	}
	if s.Score != 0 || len(s.Snake) != 1 || s.Facing != core.DirRight {
		t.Errorf("Per-episode state not reset: %+v", s)
	}
	if s.Episode != 12 || s.HighScore != 7 || c.agent.Table().Get("00000000000", core.DirUp) != 3 {
		t.Error("Mode switch must keep the table, high score and episode counter")
	}

	if err := c.ToggleMode(); err != nil || c.Mode() != ModeManual {
		t.Errorf("ToggleMode = %v, mode %v", err, c.Mode())
	}
}

func TestInterval(t *testing.T) {
	c := newTestController(t, Options{})

	tests := []struct {
		score    int
		expected time.Duration
	}{
		{0, 150 * time.Millisecond},
		{10, 130 * time.Millisecond},
		{60, 50 * time.Millisecond},
	}
	for _, tc := range tests {
		c.score = tc.score
		if got := c.Interval(); got != tc.expected {
			t.Errorf("Manual interval at score %d = %v, expected %v", tc.score, got, tc.expected)
		}
	}

	c.score = 0
	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatal(err)
	}
	if got := c.Interval(); got != 20*time.Millisecond {
		t.Errorf("Training interval = %v, expected 20ms", got)
	}
}

func TestTrainingEpisodesAndCheckpoint(t *testing.T) {
	store := &memStore{}
	log := &episodeLog{}
	c := newTestController(t, Options{Store: store, Episodes: log, Seed: 42})

	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatal(err)
	}
	gen := c.Start()

	prevEps := c.agent.Epsilon()
	for ticks := 0; c.Episode() < 60; ticks++ {
		if ticks > 1_000_000 {
			t.Fatalf("Training stalled at episode %d", c.Episode())
		}
		res := c.Tick(gen)
		if res.Stale {
			t.Fatal("Training tick went stale")
		}
		if res.GameOver {
			t.Fatal("Training death must not reach GAME_OVER")
		}
		if res.EpisodeEnded {
			s := c.Snapshot()
			if s.Status != StatusPlaying || len(s.Snake) != 1 || s.Score != 0 {
				t.Fatalf("Snake not respawned in place: %+v", s)
			}
			if s.Epsilon > prevEps || s.Epsilon < 0 {
				t.Fatalf("Epsilon went from %v to %v", prevEps, s.Epsilon)
			}
			prevEps = s.Epsilon
		}
	}

	if want := math.Pow(0.995, 60); math.Abs(c.agent.Epsilon()-want) > 1e-12 {
		t.Errorf("Epsilon after 60 deaths = %v, expected %v", c.agent.Epsilon(), want)
	}
	if len(store.tableSaves) != 1 || store.tableSaves[0] != 50 {
		t.Errorf("Checkpoints = %v, expected [50]", store.tableSaves)
	}
	if len(log.episodes) != 60 || log.episodes[59].Episode != 60 {
		t.Errorf("Recorded %d episodes", len(log.episodes))
	}
	if c.Status() != StatusPlaying {
		t.Errorf("Training should keep playing, status %v", c.Status())
	}
	if c.agent.Table().Len() == 0 {
		t.Error("Training should have populated the value table")
	}
	if len(store.highSaves) != 0 {
		t.Error("Training must not touch the manual high score")
	}

	c.Stop()
	if got := store.tableSaves[len(store.tableSaves)-1]; got != 60 {
		t.Errorf("Stop should checkpoint at episode 60, got %d", got)
	}
}

func TestLoadTableResumes(t *testing.T) {
	tbl := agent.NewTable()
	tbl.Set("00010000100", core.DirRight, 2)
	store := &memStore{table: tbl, episode: 300}

	c := newTestController(t, Options{Store: store})
	if c.agent.Epsilon() != 0.1 {
		t.Errorf("Epsilon = %v, expected 0.1 with a loaded table", c.agent.Epsilon())
	}
	if c.Episode() != 300 {
		t.Errorf("Episode = %d, expected 300", c.Episode())
	}
	if c.agent.Table().Get("00010000100", core.DirRight) != 2 {
		t.Error("Loaded table values missing")
	}
	if err := c.Close(); err != nil || len(store.tableSaves) != 0 {
		t.Error("Close without progress should not save")
	}
}

func TestLoadTableFailureColdStarts(t *testing.T) {
	for _, loadErr := range []error{
		fmt.Errorf("%w: bad json", storage.ErrCorruptTable),
		errors.New("disk on fire"),
	} {
		store := &memStore{loadErr: loadErr}
		c := newTestController(t, Options{Store: store})
		if c.agent.Epsilon() != 1.0 || c.agent.Table().Len() != 0 || c.Episode() != 0 {
			t.Errorf("Load error %v should cold start", loadErr)
		}
	}
}

func TestCommentary(t *testing.T) {
	tests := []struct {
		name     string
		backend  stubCommentator
		nilBack  bool
		expected string
	}{
		{"backend text", stubCommentator{text: "Impressive efficiency."}, false, "Impressive efficiency."},
		{"backend error", stubCommentator{err: errors.New("offline")}, false, FallbackCommentary},
		{"empty text", stubCommentator{}, false, FallbackCommentary},
		{"no backend", stubCommentator{}, true, FallbackCommentary},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := Options{}
			if !tc.nilBack {
				opts.Commentator = tc.backend
			}
			c := newTestController(t, opts)
			if got := c.Summarize(context.Background(), 4); got != tc.expected {
				t.Errorf("Summarize() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestSetCommentaryGuardedByGeneration(t *testing.T) {
	c := newTestController(t, Options{})
	gen := c.Start()
	c.snake = engine.Snake{{X: 0, Y: 0}}
	c.facing, c.pending = core.DirLeft, core.DirLeft

	res := c.Tick(gen)
	if !res.GameOver {
		t.Fatal("Expected game over")
	}

	if c.SetCommentary(gen, "stale") {
		t.Error("Commentary for an old generation should be dropped")
	}
	if !c.SetCommentary(res.Gen, "fresh") {
		t.Fatal("Commentary for the current game over should apply")
	}
	if s := c.Snapshot(); s.Commentary != "fresh" || s.CommentaryPending {
		t.Errorf("Commentary = %q pending=%v", s.Commentary, s.CommentaryPending)
	}

	// Restarting before a late result arrives discards it
	c.Start()
	if c.SetCommentary(res.Gen, "late") {
		t.Error("Late commentary should not apply after restart")
	}
	if c.Snapshot().Commentary != "" {
		t.Error("Restart should clear commentary")
	}
}

func TestRunnerTraining(t *testing.T) {
	store := &memStore{}
	c := newTestController(t, Options{Store: store, Seed: 7})
	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(c)
	r.SetInterval(0)
	ticks := 0
	r.OnTick(func(TickResult) { ticks++ })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.Run(ctx, UntilEpisodes(c, 5)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c.Episode() != 5 {
		t.Errorf("Episode = %d, expected 5", c.Episode())
	}
	if c.Status() != StatusIdle {
		t.Errorf("Status after run = %v, expected IDLE", c.Status())
	}
	if ticks < 5 {
		t.Errorf("Ticks = %d, expected at least one per episode", ticks)
	}
	if len(store.tableSaves) == 0 {
		t.Error("Runner should checkpoint when training stops")
	}
}

func TestRunnerManualStopsAtGameOver(t *testing.T) {
	c := newTestController(t, Options{})
	r := NewRunner(c)
	r.SetInterval(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Nobody steers: the snake runs right into the wall
	if err := r.Run(ctx, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c.Status() != StatusGameOver {
		t.Errorf("Status = %v, expected GAME_OVER", c.Status())
	}
	if c.Snapshot().Snake.Head().X != engine.DefaultSize-1 {
		t.Errorf("Head = %v, expected at the right wall", c.Snapshot().Snake.Head())
	}
}

func TestRunnerCancel(t *testing.T) {
	c := newTestController(t, Options{})
	if err := c.SetMode(ModeTraining); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c)
	r.SetInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, expected context.Canceled", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("Cancelled training should stop, status %v", c.Status())
	}
}
