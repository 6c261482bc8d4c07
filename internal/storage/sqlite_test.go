package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/neonsnake/internal/agent"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveHighScore(12); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	high, ok, err := store.LoadHighScore()
	if err != nil || !ok || high != 12 {
		t.Errorf("LoadHighScore() = %d, %v, %v; expected 12, true, nil", high, ok, err)
	}
}

func TestStoreScoresTopAndClear(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 50, 200} {
		if _, err := store.SaveScore("local", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("ssh:alice", 75); err != nil {
		t.Fatal(err)
	}

	scores, err := store.TopScores(3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	expected := []int{200, 100, 75}
	for i, want := range expected {
		if scores[i].Score != want {
			t.Errorf("Score %d = %d, expected %d", i, scores[i].Score, want)
		}
	}
	if scores[2].Player != "ssh:alice" {
		t.Errorf("Player = %q, expected ssh:alice", scores[2].Player)
	}

	if err := store.ClearScores(); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	scores, _ = store.TopScores(10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}
}

func TestStoreTopScoresDefaultLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 20; i++ {
		store.SaveScore("local", i)
	}

	scores, err := store.TopScores(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 10 {
		t.Errorf("Expected default limit of 10, got %d", len(scores))
	}
}

func TestStoreHighScoreMonotonic(t *testing.T) {
	store := openTestStore(t)

	if _, ok, err := store.LoadHighScore(); err != nil || ok {
		t.Fatalf("Fresh store LoadHighScore() ok=%v err=%v, expected none", ok, err)
	}

	for _, s := range []int{5, 9, 3} {
		if err := store.SaveHighScore(s); err != nil {
			t.Fatalf("SaveHighScore(%d) failed: %v", s, err)
		}
	}

	high, ok, err := store.LoadHighScore()
	if err != nil || !ok {
		t.Fatalf("LoadHighScore() ok=%v err=%v", ok, err)
	}
	if high != 9 {
		t.Errorf("High score = %d, expected 9 (never decreases)", high)
	}
}

func TestStoreTableRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if tbl, _, err := store.LoadTable(); err != nil || tbl != nil {
		t.Fatalf("Fresh store LoadTable() = %v, %v; expected nil, nil", tbl, err)
	}

	tbl := agent.NewTable()
	tbl.Set("00010000100", core.DirRight, 4.5)
	tbl.Set("11000100101", core.DirDown, -12.25)

	if err := store.SaveTable(tbl, 150); err != nil {
		t.Fatalf("SaveTable() failed: %v", err)
	}
	// Overwrite keeps a single row
	tbl.Set("00010000100", core.DirUp, 1)
	if err := store.SaveTable(tbl, 200); err != nil {
		t.Fatalf("SaveTable() failed: %v", err)
	}

	got, episode, err := store.LoadTable()
	if err != nil {
		t.Fatalf("LoadTable() failed: %v", err)
	}
	if episode != 200 {
		t.Errorf("Episode = %d, expected 200", episode)
	}
	if got.Len() != 2 {
		t.Errorf("States = %d, expected 2", got.Len())
	}
	if v := got.Get("11000100101", core.DirDown); v != -12.25 {
		t.Errorf("Value = %v, expected -12.25", v)
	}
	if v := got.Get("00010000100", core.DirUp); v != 1 {
		t.Errorf("Value = %v, expected 1", v)
	}

	if err := store.DeleteTable(); err != nil {
		t.Fatal(err)
	}
	if tbl, _, _ := store.LoadTable(); tbl != nil {
		t.Error("Expected no table after DeleteTable")
	}
}

func TestStoreCorruptTable(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.db.Exec(
		"INSERT INTO value_table (id, data, episode) VALUES (1, ?, 3)",
		[]byte(`{"not-a-key": {"UP": 1}}`),
	); err != nil {
		t.Fatal(err)
	}

	tbl, _, err := store.LoadTable()
	if !errors.Is(err, ErrCorruptTable) {
		t.Fatalf("LoadTable() error = %v, expected ErrCorruptTable", err)
	}
	if tbl != nil {
		t.Error("Corrupt load should not return a table")
	}
}

func TestStoreEpisodes(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 5; i++ {
		e := telemetry.Episode{Episode: i, Score: i * 2, Steps: i * 10, TotalReward: -90, Epsilon: 0.5, TableSize: i}
		if err := store.RecordEpisode(e); err != nil {
			t.Fatalf("RecordEpisode() failed: %v", err)
		}
	}

	all, err := store.Episodes(0)
	if err != nil {
		t.Fatalf("Episodes() failed: %v", err)
	}
	if len(all) != 5 || all[0].Episode != 1 || all[4].Episode != 5 {
		t.Errorf("Episodes(0) = %+v, expected 1..5 in order", all)
	}

	recent, err := store.Episodes(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Episode != 4 || recent[1].Episode != 5 {
		t.Errorf("Episodes(2) = %+v, expected 4,5", recent)
	}
	if recent[1].Score != 10 || recent[1].Steps != 50 {
		t.Errorf("Episode fields not preserved: %+v", recent[1])
	}

	if err := store.ClearEpisodes(); err != nil {
		t.Fatal(err)
	}
	if all, _ := store.Episodes(0); len(all) != 0 {
		t.Errorf("Expected no episodes after clear, got %d", len(all))
	}
}

func TestStoreScoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetScoreStats()
	if err != nil {
		t.Fatalf("GetScoreStats() failed: %v", err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("Empty stats = %+v", stats)
	}

	store.SaveScore("local", 4)
	store.SaveScore("local", 8)

	stats, err = store.GetScoreStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 8 || stats.AvgScore != 6 || stats.TotalScore != 12 {
		t.Errorf("Stats = %+v", stats)
	}
}
