// Package storage provides SQLite-based persistence for scores, the high
// score, the learned value table and the training episode log.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/neonsnake/internal/agent"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

// ErrCorruptTable is returned by LoadTable when the stored blob cannot be
// decoded. Callers treat it as "no saved table".
var ErrCorruptTable = errors.New("storage: corrupt value table")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single finished manual game.
type ScoreEntry struct {
	ID        int64
	Player    string
	Score     int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer; SSH sessions share the store

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);

		CREATE TABLE IF NOT EXISTS high_score (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			score INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS value_table (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data BLOB NOT NULL,
			episode INTEGER NOT NULL DEFAULT 0,
			states INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			episode INTEGER NOT NULL,
			score INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			epsilon REAL NOT NULL,
			table_size INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a finished manual game.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(player string, score int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (player, score) VALUES (?, ?)",
		player, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores, highest first.
func (s *Store) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, player, score, created_at
		 FROM scores
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Player, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ClearScores deletes the score history. The high score is kept.
func (s *Store) ClearScores() error {
	_, err := s.db.Exec("DELETE FROM scores")
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// LoadHighScore returns the persisted high score; ok is false when none
// has been saved yet.
func (s *Store) LoadHighScore() (score int, ok bool, err error) {
	err = s.db.QueryRow("SELECT score FROM high_score WHERE id = 1").Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	return score, true, nil
}

// SaveHighScore stores score if it beats the persisted value. The stored
// high score never decreases.
func (s *Store) SaveHighScore(score int) error {
	_, err := s.db.Exec(
		`INSERT INTO high_score (id, score) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET
			score = MAX(score, excluded.score),
			updated_at = CURRENT_TIMESTAMP`,
		score,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save high score: %w", err)
	}
	return nil
}

// SaveTable replaces the persisted value table along with the episode
// counter it was checkpointed at.
func (s *Store) SaveTable(t *agent.Table, episode int) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("storage: cannot encode value table: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO value_table (id, data, episode, states) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			episode = excluded.episode,
			states = excluded.states,
			updated_at = CURRENT_TIMESTAMP`,
		data, episode, t.Len(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save value table: %w", err)
	}
	return nil
}

// LoadTable returns the persisted value table and episode counter, or a
// nil table if none was saved. A blob that fails to decode yields
// ErrCorruptTable.
func (s *Store) LoadTable() (*agent.Table, int, error) {
	var data []byte
	var episode int
	err := s.db.QueryRow("SELECT data, episode FROM value_table WHERE id = 1").Scan(&data, &episode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("storage: cannot query value table: %w", err)
	}

	t := agent.NewTable()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	return t, episode, nil
}

// DeleteTable forgets the persisted value table.
func (s *Store) DeleteTable() error {
	if _, err := s.db.Exec("DELETE FROM value_table"); err != nil {
		return fmt.Errorf("storage: cannot delete value table: %w", err)
	}
	return nil
}

// RecordEpisode implements telemetry.Recorder.
func (s *Store) RecordEpisode(e telemetry.Episode) error {
	_, err := s.db.Exec(
		`INSERT INTO episodes (episode, score, steps, total_reward, epsilon, table_size)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Episode, e.Score, e.Steps, e.TotalReward, e.Epsilon, e.TableSize,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record episode: %w", err)
	}
	return nil
}

// Episodes returns the most recent limit episodes in recording order.
// A limit of 0 returns all of them.
func (s *Store) Episodes(limit int) ([]telemetry.Episode, error) {
	query := `SELECT episode, score, steps, total_reward, epsilon, table_size
		 FROM (SELECT * FROM episodes ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []telemetry.Episode
	for rows.Next() {
		var e telemetry.Episode
		if err := rows.Scan(&e.Episode, &e.Score, &e.Steps, &e.TotalReward, &e.Epsilon, &e.TableSize); err != nil {
			return nil, fmt.Errorf("storage: cannot scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// ClearEpisodes deletes the episode log.
func (s *Store) ClearEpisodes() error {
	if _, err := s.db.Exec("DELETE FROM episodes"); err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// ScoreStats contains aggregated statistics over the score history.
type ScoreStats struct {
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// GetScoreStats aggregates the score history.
func (s *Store) GetScoreStats() (*ScoreStats, error) {
	stats := &ScoreStats{}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores`,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get score stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// parseTime handles the datetime column as either time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
