package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// EpisodeLog appends episodes to a CSV file. The header is written with the
// first record.
type EpisodeLog struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// NewEpisodeLog creates (or truncates) the CSV file at path.
func NewEpisodeLog(path string) (*EpisodeLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating episode log dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating episode log: %w", err)
	}
	return &EpisodeLog{file: f}, nil
}

// RecordEpisode implements Recorder.
func (l *EpisodeLog) RecordEpisode(e Episode) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := []Episode{e}

	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing episode: %w", err)
		}
		l.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing episode: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (l *EpisodeLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadEpisodeLog loads a CSV written by EpisodeLog.
func ReadEpisodeLog(path string) ([]Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening episode log: %w", err)
	}
	defer f.Close()

	var episodes []Episode
	if err := gocsv.UnmarshalFile(f, &episodes); err != nil {
		return nil, fmt.Errorf("reading episode log: %w", err)
	}
	return episodes, nil
}
