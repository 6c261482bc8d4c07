package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/neonsnake/internal/agent"
	"github.com/vovakirdan/neonsnake/internal/telemetry"
)

// TableRow is one (state, action) value for offline analysis.
// State is the 11-character feature key.
type TableRow struct {
	State  string  `parquet:"state,dict"`
	Action string  `parquet:"action,dict"`
	Value  float64 `parquet:"value"`
}

// TableRows flattens a value table in state order.
func TableRows(t *agent.Table) []TableRow {
	entries := t.Entries()
	rows := make([]TableRow, len(entries))
	for i, e := range entries {
		rows[i] = TableRow{
			State:  string(e.State),
			Action: e.Action.String(),
			Value:  e.Value,
		}
	}
	return rows
}

// ExportTableParquet writes the value table to outPath atomically.
func ExportTableParquet(outPath string, t *agent.Table) error {
	return writeParquetAtomic(outPath, TableRows(t), "value_table_v1")
}

// ExportEpisodesParquet writes the episode log to outPath atomically.
func ExportEpisodesParquet(outPath string, episodes []telemetry.Episode) error {
	return writeParquetAtomic(outPath, episodes, "episode_v1")
}

func writeParquetAtomic[T any](outPath string, rows []T, schema string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: rename parquet: %w", err)
	}
	return nil
}
