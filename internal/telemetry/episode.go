// Package telemetry records training episodes and turns them into summary
// statistics, CSV logs and HTML charts.
package telemetry

// Episode is one finished training life.
type Episode struct {
	Episode     int     `csv:"episode" parquet:"episode"`
	Score       int     `csv:"score" parquet:"score"`
	Steps       int     `csv:"steps" parquet:"steps"`
	TotalReward float64 `csv:"total_reward" parquet:"total_reward"`
	Epsilon     float64 `csv:"epsilon" parquet:"epsilon"`
	TableSize   int     `csv:"table_size" parquet:"table_size"`
}

// Recorder receives finished episodes.
type Recorder interface {
	RecordEpisode(e Episode) error
}

// Recorders fans an episode out to several recorders. Every recorder is
// called; the first error is returned.
type Recorders []Recorder

// RecordEpisode implements Recorder.
func (rs Recorders) RecordEpisode(e Episode) error {
	var first error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.RecordEpisode(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Buffer keeps recorded episodes in memory.
type Buffer struct {
	Episodes []Episode
}

// RecordEpisode implements Recorder.
func (b *Buffer) RecordEpisode(e Episode) error {
	b.Episodes = append(b.Episodes, e)
	return nil
}
