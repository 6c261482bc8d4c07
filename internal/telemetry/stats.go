package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the score distribution of a training run.
type Summary struct {
	Episodes    int
	MeanScore   float64
	StdDev      float64
	Median      float64
	P90         float64
	MaxScore    float64
	BestEpisode int
	MeanSteps   float64
	MeanReward  float64
	LastEpsilon float64
}

// Summarize computes score statistics over episodes. An empty slice yields
// the zero Summary.
func Summarize(episodes []Episode) Summary {
	if len(episodes) == 0 {
		return Summary{}
	}

	scores := make([]float64, len(episodes))
	steps := make([]float64, len(episodes))
	rewards := make([]float64, len(episodes))
	for i, e := range episodes {
		scores[i] = float64(e.Score)
		steps[i] = float64(e.Steps)
		rewards[i] = e.TotalReward
	}

	s := Summary{
		Episodes:    len(episodes),
		MeanScore:   stat.Mean(scores, nil),
		MaxScore:    floats.Max(scores),
		BestEpisode: episodes[floats.MaxIdx(scores)].Episode,
		MeanSteps:   stat.Mean(steps, nil),
		MeanReward:  stat.Mean(rewards, nil),
		LastEpsilon: episodes[len(episodes)-1].Epsilon,
	}
	if len(scores) > 1 {
		s.StdDev = stat.StdDev(scores, nil)
	}

	// Quantile needs sorted input
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	return s
}

// MovingAverage returns the trailing mean of scores over window episodes.
// The first window-1 points average over what is available.
func MovingAverage(episodes []Episode, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(episodes))
	buf := make([]float64, 0, window)
	for i, e := range episodes {
		if len(buf) == window {
			buf = buf[1:]
		}
		buf = append(buf, float64(e.Score))
		out[i] = stat.Mean(buf, nil)
	}
	return out
}
