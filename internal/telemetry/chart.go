package telemetry

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DefaultWindow is the moving-average window used for charts.
const DefaultWindow = 50

// WriteChart renders an HTML page with per-episode score, its moving
// average and the exploration rate.
func WriteChart(w io.Writer, episodes []Episode, window int) error {
	if len(episodes) == 0 {
		return fmt.Errorf("telemetry: no episodes to chart")
	}

	xAxis := make([]string, len(episodes))
	scores := make([]opts.LineData, len(episodes))
	epsilons := make([]opts.LineData, len(episodes))
	for i, e := range episodes {
		xAxis[i] = fmt.Sprintf("%d", e.Episode)
		scores[i] = opts.LineData{Value: e.Score}
		epsilons[i] = opts.LineData{Value: e.Epsilon}
	}

	avg := MovingAverage(episodes, window)
	avgData := make([]opts.LineData, len(avg))
	for i, v := range avg {
		avgData[i] = opts.LineData{Value: v}
	}

	scoreLine := charts.NewLine()
	scoreLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Training score",
			Subtitle: fmt.Sprintf("%d episodes, moving average over %d", len(episodes), window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	scoreLine.SetXAxis(xAxis).
		AddSeries("score", scores).
		AddSeries(fmt.Sprintf("avg(%d)", window), avgData)

	epsLine := charts.NewLine()
	epsLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Exploration rate",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	epsLine.SetXAxis(xAxis).AddSeries("epsilon", epsilons)

	page := components.NewPage()
	page.AddCharts(scoreLine, epsLine)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("telemetry: render chart: %w", err)
	}
	return nil
}
