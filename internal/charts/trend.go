package charts

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"enrolpulse/pkg/contracts/domain"
)

// Trend renders the per-date totals as a line chart.
func Trend(points []domain.TrendPoint, s Size) ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return Placeholder("No dated enrolments", s)
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	var max float64
	for i, p := range points {
		xs[i] = p.Date
		ys[i] = float64(p.Total)
		if ys[i] > max {
			max = ys[i]
		}
	}
	// go-chart needs a non-zero x range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	if max == 0 {
		max = 1
	}

	graph := chart.Chart{
		Width:  s.Width,
		Height: s.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 8},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02 Jan"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return printer.Sprintf("%d", int64(f))
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total Enrolments",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("1f77b4"),
					StrokeWidth: 2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render trend: %w", err)
	}
	return buf.Bytes(), nil
}
