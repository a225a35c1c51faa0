package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"enrolpulse/pkg/contracts/domain"
)

// Bar renders ranked groups as a vertical bar chart, one bar per key in order.
func Bar(groups []domain.GroupTotal, s Size) ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return Placeholder("No enrolments for this selection", s)
	}

	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		values[i] = float64(g.Total)
		labels[i] = g.Key
	}

	width := pixels(s.Width) * 0.6 / vg.Length(len(groups)+1)
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return nil, fmt.Errorf("charts: bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	p := plot.New()
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	p.Y.Tick.Marker = countTicks{}
	p.Y.Label.Text = "Total Enrolments"
	p.Add(plotter.NewGrid())

	return renderPlot(p, s)
}
