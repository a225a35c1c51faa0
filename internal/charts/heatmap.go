package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"enrolpulse/internal/dashboard"
)

// colorBarWidth is the share of the image given to the colour scale.
const colorBarWidth = 0.2

// heatGrid adapts a dashboard.HeatGrid to plotter.GridXYZ. Row 0 is drawn at
// the top, as in the tabular layout.
type heatGrid struct {
	values [][]float64
	rows   int
	cols   int
}

func (g heatGrid) Dims() (c, r int) { return g.cols, g.rows }
func (g heatGrid) Z(c, r int) float64 {
	return g.values[g.rows-1-r][c]
}
func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }

// Heatmap renders the pincode grid with a YlOrRd scale and a colour bar.
// Padding cells are left blank.
func Heatmap(grid *dashboard.HeatGrid, s Size) ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if grid == nil || grid.Rows == 0 {
		return Placeholder("No pincode data", s)
	}

	cmap, err := NewYlOrRd(float64(grid.Min), float64(grid.Max))
	if err != nil {
		return nil, err
	}

	hm := plotter.NewHeatMap(heatGrid{values: grid.Values(), rows: grid.Rows, cols: grid.Columns}, cmap.Palette(255))
	hm.Min, hm.Max = cmap.Min(), cmap.Max()
	hm.NaN = color.Transparent

	p := plot.New()
	p.Add(hm)
	p.HideAxes()

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.HideX()
	bar.Y.Label.Text = grid.Label
	bar.Y.Tick.Marker = countTicks{}

	c := newCanvas(s)
	dc := draw.New(c)
	split := dc.Max.X - dc.Min.X
	p.Draw(draw.Crop(dc, 0, -split*colorBarWidth, 0, 0))
	bar.Draw(draw.Crop(dc, split*(1-colorBarWidth), 0, 0, 0))

	return encode(c)
}
