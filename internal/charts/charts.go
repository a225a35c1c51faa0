// Package charts rasterises dashboard series to PNG. The trend line uses
// go-chart; bar charts and the pincode heat map use gonum/plot.
package charts

import (
	"bytes"
	"fmt"
	"image/color"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Chart kinds served by the dashboard.
const (
	KindTrend     = "trend"
	KindStates    = "states"
	KindDistricts = "districts"
	KindPincodes  = "pincodes"
)

// Kinds lists every chart kind.
var Kinds = []string{KindTrend, KindStates, KindDistricts, KindPincodes}

const dpi = 96

var (
	barColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	textColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	printer   = message.NewPrinter(language.English)
)

// Size is an output size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is the panel size used by the HTML dashboard.
var DefaultSize = Size{Width: 640, Height: 240}

func (s Size) valid() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("charts: invalid size %dx%d", s.Width, s.Height)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}

// newCanvas returns an image canvas of s pixels.
func newCanvas(s Size) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(pixels(s.Width), pixels(s.Height)), vgimg.UseDPI(dpi))
}

func encode(c *vgimg.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("charts: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// renderPlot draws p over the whole canvas.
func renderPlot(p *plot.Plot, s Size) ([]byte, error) {
	c := newCanvas(s)
	p.Draw(draw.New(c))
	return encode(c)
}

// Placeholder renders an empty panel carrying msg, used when a series has no points.
func Placeholder(msg string, s Size) ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = msg
	p.Title.TextStyle.Color = textColor
	p.HideAxes()
	return renderPlot(p, s)
}

// countTicks labels the default ticks with grouped integers.
type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = printer.Sprintf("%d", int64(ticks[i].Value))
		}
	}
	return ticks
}
