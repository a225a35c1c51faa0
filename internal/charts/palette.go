package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// NewYlOrRd returns the ColorBrewer YlOrRd scale over min..max, light for low
// values and dark red for high ones. A zero-width range is widened so every
// value maps to the lightest colour.
func NewYlOrRd(min, max float64) (palette.ColorMap, error) {
	stops, err := brewer.GetPalette(brewer.TypeSequential, "YlOrRd", 9)
	if err != nil {
		return nil, err
	}

	// moreland wants rising luminance; YlOrRd runs light to dark
	colors := stops.Colors()
	controls := make([]color.Color, len(colors))
	for i, c := range colors {
		controls[len(colors)-1-i] = c
	}
	cmap, err := moreland.NewLuminance(controls)
	if err != nil {
		return nil, fmt.Errorf("charts: YlOrRd colour map: %w", err)
	}

	if max <= min {
		max = min + 1
	}
	cmap.SetMin(min)
	cmap.SetMax(max)
	return palette.Reverse(cmap), nil
}
