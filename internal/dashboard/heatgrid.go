package dashboard

import (
	"math"

	"enrolpulse/pkg/contracts/domain"
)

// HeatCell is one square of the pincode grid. Padding cells are Empty.
type HeatCell struct {
	Pincode string `json:"pincode,omitempty"`
	Total   int64  `json:"total"`
	Empty   bool   `json:"empty"`
}

// HeatGrid lays ranked pincodes out row-major, Columns wide.
type HeatGrid struct {
	Columns int          `json:"columns"`
	Rows    int          `json:"rows"`
	Cells   [][]HeatCell `json:"cells"`
	Min     int64        `json:"min"`
	Max     int64        `json:"max"`
	Label   string       `json:"label"`
}

// NewHeatGrid builds a grid of ceil(len(groups)/columns) rows. Cells after the
// last group are padding. It returns nil when there is nothing to draw.
func NewHeatGrid(groups []domain.GroupTotal, columns int) *HeatGrid {
	if len(groups) == 0 || columns <= 0 {
		return nil
	}

	rows := (len(groups) + columns - 1) / columns
	g := &HeatGrid{
		Columns: columns,
		Rows:    rows,
		Cells:   make([][]HeatCell, rows),
		Min:     groups[0].Total,
		Max:     groups[0].Total,
		Label:   "Total Enrolments",
	}

	for r := 0; r < rows; r++ {
		g.Cells[r] = make([]HeatCell, columns)
		for c := 0; c < columns; c++ {
			i := r*columns + c
			if i >= len(groups) {
				g.Cells[r][c] = HeatCell{Empty: true}
				continue
			}
			gt := groups[i]
			g.Cells[r][c] = HeatCell{Pincode: gt.Key, Total: gt.Total}
			if gt.Total < g.Min {
				g.Min = gt.Total
			}
			if gt.Total > g.Max {
				g.Max = gt.Total
			}
		}
	}
	return g
}

// Values returns the grid as floats with NaN in padding cells.
func (g *HeatGrid) Values() [][]float64 {
	out := make([][]float64, g.Rows)
	for r, row := range g.Cells {
		out[r] = make([]float64, len(row))
		for c, cell := range row {
			if cell.Empty {
				out[r][c] = math.NaN()
			} else {
				out[r][c] = float64(cell.Total)
			}
		}
	}
	return out
}

// Padding returns the number of empty cells.
func (g *HeatGrid) Padding() int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Empty {
				n++
			}
		}
	}
	return n
}
