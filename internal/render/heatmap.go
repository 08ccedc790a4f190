package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ventas/internal/core"
)

// heatGrid adapts core.Heatmap to plotter.GridXYZ. Grid row 0 is the last
// weekday so that Monday ends up at the top of the plot.
type heatGrid struct {
	h core.Heatmap
}

func (g heatGrid) Dims() (c, r int) { return len(g.h.Bands), len(g.h.Weekdays) }

func (g heatGrid) Z(c, r int) float64 {
	cell := g.h.Cells[len(g.h.Weekdays)-1-r][c]
	if cell.Days == 0 {
		return math.NaN()
	}
	return cell.Mean.InexactFloat64()
}

func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }

func (g heatGrid) Min() float64 {
	lo, _ := g.bounds()
	return lo
}

func (g heatGrid) Max() float64 {
	_, hi := g.bounds()
	return hi
}

// bounds returns the Z range over non-empty cells, widened so that it is
// never degenerate.
func (g heatGrid) bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	c, r := g.Dims()
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if math.IsNaN(z) {
				continue
			}
			lo = math.Min(lo, z)
			hi = math.Max(hi, z)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func heatmapPlot(h core.Heatmap) (*plot.Plot, error) {
	p := newPlot("Promedio por Día y Tramo del Mes", vg.Points(12))
	if len(h.Weekdays) == 0 || len(h.Bands) == 0 {
		p.HideAxes()
		return p, nil
	}

	g := heatGrid{h: h}
	hm := plotter.NewHeatMap(g, oranges.Palette)
	hm.NaN = color.White
	p.Add(hm)

	var (
		xys    plotter.XYs
		labels []string
	)
	cols, rows := g.Dims()
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			z := g.Z(c, r)
			if math.IsNaN(z) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, h.Cells[rows-1-r][c].Mean.StringFixed(0))
		}
	}
	if len(xys) > 0 {
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, err
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = vg.Points(8)
			lbl.TextStyle[i].XAlign = draw.XCenter
			lbl.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(lbl)
	}

	weekdays := make([]string, rows)
	for i, w := range h.Weekdays {
		weekdays[rows-1-i] = w
	}
	p.NominalX(h.Bands...)
	p.NominalY(weekdays...)
	return p, nil
}
