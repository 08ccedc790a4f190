package render

import (
	"image/color"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ventas/internal/core"
)

var barGreen = color.RGBA{R: 0x34, G: 0x99, B: 0x5c, A: 0xff}

func newPlot(title string, size vg.Length) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = size
	p.BackgroundColor = color.Transparent
	return p
}

// rankedPlot draws horizontal bars, one per name, with value labels to the
// right of each bar. names and values are in display order, bottom first.
func rankedPlot(title string, names []string, values []float64, labels []string) (*plot.Plot, error) {
	p := newPlot(title, vg.Points(13))
	p.HideX()
	if len(values) == 0 {
		return p, nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(11))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barGreen
	bars.LineStyle.Width = 0
	p.Add(bars)

	peak := 0.0
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: v * 1.02, Y: float64(i)}
		if v > peak {
			peak = v
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Font.Size = vg.Points(8)
		lbl.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(lbl)

	// room for the value labels
	p.X.Min = 0
	p.X.Max = peak * 1.25
	p.NominalY(names...)
	p.Y.Tick.Label.Font.Size = vg.Points(7)
	return p, nil
}

func topQuantityPlot(rows []core.ProductQuantity) (*plot.Plot, error) {
	names := make([]string, len(rows))
	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Description
		values[i] = float64(r.Quantity)
		labels[i] = core.FormatCount(r.Quantity)
	}
	return rankedPlot("Top 10 Productos por Cantidad Vendida", names, values, labels)
}

func topRevenuePlot(rows []core.ProductRevenue) (*plot.Plot, error) {
	names := make([]string, len(rows))
	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Description
		values[i] = r.Total.InexactFloat64()
		labels[i] = core.FormatCurrency(r.Total)
	}
	return rankedPlot("Top 10 Productos por Ingresos", names, values, labels)
}

// weekdayPlot draws the mean revenue per weekday, each bar shaded by its
// magnitude on the orange scale.
func weekdayPlot(avgs []core.WeekdayAverage) (*plot.Plot, error) {
	p := newPlot("Promedio Ventas por Día", vg.Points(13))
	p.HideY()
	if len(avgs) == 0 {
		return p, nil
	}

	means := make([]decimal.Decimal, len(avgs))
	for i, a := range avgs {
		means[i] = a.Mean
	}
	lo, hi := decimalRange(means)

	names := make([]string, len(avgs))
	xys := make(plotter.XYs, len(avgs))
	labels := make([]string, len(avgs))
	peak := 0.0
	for i, a := range avgs {
		v := a.Mean.InexactFloat64()
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(22))
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		bar.Color = oranges.at(normalize(v, lo, hi))
		bar.LineStyle.Width = 0
		p.Add(bar)

		names[i] = a.Label
		xys[i] = plotter.XY{X: float64(i), Y: v * 1.01}
		labels[i] = core.FormatCurrency(a.Mean)
		if v > peak {
			peak = v
		}
	}

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i] = valueLabelStyle(lbl.TextStyle[i], vg.Points(7))
	}
	p.Add(lbl)

	p.Y.Min = 0
	if peak > 0 {
		p.Y.Max = peak * 1.12
	}
	p.NominalX(names...)
	p.X.Tick.Label.Font.Size = vg.Points(7)
	p.X.Tick.Label.Rotation = 0.52
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

// valueLabelStyle centers a label horizontally just above its anchor.
func valueLabelStyle(sty text.Style, size vg.Length) text.Style {
	sty.Font.Size = size
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YBottom
	return sty
}

func decimalRange(ds []decimal.Decimal) (lo, hi float64) {
	if len(ds) == 0 {
		return 0, 0
	}
	return decimal.Min(ds[0], ds[1:]...).InexactFloat64(), decimal.Max(ds[0], ds[1:]...).InexactFloat64()
}

// normalize maps v into [0, 1] relative to [lo, hi]. A flat range maps to the middle.
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	n := (v - lo) / (hi - lo)
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}
