package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ventas/internal/core"
)

// dayOffset places a date on the trend X axis as whole days since origin.
func dayOffset(origin, d core.Date) float64 {
	return d.Sub(origin.Time).Hours() / 24
}

// trendPlot draws the daily totals colored by weekday, the moving average,
// dashed holiday markers and labelled low-sales points.
func trendPlot(daily []core.DailyPoint, holidays []core.Date) (*plot.Plot, error) {
	p := newPlot("Ventas diarias", vg.Points(15))
	p.HideAxes()
	if len(daily) == 0 {
		return p, nil
	}

	origin := daily[0].Date
	totals := make(plotter.XYs, len(daily))
	averages := make(plotter.XYs, len(daily))
	peak := 0.0
	for i, d := range daily {
		x := dayOffset(origin, d.Date)
		totals[i] = plotter.XY{X: x, Y: d.Total.InexactFloat64()}
		averages[i] = plotter.XY{X: x, Y: d.MovingAverage.InexactFloat64()}
		if totals[i].Y > peak {
			peak = totals[i].Y
		}
	}
	ymin, ymax := -0.12*peak, 1.15*peak
	if peak <= 0 {
		ymin, ymax = -1, 1
	}

	// holidays sit under everything else
	var holidayLine *plotter.Line
	for _, h := range holidays {
		x := dayOffset(origin, h)
		l, err := plotter.NewLine(plotter.XYs{{X: x, Y: ymin}, {X: x, Y: ymax}})
		if err != nil {
			return nil, err
		}
		l.LineStyle = draw.LineStyle{
			Color:  holidayBlue,
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
		}
		p.Add(l)
		if holidayLine == nil {
			holidayLine = l
		}
	}

	raw, err := plotter.NewLine(totals)
	if err != nil {
		return nil, err
	}
	raw.LineStyle = draw.LineStyle{Color: trendGray, Width: vg.Points(1)}

	avg, err := plotter.NewLine(averages)
	if err != nil {
		return nil, err
	}
	avg.LineStyle = draw.LineStyle{Color: trendRed, Width: vg.Points(3)}

	points, err := plotter.NewScatter(totals)
	if err != nil {
		return nil, err
	}
	points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  weekdayColors[daily[i].Weekday],
			Radius: vg.Points(4),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(raw, avg, points)

	names := make(plotter.XYs, len(daily))
	abbrevs := make([]string, len(daily))
	for i, d := range daily {
		names[i] = plotter.XY{X: totals[i].X, Y: totals[i].Y + 0.05*peak}
		abbrevs[i] = core.WeekdayShort(d.Weekday)
	}
	nameLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: names, Labels: abbrevs})
	if err != nil {
		return nil, err
	}
	for i := range nameLabels.TextStyle {
		nameLabels.TextStyle[i] = valueLabelStyle(nameLabels.TextStyle[i], vg.Points(7))
	}
	p.Add(nameLabels)

	if err := addLowSales(p, daily, totals, peak); err != nil {
		return nil, err
	}

	p.X.Min, p.X.Max = -0.5, totals[len(totals)-1].X+0.5
	p.Y.Min, p.Y.Max = ymin, ymax

	p.Legend.Top = false
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(7)
	p.Legend.Add("Media móvil (7 días)", avg)
	if holidayLine != nil {
		p.Legend.Add("Feriado", holidayLine)
	}
	return p, nil
}

// addLowSales overdraws the low-sales points with a larger white-edged
// marker and writes their amount below them.
func addLowSales(p *plot.Plot, daily []core.DailyPoint, totals plotter.XYs, peak float64) error {
	var (
		xys    plotter.XYs
		labels []string
		colors []color.Color
	)
	for i, d := range daily {
		if !d.LowSales {
			continue
		}
		xys = append(xys, totals[i])
		labels = append(labels, core.FormatCurrency(d.Total))
		colors = append(colors, weekdayColors[d.Weekday])
	}
	if len(xys) == 0 {
		return nil
	}

	fill, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	fill.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(5.5), Shape: draw.CircleGlyph{}}
	}
	edge, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	edge.GlyphStyle = draw.GlyphStyle{Color: color.White, Radius: vg.Points(5.5), Shape: draw.RingGlyph{}}

	below := make(plotter.XYs, len(xys))
	for i, xy := range xys {
		below[i] = plotter.XY{X: xy.X, Y: xy.Y - 0.06*peak}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: below, Labels: labels})
	if err != nil {
		return err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Font.Size = vg.Points(7)
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].YAlign = draw.YTop
		lbl.TextStyle[i].Color = lowRed
	}

	p.Add(fill, edge, lbl)
	return nil
}
