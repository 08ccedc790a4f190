// Package render draws a core.Dashboard as one composite PNG.
//
// The figure is a 5×7 grid. Each derived view owns a fixed block of cells:
//
//	row 0    top qty | top qty | total    | logo     | invoices | heatmap | heatmap
//	row 1    top qty | top qty | trend    | trend    | trend    | heatmap | heatmap
//	row 2-3  top rev | top rev | trend    | trend    | trend    | weekday | weekday
//
// Row 4 is left as bottom margin.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"ventas/internal/core"
)

const (
	DefaultWidth  = 16 * vg.Inch
	DefaultHeight = 9 * vg.Inch
	DefaultDPI    = 100
)

// Options controls the output image size.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// Option configures a Renderer.
type Option func(*Options)

// WithSize overrides the figure size.
func WithSize(w, h vg.Length) Option {
	return func(o *Options) {
		o.Width, o.Height = w, h
	}
}

// WithDPI overrides the output resolution.
func WithDPI(dpi int) Option {
	return func(o *Options) {
		o.DPI = dpi
	}
}

// Renderer draws dashboards. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	opts Options
}

// New creates a Renderer with the 16×9 inch default figure at 100 DPI.
func New(opts ...Option) *Renderer {
	o := Options{Width: DefaultWidth, Height: DefaultHeight, DPI: DefaultDPI}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = DefaultWidth, DefaultHeight
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	return &Renderer{opts: o}
}

// Size returns the pixel dimensions of the images this renderer produces.
func (r *Renderer) Size() (int, int) {
	dpi := float64(r.opts.DPI)
	return int(r.opts.Width.Dots(dpi) + 0.5), int(r.opts.Height.Dots(dpi) + 0.5)
}

// Render draws d and writes it to w as PNG. logo may be nil, in which case
// the logo cell is left empty.
func (r *Renderer) Render(w io.Writer, d core.Dashboard, logo image.Image) error {
	if len(d.Daily) == 0 {
		return core.ErrNoData
	}

	img := vgimg.NewWith(
		vgimg.UseWH(r.opts.Width, r.opts.Height),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	if err := r.draw(draw.New(img), d, logo); err != nil {
		return err
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (r *Renderer) draw(dc draw.Canvas, d core.Dashboard, logo image.Image) error {
	g := grid{rows: 5, cols: 7, pad: 6}

	topQty, err := topQuantityPlot(d.TopByQuantity)
	if err != nil {
		return fmt.Errorf("top by quantity: %w", err)
	}
	topRev, err := topRevenuePlot(d.TopByRevenue)
	if err != nil {
		return fmt.Errorf("top by revenue: %w", err)
	}
	heat, err := heatmapPlot(d.Heatmap)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	trend, err := trendPlot(d.Daily, d.Holidays)
	if err != nil {
		return fmt.Errorf("daily trend: %w", err)
	}
	weekday, err := weekdayPlot(d.WeekdayAverages)
	if err != nil {
		return fmt.Errorf("weekday averages: %w", err)
	}

	topQty.Draw(g.span(dc, 0, 2, 0, 2))
	heat.Draw(g.span(dc, 0, 2, 5, 7))
	trend.Draw(g.span(dc, 1, 4, 2, 5))
	topRev.Draw(g.span(dc, 2, 4, 0, 2))
	weekday.Draw(g.span(dc, 2, 4, 5, 7))

	drawCounter(g.span(dc, 0, 1, 2, 3), "Total Vendido", core.FormatCurrency(d.Summary.TotalRevenue))
	drawCounter(g.span(dc, 0, 1, 4, 5), "Total Facturas", core.FormatCount(int64(d.Summary.Invoices)))
	if logo != nil {
		drawLogo(g.span(dc, 0, 1, 3, 4), logo)
	}
	return nil
}
