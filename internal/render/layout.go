package render

import (
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// grid splits a canvas into rows×cols equal cells, row 0 at the top.
type grid struct {
	rows, cols int
	pad        vg.Length
}

// span returns the sub-canvas covering rows [r0, r1) and columns [c0, c1).
func (g grid) span(c draw.Canvas, r0, r1, c0, c1 int) draw.Canvas {
	cw := (c.Max.X - c.Min.X) / vg.Length(g.cols)
	rh := (c.Max.Y - c.Min.Y) / vg.Length(g.rows)

	return draw.Canvas{
		Canvas: c.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{
				X: c.Min.X + vg.Length(c0)*cw + g.pad,
				Y: c.Max.Y - vg.Length(r1)*rh + g.pad,
			},
			Max: vg.Point{
				X: c.Min.X + vg.Length(c1)*cw - g.pad,
				Y: c.Max.Y - vg.Length(r0)*rh - g.pad,
			},
		},
	}
}

func textStyle(size vg.Length, clr color.Color) text.Style {
	return text.Style{
		Color:   clr,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

// drawCounter writes a caption above a large value, both centered in c.
func drawCounter(c draw.Canvas, caption, value string) {
	mid := c.Center()
	c.FillText(textStyle(vg.Points(14), color.Black), vg.Point{X: mid.X, Y: mid.Y + vg.Points(12)}, caption)
	c.FillText(textStyle(vg.Points(18), color.Black), vg.Point{X: mid.X, Y: mid.Y - vg.Points(12)}, value)
}

// drawLogo scales img to fit c keeping its aspect ratio.
func drawLogo(c draw.Canvas, img image.Image) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	size := c.Size()
	scale := size.X / vg.Length(b.Dx())
	if s := size.Y / vg.Length(b.Dy()); s < scale {
		scale = s
	}
	w, h := vg.Length(b.Dx())*scale, vg.Length(b.Dy())*scale
	mid := c.Center()
	c.DrawImage(vg.Rectangle{
		Min: vg.Point{X: mid.X - w/2, Y: mid.Y - h/2},
		Max: vg.Point{X: mid.X + w/2, Y: mid.Y + h/2},
	}, img)
}
