package render

import (
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

// scale is a sequential palette indexed by a normalized value.
type scale struct {
	palette.Palette
}

var oranges = mustScale("Oranges", 9)

func mustScale(name string, n int) scale {
	p, err := brewer.GetPalette(brewer.TypeSequential, name, n)
	if err != nil {
		panic(err)
	}
	return scale{Palette: p}
}

// at returns the palette color closest to n in [0, 1].
func (s scale) at(n float64) color.Color {
	cs := s.Colors()
	i := int(math.Round(n * float64(len(cs)-1)))
	if i < 0 {
		i = 0
	}
	if i >= len(cs) {
		i = len(cs) - 1
	}
	return cs[i]
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

var weekdayColors = map[time.Weekday]color.RGBA{
	time.Monday:    rgb(0x1f77b4),
	time.Tuesday:   rgb(0x2ca02c),
	time.Wednesday: rgb(0xff7f0e),
	time.Thursday:  rgb(0xd62728),
	time.Friday:    rgb(0x9467bd),
	time.Saturday:  rgb(0x8c564b),
	time.Sunday:    rgb(0xe377c2),
}

var (
	trendGray   = color.NRGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0x99}
	trendRed    = color.RGBA{R: 0xff, A: 0xff}
	holidayBlue = color.NRGBA{R: 0x00, G: 0x00, B: 0x8b, A: 0x4d}
	lowRed      = color.RGBA{R: 0x8b, A: 0xff}
)
