package render

import (
	"image/color"
	"sort"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultPalette is used when a spec names none.
const DefaultPalette = "tableau"

var palettes = map[string][]drawing.Color{
	"tableau": hexColors("1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd",
		"8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf"),
	"viridis": hexColors("440154", "482878", "3e4989", "31688e", "26828e",
		"1f9e89", "35b779", "6ece58", "b5de2b", "fde725"),
	"pastel": hexColors("a1c9f4", "ffb482", "8de5a1", "ff9f9b", "d0bbff",
		"debb9b", "fab0e4", "cfcfcf", "fffea3", "b9f2f0"),
	"mono": hexColors("08306b", "08519c", "2171b5", "4292c6", "6baed6",
		"9ecae1", "c6dbef"),
}

func hexColors(hex ...string) []drawing.Color {
	out := make([]drawing.Color, len(hex))
	for i, h := range hex {
		out[i] = drawing.ColorFromHex(h)
	}
	return out
}

// Palette is an ordered list of colors indexed cyclically.
type Palette []drawing.Color

// LookupPalette returns the named palette.
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// PaletteNames lists the known palettes in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At returns the i-th color, wrapping around.
func (p Palette) At(i int) drawing.Color {
	return p[i%len(p)]
}

// RGBA returns the i-th color as an image/color value.
func (p Palette) RGBA(i int) color.RGBA {
	c := p.At(i)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
