// Package render paints spectrum frames and waterfall history onto RGBA surfaces
package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors used on the spectrum surface
type Palette struct {
	Background color.RGBA
	Grid       color.RGBA
	Trace      color.RGBA
	Fill       color.RGBA // premultiplied, translucent
	Peak       color.RGBA
	Cursor     color.RGBA
	Marker     color.RGBA
	Label      color.RGBA
}

// DarkPalette matches the dark console theme
func DarkPalette() Palette {
	return NewPalette("#333333", "#555555", "#00ff00", "#ffc107", "#00bcd4", "#eeeeee")
}

// LightPalette matches the light console theme
func LightPalette() Palette {
	return NewPalette("#e0e0e0", "#cccccc", "#28a745", "#dc3545", "#007bff", "#333333")
}

// NewPalette builds a palette from hex colors. Invalid hex values fall back to black.
// The fill is the trace color at 20% opacity and the peak hold is the trace blended toward the background.
func NewPalette(background, grid, trace, cursor, marker, label string) Palette {
	bg := hexColor(background)
	tr := hexColor(trace)
	return Palette{
		Background: toRGBA(bg),
		Grid:       toRGBA(hexColor(grid)),
		Trace:      toRGBA(tr),
		Fill:       translucent(tr, 0.2),
		Peak:       toRGBA(tr.BlendRgb(bg, 0.55)),
		Cursor:     toRGBA(hexColor(cursor)),
		Marker:     toRGBA(hexColor(marker)),
		Label:      toRGBA(hexColor(label)),
	}
}

func hexColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func translucent(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{
		R: uint8(float64(r)*alpha + 0.5),
		G: uint8(float64(g)*alpha + 0.5),
		B: uint8(float64(b)*alpha + 0.5),
		A: uint8(255*alpha + 0.5),
	}
}
