package spectrum

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Ramp names a level-to-color policy
type Ramp string

const (
	// RampHSL runs blue to green to red, darker at both ends
	RampHSL Ramp = "hsl"
	// RampLinear runs green to red with no blue
	RampLinear Ramp = "linear"
)

// ParseRamp returns the ramp with the given name
func ParseRamp(name string) (Ramp, error) {
	switch Ramp(strings.ToLower(strings.TrimSpace(name))) {
	case RampHSL, "":
		return RampHSL, nil
	case RampLinear:
		return RampLinear, nil
	}
	return "", fmt.Errorf("unknown color ramp %q", name)
}

// ColorMapper converts levels to waterfall colors
type ColorMapper struct {
	Ramp Ramp
}

// NewColorMapper creates a mapper for the ramp
func NewColorMapper(ramp Ramp) ColorMapper {
	return ColorMapper{Ramp: ramp}
}

// Color returns the color for a level under the given calibration
func (m ColorMapper) Color(level float64, cal Calibration) color.RGBA {
	return m.ColorAt(cal.Normalize(level))
}

// ColorAt returns the color for a normalized heat t in [0, 1]
func (m ColorMapper) ColorAt(t float64) color.RGBA {
	t = clamp(t, 0, 1)
	if m.Ramp == RampLinear {
		return color.RGBA{R: uint8(255*t + 0.5), G: uint8(255*(1-t) + 0.5), A: 255}
	}

	h, s, l := HeatHSL(t)
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// HeatHSL returns hue in degrees, saturation and lightness in [0, 1] for heat t
func HeatHSL(t float64) (h, s, l float64) {
	t = clamp(t, 0, 1)
	if t < 0.5 {
		u := t * 2
		return 240 - u*120, 1, 0.20 + u*0.30
	}
	u := (t - 0.5) * 2
	return 120 - u*120, 1, 0.50 - u*0.20
}
