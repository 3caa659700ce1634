package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBandwidth is returned for a zero or negative displayed bandwidth
var ErrInvalidBandwidth = errors.New("displayed bandwidth must be positive")

// Axis maps pixel columns to absolute frequencies for one receiver and width
type Axis struct {
	CenterMHz    float64
	BandwidthKHz float64
	Width        int
}

// NewAxis creates an axis. A width of zero is allowed and yields an axis that is not ready.
func NewAxis(centerMHz, bandwidthKHz float64, width int) (Axis, error) {
	if bandwidthKHz <= 0 || math.IsNaN(bandwidthKHz) || math.IsInf(bandwidthKHz, 0) {
		return Axis{}, fmt.Errorf("%w: %g kHz", ErrInvalidBandwidth, bandwidthKHz)
	}
	if width < 0 {
		width = 0
	}
	return Axis{CenterMHz: centerMHz, BandwidthKHz: bandwidthKHz, Width: width}, nil
}

// Ready returns true once the axis has a usable width
func (a Axis) Ready() bool {
	return a.Width > 0 && a.BandwidthKHz > 0
}

// PixelsPerKHz returns the horizontal scale
func (a Axis) PixelsPerKHz() float64 {
	if !a.Ready() {
		return 0
	}
	return float64(a.Width) / a.BandwidthKHz
}

// FrequencyAtPixel returns the absolute frequency in MHz at pixel x
func (a Axis) FrequencyAtPixel(x float64) float64 {
	if !a.Ready() {
		return a.CenterMHz
	}
	lowKHz := a.CenterMHz*1000 - a.BandwidthKHz/2
	return (lowKHz + x/a.PixelsPerKHz()) / 1000
}

// PixelAtFrequency returns the pixel column for an absolute frequency, clamped to the axis
func (a Axis) PixelAtFrequency(mhz float64) float64 {
	if !a.Ready() {
		return 0
	}
	lowKHz := a.CenterMHz*1000 - a.BandwidthKHz/2
	x := (mhz*1000 - lowKHz) * a.PixelsPerKHz()
	return clamp(x, 0, float64(a.Width))
}

// LowEdgeMHz returns the frequency at the left edge
func (a Axis) LowEdgeMHz() float64 {
	return a.CenterMHz - a.BandwidthKHz/2000
}

// HighEdgeMHz returns the frequency at the right edge
func (a Axis) HighEdgeMHz() float64 {
	return a.CenterMHz + a.BandwidthKHz/2000
}

// MarkerPixel returns the pixel for an offset from center and whether it is on screen
func (a Axis) MarkerPixel(offsetKHz float64) (float64, bool) {
	if !a.Ready() {
		return 0, false
	}
	x := float64(a.Width)/2 + offsetKHz*a.PixelsPerKHz()
	return x, x >= 0 && x <= float64(a.Width)
}
