package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// Spectrum surface geometry
const (
	GridDivisions  = 5
	TraceWidth     = 2
	CursorWidth    = 2
	CursorDashOn   = 5
	CursorDashOff  = 5
	CursorTriangle = 10 // triangle height; base is the same width
	LabelMargin    = 10
	MarkerLabelY   = 25 // distance of the rotated callsign from the bottom
	MarkerAngle    = -45.0
)

// Scene is everything needed to paint one spectrum frame
type Scene struct {
	Frame       spectrum.Frame
	Peaks       spectrum.Frame // optional peak hold trace
	Calibration spectrum.Calibration
	Axis        spectrum.Axis
	CursorX     float64
	Markers     []receiver.StationMarker
}

// Readout is the tuned frequency and the level under the cursor
type Readout struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
	LevelDBm     float64 `json:"level_dbm"`
}

// SpectrumRenderer paints spectrum frames
type SpectrumRenderer struct {
	Palette Palette
	Labeler *Labeler // optional; labels are skipped when nil
}

// NewSpectrumRenderer creates a renderer with the given palette
func NewSpectrumRenderer(p Palette) *SpectrumRenderer {
	return &SpectrumRenderer{Palette: p}
}

// Render paints the scene onto dst and returns the readout at the cursor
func (r *SpectrumRenderer) Render(dst *image.RGBA, s Scene) Readout {
	readout := ReadoutAt(s.Frame, s.Axis, s.CursorX)

	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return readout
	}

	fill(dst, r.Palette.Background)
	r.drawGrid(dst, w, h)
	r.drawFill(dst, s, w, h)
	if len(s.Peaks) > 0 {
		r.drawTrace(dst, s.Peaks, s.Calibration, w, h, 1, r.Palette.Peak)
	}
	r.drawTrace(dst, s.Frame, s.Calibration, w, h, TraceWidth, r.Palette.Trace)
	r.drawMarkers(dst, s, h)
	r.drawCursor(dst, s.CursorX, w)
	r.drawLabels(dst, s.Axis, w, h)

	return readout
}

// ReadoutAt returns the frequency at x and the amplitude at the matching column
func ReadoutAt(frame spectrum.Frame, axis spectrum.Axis, x float64) Readout {
	idx := int(math.Floor(x))
	return Readout{
		FrequencyMHz: axis.FrequencyAtPixel(x),
		LevelDBm:     frame.At(idx),
	}
}

// LevelY maps a level to a y coordinate on a surface of height h.
// Levels outside the calibration land off the surface.
func LevelY(level float64, cal spectrum.Calibration, h int) float64 {
	span := cal.Max - cal.Min
	if span <= 0 {
		return float64(h)
	}
	return float64(h) - (level-cal.Min)/span*float64(h)
}

func (r *SpectrumRenderer) drawGrid(dst *image.RGBA, w, h int) {
	for i := 1; i < GridDivisions; i++ {
		hLine(dst, h*i/GridDivisions, r.Palette.Grid)
	}
}

func (r *SpectrumRenderer) drawTrace(dst *image.RGBA, frame spectrum.Frame, cal spectrum.Calibration, w, h, width int, c color.RGBA) {
	if len(frame) == 0 {
		return
	}
	maxY := float64(h - 1)
	prevX, prevY := 0.0, clampF(LevelY(frame.At(0), cal, h), 0, maxY)
	for x := 1; x < w; x++ {
		y := clampF(LevelY(frame.At(columnIndex(x, w, len(frame))), cal, h), 0, maxY)
		for o := 0; o < width; o++ {
			line(dst, prevX, clampF(prevY+float64(o), 0, maxY), float64(x), clampF(y+float64(o), 0, maxY), c)
		}
		prevX, prevY = float64(x), y
	}
}

func (r *SpectrumRenderer) drawFill(dst *image.RGBA, s Scene, w, h int) {
	if len(s.Frame) == 0 {
		return
	}
	z := vector.NewRasterizer(w, h)
	z.MoveTo(0, float32(h))
	for x := 0; x < w; x++ {
		y := clampF(LevelY(s.Frame.At(columnIndex(x, w, len(s.Frame))), s.Calibration, h), 0, float64(h))
		z.LineTo(float32(x), float32(y))
	}
	z.LineTo(float32(w), float32(h))
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(r.Palette.Fill), image.Point{})
}

func (r *SpectrumRenderer) drawCursor(dst *image.RGBA, cursorX float64, w int) {
	x := int(math.Round(cursorX))
	dashedVLine(dst, x-CursorWidth/2, CursorWidth, CursorDashOn, CursorDashOff, r.Palette.Cursor)

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(CursorTriangle) / 2
	fx := float32(cursorX)
	z.MoveTo(fx-half, 0)
	z.LineTo(fx+half, 0)
	z.LineTo(fx, CursorTriangle)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(r.Palette.Cursor), image.Point{})
}

func (r *SpectrumRenderer) drawMarkers(dst *image.RGBA, s Scene, h int) {
	for _, m := range s.Markers {
		x, visible := s.Axis.MarkerPixel(m.OffsetKHz)
		if !visible {
			continue
		}
		px := int(math.Round(x))
		vLine(dst, px, r.Palette.Marker)
		if r.Labeler != nil {
			r.Labeler.DrawRotated(dst, m.Callsign, px, h-MarkerLabelY, MarkerAngle, r.Palette.Marker)
		}
	}
}

func (r *SpectrumRenderer) drawLabels(dst *image.RGBA, axis spectrum.Axis, w, h int) {
	if r.Labeler == nil {
		return
	}
	center, low, high := EdgeLabels(axis)
	y := h - LabelMargin
	r.Labeler.Draw(dst, center, w/2, y, r.Palette.Label, AlignCenter)
	r.Labeler.Draw(dst, low, LabelMargin, y, r.Palette.Label, AlignLeft)
	r.Labeler.Draw(dst, high, w-LabelMargin, y, r.Palette.Label, AlignRight)
}

// EdgeLabels returns the center, low edge and high edge frequency labels
func EdgeLabels(axis spectrum.Axis) (center, low, high string) {
	center = fmt.Sprintf("%.3f MHz (Center)", axis.CenterMHz)
	low = fmt.Sprintf("%.3f MHz", axis.LowEdgeMHz())
	high = fmt.Sprintf("%.3f MHz", axis.HighEdgeMHz())
	return center, low, high
}

// columnIndex maps pixel x on a surface of width w to a frame of length n
func columnIndex(x, w, n int) int {
	if n == w || w == 0 {
		return x
	}
	return x * n / w
}

func clampF(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
