package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal anchoring of a label
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

const labelDPI = 72

// Labeler draws text onto surfaces using the Go Regular font
type Labeler struct {
	face font.Face
	size float64
}

// NewLabeler parses the embedded font at the given point size
func NewLabeler(size float64) (*Labeler, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid label size %g", size)
	}
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     labelDPI,
		Hinting: font.HintingFull,
	})
	return &Labeler{face: face, size: size}, nil
}

// Size returns the point size
func (l *Labeler) Size() float64 {
	return l.size
}

// Measure returns the advance width of s in pixels
func (l *Labeler) Measure(s string) int {
	return font.MeasureString(l.face, s).Ceil()
}

// Draw writes s with its baseline at y, anchored at x
func (l *Labeler) Draw(dst draw.Image, s string, x, y int, c color.Color, align Align) {
	switch align {
	case AlignCenter:
		x -= l.Measure(s) / 2
	case AlignRight:
		x -= l.Measure(s)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: l.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// DrawRotated writes s rotated by angle degrees (negative is counterclockwise)
// with the start of its baseline at (x, y)
func (l *Labeler) DrawRotated(dst *image.RGBA, s string, x, y int, angle float64, c color.Color) {
	metrics := l.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := ascent + metrics.Descent.Ceil()
	width := l.Measure(s)
	if width == 0 || height == 0 {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, width, height))
	l.Draw(src, s, 0, ascent, c, AlignLeft)

	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	tx := float64(x) + sin*float64(ascent)
	ty := float64(y) - cos*float64(ascent)

	m := f64.Aff3{
		cos, -sin, tx,
		sin, cos, ty,
	}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Over, nil)
}

// Close releases the font face
func (l *Labeler) Close() error {
	return l.face.Close()
}
