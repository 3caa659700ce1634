package render

import (
	"image"

	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// Waterfall is a scrolling history surface, newest row at the bottom
type Waterfall struct {
	img    *image.RGBA
	mapper spectrum.ColorMapper
	rows   int // rows painted since the last resize, capped at height
}

// NewWaterfall creates a waterfall of w by h pixels
func NewWaterfall(w, h int, mapper spectrum.ColorMapper) *Waterfall {
	wf := &Waterfall{mapper: mapper}
	wf.Resize(w, h)
	return wf
}

// Push shifts every row up by one, discarding the top row, then paints the frame as the bottom row
func (wf *Waterfall) Push(frame spectrum.Frame, cal spectrum.Calibration) {
	b := wf.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || len(frame) == 0 {
		return
	}

	stride := wf.img.Stride
	copy(wf.img.Pix, wf.img.Pix[stride:])

	row := wf.img.Pix[(h-1)*stride : (h-1)*stride+w*4]
	for x := 0; x < w; x++ {
		c := wf.mapper.Color(frame.At(columnIndex(x, w, len(frame))), cal)
		i := x * 4
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}

	if wf.rows < h {
		wf.rows++
	}
}

// Resize discards the history and allocates a blank surface
func (wf *Waterfall) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	wf.img = image.NewRGBA(image.Rect(0, 0, w, h))
	wf.rows = 0
}

// SetMapper changes the color ramp used for new rows
func (wf *Waterfall) SetMapper(mapper spectrum.ColorMapper) {
	wf.mapper = mapper
}

// Image returns the underlying surface
func (wf *Waterfall) Image() *image.RGBA {
	return wf.img
}

// Rows returns how many rows hold history
func (wf *Waterfall) Rows() int {
	return wf.rows
}

// Size returns the surface dimensions
func (wf *Waterfall) Size() (int, int) {
	b := wf.img.Bounds()
	return b.Dx(), b.Dy()
}
