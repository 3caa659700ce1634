package render

import (
	"image"

	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// Surfaces groups the spectrum and waterfall canvases of one session
type Surfaces struct {
	Spectrum  *image.RGBA
	Waterfall *Waterfall
}

// NewSurfaces allocates both canvases with a shared width
func NewSurfaces(width, spectrumHeight, waterfallHeight int, mapper spectrum.ColorMapper) *Surfaces {
	if width < 0 {
		width = 0
	}
	if spectrumHeight < 0 {
		spectrumHeight = 0
	}
	return &Surfaces{
		Spectrum:  image.NewRGBA(image.Rect(0, 0, width, spectrumHeight)),
		Waterfall: NewWaterfall(width, waterfallHeight, mapper),
	}
}

// Usable returns true if both canvases have area
func (s *Surfaces) Usable() bool {
	if s == nil || s.Spectrum == nil || s.Waterfall == nil {
		return false
	}
	w, h := s.Waterfall.Size()
	return !s.Spectrum.Bounds().Empty() && w > 0 && h > 0
}

// Width returns the shared canvas width
func (s *Surfaces) Width() int {
	if s == nil || s.Spectrum == nil {
		return 0
	}
	return s.Spectrum.Bounds().Dx()
}
