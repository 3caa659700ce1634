package export

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/rxbook/rxbook-go/internal/render"
)

// ErrNoSurface is returned when there is nothing painted to export
var ErrNoSurface = errors.New("no painted surface")

// Composite stacks the spectrum above the waterfall in a new image
func Composite(s *render.Surfaces) (*image.RGBA, error) {
	if !s.Usable() {
		return nil, ErrNoSurface
	}
	top := s.Spectrum.Bounds()
	wf := s.Waterfall.Image().Bounds()

	out := image.NewRGBA(image.Rect(0, 0, top.Dx(), top.Dy()+wf.Dy()))
	draw.Draw(out, top.Sub(top.Min), s.Spectrum, top.Min, draw.Src)
	draw.Draw(out, image.Rect(0, top.Dy(), wf.Dx(), top.Dy()+wf.Dy()), s.Waterfall.Image(), wf.Min, draw.Src)
	return out, nil
}

// ExportPNG writes the composite of both surfaces to a timestamped PNG file
func ExportPNG(s *render.Surfaces, directory string) (string, error) {
	filename := GenerateFilename("rxbook_snapshot", "png", directory)
	if err := ExportPNGToFile(s, filename); err != nil {
		return "", err
	}
	return filename, nil
}

// ExportPNGToFile writes the composite of both surfaces to filename
func ExportPNGToFile(s *render.Surfaces, filename string) error {
	img, err := Composite(s)
	if err != nil {
		return err
	}

	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
