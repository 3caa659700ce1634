package render

import (
	"image"
	"image/color"
	"math"
)

func fill(dst *image.RGBA, c color.RGBA) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	row := dst.Pix[0 : b.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}
	for y := 1; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:], row)
	}
}

func hLine(dst *image.RGBA, y int, c color.RGBA) {
	b := dst.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		dst.SetRGBA(x, y, c)
	}
}

func vLine(dst *image.RGBA, x int, c color.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dst.SetRGBA(x, y, c)
	}
}

// dashedVLine draws a vertical line of the given width with on/off dash lengths
func dashedVLine(dst *image.RGBA, x, width, on, off int, c color.RGBA) {
	b := dst.Bounds()
	period := on + off
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if (y-b.Min.Y)%period >= on {
			continue
		}
		for dx := 0; dx < width; dx++ {
			dst.SetRGBA(x+dx, y, c)
		}
	}
}

// line draws a DDA line between two points
func line(dst *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		dst.SetRGBA(int(math.Round(x0)), int(math.Round(y0)), c)
		return
	}

	xinc := dx / steps
	yinc := dy / steps
	x, y := x0, y0
	for i := 0; i <= int(steps); i++ {
		dst.SetRGBA(int(math.Round(x)), int(math.Round(y)), c)
		x += xinc
		y += yinc
	}
}
