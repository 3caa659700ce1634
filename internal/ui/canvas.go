// Package ui provides reusable terminal components for the rxbook console
package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HalfBlock is the glyph used for two stacked pixels: foreground on top, background below
const HalfBlock = "▀"

type cellKey struct {
	top, bottom color.RGBA
	solo        bool
}

// Canvas converts RGBA surfaces to terminal text. One cell shows one
// pixel column and two pixel rows.
type Canvas struct {
	cache map[cellKey]string
}

// NewCanvas creates a canvas with an empty style cache
func NewCanvas() *Canvas {
	return &Canvas{cache: make(map[cellKey]string)}
}

// Rows returns the number of terminal rows needed for a surface height
func Rows(pixelHeight int) int {
	return (pixelHeight + 1) / 2
}

// PixelRows returns the surface height that fills the given number of terminal rows
func PixelRows(rows int) int {
	if rows < 0 {
		return 0
	}
	return rows * 2
}

// Lines renders img as one string per terminal row
func (c *Canvas) Lines(img *image.RGBA) []string {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	lines := make([]string, 0, Rows(b.Dy()))
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.Reset()
		solo := y+1 >= b.Max.Y
		for x := b.Min.X; x < b.Max.X; x++ {
			key := cellKey{top: img.RGBAAt(x, y), solo: solo}
			if !solo {
				key.bottom = img.RGBAAt(x, y+1)
			}
			sb.WriteString(c.cell(key))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// Render renders img as a single newline-joined block
func (c *Canvas) Render(img *image.RGBA) string {
	return strings.Join(c.Lines(img), "\n")
}

// CacheSize returns the number of distinct cells styled so far
func (c *Canvas) CacheSize() int {
	return len(c.cache)
}

// Reset drops cached cell styles, e.g. after a theme change
func (c *Canvas) Reset() {
	c.cache = make(map[cellKey]string)
}

func (c *Canvas) cell(key cellKey) string {
	if s, ok := c.cache[key]; ok {
		return s
	}
	style := lipgloss.NewStyle().Foreground(hexOf(key.top))
	if !key.solo {
		style = style.Background(hexOf(key.bottom))
	}
	s := style.Render(HalfBlock)
	c.cache[key] = s
	return s
}

func hexOf(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
