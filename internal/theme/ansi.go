package theme

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// The 16 system colors as xterm renders them
var systemColors = [16]color.RGBA{
	{0, 0, 0, 255}, {128, 0, 0, 255}, {0, 128, 0, 255}, {128, 128, 0, 255},
	{0, 0, 128, 255}, {128, 0, 128, 255}, {0, 128, 128, 255}, {192, 192, 192, 255},
	{128, 128, 128, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}, {255, 255, 0, 255},
	{0, 0, 255, 255}, {255, 0, 255, 255}, {0, 255, 255, 255}, {255, 255, 255, 255},
}

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// ANSIToRGBA converts an xterm 256-color index
func ANSIToRGBA(code int) color.RGBA {
	switch {
	case code < 0 || code > 255:
		return color.RGBA{A: 255}
	case code < 16:
		return systemColors[code]
	case code < 232:
		i := code - 16
		return color.RGBA{R: cubeLevels[i/36], G: cubeLevels[(i/6)%6], B: cubeLevels[i%6], A: 255}
	default:
		g := uint8(8 + (code-232)*10)
		return color.RGBA{R: g, G: g, B: g, A: 255}
	}
}

// ToRGBA converts a lipgloss color given as hex or ANSI index
func ToRGBA(c lipgloss.Color) color.RGBA {
	s := strings.TrimSpace(string(c))
	if strings.HasPrefix(s, "#") {
		cc, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{A: 255}
		}
		r, g, b := cc.Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return ANSIToRGBA(code)
}

// Hex returns the #rrggbb form of a lipgloss color
func Hex(c lipgloss.Color) string {
	rgba := ToRGBA(c)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// ANSIForeground returns the escape sequence selecting c as a 24-bit foreground color
func ANSIForeground(c lipgloss.Color) string {
	rgba := ToRGBA(c)
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", rgba.R, rgba.G, rgba.B)
}
