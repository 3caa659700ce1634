package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxbook/rxbook-go/internal/theme"
)

// S-meter scale: S9 is -73 dBm and each S unit is 6 dB
const (
	S9Level    = -73.0
	DBPerSUnit = 6.0
	S0Level    = S9Level - 9*DBPerSUnit
	MeterTop   = S9Level + 60
)

// SUnits formats a level as an S-meter reading, e.g. "S7" or "S9+20"
func SUnits(dBm float64) string {
	if dBm > S9Level {
		over := int((dBm - S9Level + 0.5) / 10) * 10
		if over == 0 {
			return "S9"
		}
		return fmt.Sprintf("S9+%d", over)
	}
	s := int((dBm - S0Level) / DBPerSUnit)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("S%d", s)
}

// SMeter is a horizontal signal strength meter whose needle follows the
// level with spring smoothing
type SMeter struct {
	Width int
	Theme *theme.Theme

	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

// NewSMeter creates a meter stepping at fps frames per second
func NewSMeter(t *theme.Theme, width, fps int) *SMeter {
	if fps <= 0 {
		fps = 30
	}
	return &SMeter{
		Width:  width,
		Theme:  t,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		pos:    S0Level,
		target: S0Level,
	}
}

// Set changes the level the needle moves toward
func (m *SMeter) Set(dBm float64) {
	m.target = dBm
}

// Snap moves the needle to the level immediately
func (m *SMeter) Snap(dBm float64) {
	m.target = dBm
	m.pos = dBm
	m.vel = 0
}

// Step advances the spring by one frame and returns the displayed level
func (m *SMeter) Step() float64 {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	return m.pos
}

// Level returns the displayed level
func (m *SMeter) Level() float64 {
	return m.pos
}

// Fraction returns the displayed level as a 0-1 deflection
func (m *SMeter) Fraction() float64 {
	f := (m.pos - S0Level) / (MeterTop - S0Level)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Render draws the meter bar followed by the S reading
func (m *SMeter) Render() string {
	if m.Width <= 0 {
		return ""
	}
	filled := int(m.Fraction() * float64(m.Width))
	s9 := int((S9Level - S0Level) / (MeterTop - S0Level) * float64(m.Width))

	okStyle := lipgloss.NewStyle().Foreground(m.Theme.Success)
	overStyle := lipgloss.NewStyle().Foreground(m.Theme.Error)
	dim := lipgloss.NewStyle().Foreground(m.Theme.TextDim)

	var sb strings.Builder
	for i := 0; i < m.Width; i++ {
		switch {
		case i >= filled:
			sb.WriteString(dim.Render("░"))
		case i < s9:
			sb.WriteString(okStyle.Render("█"))
		default:
			sb.WriteString(overStyle.Render("█"))
		}
	}
	sb.WriteString(" ")
	sb.WriteString(m.Theme.TextStyle().Render(fmt.Sprintf("%-6s", SUnits(m.pos))))
	return sb.String()
}

// Gauge renders a 0-1 value as a bar of the given width, used for volume
func Gauge(t *theme.Theme, value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*float64(width) + 0.5)
	on := lipgloss.NewStyle().Foreground(t.Primary)
	off := lipgloss.NewStyle().Foreground(t.TextDim)
	return on.Render(strings.Repeat("■", filled)) + off.Render(strings.Repeat("·", width-filled))
}
