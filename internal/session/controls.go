package session

import (
	"fmt"
	"strings"
)

// Mode is a demodulation mode of the control panel
type Mode string

const (
	ModeAM  Mode = "AM"
	ModeFM  Mode = "FM"
	ModeUSB Mode = "USB"
	ModeLSB Mode = "LSB"
	ModeCW  Mode = "CW"
	ModeDMR Mode = "DMR"
	ModeFT8 Mode = "FT8"
)

// Modes lists the selectable modes in panel order
var Modes = []Mode{ModeAM, ModeFM, ModeUSB, ModeLSB, ModeCW, ModeDMR, ModeFT8}

// FilterBandwidths lists the selectable filter widths in kHz
var FilterBandwidths = []float64{2.4, 6, 9, 12.5, 25, 100, 200}

// Control ranges
const (
	VolumeMin         = 0
	VolumeMax         = 100
	SquelchMin        = -120.0
	SquelchMax        = -30.0
	NoiseReductionMin = -10
	NoiseReductionMax = 10
)

// Controls is the receiver control panel state
type Controls struct {
	Mode           Mode    `json:"mode"`
	Volume         int     `json:"volume"`
	SquelchDBm     float64 `json:"squelch_dbm"`
	FilterKHz      float64 `json:"filter_khz"`
	NoiseReduction int     `json:"noise_reduction"`
	Recording      bool    `json:"recording"`
}

// DefaultControls returns the panel state of a fresh console
func DefaultControls() Controls {
	return Controls{
		Mode:       ModeFM,
		Volume:     70,
		SquelchDBm: -90,
		FilterKHz:  12.5,
	}
}

// ParseMode returns the mode with the given name
func ParseMode(name string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(name)))
	for _, mode := range Modes {
		if mode == m {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", name)
}

// NextMode returns the mode after m, wrapping around
func NextMode(m Mode) Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// NextFilter returns the filter width after khz, wrapping around
func NextFilter(khz float64) float64 {
	for i, bw := range FilterBandwidths {
		if bw == khz {
			return FilterBandwidths[(i+1)%len(FilterBandwidths)]
		}
	}
	return FilterBandwidths[0]
}

// SquelchOpen returns true if a signal at level passes the squelch
func (c Controls) SquelchOpen(level float64) bool {
	return level >= c.SquelchDBm
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
