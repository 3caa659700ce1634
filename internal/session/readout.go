package session

import (
	"fmt"
	"time"
)

// FormatFrequency formats a tuned frequency the way the readout panel shows it
func FormatFrequency(mhz float64) string {
	return fmt.Sprintf("%.4f", mhz)
}

// FormatLevel formats a signal level in dBm
func FormatLevel(dbm float64) string {
	return fmt.Sprintf("%.1f", dbm)
}

// FormatClock formats the UTC clock readout
func FormatClock(t time.Time) string {
	return t.UTC().Format("15:04:05") + " UTC"
}
