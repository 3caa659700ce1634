package spectrum

// Adjuster bounds. The ranges are disjoint so Min < Max always holds.
const (
	CalibrationMinFloor   = -150.0
	CalibrationMinCeiling = -50.0
	CalibrationMaxFloor   = -40.0
	CalibrationMaxCeiling = 0.0
)

// Calibration holds the levels mapped to the coolest and hottest colors
type Calibration struct {
	Min float64 `json:"min_level"`
	Max float64 `json:"max_level"`
}

// DefaultCalibration returns the startup calibration
func DefaultCalibration() Calibration {
	return Calibration{Min: -100, Max: -30}
}

// Valid returns true if both levels are inside their adjuster ranges
func (c Calibration) Valid() bool {
	return c.Min >= CalibrationMinFloor && c.Min <= CalibrationMinCeiling &&
		c.Max >= CalibrationMaxFloor && c.Max <= CalibrationMaxCeiling
}

// WithMin returns a copy with Min set, clamped to its adjuster range
func (c Calibration) WithMin(level float64) Calibration {
	c.Min = clamp(level, CalibrationMinFloor, CalibrationMinCeiling)
	return c
}

// WithMax returns a copy with Max set, clamped to its adjuster range
func (c Calibration) WithMax(level float64) Calibration {
	c.Max = clamp(level, CalibrationMaxFloor, CalibrationMaxCeiling)
	return c
}

// Clamped returns a copy with both levels forced into their adjuster ranges
func (c Calibration) Clamped() Calibration {
	return c.WithMin(c.Min).WithMax(c.Max)
}

// Normalize maps a level to [0, 1]
func (c Calibration) Normalize(level float64) float64 {
	span := c.Max - c.Min
	if span <= 0 {
		if level >= c.Max {
			return 1
		}
		return 0
	}
	return clamp((level-c.Min)/span, 0, 1)
}
