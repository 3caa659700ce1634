package spectrum

import (
	"sort"
	"sync"
)

// Analyzer aggregates successive frames into a smoothed trace and a decaying peak hold
type Analyzer struct {
	mu        sync.RWMutex
	smoothing float64 // weight of the newest frame (0.0 to 1.0)
	peakDecay float64 // dB the peak hold falls per frame
	average   []float64
	peaks     []float64
	frames    int
}

// Stats summarizes the analyzer state
type Stats struct {
	Frames     int     `json:"frames"`
	PeakDBm    float64 `json:"peak_dbm"`
	PeakIndex  int     `json:"peak_index"`
	MeanDBm    float64 `json:"mean_dbm"`
	NoiseFloor float64 `json:"noise_floor_dbm"`
}

// NewAnalyzer creates an analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		smoothing: 0.3,
		peakDecay: 0.5,
	}
}

// SetSmoothing sets the weight of the newest frame (1.0 = no smoothing)
func (a *Analyzer) SetSmoothing(factor float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoothing = clamp(factor, 0.0, 1.0)
}

// SetPeakDecay sets how many dB the peak hold falls per frame
func (a *Analyzer) SetPeakDecay(db float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if db < 0 {
		db = 0
	}
	a.peakDecay = db
}

// Add folds a frame into the running state. A change of length restarts accumulation.
func (a *Analyzer) Add(frame Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(frame) == 0 {
		return
	}
	if len(frame) != len(a.average) {
		a.average = make([]float64, len(frame))
		a.peaks = make([]float64, len(frame))
		copy(a.average, frame)
		copy(a.peaks, frame)
		a.frames = 1
		return
	}

	for i, level := range frame {
		a.average[i] = a.average[i]*(1-a.smoothing) + level*a.smoothing

		decayed := a.peaks[i] - a.peakDecay
		if level > decayed {
			a.peaks[i] = level
		} else {
			a.peaks[i] = clamp(decayed, MinLevel, MaxLevel)
		}
	}
	a.frames++
}

// Reset clears all accumulated data
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.average = nil
	a.peaks = nil
	a.frames = 0
}

// Average returns a copy of the smoothed trace
func (a *Analyzer) Average() Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(Frame, len(a.average))
	copy(out, a.average)
	return out
}

// Peaks returns a copy of the peak hold trace
func (a *Analyzer) Peaks() Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(Frame, len(a.peaks))
	copy(out, a.peaks)
	return out
}

// Stats returns current statistics
func (a *Analyzer) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{Frames: a.frames, PeakDBm: MinLevel, MeanDBm: MinLevel, NoiseFloor: MinLevel}
	if len(a.average) == 0 {
		return stats
	}

	var sum float64
	for i, level := range a.peaks {
		if level > stats.PeakDBm {
			stats.PeakDBm = level
			stats.PeakIndex = i
		}
	}
	for _, level := range a.average {
		sum += level
	}
	stats.MeanDBm = sum / float64(len(a.average))

	// Noise floor is the 20th percentile of the smoothed trace
	sorted := make([]float64, len(a.average))
	copy(sorted, a.average)
	sort.Float64s(sorted)
	stats.NoiseFloor = sorted[len(sorted)/5]

	return stats
}
