// Package spectrum provides synthetic spectrum frames, frequency axis mapping
// and level-to-color conversion for the spectrum and waterfall displays
package spectrum

import (
	"math"
	"math/rand"
	"time"
)

// Level bounds for every generated sample (dBm)
const (
	MinLevel = -150.0
	MaxLevel = 0.0
)

// Generator tuning
const (
	NoiseFloor      = -120.0 // lowest noise sample
	NoiseSpan       = 30.0   // noise is uniform in [NoiseFloor, NoiseFloor+NoiseSpan]
	HumpHeight      = 50.0
	HumpWidth       = 0.4 // fraction of the frame
	PeakProbability = 0.01
	PeakMinWidth    = 0.01 // fraction of the frame
	PeakWidthSpan   = 0.02
	PeakMinHeight   = 30.0
	PeakHeightSpan  = 40.0
	WobbleAmplitude = 5.0
	WobbleRate      = 0.1 // radians per sample
)

// Frame is one amplitude per pixel column, in dBm
type Frame []float64

// At returns the level at index i, clamping i into the frame
func (f Frame) At(i int) float64 {
	if len(f) == 0 {
		return MinLevel
	}
	if i < 0 {
		i = 0
	}
	if i >= len(f) {
		i = len(f) - 1
	}
	return f[i]
}

// Generator produces plausible-looking fake spectra
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithRand sets the random source
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithClock sets the wall clock used for the wobble phase
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a generator seeded from the current time
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a frame of n samples.
// Each sample is max(base, peak proposals) + wobble, clamped to the level bounds,
// where base is noise plus the center hump.
func (g *Generator) Generate(n int) Frame {
	if n <= 0 {
		return Frame{}
	}

	base := make([]float64, n)
	center := float64(n) / 2
	halfWidth := HumpWidth * float64(n) / 2
	for i := range base {
		base[i] = NoiseFloor + g.rng.Float64()*NoiseSpan
		if dist := math.Abs(float64(i) - center); dist < halfWidth {
			r := dist / halfWidth
			base[i] += HumpHeight * (1 - r*r)
		}
	}

	frame := make(Frame, n)
	copy(frame, base)

	for i := 0; i < n; i++ {
		if g.rng.Float64() >= PeakProbability {
			continue
		}
		// fractional width; the loop covers ceil(width) samples
		width := float64(n) * (PeakMinWidth + g.rng.Float64()*PeakWidthSpan)
		height := PeakMinHeight + g.rng.Float64()*PeakHeightSpan
		offset := int(width / 2)

		for j := 0; float64(j) < width; j++ {
			idx := i + j - offset
			if idx < 0 || idx >= n {
				continue
			}
			proposal := base[idx] + height*math.Sin(float64(j)/width*math.Pi)
			if proposal > frame[idx] {
				frame[idx] = proposal
			}
		}
	}

	phase := float64(g.now().UnixMilli()) / 1000
	for i := range frame {
		wobble := WobbleAmplitude * math.Sin(float64(i)*WobbleRate+phase)
		frame[i] = clamp(frame[i]+wobble, MinLevel, MaxLevel)
	}

	return frame
}

// clamp restricts a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
