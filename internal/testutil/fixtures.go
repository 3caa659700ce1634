package testutil

import (
	"math/rand"
	"time"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// Epoch is a fixed instant used by deterministic tests
var Epoch = time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

// RomeReceiver returns the IZ0FKE receiver from the built-in directory
func RomeReceiver() receiver.Receiver {
	r, _ := receiver.Default().Find(1)
	return r
}

// OfflineReceiver returns an offline receiver from the built-in directory
func OfflineReceiver() receiver.Receiver {
	r, _ := receiver.Default().Find(3)
	return r
}

// SmallDirectory returns a two-receiver directory with one marker
func SmallDirectory() *receiver.Directory {
	return &receiver.Directory{
		BandwidthKHz: 200,
		Receivers: []receiver.Receiver{
			{ID: 1, Name: "TEST1 - ALPHA", Location: "Alpha", FrequencyRange: "VHF", Status: receiver.StatusOnline, CenterMHz: 145.675},
			{ID: 2, Name: "TEST2 - BRAVO", Location: "Bravo", FrequencyRange: "HF", Status: receiver.StatusOffline, CenterMHz: 7.1},
		},
		Markers: []receiver.StationMarker{
			{Callsign: "BEACON", OffsetKHz: 20, Category: receiver.CategoryData},
		},
	}
}

// FlatFrame returns a frame of n samples at level
func FlatFrame(n int, level float64) spectrum.Frame {
	f := make(spectrum.Frame, n)
	for i := range f {
		f[i] = level
	}
	return f
}

// StaticSource always returns the same frame shape, resized to n
type StaticSource struct {
	Level float64
	Calls int
}

// Generate returns a flat frame and counts the call
func (s *StaticSource) Generate(n int) spectrum.Frame {
	s.Calls++
	return FlatFrame(n, s.Level)
}

// SeededGenerator returns a generator with a fixed seed and clock
func SeededGenerator(seed int64) *spectrum.Generator {
	return spectrum.NewGenerator(
		spectrum.WithRand(rand.New(rand.NewSource(seed))),
		spectrum.WithClock(func() time.Time { return Epoch }),
	)
}
