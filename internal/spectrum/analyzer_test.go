package spectrum

import "testing"

func TestAnalyzer_New(t *testing.T) {
	a := NewAnalyzer()
	if a == nil {
		t.Fatal("NewAnalyzer returned nil")
	}
	if a.smoothing != 0.3 {
		t.Errorf("expected smoothing 0.3, got %f", a.smoothing)
	}
	if a.peakDecay != 0.5 {
		t.Errorf("expected peakDecay 0.5, got %f", a.peakDecay)
	}

	stats := a.Stats()
	if stats.Frames != 0 || stats.PeakDBm != MinLevel {
		t.Errorf("unexpected empty stats %+v", stats)
	}
}

func TestAnalyzer_Setters(t *testing.T) {
	a := NewAnalyzer()

	a.SetSmoothing(1.5)
	if a.smoothing != 1.0 {
		t.Errorf("expected smoothing clamped to 1.0, got %f", a.smoothing)
	}
	a.SetSmoothing(-1)
	if a.smoothing != 0 {
		t.Errorf("expected smoothing clamped to 0, got %f", a.smoothing)
	}
	a.SetPeakDecay(-3)
	if a.peakDecay != 0 {
		t.Errorf("expected peak decay floored at 0, got %f", a.peakDecay)
	}
}

func TestAnalyzer_Smoothing(t *testing.T) {
	a := NewAnalyzer()
	a.SetSmoothing(0.5)

	a.Add(Frame{-100, -100})
	a.Add(Frame{-60, -80})

	avg := a.Average()
	if !almostEqual(avg[0], -80) || !almostEqual(avg[1], -90) {
		t.Errorf("expected [-80 -90], got %v", avg)
	}
}

func TestAnalyzer_PeakHoldDecays(t *testing.T) {
	a := NewAnalyzer()
	a.SetPeakDecay(2)

	a.Add(Frame{-40, -100})
	a.Add(Frame{-100, -100})
	a.Add(Frame{-100, -95})

	peaks := a.Peaks()
	if !almostEqual(peaks[0], -44) {
		t.Errorf("expected peak decayed to -44, got %f", peaks[0])
	}
	if !almostEqual(peaks[1], -95) {
		t.Errorf("expected new peak -95, got %f", peaks[1])
	}

	stats := a.Stats()
	if stats.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", stats.Frames)
	}
	if stats.PeakIndex != 0 || !almostEqual(stats.PeakDBm, -44) {
		t.Errorf("unexpected peak %+v", stats)
	}
}

func TestAnalyzer_LengthChangeRestarts(t *testing.T) {
	a := NewAnalyzer()
	a.Add(Frame{-50, -50, -50})
	a.Add(Frame{-70, -70})

	if got := len(a.Average()); got != 2 {
		t.Errorf("expected 2 samples after resize, got %d", got)
	}
	if a.Stats().Frames != 1 {
		t.Errorf("expected frame count to restart, got %d", a.Stats().Frames)
	}

	a.Add(nil)
	if a.Stats().Frames != 1 {
		t.Error("empty frame should be ignored")
	}
}

func TestAnalyzer_StatsAndReset(t *testing.T) {
	a := NewAnalyzer()
	a.Add(Frame{-120, -110, -100, -90, -20})

	stats := a.Stats()
	if !almostEqual(stats.MeanDBm, -88) {
		t.Errorf("expected mean -88, got %f", stats.MeanDBm)
	}
	if stats.NoiseFloor != -110 {
		t.Errorf("expected noise floor -110, got %f", stats.NoiseFloor)
	}
	if stats.PeakIndex != 4 {
		t.Errorf("expected peak index 4, got %d", stats.PeakIndex)
	}

	a.Reset()
	if len(a.Peaks()) != 0 || a.Stats().Frames != 0 {
		t.Error("expected analyzer to be empty after Reset")
	}
}
