// Package session holds the tuning session state and drives the render loop
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/tuning"
)

// ErrNoSession is returned when an operation needs a selected receiver
var ErrNoSession = errors.New("no receiver selected")

// Snapshot is an immutable copy of the session state taken once per frame
type Snapshot struct {
	Active          bool
	Session         uint64
	Receiver        receiver.Receiver
	BandwidthKHz    float64
	Markers         []receiver.StationMarker
	CursorX         float64
	CursorState     tuning.State
	Calibration     spectrum.Calibration
	Controls        Controls
	PeakHold        bool
	Width           int
	SpectrumHeight  int
	WaterfallHeight int
}

// Axis returns the frequency axis for the snapshot
func (s Snapshot) Axis() (spectrum.Axis, error) {
	return spectrum.NewAxis(s.Receiver.CenterMHz, s.BandwidthKHz, s.Width)
}

// Store is the single writer of session state. Event handlers submit updates
// here and the render loop reads one Snapshot per frame.
type Store struct {
	mu sync.RWMutex

	dir            *receiver.Directory
	receiver       receiver.Receiver
	active         bool
	session        uint64
	cursor         tuning.Cursor
	awaitingLayout bool
	calibration    spectrum.Calibration
	controls       Controls
	peakHold       bool
	width          int
	spectrumH      int
	waterfallH     int
}

// NewStore creates a store over the directory with the starting calibration
func NewStore(dir *receiver.Directory, cal spectrum.Calibration) *Store {
	if dir == nil {
		dir = receiver.Default()
	}
	if !cal.Valid() {
		cal = cal.Clamped()
	}
	return &Store{
		dir:         dir,
		calibration: cal,
		controls:    DefaultControls(),
	}
}

// Directory returns the receiver directory
func (s *Store) Directory() *receiver.Directory {
	return s.dir
}

// Select makes r the active tuning target and recenters the cursor
func (s *Store) Select(r receiver.Receiver) error {
	if !r.Online() {
		return fmt.Errorf("%w: %s", receiver.ErrReceiverOffline, r.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = r
	s.active = true
	s.session++
	s.cursor.Reset(s.width)
	s.awaitingLayout = true
	return nil
}

// SelectID selects the directory receiver with the given id
func (s *Store) SelectID(id int) error {
	r, err := s.dir.Tunable(id)
	if err != nil {
		return err
	}
	return s.Select(r)
}

// Deselect ends the session. Calibration is kept.
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = receiver.Receiver{}
	s.active = false
	s.session++
	s.awaitingLayout = false
	s.cursor.Reset(s.width)
	s.controls.Recording = false
}

// Session returns a counter bumped by every Select and Deselect, and whether a receiver is selected
func (s *Store) Session() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.active
}

// Active returns the selected receiver, if any
func (s *Store) Active() (receiver.Receiver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receiver, s.active
}

// Resize records new surface dimensions. The first resize after a selection recenters the cursor.
func (s *Store) Resize(width, spectrumHeight, waterfallHeight int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = max(width, 0)
	s.spectrumH = max(spectrumHeight, 0)
	s.waterfallH = max(waterfallHeight, 0)

	if s.awaitingLayout && s.width > 0 {
		s.cursor.Reset(s.width)
		s.awaitingLayout = false
		return
	}
	s.cursor.Resize(s.width)
}

// PointerDown starts a cursor drag at x
func (s *Store) PointerDown(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.PointerDown(x)
}

// PointerMove moves a dragging cursor to x
func (s *Store) PointerMove(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.PointerMove(x)
}

// PointerUp ends a cursor drag
func (s *Store) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.PointerUp()
}

// PointerLeave ends a cursor drag when the pointer leaves the spectrum
func (s *Store) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.PointerLeave()
}

// Nudge moves the cursor by dx pixels
func (s *Store) Nudge(dx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Nudge(dx)
}

// TuneTo moves the cursor to an absolute frequency, clamped to the displayed span
func (s *Store) TuneTo(mhz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNoSession
	}
	axis, err := spectrum.NewAxis(s.receiver.CenterMHz, s.dir.BandwidthKHz, s.width)
	if err != nil {
		return err
	}
	if !axis.Ready() {
		return fmt.Errorf("tune %.4f MHz: surface has no width yet", mhz)
	}
	s.cursor.MoveTo(axis.PixelAtFrequency(mhz))
	return nil
}

// Calibration returns the current calibration
func (s *Store) Calibration() spectrum.Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calibration
}

// SetMinLevel sets the coolest level, clamped to its adjuster range
func (s *Store) SetMinLevel(level float64) spectrum.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibration = s.calibration.WithMin(level)
	return s.calibration
}

// SetMaxLevel sets the hottest level, clamped to its adjuster range
func (s *Store) SetMaxLevel(level float64) spectrum.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibration = s.calibration.WithMax(level)
	return s.calibration
}

// AdjustCalibration shifts both levels by the given deltas
func (s *Store) AdjustCalibration(dMin, dMax float64) spectrum.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibration = s.calibration.WithMin(s.calibration.Min + dMin).WithMax(s.calibration.Max + dMax)
	return s.calibration
}

// Controls returns the control panel state
func (s *Store) Controls() Controls {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controls
}

// UpdateControls applies fn to the control panel state and clamps the result
func (s *Store) UpdateControls(fn func(*Controls)) Controls {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.controls
	fn(&c)
	c.Volume = clampInt(c.Volume, VolumeMin, VolumeMax)
	c.SquelchDBm = clampFloat(c.SquelchDBm, SquelchMin, SquelchMax)
	c.NoiseReduction = clampInt(c.NoiseReduction, NoiseReductionMin, NoiseReductionMax)
	if _, err := ParseMode(string(c.Mode)); err != nil {
		c.Mode = s.controls.Mode
	}
	valid := false
	for _, bw := range FilterBandwidths {
		if bw == c.FilterKHz {
			valid = true
			break
		}
	}
	if !valid {
		c.FilterKHz = s.controls.FilterKHz
	}

	s.controls = c
	return c
}

// TogglePeakHold switches the peak hold trace and returns the new state
func (s *Store) TogglePeakHold() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peakHold = !s.peakHold
	return s.peakHold
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markers := make([]receiver.StationMarker, len(s.dir.Markers))
	copy(markers, s.dir.Markers)

	return Snapshot{
		Active:          s.active,
		Session:         s.session,
		Receiver:        s.receiver,
		BandwidthKHz:    s.dir.BandwidthKHz,
		Markers:         markers,
		CursorX:         s.cursor.X(),
		CursorState:     s.cursor.State(),
		Calibration:     s.calibration,
		Controls:        s.controls,
		PeakHold:        s.peakHold,
		Width:           s.width,
		SpectrumHeight:  s.spectrumH,
		WaterfallHeight: s.waterfallH,
	}
}
