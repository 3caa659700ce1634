package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// DefaultFrameRate is the target paint rate
const DefaultFrameRate = 30

// Source produces one amplitude frame per call
type Source interface {
	Generate(n int) spectrum.Frame
}

// FrameEvent describes one painted frame
type FrameEvent struct {
	Seq         uint64
	Time        time.Time
	Snapshot    Snapshot
	Levels      spectrum.Frame
	Readout     render.Readout
	Stats       spectrum.Stats
	SquelchOpen bool
	Surfaces    *render.Surfaces
}

// DriverConfig configures a Driver
type DriverConfig struct {
	Source    Source
	Renderer  *render.SpectrumRenderer
	Mapper    spectrum.ColorMapper
	FrameRate int
	Logger    logrus.FieldLogger
	OnFrame   func(FrameEvent)
}

// Driver runs the generate, render and append cycle for a session.
// It owns the surfaces; a host scheduler calls Tick periodically.
type Driver struct {
	store    *Store
	source   Source
	renderer *render.SpectrumRenderer
	mapper   spectrum.ColorMapper
	analyzer *spectrum.Analyzer
	interval time.Duration
	log      logrus.FieldLogger
	onFrame  func(FrameEvent)

	// emit serializes frame delivery with Start and Stop: once Stop returns
	// no frame of the stopped run reaches OnFrame
	emit sync.Mutex

	mu         sync.Mutex
	generation uint64
	running    bool
	last       time.Time
	seq        uint64
	session    uint64
	surfaces   *render.Surfaces
	readout    render.Readout
	painted    bool
}

// NewDriver creates a stopped driver for the store
func NewDriver(store *Store, cfg DriverConfig) *Driver {
	if cfg.Source == nil {
		cfg.Source = spectrum.NewGenerator()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.NewSpectrumRenderer(render.DarkPalette())
	}
	if cfg.Mapper.Ramp == "" {
		cfg.Mapper = spectrum.NewColorMapper(spectrum.RampHSL)
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		cfg.Logger = logger
	}

	return &Driver{
		store:    store,
		source:   cfg.Source,
		renderer: cfg.Renderer,
		mapper:   cfg.Mapper,
		analyzer: spectrum.NewAnalyzer(),
		interval: time.Second / time.Duration(cfg.FrameRate),
		log:      cfg.Logger.WithField("component", "driver"),
		onFrame:  cfg.OnFrame,
	}
}

// Interval returns the minimum time between painted frames
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Start begins a new run and returns its generation. Ticks carrying an older generation are discarded.
func (d *Driver) Start() uint64 {
	d.emit.Lock()
	defer d.emit.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.running = true
	d.last = time.Time{}
	d.log.WithField("generation", d.generation).Debug("render loop started")
	return d.generation
}

// Stop ends the current run and releases the surfaces. A frame being
// delivered is allowed to finish first.
func (d *Driver) Stop() {
	d.emit.Lock()
	defer d.emit.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked("stopped")
}

func (d *Driver) stopLocked(reason string) {
	if d.running {
		d.log.WithFields(logrus.Fields{
			"generation": d.generation,
			"reason":     reason,
		}).Debug("render loop stopped")
	}
	d.generation++
	d.running = false
	d.discardLocked()
}

// discardLocked drops the surfaces and the history painted on them
func (d *Driver) discardLocked() {
	d.surfaces = nil
	d.painted = false
	d.analyzer.Reset()
}

// supersededLocked checks whether the store moved to another session while the frame
// of snap was being built. The frame is then dropped; the run goes on only if
// a receiver is still selected, starting from empty surfaces.
func (d *Driver) supersededLocked(snap Snapshot) (drop, reschedule bool) {
	session, active := d.store.Session()
	if session == snap.Session {
		return false, true
	}
	if !active {
		d.stopLocked("deselected")
		return true, false
	}
	d.discardLocked()
	return true, true
}

// Running returns true while a run is active
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Generation returns the current generation
func (d *Driver) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Tick runs one scheduling step. painted reports whether a frame was drawn and
// reschedule whether the host should call Tick again.
func (d *Driver) Tick(now time.Time, generation uint64) (painted, reschedule bool) {
	d.emit.Lock()
	defer d.emit.Unlock()

	event, painted, reschedule := d.tick(now, generation)
	if !painted {
		return false, reschedule
	}

	d.mu.Lock()
	drop, reschedule := d.supersededLocked(event.Snapshot)
	d.mu.Unlock()
	if drop {
		return false, reschedule
	}

	if d.onFrame != nil {
		d.onFrame(event)
	}
	return true, true
}

func (d *Driver) tick(now time.Time, generation uint64) (FrameEvent, bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running || generation != d.generation {
		return FrameEvent{}, false, false
	}

	snap := d.store.Snapshot()
	if !snap.Active {
		d.stopLocked("no receiver")
		return FrameEvent{}, false, false
	}
	if snap.Width == 0 {
		// layout pending
		return FrameEvent{}, false, true
	}
	if snap.SpectrumHeight == 0 || snap.WaterfallHeight == 0 {
		d.stopLocked("no surface")
		return FrameEvent{}, false, false
	}

	if !d.last.IsZero() {
		elapsed := now.Sub(d.last)
		if elapsed < d.interval {
			return FrameEvent{}, false, true
		}
		d.last = now.Add(-(elapsed % d.interval))
	} else {
		d.last = now
	}

	if d.surfaces != nil && snap.Session != d.session {
		d.log.WithField("session", snap.Session).Debug("receiver changed, history discarded")
		d.discardLocked()
	}

	axis, err := snap.Axis()
	if err != nil {
		d.log.WithError(err).Warn("cannot map frequency axis")
		d.stopLocked("invalid axis")
		return FrameEvent{}, false, false
	}

	d.ensureSurfaces(snap)
	d.session = snap.Session

	levels := d.source.Generate(snap.Width)
	d.analyzer.Add(levels)

	scene := render.Scene{
		Frame:       levels,
		Calibration: snap.Calibration,
		Axis:        axis,
		CursorX:     snap.CursorX,
		Markers:     snap.Markers,
	}
	if snap.PeakHold {
		scene.Peaks = d.analyzer.Peaks()
	}

	readout := d.renderer.Render(d.surfaces.Spectrum, scene)
	d.surfaces.Waterfall.Push(levels, snap.Calibration)

	if drop, again := d.supersededLocked(snap); drop {
		return FrameEvent{}, false, again
	}

	d.seq++
	d.readout = readout
	d.painted = true

	return FrameEvent{
		Seq:         d.seq,
		Time:        now,
		Snapshot:    snap,
		Levels:      levels,
		Readout:     readout,
		Stats:       d.analyzer.Stats(),
		SquelchOpen: snap.Controls.SquelchOpen(readout.LevelDBm),
		Surfaces:    d.surfaces,
	}, true, true
}

// ensureSurfaces allocates surfaces matching the snapshot, discarding history on a size change
func (d *Driver) ensureSurfaces(snap Snapshot) {
	if d.surfaces != nil {
		sb := d.surfaces.Spectrum.Bounds()
		ww, wh := d.surfaces.Waterfall.Size()
		if sb.Dx() == snap.Width && sb.Dy() == snap.SpectrumHeight && ww == snap.Width && wh == snap.WaterfallHeight {
			return
		}
		d.log.WithFields(logrus.Fields{
			"width":     snap.Width,
			"spectrum":  snap.SpectrumHeight,
			"waterfall": snap.WaterfallHeight,
		}).Debug("surfaces resized")
	}
	d.surfaces = render.NewSurfaces(snap.Width, snap.SpectrumHeight, snap.WaterfallHeight, d.mapper)
	d.analyzer.Reset()
}

// Surfaces returns the current surfaces, or nil before the first frame
func (d *Driver) Surfaces() *render.Surfaces {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaces
}

// LastReadout returns the readout of the most recent frame
func (d *Driver) LastReadout() (render.Readout, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readout, d.painted
}

// Stats returns the analyzer statistics of the current run
func (d *Driver) Stats() spectrum.Stats {
	return d.analyzer.Stats()
}

// SetPalette changes the spectrum colors for subsequent frames
func (d *Driver) SetPalette(p render.Palette) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer.Palette = p
}
