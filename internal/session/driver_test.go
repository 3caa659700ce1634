package session

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/testutil"
)

func newTestDriver(t *testing.T, source Source, onFrame func(FrameEvent)) (*Store, *Driver) {
	t.Helper()
	store := NewStore(receiver.Default(), spectrum.DefaultCalibration())
	store.Resize(80, 20, 16)
	testutil.RequireNoError(t, store.Select(testutil.RomeReceiver()))

	d := NewDriver(store, DriverConfig{
		Source:  source,
		OnFrame: onFrame,
	})
	return store, d
}

func TestDriver_PaintsFrame(t *testing.T) {
	var last FrameEvent
	_, d := newTestDriver(t, &testutil.StaticSource{Level: -65}, func(ev FrameEvent) { last = ev })

	gen := d.Start()
	painted, again := d.Tick(testutil.Epoch, gen)
	if !painted || !again {
		t.Fatalf("expected first tick to paint and reschedule, got %v %v", painted, again)
	}

	if last.Seq != 1 {
		t.Errorf("expected seq 1, got %d", last.Seq)
	}
	if len(last.Levels) != 80 {
		t.Errorf("expected 80 levels, got %d", len(last.Levels))
	}
	if math.Abs(last.Readout.FrequencyMHz-145.675) > 1e-9 || last.Readout.LevelDBm != -65 {
		t.Errorf("unexpected readout %+v", last.Readout)
	}
	if !last.SquelchOpen {
		t.Error("-65 dBm should open a -90 dBm squelch")
	}

	s := d.Surfaces()
	if s == nil || !s.Usable() {
		t.Fatal("expected usable surfaces after a frame")
	}
	if s.Waterfall.Rows() != 1 {
		t.Errorf("expected one waterfall row, got %d", s.Waterfall.Rows())
	}
	if r, ok := d.LastReadout(); !ok || r != last.Readout {
		t.Errorf("LastReadout mismatch: %+v %v", r, ok)
	}
}

func TestDriver_Throttle(t *testing.T) {
	source := &testutil.StaticSource{Level: -80}
	_, d := newTestDriver(t, source, nil)
	gen := d.Start()
	clock := testutil.NewMockTime(testutil.Epoch)

	d.Tick(clock.Now(), gen)
	clock.Advance(10 * time.Millisecond)
	if painted, again := d.Tick(clock.Now(), gen); painted || !again {
		t.Errorf("tick inside the interval should only reschedule, got %v %v", painted, again)
	}

	clock.Advance(40 * time.Millisecond)
	if painted, _ := d.Tick(clock.Now(), gen); !painted {
		t.Error("tick after the interval should paint")
	}
	if source.Calls != 2 {
		t.Errorf("expected 2 generated frames, got %d", source.Calls)
	}

	// Phase is kept: 50ms elapsed leaves a 50 mod 33.3 remainder
	clock.Advance(20 * time.Millisecond)
	if painted, _ := d.Tick(clock.Now(), gen); !painted {
		t.Error("expected remainder carried into the next interval")
	}
}

func TestDriver_StaleGenerationDiscarded(t *testing.T) {
	source := &testutil.StaticSource{Level: -80}
	_, d := newTestDriver(t, source, nil)

	old := d.Start()
	d.Stop()
	if painted, again := d.Tick(testutil.Epoch, old); painted || again {
		t.Error("tick after stop must not paint or reschedule")
	}

	current := d.Start()
	if current == old {
		t.Fatal("restart must issue a new generation")
	}
	if painted, again := d.Tick(testutil.Epoch, old); painted || again {
		t.Error("stale generation must be discarded")
	}
	if source.Calls != 0 {
		t.Errorf("expected no frames generated, got %d", source.Calls)
	}
	if d.Surfaces() != nil {
		t.Error("surfaces should be released after stop")
	}
}

func TestDriver_StopsWithoutReceiver(t *testing.T) {
	store, d := newTestDriver(t, &testutil.StaticSource{Level: -80}, nil)
	gen := d.Start()
	d.Tick(testutil.Epoch, gen)

	store.Deselect()
	if painted, again := d.Tick(testutil.Epoch.Add(time.Second), gen); painted || again {
		t.Error("deselected session should stop the loop")
	}
	if d.Running() {
		t.Error("driver should have stopped itself")
	}
	if d.Surfaces() != nil {
		t.Error("surfaces should be released")
	}
}

// hookSource runs hook once, in the middle of the next Generate call
type hookSource struct {
	level float64
	hook  func()
}

func (s *hookSource) Generate(n int) spectrum.Frame {
	if hook := s.hook; hook != nil {
		s.hook = nil
		hook()
	}
	return testutil.FlatFrame(n, s.level)
}

func TestDriver_DeselectMidFrame(t *testing.T) {
	var frames int
	source := &hookSource{level: -70}
	store, d := newTestDriver(t, source, func(FrameEvent) { frames++ })

	gen := d.Start()
	d.Tick(testutil.Epoch, gen)
	source.hook = store.Deselect

	painted, again := d.Tick(testutil.Epoch.Add(time.Second), gen)
	if painted || again {
		t.Errorf("frame built across a deselect must be dropped, got painted=%v reschedule=%v", painted, again)
	}
	if frames != 1 {
		t.Errorf("expected only the frame before deselect delivered, got %d", frames)
	}
	if d.Running() {
		t.Error("driver should stop when the session ends mid-frame")
	}
	if d.Surfaces() != nil {
		t.Error("surfaces should be released")
	}
}

func TestDriver_ReselectMidFrameDiscardsHistory(t *testing.T) {
	var last FrameEvent
	source := &hookSource{level: -70}
	store, d := newTestDriver(t, source, func(ev FrameEvent) { last = ev })

	gen := d.Start()
	clock := testutil.NewMockTime(testutil.Epoch)
	d.Tick(clock.Now(), gen)
	source.hook = func() {
		testutil.RequireNoError(t, store.SelectID(2))
	}

	clock.Advance(time.Second)
	if painted, again := d.Tick(clock.Now(), gen); painted || !again {
		t.Errorf("expected the mixed frame dropped and the run kept, got painted=%v reschedule=%v", painted, again)
	}
	if d.Surfaces() != nil {
		t.Error("history of the previous receiver should be discarded")
	}

	clock.Advance(time.Second)
	if painted, _ := d.Tick(clock.Now(), gen); !painted {
		t.Fatal("expected the new receiver to paint")
	}
	if last.Snapshot.Receiver.ID != 2 {
		t.Errorf("expected a frame from receiver 2, got %d", last.Snapshot.Receiver.ID)
	}
	if rows := d.Surfaces().Waterfall.Rows(); rows != 1 {
		t.Errorf("expected a fresh waterfall with one row, got %d", rows)
	}
}

func TestDriver_NewSessionDiscardsHistory(t *testing.T) {
	store, d := newTestDriver(t, &testutil.StaticSource{Level: -70}, nil)
	gen := d.Start()
	clock := testutil.NewMockTime(testutil.Epoch)
	for i := 0; i < 3; i++ {
		d.Tick(clock.Now(), gen)
		clock.Advance(time.Second)
	}
	if rows := d.Surfaces().Waterfall.Rows(); rows != 3 {
		t.Fatalf("expected 3 rows, got %d", rows)
	}

	testutil.RequireNoError(t, store.SelectID(2))
	if painted, _ := d.Tick(clock.Now(), gen); !painted {
		t.Fatal("expected a frame after reselect")
	}
	if rows := d.Surfaces().Waterfall.Rows(); rows != 1 {
		t.Errorf("expected history reset on a new receiver, got %d rows", rows)
	}
}

func TestDriver_StopWaitsForDelivery(t *testing.T) {
	var delivered atomic.Int64
	entered := make(chan struct{})
	release := make(chan struct{})
	source := &hookSource{level: -70, hook: func() {
		close(entered)
		<-release
	}}
	_, d := newTestDriver(t, source, func(FrameEvent) { delivered.Add(1) })

	gen := d.Start()
	go d.Tick(testutil.Epoch, gen)
	<-entered

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	testutil.Never(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 30*time.Millisecond, 5*time.Millisecond, "Stop returned while a frame was in flight")

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	atStop := delivered.Load()
	if painted, again := d.Tick(testutil.Epoch.Add(time.Second), gen); painted || again {
		t.Error("tick after Stop must not paint")
	}
	if delivered.Load() != atStop {
		t.Errorf("frame delivered after Stop returned: %d then %d", atStop, delivered.Load())
	}
}

func TestDriver_ZeroWidthSkipsFrame(t *testing.T) {
	source := &testutil.StaticSource{Level: -80}
	store, d := newTestDriver(t, source, nil)
	store.Resize(0, 20, 16)

	gen := d.Start()
	if painted, again := d.Tick(testutil.Epoch, gen); painted || !again {
		t.Errorf("zero width should skip but keep the loop, got %v %v", painted, again)
	}

	store.Resize(40, 20, 16)
	if painted, _ := d.Tick(testutil.Epoch.Add(time.Second), gen); !painted {
		t.Error("expected painting to resume once width is known")
	}
	if source.Calls != 1 {
		t.Errorf("expected 1 generated frame, got %d", source.Calls)
	}
}

func TestDriver_NoSurfaceStops(t *testing.T) {
	store, d := newTestDriver(t, &testutil.StaticSource{Level: -80}, nil)
	store.Resize(80, 0, 16)

	gen := d.Start()
	if _, again := d.Tick(testutil.Epoch, gen); again {
		t.Error("missing spectrum surface should stop the loop")
	}
}

func TestDriver_ResizeDiscardsHistory(t *testing.T) {
	store, d := newTestDriver(t, &testutil.StaticSource{Level: -80}, nil)
	gen := d.Start()

	now := testutil.Epoch
	for i := 0; i < 5; i++ {
		d.Tick(now, gen)
		now = now.Add(d.Interval())
	}
	if rows := d.Surfaces().Waterfall.Rows(); rows != 5 {
		t.Fatalf("expected 5 rows, got %d", rows)
	}

	store.Resize(60, 20, 16)
	d.Tick(now, gen)
	if rows := d.Surfaces().Waterfall.Rows(); rows != 1 {
		t.Errorf("expected history discarded on resize, got %d rows", rows)
	}
	if w := d.Surfaces().Width(); w != 60 {
		t.Errorf("expected width 60, got %d", w)
	}
}

func TestDriver_SetPalette(t *testing.T) {
	_, d := newTestDriver(t, &testutil.StaticSource{Level: -200}, nil)
	light := render.LightPalette()
	d.SetPalette(light)

	gen := d.Start()
	d.Tick(testutil.Epoch, gen)

	if got := d.Surfaces().Spectrum.RGBAAt(1, 1); got != light.Background {
		t.Errorf("expected light background, got %v", got)
	}
}

func TestRunFrames(t *testing.T) {
	var frames int
	_, d := newTestDriver(t, testutil.SeededGenerator(3), func(FrameEvent) { frames++ })

	n, err := RunFrames(context.Background(), d, 12, testutil.Epoch)
	testutil.RequireNoError(t, err)
	if n != 12 || frames != 12 {
		t.Errorf("expected 12 frames, got %d (callbacks %d)", n, frames)
	}
	if rows := d.Surfaces().Waterfall.Rows(); rows != 12 {
		t.Errorf("expected 12 waterfall rows, got %d", rows)
	}
	if d.Stats().Frames != 12 {
		t.Errorf("expected analyzer to see 12 frames, got %d", d.Stats().Frames)
	}
}

func TestRunFrames_NoSession(t *testing.T) {
	store, d := newTestDriver(t, &testutil.StaticSource{Level: -80}, nil)
	store.Deselect()

	_, err := RunFrames(context.Background(), d, 3, testutil.Epoch)
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestRun_DeselectStopsPainting(t *testing.T) {
	var painted atomic.Int64
	store, d := newTestDriver(t, testutil.SeededGenerator(9), func(FrameEvent) { painted.Add(1) })

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), d, 2*time.Millisecond)
	}()

	testutil.RequireNoError(t, testutil.WaitForCondition(func() bool {
		return painted.Load() >= 3
	}, 2*time.Second))

	store.Deselect()
	d.Stop()
	after := painted.Load()

	testutil.Never(t, func() bool {
		return painted.Load() != after
	}, 60*time.Millisecond, 5*time.Millisecond, "frames painted after deselect")

	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after deselect")
	}
	if got := painted.Load(); got != after {
		t.Errorf("expected %d frames at teardown, got %d", after, got)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	_, d := newTestDriver(t, testutil.SeededGenerator(1), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, d, time.Millisecond)
	}()
	testutil.RequireNoError(t, testutil.WaitForCondition(d.Running, time.Second))

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if d.Running() {
		t.Error("driver should be stopped after cancel")
	}
}

func TestFormatters(t *testing.T) {
	testutil.AssertEqual(t, "145.6750", FormatFrequency(145.675))
	testutil.AssertEqual(t, "-65.0", FormatLevel(-65))
	testutil.AssertEqual(t, "12:30:45 UTC", FormatClock(testutil.Epoch))

	cet := time.FixedZone("CET", 3600)
	testutil.AssertEqual(t, "12:30:45 UTC", FormatClock(testutil.Epoch.In(cet)))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(2)
	ev := FrameEvent{
		Time:    testutil.Epoch,
		Readout: render.Readout{FrequencyMHz: 145.675, LevelDBm: -70},
	}
	ev.Snapshot.Receiver = testutil.RomeReceiver()
	ev.Snapshot.Controls = DefaultControls()

	r.Add(ev)
	if r.Len() != 0 {
		t.Error("idle recorder should ignore frames")
	}

	r.Start(testutil.Epoch)
	testutil.AssertTrue(t, r.Active(), "recorder should be active")
	r.Add(ev)
	r.Add(ev)
	r.Add(ev)
	if r.Len() != 2 || r.Dropped() != 1 {
		t.Errorf("expected 2 kept and 1 dropped, got %d / %d", r.Len(), r.Dropped())
	}
	if got := r.Elapsed(testutil.Epoch.Add(3 * time.Second)); got != 3*time.Second {
		t.Errorf("expected 3s elapsed, got %v", got)
	}

	records := r.Stop()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Receiver != "IZ0FKE - ROMA" || records[0].Mode != ModeFM {
		t.Errorf("unexpected record %+v", records[0])
	}
	testutil.AssertFalse(t, r.Active(), "recorder should be idle after stop")
	if r.Elapsed(testutil.Epoch) != 0 {
		t.Error("idle recorder has no elapsed time")
	}
}
