package export

import (
	"encoding/csv"
	"encoding/json"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/testutil"
)

func fixedClock(t *testing.T) {
	t.Helper()
	orig := Clock
	Clock = func() time.Time { return testutil.Epoch }
	t.Cleanup(func() { Clock = orig })
}

func testEvent() session.FrameEvent {
	return session.FrameEvent{
		Seq:  7,
		Time: testutil.Epoch,
		Snapshot: session.Snapshot{
			Active:       true,
			Receiver:     testutil.RomeReceiver(),
			BandwidthKHz: 200,
			Calibration:  spectrum.DefaultCalibration(),
			Controls:     session.DefaultControls(),
			Width:        4,
		},
		Levels:  spectrum.Frame{-120, -100, -80, -60},
		Readout: render.Readout{FrequencyMHz: 145.675, LevelDBm: -80},
	}
}

func TestGenerateFilename(t *testing.T) {
	fixedClock(t)

	if got := GenerateFilename("rxbook_frame", "csv", ""); got != "rxbook_frame_20240601_123045.csv" {
		t.Errorf("unexpected filename %q", got)
	}
	want := filepath.Join("out", "x_20240601_123045.png")
	if got := GenerateFilename("x", "png", "out"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrefix(t *testing.T) {
	ev := testEvent()
	if got := prefix("frame", ev); got != "rxbook_frame_rx1" {
		t.Errorf("unexpected prefix %q", got)
	}
	ev.Snapshot.Active = false
	if got := prefix("frame", ev); got != "rxbook_frame" {
		t.Errorf("unexpected prefix %q", got)
	}
}

func TestDescribe(t *testing.T) {
	path := testutil.TempFile(t, "a.txt", strings.Repeat("x", 2000))
	if got := Describe(path); got != "a.txt (2.0 kB)" {
		t.Errorf("unexpected description %q", got)
	}
	if got := Describe("/nonexistent/b.txt"); got != "b.txt" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestExportFrameCSV(t *testing.T) {
	fixedClock(t)
	dir := filepath.Join(t.TempDir(), "nested")

	filename, err := ExportFrameCSV(testEvent(), dir)
	if err != nil {
		t.Fatalf("ExportFrameCSV failed: %v", err)
	}
	if filepath.Base(filename) != "rxbook_frame_rx1_20240601_123045.csv" {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "column,frequency_mhz,level_dbm" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "145.600000" {
		t.Errorf("expected first column at 145.600000, got %s", rows[1][1])
	}
	if rows[4][2] != "-60.00" {
		t.Errorf("expected last level -60.00, got %s", rows[4][2])
	}
}

func TestExportFrameCSV_NoAxis(t *testing.T) {
	ev := testEvent()
	ev.Snapshot.BandwidthKHz = 0
	if _, err := ExportFrameCSV(ev, t.TempDir()); err == nil {
		t.Error("expected error for frame without bandwidth")
	}
}

func TestExportRecords(t *testing.T) {
	fixedClock(t)
	records := []session.Record{
		{Time: testutil.Epoch, Receiver: "IZ0FKE - ROMA", FrequencyMHz: 145.675, LevelDBm: -71.25, Mode: session.ModeFM, SquelchOpen: true},
		{Time: testutil.Epoch.Add(time.Second), Receiver: "IZ0FKE - ROMA", FrequencyMHz: 145.7, LevelDBm: -95, Mode: session.ModeFM},
	}

	filename, err := ExportRecords(records, t.TempDir())
	if err != nil {
		t.Fatalf("ExportRecords failed: %v", err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	testutil.AssertContains(t, content, "timestamp,receiver,frequency_mhz,level_dbm,mode,squelch_open")
	testutil.AssertContains(t, content, "2024-06-01T12:30:45Z,IZ0FKE - ROMA,145.6750,-71.2,FM,true")
	testutil.AssertContains(t, content, "145.7000,-95.0,FM,false")
}

func TestNewFrameExport(t *testing.T) {
	data, err := NewFrameExport(testEvent())
	if err != nil {
		t.Fatalf("NewFrameExport failed: %v", err)
	}
	if data.ExportVersion != Version || data.Sequence != 7 {
		t.Errorf("unexpected header %+v", data)
	}
	if data.ReceiverID != 1 || data.CenterMHz != 145.675 {
		t.Errorf("unexpected receiver fields %+v", data)
	}
	if len(data.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(data.Samples))
	}
	if math.Abs(data.Samples[3].FrequencyMHz-145.75) > 1e-9 {
		t.Errorf("expected last sample at 145.75, got %v", data.Samples[3].FrequencyMHz)
	}
	if data.Timestamp != "2024-06-01T12:30:45Z" {
		t.Errorf("unexpected timestamp %q", data.Timestamp)
	}
}

func TestExportFrameJSON(t *testing.T) {
	fixedClock(t)

	filename, err := ExportFrameJSON(testEvent(), t.TempDir())
	if err != nil {
		t.Fatalf("ExportFrameJSON failed: %v", err)
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"receiver", "calibration", "controls", "readout", "stats", "samples"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	readout := decoded["readout"].(map[string]interface{})
	if readout["level_dbm"].(float64) != -80 {
		t.Errorf("unexpected readout %v", readout)
	}
}

func TestComposite(t *testing.T) {
	s := render.NewSurfaces(4, 6, 3, spectrum.NewColorMapper(spectrum.RampHSL))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	for x := 0; x < 4; x++ {
		s.Spectrum.SetRGBA(x, 5, red)
		s.Waterfall.Image().SetRGBA(x, 0, blue)
	}

	img, err := Composite(s)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 9 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if img.RGBAAt(2, 5) != red {
		t.Errorf("expected spectrum row at y=5, got %v", img.RGBAAt(2, 5))
	}
	if img.RGBAAt(2, 6) != blue {
		t.Errorf("expected waterfall row at y=6, got %v", img.RGBAAt(2, 6))
	}
}

func TestExportPNG(t *testing.T) {
	fixedClock(t)
	s := render.NewSurfaces(8, 4, 4, spectrum.NewColorMapper(spectrum.RampHSL))

	filename, err := ExportPNG(s, t.TempDir())
	if err != nil {
		t.Fatalf("ExportPNG failed: %v", err)
	}
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestExportPNG_NoSurface(t *testing.T) {
	if _, err := ExportPNG(nil, t.TempDir()); err != ErrNoSurface {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
	empty := render.NewSurfaces(0, 0, 0, spectrum.NewColorMapper(spectrum.RampHSL))
	if _, err := ExportPNG(empty, t.TempDir()); err != ErrNoSurface {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
}
