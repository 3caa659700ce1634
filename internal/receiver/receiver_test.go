package receiver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	dir := Default()

	if dir.BandwidthKHz != DefaultBandwidthKHz {
		t.Errorf("expected bandwidth %v, got %v", DefaultBandwidthKHz, dir.BandwidthKHz)
	}
	if len(dir.Receivers) != 8 {
		t.Errorf("expected 8 receivers, got %d", len(dir.Receivers))
	}
	if len(dir.Markers) != 5 {
		t.Errorf("expected 5 markers, got %d", len(dir.Markers))
	}
	if err := dir.Validate(); err != nil {
		t.Errorf("default directory should validate: %v", err)
	}
	if dir.OnlineCount() != 6 {
		t.Errorf("expected 6 online receivers, got %d", dir.OnlineCount())
	}
}

func TestDirectory_Find(t *testing.T) {
	dir := Default()

	r, err := dir.Find(1)
	if err != nil {
		t.Fatalf("Find(1) failed: %v", err)
	}
	if r.CenterMHz != 145.675 {
		t.Errorf("expected center 145.675, got %v", r.CenterMHz)
	}

	_, err = dir.Find(99)
	if !errors.Is(err, ErrUnknownReceiver) {
		t.Errorf("expected ErrUnknownReceiver, got %v", err)
	}
}

func TestDirectory_Tunable(t *testing.T) {
	dir := Default()

	tests := []struct {
		id      int
		wantErr error
	}{
		{1, nil},
		{3, ErrReceiverOffline},
		{7, ErrReceiverOffline},
		{42, ErrUnknownReceiver},
	}

	for _, tt := range tests {
		_, err := dir.Tunable(tt.id)
		if tt.wantErr == nil && err != nil {
			t.Errorf("Tunable(%d): unexpected error %v", tt.id, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Tunable(%d): expected %v, got %v", tt.id, tt.wantErr, err)
		}
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
bandwidth_khz: 100
receivers:
  - id: 10
    name: TEST - HOME
    location: Nowhere
    frequency_range: VHF
    status: Online
    center_mhz: 144.5
markers:
  - callsign: BEACON
    offset_khz: 25
    category: Data
`)
	dir, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if dir.BandwidthKHz != 100 {
		t.Errorf("expected bandwidth 100, got %v", dir.BandwidthKHz)
	}
	if len(dir.Receivers) != 1 || dir.Receivers[0].Status != StatusOnline {
		t.Errorf("expected one online receiver, got %+v", dir.Receivers)
	}
	if dir.Markers[0].Category != CategoryData {
		t.Errorf("expected category normalized to data, got %q", dir.Markers[0].Category)
	}
}

func TestParse_Defaults(t *testing.T) {
	dir, err := Parse([]byte("markers: []\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if dir.BandwidthKHz != DefaultBandwidthKHz {
		t.Errorf("expected default bandwidth, got %v", dir.BandwidthKHz)
	}
	if len(dir.Receivers) != 8 {
		t.Errorf("expected default receivers, got %d", len(dir.Receivers))
	}
	if len(dir.Markers) != 0 {
		t.Errorf("explicit empty marker list should be kept, got %d", len(dir.Markers))
	}
}

func TestParse_Invalid(t *testing.T) {
	docs := map[string]string{
		"negative bandwidth": "bandwidth_khz: -5\n",
		"duplicate id": `receivers:
  - {id: 1, name: A, status: online, center_mhz: 1}
  - {id: 1, name: B, status: online, center_mhz: 2}
`,
		"zero center":    "receivers:\n  - {id: 1, name: A, status: online, center_mhz: 0}\n",
		"bad status":     "receivers:\n  - {id: 1, name: A, status: maybe, center_mhz: 1}\n",
		"empty callsign": "markers:\n  - {offset_khz: 5}\n",
		"not yaml":       "receivers: [",
	}

	for name, doc := range docs {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	if err := os.WriteFile(path, []byte("bandwidth_khz: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dir.BandwidthKHz != 50 {
		t.Errorf("expected bandwidth 50, got %v", dir.BandwidthKHz)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
