package console

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/testutil"
)

func TestView_Directory(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	testutil.AssertContainsAll(t, view,
		"RXBOOK",
		"RECEIVER DIRECTORY",
		"1/2 online",
		"TEST1 - ALPHA",
		"TEST2 - BRAVO",
		"● ONLINE",
		"○ OFFLINE",
		"145.6750",
		"12:30:45 UTC",
		"select a receiver",
	)
}

func TestView_SessionLayout(t *testing.T) {
	m := tuned(t)
	paint(m, 2)
	press(m, clockMsg(testutil.Epoch.Add(time.Minute)))

	view := m.View()
	testutil.AssertContainsAll(t, view,
		"▶ TEST1 - ALPHA",
		"FREQ",
		"145.6750",
		"-60.0",
		"SQL OPEN",
		"MODE FM",
		"FILTER 12.5 kHz",
		"CAL -100/-30 dBm",
		"145.575 MHz",
		"145.775 MHz",
		"145.675 MHz (Center)",
		"▲BEACON",
		"frame 2",
	)
	testutil.AssertNotContains(t, view, "RECEIVER DIRECTORY")

	specRows, wf := m.surfaceRows()
	if got, want := lipgloss.Height(view), m.chromeRows()+specRows+wf; got != want {
		t.Errorf("expected %d lines, got %d", want, got)
	}
}

func TestView_SessionBeforeFirstFrame(t *testing.T) {
	m := tuned(t)

	view := m.View()
	testutil.AssertContainsAll(t, view, "---.----", "SQL SHUT")
	if strings.Contains(view, "frame 1") {
		t.Error("no frame statistics expected before the first frame")
	}
}

func TestView_RecordingIndicator(t *testing.T) {
	m := tuned(t)
	press(m, runes("r"))
	paint(m, 3)

	testutil.AssertContains(t, m.View(), "● REC 00:00 3")
}

func TestView_HiddenPanels(t *testing.T) {
	m := tuned(t)
	m.cfg.Display.ShowControls = false
	m.cfg.Display.ShowMarkers = false
	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	paint(m, 1)

	view := m.View()
	testutil.AssertNotContains(t, view, "MODE FM")
	testutil.AssertNotContains(t, view, "▲BEACON")
	if m.spectrumTop() != 3 {
		t.Errorf("expected spectrum top 3, got %d", m.spectrumTop())
	}
}

func TestRenderMarkers_SkipsOverlaps(t *testing.T) {
	m := tuned(t)
	axis, err := spectrum.NewAxis(145.675, 200, 118)
	if err != nil {
		t.Fatal(err)
	}

	line := m.renderMarkers(axis, []receiver.StationMarker{
		{Callsign: "ONE", OffsetKHz: 0},
		{Callsign: "TWO", OffsetKHz: 1},
		{Callsign: "FAR", OffsetKHz: 500},
		{Callsign: "EDGE", OffsetKHz: 100},
	})
	testutil.AssertContains(t, line, "▲ONE")
	testutil.AssertNotContains(t, line, "TWO")
	testutil.AssertNotContains(t, line, "FAR")
	testutil.AssertContains(t, line, "▲EDGE")
	if w := lipgloss.Width(line); w != 119 {
		t.Errorf("expected marker line width 119, got %d", w)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 8, "much to…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.expected {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tt.in, tt.n, tt.expected, got)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(75); got != "01:15" {
		t.Errorf("expected 01:15, got %s", got)
	}
}
