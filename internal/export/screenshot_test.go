package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rxbook/rxbook-go/internal/testutil"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1;38;5;46mS9\x1b[0m plain"
	if got := StripANSI(in); got != "S9 plain" {
		t.Errorf("expected %q, got %q", "S9 plain", got)
	}
}

func TestParseANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"escaped", "<a&b>", "&lt;a&amp;b&gt;"},
		{"basic fg", "\x1b[31mX\x1b[0m", `<span style="color:#800000">X</span>`},
		{"bright fg", "\x1b[92mX", `<span style="color:#00ff00">X</span>`},
		{"256 fg", "\x1b[38;5;196mX", `<span style="color:#ff0000">X</span>`},
		{"truecolor fg and bg", "\x1b[38;2;1;2;3;48;2;4;5;6mX", `<span style="color:#010203;background-color:#040506">X</span>`},
		{"bold", "\x1b[1mB\x1b[22mN", `<span class="bold">B</span>N`},
		{"run merged", "\x1b[32mab\x1b[32mc", `<span style="color:#008000">abc</span>`},
		{"fg reset", "\x1b[33mY\x1b[39mZ", `<span style="color:#808000">Y</span>Z`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseANSI(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseANSI_HalfBlocks(t *testing.T) {
	in := "\x1b[38;2;0;255;0;48;2;51;51;51m▀▀\x1b[0m"
	got := parseANSI(in)
	testutil.AssertContains(t, got, "color:#00ff00;background-color:#333333")
	testutil.AssertContains(t, got, "▀▀</span>")
}

func TestCaptureScreen(t *testing.T) {
	fixedClock(t)
	dir := filepath.Join(t.TempDir(), "shots")

	filename, err := CaptureScreen("\x1b[32mRXBOOK\x1b[0m", dir)
	if err != nil {
		t.Fatalf("CaptureScreen failed: %v", err)
	}
	if filepath.Base(filename) != "rxbook_screenshot_20240601_123045.html" {
		t.Errorf("unexpected filename %q", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	testutil.AssertContainsAll(t, content, "<!DOCTYPE html>", "rxbook console", "Captured: 2024-06-01 12:30:45 UTC", "RXBOOK")
}

func TestSaveAsText(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sub", "shot.txt")
	if err := SaveAsText("\x1b[1mhello\x1b[0m", filename); err != nil {
		t.Fatalf("SaveAsText failed: %v", err)
	}
	data, _ := os.ReadFile(filename)
	if strings.TrimSpace(string(data)) != "hello" {
		t.Errorf("expected stripped text, got %q", data)
	}
}
