package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// useTempConfig points the package paths at a temp directory for one test
func useTempConfig(t *testing.T) {
	t.Helper()
	origConfigDir := ConfigDir
	origConfigFile := ConfigFile

	ConfigDir = filepath.Join(t.TempDir(), "rxbook")
	ConfigFile = filepath.Join(ConfigDir, "settings.json")

	t.Cleanup(func() {
		ConfigDir = origConfigDir
		ConfigFile = origConfigFile
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Display.Theme != "dark" {
		t.Errorf("Display.Theme = %q, want %q", cfg.Display.Theme, "dark")
	}
	if cfg.Display.ColorRamp != "hsl" {
		t.Errorf("Display.ColorRamp = %q, want hsl", cfg.Display.ColorRamp)
	}
	if cfg.Display.FrameRate != 30 {
		t.Errorf("Display.FrameRate = %d, want 30", cfg.Display.FrameRate)
	}
	if !cfg.Display.ShowMarkers || !cfg.Display.ShowControls {
		t.Error("markers and controls should be shown by default")
	}
	if cfg.Calibration != spectrum.DefaultCalibration() {
		t.Errorf("Calibration = %+v, want defaults", cfg.Calibration)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("MQTT.Port = %d, want 1883", cfg.MQTT.Port)
	}
	if cfg.Stream.Path != "/ws" {
		t.Errorf("Stream.Path = %q, want /ws", cfg.Stream.Path)
	}
	if cfg.LastReceiver != 0 {
		t.Errorf("LastReceiver = %d, want 0", cfg.LastReceiver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		check  func(*testing.T, *Config)
	}{
		{
			name:   "unknown theme",
			modify: func(c *Config) { c.Display.Theme = "neon" },
			check: func(t *testing.T, c *Config) {
				if c.Display.Theme != "dark" {
					t.Errorf("expected dark, got %q", c.Display.Theme)
				}
			},
		},
		{
			name:   "unknown ramp",
			modify: func(c *Config) { c.Display.ColorRamp = "rainbow" },
			check: func(t *testing.T, c *Config) {
				if c.Display.ColorRamp != "hsl" {
					t.Errorf("expected hsl, got %q", c.Display.ColorRamp)
				}
			},
		},
		{
			name:   "frame rate too low",
			modify: func(c *Config) { c.Display.FrameRate = 0 },
			check: func(t *testing.T, c *Config) {
				if c.Display.FrameRate != MinFrameRate {
					t.Errorf("expected %d, got %d", MinFrameRate, c.Display.FrameRate)
				}
			},
		},
		{
			name:   "frame rate too high",
			modify: func(c *Config) { c.Display.FrameRate = 240 },
			check: func(t *testing.T, c *Config) {
				if c.Display.FrameRate != MaxFrameRate {
					t.Errorf("expected %d, got %d", MaxFrameRate, c.Display.FrameRate)
				}
			},
		},
		{
			name:   "inverted calibration",
			modify: func(c *Config) { c.Calibration = spectrum.Calibration{Min: -20, Max: -100} },
			check: func(t *testing.T, c *Config) {
				if !c.Calibration.Valid() {
					t.Errorf("expected valid calibration, got %+v", c.Calibration)
				}
			},
		},
		{
			name: "bad mqtt values",
			modify: func(c *Config) {
				c.MQTT.Port = 70000
				c.MQTT.IntervalMS = -1
				c.MQTT.TopicPrefix = ""
			},
			check: func(t *testing.T, c *Config) {
				if c.MQTT.Port != 1883 || c.MQTT.IntervalMS != 1000 || c.MQTT.TopicPrefix != "rxbook" {
					t.Errorf("mqtt settings not repaired: %+v", c.MQTT)
				}
			},
		},
		{
			name:   "relative stream path",
			modify: func(c *Config) { c.Stream.Path = "ws" },
			check: func(t *testing.T, c *Config) {
				if c.Stream.Path != "/ws" {
					t.Errorf("expected /ws, got %q", c.Stream.Path)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			cfg.Validate()
			tt.check(t, cfg)
		})
	}
}

func TestValidate_KeepsGoodValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Theme = "amber"
	cfg.Display.ColorRamp = "linear"
	cfg.Display.FrameRate = 15
	cfg.Calibration = spectrum.Calibration{Min: -120, Max: -20}
	cfg.Validate()

	if cfg.Display.Theme != "amber" || cfg.Display.ColorRamp != "linear" || cfg.Display.FrameRate != 15 {
		t.Errorf("valid display settings changed: %+v", cfg.Display)
	}
	if cfg.Calibration != (spectrum.Calibration{Min: -120, Max: -20}) {
		t.Errorf("valid calibration changed: %+v", cfg.Calibration)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	useTempConfig(t)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}
	if _, err := os.Stat(ConfigDir); os.IsNotExist(err) {
		t.Error("ConfigDir was not created")
	}
}

func TestEnsureConfigDir_Error(t *testing.T) {
	origConfigDir := ConfigDir
	ConfigDir = "/invalid/path/that/cannot/be/created\x00null"
	defer func() { ConfigDir = origConfigDir }()

	if err := EnsureConfigDir(); err == nil {
		t.Error("EnsureConfigDir should return error for invalid path")
	}
}

func TestLoad_NoFile(t *testing.T) {
	useTempConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Errorf("Load should not return error for non-existent file: %v", err)
	}
	if cfg == nil || cfg.Display.Theme != "dark" {
		t.Fatal("Load should return default config")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	useTempConfig(t)
	if err := EnsureConfigDir(); err != nil {
		t.Fatal(err)
	}

	doc := map[string]interface{}{
		"display":       map[string]interface{}{"theme": "light", "frame_rate": 20},
		"calibration":   map[string]interface{}{"min_level": -110, "max_level": -40},
		"last_receiver": 4,
	}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(ConfigFile, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Display.Theme != "light" {
		t.Errorf("Display.Theme = %q, want light", cfg.Display.Theme)
	}
	if cfg.Display.FrameRate != 20 {
		t.Errorf("Display.FrameRate = %d, want 20", cfg.Display.FrameRate)
	}
	if cfg.Calibration.Min != -110 || cfg.Calibration.Max != -40 {
		t.Errorf("Calibration = %+v", cfg.Calibration)
	}
	if cfg.LastReceiver != 4 {
		t.Errorf("LastReceiver = %d, want 4", cfg.LastReceiver)
	}
	// Fields absent from the file keep their defaults
	if cfg.Stream.Listen != "127.0.0.1:8073" {
		t.Errorf("Stream.Listen = %q, want default", cfg.Stream.Listen)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	useTempConfig(t)
	if err := EnsureConfigDir(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigFile, []byte("invalid json {{{"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Errorf("Load should not return error for invalid JSON: %v", err)
	}
	if cfg.Display.Theme != "dark" {
		t.Error("Load should return default config for invalid JSON")
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	useTempConfig(t)
	if err := os.MkdirAll(ConfigFile, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Errorf("Load should not return error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load should return default config")
	}
}

func TestSaveAndLoad(t *testing.T) {
	useTempConfig(t)

	cfg := DefaultConfig()
	cfg.Display.Theme = "phosphor"
	cfg.MQTT.Enabled = true
	cfg.MQTT.Host = "broker.local"
	cfg.Directory.File = "/tmp/directory.yaml"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Display.Theme != "phosphor" {
		t.Errorf("Display.Theme = %q, want phosphor", loaded.Display.Theme)
	}
	if !loaded.MQTT.Enabled || loaded.MQTT.Host != "broker.local" {
		t.Errorf("MQTT = %+v", loaded.MQTT)
	}
	if loaded.Directory.File != "/tmp/directory.yaml" {
		t.Errorf("Directory.File = %q", loaded.Directory.File)
	}
}

func TestReset(t *testing.T) {
	useTempConfig(t)

	cfg := DefaultConfig()
	cfg.Display.Theme = "matrix"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	reset, err := Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if reset.Display.Theme != "dark" {
		t.Errorf("expected defaults, got theme %q", reset.Display.Theme)
	}

	loaded, _ := Load()
	if loaded.Display.Theme != "dark" {
		t.Errorf("reset not persisted, got theme %q", loaded.Display.Theme)
	}
}

func TestGetConfigPath(t *testing.T) {
	useTempConfig(t)
	if GetConfigPath() != ConfigFile {
		t.Errorf("GetConfigPath = %q, want %q", GetConfigPath(), ConfigFile)
	}
}
