// Package config handles configuration loading, saving, and defaults for rxbook
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/theme"
)

// Frame rate bounds accepted from settings and flags
const (
	MinFrameRate = 1
	MaxFrameRate = 60
)

// Config directories and files
var (
	ConfigDir  string
	ConfigFile string
)

func init() {
	homeDir, _ := os.UserHomeDir()
	ConfigDir = filepath.Join(homeDir, ".config", "rxbook")
	ConfigFile = filepath.Join(ConfigDir, "settings.json")
}

// DisplaySettings contains UI display options
type DisplaySettings struct {
	Theme         string `json:"theme"`
	ColorRamp     string `json:"color_ramp"`
	FrameRate     int    `json:"frame_rate"`
	SpectrumRows  int    `json:"spectrum_rows"`
	WaterfallRows int    `json:"waterfall_rows"`
	ShowMarkers   bool   `json:"show_markers"`
	ShowControls  bool   `json:"show_controls"`
}

// DirectorySettings points at an optional YAML receiver directory
type DirectorySettings struct {
	File string `json:"file"`
}

// ExportSettings contains export options
type ExportSettings struct {
	Directory string `json:"directory"`
}

// StreamSettings configures the websocket frame stream
type StreamSettings struct {
	Listen string `json:"listen"`
	Path   string `json:"path"`
}

// MQTTSettings configures the readout telemetry publisher
type MQTTSettings struct {
	Enabled     bool   `json:"enabled"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix"`
	IntervalMS  int    `json:"interval_ms"`
}

// LogSettings contains logging options
type LogSettings struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

// Config is the main configuration container
type Config struct {
	Display      DisplaySettings      `json:"display"`
	Calibration  spectrum.Calibration `json:"calibration"`
	Directory    DirectorySettings    `json:"directory"`
	Export       ExportSettings       `json:"export"`
	Stream       StreamSettings       `json:"stream"`
	MQTT         MQTTSettings         `json:"mqtt"`
	Log          LogSettings          `json:"log"`
	LastReceiver int                  `json:"last_receiver"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Display: DisplaySettings{
			Theme:         theme.DefaultTheme,
			ColorRamp:     string(spectrum.RampHSL),
			FrameRate:     30,
			SpectrumRows:  10,
			WaterfallRows: 8,
			ShowMarkers:   true,
			ShowControls:  true,
		},
		Calibration: spectrum.DefaultCalibration(),
		Stream: StreamSettings{
			Listen: "127.0.0.1:8073",
			Path:   "/ws",
		},
		MQTT: MQTTSettings{
			Host:        "localhost",
			Port:        1883,
			TopicPrefix: "rxbook",
			IntervalMS:  1000,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate repairs values the console cannot use. It never fails; bad
// values are replaced by the closest usable ones.
func (c *Config) Validate() {
	def := DefaultConfig()

	if !theme.Exists(c.Display.Theme) {
		c.Display.Theme = def.Display.Theme
	}
	if _, err := spectrum.ParseRamp(c.Display.ColorRamp); err != nil {
		c.Display.ColorRamp = def.Display.ColorRamp
	}
	switch {
	case c.Display.FrameRate < MinFrameRate:
		c.Display.FrameRate = MinFrameRate
	case c.Display.FrameRate > MaxFrameRate:
		c.Display.FrameRate = MaxFrameRate
	}
	if c.Display.SpectrumRows < 2 {
		c.Display.SpectrumRows = def.Display.SpectrumRows
	}
	if c.Display.WaterfallRows < 1 {
		c.Display.WaterfallRows = def.Display.WaterfallRows
	}

	c.Calibration = c.Calibration.Clamped()

	if c.Stream.Path == "" || !strings.HasPrefix(c.Stream.Path, "/") {
		c.Stream.Path = def.Stream.Path
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		c.MQTT.Port = def.MQTT.Port
	}
	if c.MQTT.IntervalMS <= 0 {
		c.MQTT.IntervalMS = def.MQTT.IntervalMS
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir, 0755)
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(ConfigFile)
	if err != nil {
		return DefaultConfig(), nil
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig(), nil
	}

	config.Validate()
	return config, nil
}

// Save saves configuration to file
func Save(config *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigFile, data, 0644)
}

// Reset overwrites the settings file with defaults
func Reset() (*Config, error) {
	cfg := DefaultConfig()
	return cfg, Save(cfg)
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return ConfigFile
}
