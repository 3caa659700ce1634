// Package receiver provides the receiver directory and station markers for rxbook
package receiver

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBandwidthKHz is the frequency span shown across the spectrum width
const DefaultBandwidthKHz = 200.0

var (
	ErrUnknownReceiver = errors.New("unknown receiver")
	ErrReceiverOffline = errors.New("receiver is offline")
)

// Status is the availability of a receiver
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Receiver is an immutable entry of the receiver directory
type Receiver struct {
	ID             int     `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	Location       string  `yaml:"location" json:"location"`
	FrequencyRange string  `yaml:"frequency_range" json:"frequency_range"`
	Status         Status  `yaml:"status" json:"status"`
	Lat            float64 `yaml:"lat" json:"lat"`
	Lon            float64 `yaml:"lon" json:"lon"`
	CenterMHz      float64 `yaml:"center_mhz" json:"center_mhz"`
}

// Online returns true if the receiver can be tuned
func (r Receiver) Online() bool {
	return r.Status == StatusOnline
}

// Category classifies a station marker
type Category string

const (
	CategoryVoice   Category = "voice"
	CategoryData    Category = "data"
	CategoryDigital Category = "digital"
)

// StationMarker annotates a known station relative to the displayed center
type StationMarker struct {
	Callsign  string   `yaml:"callsign" json:"callsign"`
	OffsetKHz float64  `yaml:"offset_khz" json:"offset_khz"`
	Category  Category `yaml:"category" json:"category"`
}

// Directory holds the receivers, markers and displayed bandwidth
type Directory struct {
	BandwidthKHz float64         `yaml:"bandwidth_khz"`
	Receivers    []Receiver      `yaml:"receivers"`
	Markers      []StationMarker `yaml:"markers"`
}

// Default returns the built-in directory
func Default() *Directory {
	return &Directory{
		BandwidthKHz: DefaultBandwidthKHz,
		Receivers: []Receiver{
			{ID: 1, Name: "IZ0FKE - ROMA", Location: "Rome, Italy", FrequencyRange: "HF, VHF", Status: StatusOnline, Lat: 41.9028, Lon: 12.4964, CenterMHz: 145.675},
			{ID: 2, Name: "DL1ABC - BERLIN", Location: "Berlin, Germany", FrequencyRange: "VHF, UHF", Status: StatusOnline, Lat: 52.5200, Lon: 13.4050, CenterMHz: 433.000},
			{ID: 3, Name: "W1XYZ - NEW YORK", Location: "New York, USA", FrequencyRange: "HF", Status: StatusOffline, Lat: 40.7128, Lon: -74.0060, CenterMHz: 7.100},
			{ID: 4, Name: "JA7DEF - TOKYO", Location: "Tokyo, Japan", FrequencyRange: "UHF", Status: StatusOnline, Lat: 35.6895, Lon: 139.6917, CenterMHz: 446.000},
			{ID: 5, Name: "VK2GHI - SYDNEY", Location: "Sydney, Australia", FrequencyRange: "HF, VHF", Status: StatusOnline, Lat: -33.8688, Lon: 151.2093, CenterMHz: 28.500},
			{ID: 6, Name: "G8PQR - LONDON", Location: "London, UK", FrequencyRange: "VHF", Status: StatusOnline, Lat: 51.5074, Lon: -0.1278, CenterMHz: 144.800},
			{ID: 7, Name: "F5STU - PARIS", Location: "Paris, France", FrequencyRange: "UHF", Status: StatusOffline, Lat: 48.8566, Lon: 2.3522, CenterMHz: 430.000},
			{ID: 8, Name: "VE3UVW - TORONTO", Location: "Toronto, Canada", FrequencyRange: "HF", Status: StatusOnline, Lat: 43.6532, Lon: -79.3832, CenterMHz: 14.200},
		},
		Markers: []StationMarker{
			{Callsign: "IZ0RIN", OffsetKHz: -50, Category: CategoryVoice},
			{Callsign: "PACKET", OffsetKHz: 20, Category: CategoryData},
			{Callsign: "IQ0FP", OffsetKHz: 100, Category: CategoryVoice},
			{Callsign: "FT8-DX", OffsetKHz: -120, Category: CategoryDigital},
			{Callsign: "DMR-TG", OffsetKHz: 70, Category: CategoryDigital},
		},
	}
}

// Load reads a YAML directory file. Missing sections fall back to the built-in ones.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML directory document
func Parse(data []byte) (*Directory, error) {
	var dir Directory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parsing directory: %w", err)
	}

	def := Default()
	if dir.BandwidthKHz == 0 {
		dir.BandwidthKHz = def.BandwidthKHz
	}
	if len(dir.Receivers) == 0 {
		dir.Receivers = def.Receivers
	}
	if dir.Markers == nil {
		dir.Markers = def.Markers
	}

	if err := dir.Validate(); err != nil {
		return nil, err
	}
	return &dir, nil
}

// Validate checks the directory for unusable entries
func (d *Directory) Validate() error {
	if d.BandwidthKHz <= 0 {
		return fmt.Errorf("bandwidth must be positive, got %g kHz", d.BandwidthKHz)
	}

	seen := make(map[int]bool, len(d.Receivers))
	for i := range d.Receivers {
		r := &d.Receivers[i]
		if seen[r.ID] {
			return fmt.Errorf("duplicate receiver id %d", r.ID)
		}
		seen[r.ID] = true
		if r.CenterMHz <= 0 {
			return fmt.Errorf("receiver %d: center frequency must be positive", r.ID)
		}
		r.Status = Status(strings.ToLower(string(r.Status)))
		if r.Status != StatusOnline && r.Status != StatusOffline {
			return fmt.Errorf("receiver %d: unknown status %q", r.ID, r.Status)
		}
	}

	for i := range d.Markers {
		m := &d.Markers[i]
		m.Category = Category(strings.ToLower(string(m.Category)))
		if m.Callsign == "" {
			return fmt.Errorf("marker %d: empty callsign", i)
		}
	}
	return nil
}

// Find returns the receiver with the given id
func (d *Directory) Find(id int) (Receiver, error) {
	for _, r := range d.Receivers {
		if r.ID == id {
			return r, nil
		}
	}
	return Receiver{}, fmt.Errorf("%w: %d", ErrUnknownReceiver, id)
}

// Tunable returns the receiver with the given id if it is online
func (d *Directory) Tunable(id int) (Receiver, error) {
	r, err := d.Find(id)
	if err != nil {
		return Receiver{}, err
	}
	if !r.Online() {
		return Receiver{}, fmt.Errorf("%w: %s", ErrReceiverOffline, r.Name)
	}
	return r, nil
}

// OnlineCount returns the number of online receivers
func (d *Directory) OnlineCount() int {
	count := 0
	for _, r := range d.Receivers {
		if r.Online() {
			count++
		}
	}
	return count
}
