package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// SampleExport is one spectrum column
type SampleExport struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
	LevelDBm     float64 `json:"level_dbm"`
}

// FrameExportData is the JSON export structure of one frame
type FrameExportData struct {
	Timestamp     string               `json:"timestamp"`
	ExportVersion string               `json:"export_version"`
	Sequence      uint64               `json:"sequence"`
	ReceiverID    int                  `json:"receiver_id"`
	Receiver      string               `json:"receiver"`
	CenterMHz     float64              `json:"center_mhz"`
	BandwidthKHz  float64              `json:"bandwidth_khz"`
	Calibration   spectrum.Calibration `json:"calibration"`
	Controls      session.Controls     `json:"controls"`
	Readout       render.Readout       `json:"readout"`
	SquelchOpen   bool                 `json:"squelch_open"`
	Stats         spectrum.Stats       `json:"stats"`
	Samples       []SampleExport       `json:"samples"`
}

// NewFrameExport converts a frame event to its JSON structure
func NewFrameExport(ev session.FrameEvent) (FrameExportData, error) {
	axis, err := ev.Snapshot.Axis()
	if err != nil {
		return FrameExportData{}, fmt.Errorf("frame has no frequency axis: %w", err)
	}

	ts := ev.Time
	if ts.IsZero() {
		ts = Clock()
	}

	data := FrameExportData{
		Timestamp:     ts.UTC().Format(time.RFC3339Nano),
		ExportVersion: Version,
		Sequence:      ev.Seq,
		ReceiverID:    ev.Snapshot.Receiver.ID,
		Receiver:      ev.Snapshot.Receiver.Name,
		CenterMHz:     ev.Snapshot.Receiver.CenterMHz,
		BandwidthKHz:  ev.Snapshot.BandwidthKHz,
		Calibration:   ev.Snapshot.Calibration,
		Controls:      ev.Snapshot.Controls,
		Readout:       ev.Readout,
		SquelchOpen:   ev.SquelchOpen,
		Stats:         ev.Stats,
		Samples:       make([]SampleExport, len(ev.Levels)),
	}
	for i, level := range ev.Levels {
		data.Samples[i] = SampleExport{FrequencyMHz: columnFrequency(axis, i), LevelDBm: level}
	}
	return data, nil
}

// ExportFrameJSON writes a frame to a timestamped JSON file
func ExportFrameJSON(ev session.FrameEvent, directory string) (string, error) {
	filename := GenerateFilename(prefix("frame", ev), "json", directory)
	if err := ExportFrameJSONToFile(ev, filename); err != nil {
		return "", err
	}
	return filename, nil
}

// ExportFrameJSONToFile writes a frame to a specific JSON file
func ExportFrameJSONToFile(ev session.FrameEvent, filename string) error {
	data, err := NewFrameExport(ev)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
