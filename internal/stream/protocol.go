// Package stream serves spectrum frames over websocket and consumes them remotely
package stream

import (
	"encoding/json"
	"fmt"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// MessageType identifies a server message
type MessageType string

const (
	TypeHello MessageType = "hello"
	TypeFrame MessageType = "frame"
	TypeStats MessageType = "stats"
	TypeAck   MessageType = "ack"
	TypeError MessageType = "error"
	TypeSaved MessageType = "saved"
)

// Command types accepted from clients
const (
	CommandTune      = "tune"
	CommandCalibrate = "calibrate"
	CommandSelect    = "select"
	CommandDeselect  = "deselect"
	CommandSnapshot  = "snapshot"
)

// Message is the envelope of every server message
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HelloData describes the session to a newly connected client
type HelloData struct {
	Active       bool                     `json:"active"`
	Receiver     *receiver.Receiver       `json:"receiver,omitempty"`
	BandwidthKHz float64                  `json:"bandwidth_khz"`
	Calibration  spectrum.Calibration     `json:"calibration"`
	Markers      []receiver.StationMarker `json:"markers"`
	Receivers    []receiver.Receiver      `json:"receivers"`
}

// FrameData is one painted frame. Levels are float32 to halve the payload.
type FrameData struct {
	Seq          uint64               `json:"seq"`
	Timestamp    int64                `json:"timestamp"`
	ReceiverID   int                  `json:"receiver_id"`
	CenterMHz    float64              `json:"center_mhz"`
	BandwidthKHz float64              `json:"bandwidth_khz"`
	Calibration  spectrum.Calibration `json:"calibration"`
	Levels       []float32            `json:"levels"`
	Readout      render.Readout       `json:"readout"`
	SquelchOpen  bool                 `json:"squelch_open"`
}

// AckData answers a command
type AckData struct {
	Command     string               `json:"command"`
	Calibration spectrum.Calibration `json:"calibration"`
	CursorX     float64              `json:"cursor_x"`
}

// SavedData names an export written by the server
type SavedData struct {
	File string `json:"file"`
}

// ErrorData reports a rejected command
type ErrorData struct {
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

// Command is a client request
type Command struct {
	Type         string   `json:"type"`
	FrequencyMHz float64  `json:"frequency_mhz,omitempty"`
	MinLevel     *float64 `json:"min_level,omitempty"`
	MaxLevel     *float64 `json:"max_level,omitempty"`
	ReceiverID   int      `json:"receiver_id,omitempty"`
}

// NewFrameData converts a frame event to its wire form
func NewFrameData(ev session.FrameEvent) FrameData {
	levels := make([]float32, len(ev.Levels))
	for i, v := range ev.Levels {
		levels[i] = float32(v)
	}
	return FrameData{
		Seq:          ev.Seq,
		Timestamp:    ev.Time.UnixMilli(),
		ReceiverID:   ev.Snapshot.Receiver.ID,
		CenterMHz:    ev.Snapshot.Receiver.CenterMHz,
		BandwidthKHz: ev.Snapshot.BandwidthKHz,
		Calibration:  ev.Snapshot.Calibration,
		Levels:       levels,
		Readout:      ev.Readout,
		SquelchOpen:  ev.SquelchOpen,
	}
}

// NewHelloData describes the current store state
func NewHelloData(store *session.Store) HelloData {
	snap := store.Snapshot()
	dir := store.Directory()
	hello := HelloData{
		Active:       snap.Active,
		BandwidthKHz: dir.BandwidthKHz,
		Calibration:  snap.Calibration,
		Markers:      dir.Markers,
		Receivers:    dir.Receivers,
	}
	if snap.Active {
		r := snap.Receiver
		hello.Receiver = &r
	}
	return hello
}

// Encode wraps data in a typed envelope
func Encode(t MessageType, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", t, err)
	}
	return json.Marshal(Message{Type: t, Data: raw})
}

// ParseFrame decodes frame data
func ParseFrame(data json.RawMessage) (FrameData, error) {
	var f FrameData
	if err := json.Unmarshal(data, &f); err != nil {
		return FrameData{}, fmt.Errorf("parsing frame: %w", err)
	}
	return f, nil
}

// ParseHello decodes hello data
func ParseHello(data json.RawMessage) (HelloData, error) {
	var h HelloData
	if err := json.Unmarshal(data, &h); err != nil {
		return HelloData{}, fmt.Errorf("parsing hello: %w", err)
	}
	return h, nil
}
