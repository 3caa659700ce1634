package session

import (
	"sync"
	"time"
)

// DefaultRecordLimit caps the number of readouts kept by a recording
const DefaultRecordLimit = 100000

// Record is one recorded readout
type Record struct {
	Time         time.Time `json:"time"`
	Receiver     string    `json:"receiver"`
	FrequencyMHz float64   `json:"frequency_mhz"`
	LevelDBm     float64   `json:"level_dbm"`
	Mode         Mode      `json:"mode"`
	SquelchOpen  bool      `json:"squelch_open"`
}

// Recorder collects readouts while recording is on
type Recorder struct {
	mu      sync.Mutex
	active  bool
	started time.Time
	records []Record
	limit   int
	dropped int
}

// NewRecorder creates an idle recorder keeping at most limit readouts
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	return &Recorder{limit: limit}
}

// Start begins a new recording, discarding any previous one
func (r *Recorder) Start(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.started = now
	r.records = nil
	r.dropped = 0
}

// Stop ends the recording and returns what was captured
func (r *Recorder) Stop() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	out := r.records
	r.records = nil
	return out
}

// Active returns true while recording
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Add records a painted frame when recording
func (r *Recorder) Add(ev FrameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}
	if len(r.records) >= r.limit {
		r.dropped++
		return
	}
	r.records = append(r.records, Record{
		Time:         ev.Time,
		Receiver:     ev.Snapshot.Receiver.Name,
		FrequencyMHz: ev.Readout.FrequencyMHz,
		LevelDBm:     ev.Readout.LevelDBm,
		Mode:         ev.Snapshot.Controls.Mode,
		SquelchOpen:  ev.SquelchOpen,
	})
}

// Len returns the number of readouts captured so far
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Elapsed returns the recording duration at now
func (r *Recorder) Elapsed(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return 0
	}
	return now.Sub(r.started)
}

// Dropped returns how many readouts exceeded the limit
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
