package stream

import (
	"sync"

	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// RemoteSource replays the most recent streamed frame as a session source
type RemoteSource struct {
	mu     sync.RWMutex
	levels []float32
	frame  FrameData
	seen   bool
}

// NewRemoteSource creates a source with no frame yet
func NewRemoteSource() *RemoteSource {
	return &RemoteSource{}
}

// Update stores a received frame
func (s *RemoteSource) Update(f FrameData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.levels = f.Levels
	s.seen = true
}

// Latest returns the last received frame
func (s *RemoteSource) Latest() (FrameData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.seen
}

// Generate resamples the last frame to n columns. Before the first frame
// arrives every column is at the minimum level.
func (s *RemoteSource) Generate(n int) spectrum.Frame {
	if n < 0 {
		n = 0
	}
	out := make(spectrum.Frame, n)

	s.mu.RLock()
	defer s.mu.RUnlock()

	m := len(s.levels)
	for i := range out {
		if m == 0 {
			out[i] = spectrum.MinLevel
			continue
		}
		j := i * m / n
		out[i] = float64(s.levels[j])
	}
	return out
}

// Pump feeds frames from c into the source until c's channel stops delivering or done closes.
// Hello messages are passed to onHello when it is set.
func (s *RemoteSource) Pump(c *Client, done <-chan struct{}, onHello func(HelloData)) {
	for {
		select {
		case <-done:
			return
		case msg, ok := <-c.Messages():
			if !ok {
				return
			}
			switch msg.Type {
			case TypeFrame:
				if f, err := ParseFrame(msg.Data); err == nil {
					s.Update(f)
				}
			case TypeHello:
				if onHello == nil {
					continue
				}
				if h, err := ParseHello(msg.Data); err == nil {
					onHello(h)
				}
			}
		}
	}
}
