package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rxbook/rxbook-go/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// DefaultSendBuffer is the number of queued messages per client before frames are dropped
	DefaultSendBuffer = 16
)

// HubConfig configures a Hub
type HubConfig struct {
	Logger     logrus.FieldLogger
	SendBuffer int
	// OnSelect is called after a client selects a receiver
	OnSelect func()
	// OnDeselect is called after a client ends the session, before the ack is sent
	OnDeselect func()
	// OnSnapshot requests a PNG of the next painted frame
	OnSnapshot func()
}

// Hub fans frames out to websocket clients and applies their commands to the store
type Hub struct {
	store      *session.Store
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader
	buffer     int
	onSelect   func()
	onDeselect func()
	onSnapshot func()

	mu      sync.RWMutex
	clients map[*peer]struct{}
	closed  bool
	dropped uint64
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// NewHub creates a hub for store
func NewHub(store *session.Store, cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		cfg.Logger = logger
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	return &Hub{
		store:      store,
		log:        cfg.Logger.WithField("component", "stream"),
		buffer:     cfg.SendBuffer,
		onSelect:   cfg.OnSelect,
		onDeselect: cfg.OnDeselect,
		onSnapshot: cfg.OnSnapshot,
		clients:    make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and serves one client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	p := &peer{conn: conn, send: make(chan []byte, h.buffer)}
	if !h.register(p) {
		conn.Close()
		return
	}
	h.log.WithField("remote", r.RemoteAddr).Info("client connected")

	h.reply(p, TypeHello, NewHelloData(h.store))

	go h.writePump(p)
	h.readPump(p)

	h.unregister(p)
	h.log.WithField("remote", r.RemoteAddr).Info("client disconnected")
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[p] = struct{}{}
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	if _, ok := h.clients[p]; ok {
		delete(h.clients, p)
		p.close()
	}
	h.mu.Unlock()
}

func (h *Hub) readPump(p *peer) {
	p.conn.SetReadLimit(4096)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("websocket read error")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(p, TypeError, ErrorData{Error: "malformed command"})
			continue
		}
		reply, err := h.Handle(cmd)
		if err != nil {
			h.reply(p, TypeError, ErrorData{Command: cmd.Type, Error: err.Error()})
			continue
		}
		h.reply(p, TypeAck, reply)
	}
}

func (h *Hub) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) reply(p *peer, t MessageType, data interface{}) {
	msg, err := Encode(t, data)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[p]; !ok {
		return
	}
	select {
	case p.send <- msg:
	default:
	}
}

// Handle applies a client command to the store
func (h *Hub) Handle(cmd Command) (AckData, error) {
	switch cmd.Type {
	case CommandTune:
		if err := h.store.TuneTo(cmd.FrequencyMHz); err != nil {
			return AckData{}, err
		}
	case CommandCalibrate:
		if cmd.MinLevel == nil && cmd.MaxLevel == nil {
			return AckData{}, fmt.Errorf("calibrate needs min_level or max_level")
		}
		if cmd.MinLevel != nil {
			h.store.SetMinLevel(*cmd.MinLevel)
		}
		if cmd.MaxLevel != nil {
			h.store.SetMaxLevel(*cmd.MaxLevel)
		}
	case CommandSelect:
		if err := h.store.SelectID(cmd.ReceiverID); err != nil {
			return AckData{}, err
		}
		if h.onSelect != nil {
			h.onSelect()
		}
	case CommandDeselect:
		h.store.Deselect()
		if h.onDeselect != nil {
			h.onDeselect()
		}
	case CommandSnapshot:
		if h.onSnapshot == nil {
			return AckData{}, fmt.Errorf("snapshots are not enabled")
		}
		if _, active := h.store.Active(); !active {
			return AckData{}, session.ErrNoSession
		}
		h.onSnapshot()
	default:
		return AckData{}, fmt.Errorf("unknown command %q", cmd.Type)
	}

	snap := h.store.Snapshot()
	h.log.WithField("command", cmd.Type).Debug("command applied")
	return AckData{Command: cmd.Type, Calibration: snap.Calibration, CursorX: snap.CursorX}, nil
}

// Broadcast queues a frame for every client. Slow clients drop frames.
func (h *Hub) Broadcast(ev session.FrameEvent) {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	msg, err := Encode(TypeFrame, NewFrameData(ev))
	if err != nil {
		h.log.WithError(err).Error("encoding frame")
		return
	}
	h.send(msg)
}

// BroadcastSaved tells every client that an export was written
func (h *Hub) BroadcastSaved(filename string) {
	msg, err := Encode(TypeSaved, SavedData{File: filepath.Base(filename)})
	if err != nil {
		return
	}
	h.send(msg)
}

// BroadcastStats queues analyzer statistics for every client
func (h *Hub) BroadcastStats(stats interface{}) {
	msg, err := Encode(TypeStats, stats)
	if err != nil {
		return
	}
	h.send(msg)
}

func (h *Hub) send(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.clients {
		select {
		case p.send <- msg:
		default:
			h.dropped++
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of frames not delivered to slow clients
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.clients {
		delete(h.clients, p)
		p.close()
	}
}
