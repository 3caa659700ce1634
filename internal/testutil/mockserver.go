package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockFrame is the frame payload sent by the mock stream server
type MockFrame struct {
	Seq          uint64    `json:"seq"`
	Timestamp    int64     `json:"timestamp"`
	ReceiverID   int       `json:"receiver_id"`
	CenterMHz    float64   `json:"center_mhz"`
	BandwidthKHz float64   `json:"bandwidth_khz"`
	Levels       []float32 `json:"levels"`
}

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ReceivedMessage tracks messages received from WebSocket clients
type ReceivedMessage struct {
	Message   []byte
	Timestamp time.Time
}

// MockServer implements a fake spectrum stream server
type MockServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	writeMu  sync.Mutex
	clients  map[*websocket.Conn]bool
	received []ReceivedMessage
	hello    interface{}
}

// NewMockServer creates and starts a mock server serving websocket clients at any path
func NewMockServer() *MockServer {
	s := &MockServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handleWS))
	return s
}

// URL returns the ws:// url of the server
func (s *MockServer) URL() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

// SetHello sets data sent as a hello message to every new client
func (s *MockServer) SetHello(data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hello = data
}

// Close disconnects all clients and stops the server
func (s *MockServer) Close() {
	s.DisconnectAll()
	s.server.Close()
}

// DisconnectAll drops every client connection, leaving the server up
func (s *MockServer) DisconnectAll() {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.mu.Unlock()
}

// ConnectedClients returns the number of connected WebSocket clients
func (s *MockServer) ConnectedClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ReceivedMessages returns all messages received from clients
func (s *MockServer) ReceivedMessages() []ReceivedMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]ReceivedMessage, len(s.received))
	copy(messages, s.received)
	return messages
}

func (s *MockServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	hello := s.hello
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if hello != nil {
		s.write(conn, WebSocketMessage{Type: "hello", Data: hello})
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		s.mu.Lock()
		s.received = append(s.received, ReceivedMessage{Message: message, Timestamp: time.Now()})
		s.mu.Unlock()
	}
}

func (s *MockServer) write(conn *websocket.Conn, msg WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return s.writeRaw(conn, data)
}

func (s *MockServer) writeRaw(conn *websocket.Conn, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// SendFrame sends a frame to all connected clients
func (s *MockServer) SendFrame(frame MockFrame) error {
	data, err := json.Marshal(WebSocketMessage{Type: "frame", Data: frame})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return s.SendRawMessage(data)
}

// SendRawMessage sends raw bytes to all clients (for testing edge cases)
func (s *MockServer) SendRawMessage(data []byte) error {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.RUnlock()

	var lastErr error
	for _, conn := range clients {
		if err := s.writeRaw(conn, data); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// WaitForClients waits until at least n clients are connected
func (s *MockServer) WaitForClients(n int, timeout time.Duration) error {
	err := WaitForCondition(func() bool { return s.ConnectedClients() >= n }, timeout)
	if err != nil {
		return fmt.Errorf("timeout waiting for clients: got %d, want %d", s.ConnectedClients(), n)
	}
	return nil
}
