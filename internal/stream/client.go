package stream

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ErrNotConnected is returned when sending while no connection is up
var ErrNotConnected = errors.New("not connected")

// ClientState represents the connection state
type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
)

// String returns the state name
func (s ClientState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Client connects to a frame stream and reconnects after failures
type Client struct {
	url            string
	reconnectDelay time.Duration
	log            logrus.FieldLogger

	mu       sync.RWMutex
	state    ClientState
	conn     *websocket.Conn
	stopCh   chan struct{}
	stopOnce sync.Once
	msgCh    chan Message
}

// NewClient creates a client for a ws:// url
func NewClient(url string, reconnectDelay time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 2 * time.Second
	}
	return &Client{
		url:            url,
		reconnectDelay: reconnectDelay,
		log:            logger.WithField("component", "stream-client"),
		state:          StateDisconnected,
		stopCh:         make(chan struct{}),
		msgCh:          make(chan Message, 100),
	}
}

// State returns the current connection state
func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Messages returns the channel of received messages
func (c *Client) Messages() <-chan Message {
	return c.msgCh
}

// Start begins the connection goroutine
func (c *Client) Start() {
	go c.run()
}

// Stop closes the connection and stops reconnecting
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

// Send writes a command to the server
func (c *Client) Send(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(cmd)
}

func (c *Client) setConn(state ClientState, conn *websocket.Conn) {
	c.mu.Lock()
	c.state = state
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) run() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.setConn(StateConnecting, nil)

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.Dial(c.url, nil)
		if err != nil {
			c.log.WithError(err).Debug("dial failed")
			c.setConn(StateDisconnected, nil)
			select {
			case <-c.stopCh:
				return
			case <-time.After(c.reconnectDelay):
				continue
			}
		}

		c.mu.Lock()
		select {
		case <-c.stopCh:
			c.mu.Unlock()
			conn.Close()
			return
		default:
		}
		c.state = StateConnected
		c.conn = conn
		c.mu.Unlock()
		c.log.WithField("url", c.url).Info("connected")

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				c.setConn(StateDisconnected, nil)
				break
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}

			select {
			case c.msgCh <- msg:
			default:
				// Channel full, skip message
			}
		}

		select {
		case <-c.stopCh:
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}
