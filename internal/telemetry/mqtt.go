// Package telemetry publishes tuned readouts to an MQTT broker
package telemetry

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/rxbook/rxbook-go/internal/session"
)

// ErrNotConnected is returned when publishing without a broker connection
var ErrNotConnected = errors.New("mqtt not connected")

// Config configures the publisher
type Config struct {
	Enabled     bool
	Host        string
	Port        int
	UseTLS      bool
	Username    string
	Password    string
	TopicPrefix string
	Interval    time.Duration
	QoS         byte
	Retain      bool
}

// ReadoutMessage is the JSON payload of one readout
type ReadoutMessage struct {
	Timestamp     time.Time    `json:"timestamp"`
	ReceiverID    int          `json:"receiver_id"`
	Receiver      string       `json:"receiver"`
	FrequencyMHz  float64      `json:"frequency_mhz"`
	LevelDBm      float64      `json:"level_dbm"`
	Mode          session.Mode `json:"mode"`
	SquelchOpen   bool         `json:"squelch_open"`
	PeakDBm       float64      `json:"peak_dbm"`
	NoiseFloorDBm float64      `json:"noise_floor_dbm"`
}

// broker is the part of mqtt.Client the publisher uses
type broker interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends at most one readout per interval
type Publisher struct {
	client broker
	cfg    Config
	log    logrus.FieldLogger

	mu        sync.Mutex
	last      time.Time
	published uint64
	failed    uint64
}

// BrokerURL returns the broker address for cfg
func BrokerURL(cfg Config) string {
	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "tls"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
}

// Topic returns the readout topic of a receiver
func Topic(prefix string, receiverID int) string {
	return fmt.Sprintf("%s/receivers/%d/readout", prefix, receiverID)
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "rxbook_" + hex.EncodeToString(b)
}

// Options builds the paho client options for cfg
func Options(cfg Config, logger logrus.FieldLogger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(cfg))
	opts.SetClientID(generateClientID())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("mqtt connection lost, reconnecting")
	})
	return opts
}

// NewPublisher connects to the broker. It returns nil when telemetry is
// disabled. A failed first connection is logged and retried in the background.
func NewPublisher(cfg Config, logger logrus.FieldLogger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("mqtt host is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("component", "mqtt")

	client := mqtt.NewClient(Options(cfg, log))
	log.WithField("broker", BrokerURL(cfg)).Info("connecting to mqtt broker")
	token := client.Connect()
	if token.WaitTimeout(5 * time.Second) {
		if err := token.Error(); err != nil {
			log.WithError(err).Warn("initial mqtt connection failed, retrying in background")
		}
	} else {
		log.Warn("mqtt connection timeout, retrying in background")
	}

	return newPublisher(client, cfg, log), nil
}

func newPublisher(client broker, cfg Config, log logrus.FieldLogger) *Publisher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Publisher{client: client, cfg: cfg, log: log}
}

// NewMessage builds the readout payload of a frame
func NewMessage(ev session.FrameEvent) ReadoutMessage {
	snap := ev.Snapshot
	return ReadoutMessage{
		Timestamp:     ev.Time.UTC(),
		ReceiverID:    snap.Receiver.ID,
		Receiver:      snap.Receiver.Name,
		FrequencyMHz:  ev.Readout.FrequencyMHz,
		LevelDBm:      ev.Readout.LevelDBm,
		Mode:          snap.Controls.Mode,
		SquelchOpen:   ev.SquelchOpen,
		PeakDBm:       ev.Stats.PeakDBm,
		NoiseFloorDBm: ev.Stats.NoiseFloor,
	}
}

// OnFrame publishes the readout of ev unless one was sent less than an interval ago.
// It reports whether a message was handed to the broker.
func (p *Publisher) OnFrame(ev session.FrameEvent) bool {
	if p == nil || !ev.Snapshot.Active {
		return false
	}

	p.mu.Lock()
	if !p.last.IsZero() && ev.Time.Sub(p.last) < p.cfg.Interval {
		p.mu.Unlock()
		return false
	}
	p.last = ev.Time
	p.mu.Unlock()

	if err := p.Publish(NewMessage(ev)); err != nil {
		p.log.WithError(err).Debug("readout not published")
		return false
	}
	return true
}

// Publish sends one readout message
func (p *Publisher) Publish(msg ReadoutMessage) error {
	if p == nil || !p.client.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	topic := Topic(p.cfg.TopicPrefix, msg.ReceiverID)
	token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retain, data)

	go func() {
		ok := token.Wait()
		p.mu.Lock()
		defer p.mu.Unlock()
		if ok && token.Error() != nil {
			p.failed++
			p.log.WithError(token.Error()).WithField("topic", topic).Warn("publish failed")
			return
		}
		p.published++
	}()
	return nil
}

// Counts returns the number of completed and failed publishes
func (p *Publisher) Counts() (published, failed uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published, p.failed
}

// IsConnected returns true if the broker connection is up
func (p *Publisher) IsConnected() bool {
	if p == nil || p.client == nil {
		return false
	}
	return p.client.IsConnected()
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	if p != nil && p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.log.Info("mqtt disconnected")
	}
}
