// internal/adapter/bus/publisher.go

package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"mixee/internal/domain/activity"
)

// Conn is the part of a NATS connection the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Notification is the envelope published for every simulation change
type Notification struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Time    time.Time   `json:"time"`
}

// Publisher fans simulation notifications out to NATS subjects
type Publisher struct {
	conn   Conn
	topic  string
	logger *zap.Logger
}

// NewPublisher creates a new publisher on "<topic>.<type>" subjects
func NewPublisher(conn Conn, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		conn:   conn,
		topic:  topic,
		logger: logger,
	}
}

// Attach registers the publisher on a pulse and on navigation badges
func (p *Publisher) Attach(pulse activity.Pulse, badges activity.Badges) {
	if pulse != nil {
		pulse.RegisterTickHandler(func(s activity.Stats) {
			p.publish("stats", s)
		})
		pulse.RegisterEventHandler(func(e activity.Event) {
			p.publish("event", e)
		})
		pulse.RegisterClearHandler(func() {
			p.publish("cleared", nil)
		})
	}
	if badges != nil {
		badges.RegisterChangeHandler(func(b []activity.Badge) {
			p.publish("badges", b)
		})
	}
}

// Subject returns the subject used for a notification type
func (p *Publisher) Subject(kind string) string {
	return fmt.Sprintf("%s.%s", p.topic, kind)
}

// publish failures never reach the simulation
func (p *Publisher) publish(kind string, payload interface{}) {
	data, err := json.Marshal(Notification{Type: kind, Payload: payload, Time: time.Now()})
	if err != nil {
		p.logger.Error("error marshaling notification", zap.String("type", kind), zap.Error(err))
		return
	}

	if err := p.conn.Publish(p.Subject(kind), data); err != nil {
		p.logger.Warn("error publishing notification", zap.String("subject", p.Subject(kind)), zap.Error(err))
	}
}

// Config holds NATS connection settings
type Config struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect opens a NATS connection with logging handlers
func Connect(cfg Config, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("mixee"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
