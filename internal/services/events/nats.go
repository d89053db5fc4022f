package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// conn is the part of *nats.Conn the publisher needs
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher publishes events as JSON on <prefix>.<story_id>
type NATSPublisher struct {
	conn   conn
	prefix string
}

// NewNATSPublisher connects to the servers in cfg.NATSURL
func NewNATSPublisher(cfg config.EventsConfig) (*NATSPublisher, error) {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return nil, fmt.Errorf("no NATS url configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	name := cfg.ClientName
	if name == "" {
		name = "story-teller-backend"
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.StdLogger().Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.StdLogger().Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.StdLogger().Infof("Connected to NATS at %s", nc.ConnectedUrl())
	return newNATSPublisher(nc, cfg.SubjectPrefix), nil
}

func newNATSPublisher(c conn, prefix string) *NATSPublisher {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = "storyteller.stories"
	}
	return &NATSPublisher{conn: c, prefix: prefix}
}

// Subject returns the subject events for storyID are published on
func (p *NATSPublisher) Subject(storyID string) string {
	return p.prefix + "." + storyID
}

// Publish encodes event and hands it to the connection
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.StoryID), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		logger.StdLogger().Warnf("Failed to drain NATS connection: %v", err)
	}
	p.conn.Close()
}

// FromConfig returns a NATS publisher when a url is configured and Noop
// otherwise
func FromConfig(cfg config.EventsConfig) (Publisher, error) {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return Noop{}, nil
	}
	return NewNATSPublisher(cfg)
}
