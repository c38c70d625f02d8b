package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sahanr/harvestlink/internal/domain"
)

// NatsPublisher publishes events to a NATS server as JSON messages.
type NatsPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

var _ Publisher = (*NatsPublisher)(nil)

// NewNatsPublisher connects to NATS and returns a publisher. The connection
// reconnects automatically with backoff.
func NewNatsPublisher(url string, logger *slog.Logger) (*NatsPublisher, error) {
	const op = "events.nats.New"

	conn, err := nats.Connect(url,
		nats.Name("harvestlink-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, "failed to connect to event bus")
	}

	return &NatsPublisher{conn: conn, logger: logger}, nil
}

// Publish encodes the event as JSON and publishes it on the subject.
func (p *NatsPublisher) Publish(ctx context.Context, subject string, event any) error {
	const op = "events.nats.Publish"

	if err := ctx.Err(); err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, op, "publish canceled")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to encode event")
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, op, "failed to publish event")
	}
	return nil
}

// Close flushes pending messages and drops the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Flush(); err != nil {
		p.logger.Warn("nats flush failed", slog.String("error", err.Error()))
	}
	p.conn.Close()
}
