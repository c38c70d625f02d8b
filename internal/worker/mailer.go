package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/email"
	"github.com/sahanr/harvestlink/internal/events"
)

// Mailer consumes marketplace events from NATS and sends the matching
// transactional email. It runs alongside the API server so slow SMTP
// round-trips never block request handling.
type Mailer struct {
	conn   *nats.Conn
	sender email.Sender
	logger *slog.Logger

	subs []*nats.Subscription
}

// NewMailer creates a mail worker on an existing NATS connection.
func NewMailer(conn *nats.Conn, sender email.Sender, logger *slog.Logger) *Mailer {
	return &Mailer{conn: conn, sender: sender, logger: logger}
}

// Start subscribes to the event subjects. Handlers run on the NATS delivery
// goroutine; each send uses the passed context for cancellation on shutdown.
func (m *Mailer) Start(ctx context.Context) error {
	const op = "worker.mailer.Start"

	subjects := map[string]nats.MsgHandler{
		events.SubjectOrderCreated:    func(msg *nats.Msg) { m.handleOrderCreated(ctx, msg) },
		events.SubjectPayoutLinkSent:  func(msg *nats.Msg) { m.handlePayoutLinkSent(ctx, msg) },
		events.SubjectProductApproved: func(msg *nats.Msg) { m.handleProductApproved(ctx, msg) },
	}

	for subject, handler := range subjects {
		sub, err := m.conn.Subscribe(subject, handler)
		if err != nil {
			m.Stop()
			return domain.WrapError(err, domain.EUNAVAILABLE, op, "failed to subscribe to event bus")
		}
		m.subs = append(m.subs, sub)
	}

	m.logger.Info("mail worker started", slog.Int("subscriptions", len(m.subs)))
	return nil
}

// Stop unsubscribes from all subjects.
func (m *Mailer) Stop() {
	for _, sub := range m.subs {
		if err := sub.Unsubscribe(); err != nil {
			m.logger.Warn("failed to unsubscribe", slog.String("subject", sub.Subject), slog.String("error", err.Error()))
		}
	}
	m.subs = nil
}

func (m *Mailer) handleOrderCreated(ctx context.Context, msg *nats.Msg) {
	var ev events.OrderCreated
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		m.logger.Error("bad order.created payload", slog.String("error", err.Error()))
		return
	}

	mail := email.ComposeOrderConfirmation(ev.BuyerName, ev.BuyerEmail, ev.OrderID, ev.TotalCents)
	m.send(ctx, msg.Subject, mail)
}

func (m *Mailer) handlePayoutLinkSent(ctx context.Context, msg *nats.Msg) {
	var ev events.PayoutLinkSent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		m.logger.Error("bad payout.link_sent payload", slog.String("error", err.Error()))
		return
	}

	mail := email.ComposePayoutLink(ev.SellerName, ev.SellerEmail, ev.OrderID, ev.Amount, ev.Currency, ev.ApprovalURL)
	m.send(ctx, msg.Subject, mail)
}

func (m *Mailer) handleProductApproved(ctx context.Context, msg *nats.Msg) {
	var ev events.ProductApproved
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		m.logger.Error("bad product.approved payload", slog.String("error", err.Error()))
		return
	}

	// Recipient fan-out for approvals happens in the notification service;
	// this subject only logs for observability.
	m.logger.Info("product approved",
		slog.String("product_id", ev.ProductID),
		slog.String("grade", ev.Grade))
}

func (m *Mailer) send(ctx context.Context, subject string, mail email.Email) {
	if err := m.sender.Send(ctx, mail); err != nil {
		m.logger.Error("failed to send email",
			slog.String("subject", subject),
			slog.String("to", mail.To),
			slog.String("error", err.Error()))
		return
	}
	m.logger.Info("email sent", slog.String("subject", subject), slog.String("to", mail.To))
}
