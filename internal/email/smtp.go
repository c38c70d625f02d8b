package email

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/sahanr/harvestlink/internal/domain"
)

// SMTPSender delivers mail over plain SMTP with optional AUTH.
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTP sender. Username may be empty for
// unauthenticated relays (local dev mailcatchers).
func NewSMTPSender(host string, port uint16, username, password, from, fromName string) *SMTPSender {
	s := &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", host, port),
		from:     from,
		fromName: fromName,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// Send delivers one message. The context is honored only up to connection
// setup; net/smtp does not support mid-session cancellation.
func (s *SMTPSender) Send(ctx context.Context, msg Email) error {
	const op = "email.smtp.Send"

	if err := ctx.Err(); err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, op, "send canceled")
	}

	body := msg.TextBody
	contentType := "text/plain; charset=UTF-8"
	if msg.HTMLBody != "" {
		body = msg.HTMLBody
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.fromName), s.from)
	fmt.Fprintf(&b, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, op, "failed to deliver email")
	}
	return nil
}
