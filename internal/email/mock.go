package email

import (
	"context"
	"sync"
)

// MockSender records sent messages for test assertions.
type MockSender struct {
	mu sync.Mutex

	// SendFunc overrides Send behavior when set.
	SendFunc func(ctx context.Context, msg Email) error

	// Sent holds every message delivered through the mock.
	Sent []Email
}

var _ Sender = (*MockSender)(nil)

// NewMockSender creates a mock email sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the message.
func (m *MockSender) Send(ctx context.Context, msg Email) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return nil
}

// Messages returns a copy of the sent messages.
func (m *MockSender) Messages() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.Sent))
	copy(out, m.Sent)
	return out
}
