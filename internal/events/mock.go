package events

import (
	"context"
	"sync"
)

// NoopPublisher drops all events. Used when no event bus is configured.
type NoopPublisher struct{}

var _ Publisher = NoopPublisher{}

func (NoopPublisher) Publish(ctx context.Context, subject string, event any) error { return nil }

func (NoopPublisher) Close() {}

// PublishedEvent is one recorded publish call.
type PublishedEvent struct {
	Subject string
	Event   any
}

// MockPublisher records published events for test assertions.
type MockPublisher struct {
	mu sync.Mutex

	// PublishFunc overrides Publish behavior when set.
	PublishFunc func(ctx context.Context, subject string, event any) error

	// Published holds every event published through the mock.
	Published []PublishedEvent
}

var _ Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a mock event publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event.
func (m *MockPublisher) Publish(ctx context.Context, subject string, event any) error {
	m.mu.Lock()
	m.Published = append(m.Published, PublishedEvent{Subject: subject, Event: event})
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, subject, event)
	}
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}

// Events returns a copy of the recorded events.
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.Published))
	copy(out, m.Published)
	return out
}
