package billing

import (
	"context"
	"fmt"
	"sync"

	"github.com/sahanr/harvestlink/internal/domain"
)

// MockProvider is an in-memory capture store for testing. Captures resolve
// through the Captures map, or the GetCaptureFunc override when set.
type MockProvider struct {
	mu sync.Mutex

	// Captures maps external payment IDs to captures.
	Captures map[string]*Capture

	// GetCaptureFunc overrides GetCapture behavior when set.
	GetCaptureFunc func(ctx context.Context, externalPaymentID string) (*Capture, error)

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates an empty mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{Captures: make(map[string]*Capture)}
}

// AddCompletedCapture registers a COMPLETED capture for the given payment ID.
func (m *MockProvider) AddCompletedCapture(paymentID string, amountCents int64, currency string) {
	m.Captures[paymentID] = &Capture{
		ID:          paymentID,
		Status:      domain.PaymentCompleted,
		AmountCents: amountCents,
		Currency:    currency,
		Method:      "mock",
	}
}

// GetCapture resolves a capture from the Captures map.
func (m *MockProvider) GetCapture(ctx context.Context, externalPaymentID string) (*Capture, error) {
	m.log(fmt.Sprintf("GetCapture(%s)", externalPaymentID))

	if m.GetCaptureFunc != nil {
		return m.GetCaptureFunc(ctx, externalPaymentID)
	}

	capture, ok := m.Captures[externalPaymentID]
	if !ok {
		return nil, domain.WrapError(ErrCaptureNotFound, domain.ENOTFOUND, "billing.mock.GetCapture", "payment not found")
	}
	cp := *capture
	return &cp, nil
}

func (m *MockProvider) log(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, entry)
}

// Calls returns a copy of the call log.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.CallLog))
	copy(out, m.CallLog)
	return out
}
