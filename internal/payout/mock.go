package payout

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider issues deterministic settlement links for testing.
type MockProvider struct {
	mu sync.Mutex

	// CreateCollectLinkFunc overrides CreateCollectLink behavior when set.
	CreateCollectLinkFunc func(ctx context.Context, params LinkParams) (*Link, error)

	// Issued records every link request made through the mock.
	Issued []LinkParams

	// CallLog tracks method calls for test assertions.
	CallLog []string

	seq int
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock settlement-link issuer.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// CreateCollectLink returns a synthetic link unless overridden.
func (m *MockProvider) CreateCollectLink(ctx context.Context, params LinkParams) (*Link, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCollectLink(%s, %s %s)", params.SellerEmail, params.Amount, params.Currency))
	m.Issued = append(m.Issued, params)
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	if m.CreateCollectLinkFunc != nil {
		return m.CreateCollectLinkFunc(ctx, params)
	}

	return &Link{
		ID:          fmt.Sprintf("MOCK-LINK-%d", seq),
		ApprovalURL: fmt.Sprintf("https://settle.example.com/approve/%d", seq),
	}, nil
}

// Calls returns a copy of the call log.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.CallLog))
	copy(out, m.CallLog)
	return out
}
