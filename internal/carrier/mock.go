package carrier

import (
	"context"
	"fmt"
	"sync"

	"github.com/sahanr/harvestlink/internal/domain"
)

// MockProvider is an in-memory carrier for testing.
type MockProvider struct {
	mu sync.Mutex

	// CreateShipmentFunc overrides CreateShipment behavior when set.
	CreateShipmentFunc func(ctx context.Context, order *domain.Order) (*Shipment, error)

	// CallLog tracks method calls for test assertions.
	CallLog []string

	seq int
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock carrier.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// CreateShipment returns a synthetic shipment reference unless overridden.
func (m *MockProvider) CreateShipment(ctx context.Context, order *domain.Order) (*Shipment, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateShipment(%s)", order.ID))
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	if m.CreateShipmentFunc != nil {
		return m.CreateShipmentFunc(ctx, order)
	}

	return &Shipment{
		Ref:         fmt.Sprintf("se-mock-%d", seq),
		Carrier:     "mock",
		ServiceCode: "mock_standard",
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
