package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/events"
	"github.com/sahanr/harvestlink/internal/payout"
)

type settlementFixture struct {
	store     *mockOrderStore
	provider  *payout.MockProvider
	publisher *events.MockPublisher
	svc       SettlementService
	order     *domain.Order
}

// newSettlementFixture persists one two-seller order through the gate mocks.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		store:     newMockOrderStore(),
		provider:  payout.NewMockProvider(),
		publisher: events.NewMockPublisher(),
	}
	// Conversion rate 300 marketplace units per settlement unit.
	f.svc = NewSettlementService(f.store, f.provider, f.publisher, 300, "USD", testLogger())

	checkout := NewCheckoutService(nil)
	order, err := checkout.Aggregate(domain.Cart{Lines: []domain.CartLine{
		cartLine(nimal, "Tomatoes", 50000, 10), // share 500000 cents
		cartLine(kamala, "Carrots", 400, 8),
	}}, buyer, domain.TransportDelivery, 1200)
	require.NoError(t, err)

	order.Payment = domain.Payment{ExternalID: "PAY-S", Status: domain.PaymentCompleted}
	require.NoError(t, f.store.CreateOrder(context.Background(), order))
	f.order = order
	return f
}

func TestIssuePayout(t *testing.T) {
	f := newSettlementFixture(t)

	issue, err := f.svc.IssuePayout(context.Background(), f.order.ID, "nimal@farm.lk")
	require.NoError(t, err)

	// 500000 cents / 100 / 300 = 16.67 settlement units.
	assert.Equal(t, int64(500000), issue.ShareCents)
	assert.Equal(t, "16.67", issue.Amount)
	assert.Equal(t, "USD", issue.Currency)
	assert.NotEmpty(t, issue.ApprovalURL)

	// Group advanced, sibling untouched.
	got, err := f.store.GetOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	g1, _ := got.FindSellerGroup("nimal@farm.lk")
	g2, _ := got.FindSellerGroup("kamala@farm.lk")
	assert.Equal(t, domain.PayoutLinkSent, g1.PayoutStatus)
	assert.Equal(t, domain.PayoutPending, g2.PayoutStatus)

	// Payout event published for the mail worker.
	evts := f.publisher.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.SubjectPayoutLinkSent, evts[0].Subject)
}

func TestIssuePayoutReplayRejected(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.IssuePayout(context.Background(), f.order.ID, "nimal@farm.lk")
	require.NoError(t, err)

	_, err = f.svc.IssuePayout(context.Background(), f.order.ID, "nimal@farm.lk")
	assert.ErrorIs(t, err, domain.ErrPayoutTransition)
	assert.Len(t, f.provider.Issued, 1)
}

func TestIssuePayoutLinkFailureLeavesPending(t *testing.T) {
	f := newSettlementFixture(t)
	f.provider.CreateCollectLinkFunc = func(ctx context.Context, params payout.LinkParams) (*payout.Link, error) {
		return nil, errors.New("provider down")
	}

	_, err := f.svc.IssuePayout(context.Background(), f.order.ID, "nimal@farm.lk")
	require.Error(t, err)

	got, err := f.store.GetOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	g, _ := got.FindSellerGroup("nimal@farm.lk")
	assert.Equal(t, domain.PayoutPending, g.PayoutStatus)
	assert.Empty(t, f.publisher.Events())
}

func TestConfirmPayout(t *testing.T) {
	f := newSettlementFixture(t)

	// Confirming before a link was issued is rejected.
	err := f.svc.ConfirmPayout(context.Background(), f.order.ID, "nimal@farm.lk")
	assert.ErrorIs(t, err, domain.ErrPayoutTransition)

	_, err = f.svc.IssuePayout(context.Background(), f.order.ID, "nimal@farm.lk")
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmPayout(context.Background(), f.order.ID, "nimal@farm.lk"))

	// PAID is terminal: a second confirmation is rejected.
	err = f.svc.ConfirmPayout(context.Background(), f.order.ID, "nimal@farm.lk")
	assert.ErrorIs(t, err, domain.ErrPayoutTransition)
}

func TestIssuePayoutUnknownSeller(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.IssuePayout(context.Background(), f.order.ID, "stranger@farm.lk")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		rate  float64
		want  string
	}{
		{500000, 300, "16.67"},
		{30000, 300, "1.00"},
		{300, 300, "0.01"},
		{0, 300, "0.00"},
		{100000, 1, "1000.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, payout.FormatAmount(tt.cents, tt.rate))
	}
}
