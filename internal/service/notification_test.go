package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/events"
)

func TestFanOutApproval(t *testing.T) {
	alice := domain.Recipient{ID: uuid.New(), Name: "Alice", Email: "alice@shop.lk", GradePrefs: map[string]bool{"A": true}}
	bob := domain.Recipient{ID: uuid.New(), Name: "Bob", Email: "bob@shop.lk", GradePrefs: map[string]bool{"B": true}}
	carol := domain.Recipient{ID: uuid.New(), Name: "Carol", Email: "carol@shop.lk", GradePrefs: map[string]bool{"A": true, "B": true}}

	store := newMockNotificationStore()
	publisher := events.NewMockPublisher()
	svc := NewNotificationService(store, &mockDirectory{recipients: []domain.Recipient{alice, bob, carol}}, publisher, testLogger())

	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Tomatoes",
		Grade:      "A",
		Status:     domain.ProductApproved,
		FarmerName: "Nimal Perera",
	}

	count, err := svc.FanOutApproval(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, 2, count) // Alice and Carol opted into grade A

	aliceFeed, err := svc.ListForRecipient(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFeed, 1)
	assert.Contains(t, aliceFeed[0].Message, "Tomatoes")
	assert.False(t, aliceFeed[0].Read)

	bobFeed, err := svc.ListForRecipient(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFeed)

	// Re-approval replays the fan-out without duplicating notifications.
	_, err = svc.FanOutApproval(context.Background(), product)
	require.NoError(t, err)
	aliceFeed, err = svc.ListForRecipient(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceFeed, 1)

	// One approval event per fan-out.
	assert.Len(t, publisher.Events(), 2)
}

func TestFanOutRejectsUnapprovedProduct(t *testing.T) {
	svc := NewNotificationService(newMockNotificationStore(), &mockDirectory{}, events.NewMockPublisher(), testLogger())

	_, err := svc.FanOutApproval(context.Background(), &domain.Product{
		ID: uuid.New(), Name: "Tomatoes", Grade: "A", Status: domain.ProductPending,
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestMarkRead(t *testing.T) {
	recipient := domain.Recipient{ID: uuid.New(), Name: "Alice", Email: "alice@shop.lk", GradePrefs: map[string]bool{"A": true}}
	store := newMockNotificationStore()
	svc := NewNotificationService(store, &mockDirectory{recipients: []domain.Recipient{recipient}}, events.NewMockPublisher(), testLogger())

	product := &domain.Product{ID: uuid.New(), Name: "Tomatoes", Grade: "A", Status: domain.ProductApproved}
	_, err := svc.FanOutApproval(context.Background(), product)
	require.NoError(t, err)

	feed, err := svc.ListForRecipient(context.Background(), recipient.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	updated, err := svc.MarkRead(context.Background(), feed[0].ID)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	_, err = svc.MarkRead(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestAddReviewDeduplication(t *testing.T) {
	store := newMockOrderStore()
	checkout := NewCheckoutService(nil)
	reviews := NewReviewService(store)

	order, err := checkout.Aggregate(domain.Cart{Lines: []domain.CartLine{
		cartLine(nimal, "Tomatoes", 500, 10),
	}}, buyer, domain.TransportPickup, 0)
	require.NoError(t, err)
	order.Payment = domain.Payment{ExternalID: "PAY-R", Status: domain.PaymentCompleted}
	order.SellerGroups[0].Lines[0].ID = uuid.New()
	require.NoError(t, store.CreateOrder(context.Background(), order))
	lineID := order.SellerGroups[0].Lines[0].ID

	review := domain.Review{Rating: 5, Comment: "Very fresh", ReviewerName: "Colombo Fresh Mart"}
	require.NoError(t, reviews.AddReview(context.Background(), order.ID, lineID, review))

	// Same reviewer, same line: rejected.
	err = reviews.AddReview(context.Background(), order.ID, lineID, review)
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)

	// Different reviewer is fine.
	other := domain.Review{Rating: 3, ReviewerName: "Galle Grocers"}
	require.NoError(t, reviews.AddReview(context.Background(), order.ID, lineID, other))

	t.Run("invalid rating rejected", func(t *testing.T) {
		err := reviews.AddReview(context.Background(), order.ID, lineID, domain.Review{Rating: 6, ReviewerName: "X"})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("unknown line rejected", func(t *testing.T) {
		err := reviews.AddReview(context.Background(), order.ID, uuid.New(), review)
		assert.ErrorIs(t, err, domain.ErrProductLineNotFound)
	})

	t.Run("unknown order rejected", func(t *testing.T) {
		err := reviews.AddReview(context.Background(), uuid.New(), lineID, review)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	listed, err := reviews.ListReviews(context.Background(), domain.ReviewFilter{ProductRef: "Tomatoes"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Reviews, 2)
}
