package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

// ReviewService attaches post-delivery reviews to purchased product lines and
// aggregates them for display.
type ReviewService interface {
	// AddReview appends one review to a product line of an order. Each
	// reviewer gets at most one review per line.
	AddReview(ctx context.Context, orderID, lineID uuid.UUID, review domain.Review) error

	// ListReviews collects reviews across all orders, grouped by product
	// reference.
	ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.ProductReviews, error)
}

type reviewService struct {
	store domain.OrderStore
}

// NewReviewService creates a review service.
func NewReviewService(store domain.OrderStore) ReviewService {
	return &reviewService{store: store}
}

// AddReview validates and appends the review.
func (s *reviewService) AddReview(ctx context.Context, orderID, lineID uuid.UUID, review domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	if review.SubmittedAt.IsZero() {
		review.SubmittedAt = time.Now().UTC()
	}
	return s.store.AppendReview(ctx, orderID, lineID, review)
}

// ListReviews collects reviews grouped by product reference.
func (s *reviewService) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.ProductReviews, error) {
	return s.store.ListReviews(ctx, filter)
}
