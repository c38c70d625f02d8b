package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/events"
)

// NotificationService fans approved listings out to interested businesses and
// serves each recipient's notification feed.
type NotificationService interface {
	// FanOutApproval creates one notification per recipient whose grade
	// preferences match the approved product. Replays are no-ops.
	FanOutApproval(ctx context.Context, product *domain.Product) (int, error)

	// ListForRecipient returns a recipient's notifications, newest first.
	ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error)

	// MarkRead flips one notification to read.
	MarkRead(ctx context.Context, notificationID uuid.UUID) (*domain.Notification, error)
}

type notificationService struct {
	store     domain.NotificationStore
	directory domain.RecipientDirectory
	publisher events.Publisher
	logger    *slog.Logger
}

// NewNotificationService creates a notification fan-out service.
func NewNotificationService(store domain.NotificationStore, directory domain.RecipientDirectory, publisher events.Publisher, logger *slog.Logger) NotificationService {
	return &notificationService{
		store:     store,
		directory: directory,
		publisher: publisher,
		logger:    logger,
	}
}

// FanOutApproval notifies every business that opted into the product's grade.
// The (recipient, product) upsert makes re-approval idempotent. Returns the
// number of recipients processed.
func (s *notificationService) FanOutApproval(ctx context.Context, product *domain.Product) (int, error) {
	const op = "notification.fanout"

	if product.Status != domain.ProductApproved {
		return 0, domain.Invalid(op, "product is not approved")
	}

	recipients, err := s.directory.ListByGradePreference(ctx, product.Grade)
	if err != nil {
		return 0, err
	}

	message := fmt.Sprintf("New %s grade produce available: %s by %s",
		product.Grade, product.Name, product.FarmerName)

	for _, r := range recipients {
		n := &domain.Notification{
			RecipientID: r.ID,
			ProductID:   product.ID,
			Message:     message,
		}
		if err := s.store.Upsert(ctx, n); err != nil {
			return 0, err
		}
	}

	s.logger.Info("approval fan-out complete",
		slog.String("product_id", product.ID.String()),
		slog.String("grade", product.Grade),
		slog.Int("recipients", len(recipients)))

	if err := s.publisher.Publish(ctx, events.SubjectProductApproved, events.ProductApproved{
		ProductID:   product.ID.String(),
		ProductName: product.Name,
		Grade:       product.Grade,
		FarmerName:  product.FarmerName,
	}); err != nil {
		s.logger.Warn("failed to publish approval event",
			slog.String("product_id", product.ID.String()),
			slog.String("error", err.Error()))
	}

	return len(recipients), nil
}

// ListForRecipient returns a recipient's notifications.
func (s *notificationService) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error) {
	return s.store.ListForRecipient(ctx, recipientID)
}

// MarkRead flips one notification to read.
func (s *notificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) (*domain.Notification, error) {
	return s.store.MarkRead(ctx, notificationID)
}
