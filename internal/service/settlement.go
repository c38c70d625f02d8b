package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/events"
	"github.com/sahanr/harvestlink/internal/payout"
)

// PayoutIssue is the result of issuing one settlement link.
type PayoutIssue struct {
	OrderID     uuid.UUID `json:"order_id"`
	SellerEmail string    `json:"seller_email"`
	ShareCents  int64     `json:"share_cents"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	ApprovalURL string    `json:"approval_url"`
}

// SettlementService drives each seller group's payout lifecycle:
// PENDING -> LINK_SENT -> PAID, strictly forward, one group at a time.
type SettlementService interface {
	// IssuePayout converts the group's share into the settlement currency,
	// creates a collection link and advances the group to LINK_SENT. A link
	// failure leaves the group in PENDING.
	IssuePayout(ctx context.Context, orderID uuid.UUID, sellerEmail string) (*PayoutIssue, error)

	// ConfirmPayout marks the group PAID after the link was collected.
	ConfirmPayout(ctx context.Context, orderID uuid.UUID, sellerEmail string) error
}

type settlementService struct {
	store          domain.OrderStore
	provider       payout.Provider
	publisher      events.Publisher
	conversionRate float64
	currency       string
	logger         *slog.Logger
}

// NewSettlementService creates a settlement tracker. conversionRate is
// marketplace currency units per settlement currency unit.
func NewSettlementService(store domain.OrderStore, provider payout.Provider, publisher events.Publisher, conversionRate float64, currency string, logger *slog.Logger) SettlementService {
	return &settlementService{
		store:          store,
		provider:       provider,
		publisher:      publisher,
		conversionRate: conversionRate,
		currency:       currency,
		logger:         logger,
	}
}

// IssuePayout issues a settlement link for one seller group's share.
func (s *settlementService) IssuePayout(ctx context.Context, orderID uuid.UUID, sellerEmail string) (*PayoutIssue, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	group, err := order.FindSellerGroup(sellerEmail)
	if err != nil {
		return nil, err
	}
	if group.PayoutStatus != domain.PayoutPending {
		return nil, domain.ErrPayoutTransition
	}

	share := group.ShareCents()
	amount := payout.FormatAmount(share, s.conversionRate)

	link, err := s.provider.CreateCollectLink(ctx, payout.LinkParams{
		OrderID:     orderID.String(),
		SellerEmail: group.Seller.Email,
		Amount:      amount,
		Currency:    s.currency,
		Description: fmt.Sprintf("Seller share for order %s", orderID),
	})
	if err != nil {
		// Group stays PENDING so the payout can be retried.
		return nil, err
	}

	if err := s.store.AdvancePayoutStatus(ctx, orderID, group.Seller.Email, domain.PayoutPending, domain.PayoutLinkSent); err != nil {
		return nil, err
	}

	s.logger.Info("payout link issued",
		slog.String("order_id", orderID.String()),
		slog.String("seller_email", group.Seller.Email),
		slog.String("amount", amount),
		slog.String("currency", s.currency))

	if err := s.publisher.Publish(ctx, events.SubjectPayoutLinkSent, events.PayoutLinkSent{
		OrderID:     orderID.String(),
		SellerName:  group.Seller.Name,
		SellerEmail: group.Seller.Email,
		Amount:      amount,
		Currency:    s.currency,
		ApprovalURL: link.ApprovalURL,
	}); err != nil {
		s.logger.Warn("failed to publish payout event",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()))
	}

	return &PayoutIssue{
		OrderID:     orderID,
		SellerEmail: group.Seller.Email,
		ShareCents:  share,
		Amount:      amount,
		Currency:    s.currency,
		ApprovalURL: link.ApprovalURL,
	}, nil
}

// ConfirmPayout marks the group PAID. The guarded transition makes replays
// and out-of-order confirmations fail with ErrPayoutTransition.
func (s *settlementService) ConfirmPayout(ctx context.Context, orderID uuid.UUID, sellerEmail string) error {
	if err := s.store.AdvancePayoutStatus(ctx, orderID, sellerEmail, domain.PayoutLinkSent, domain.PayoutPaid); err != nil {
		return err
	}

	s.logger.Info("payout confirmed",
		slog.String("order_id", orderID.String()),
		slog.String("seller_email", sellerEmail))
	return nil
}
