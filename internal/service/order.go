package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/billing"
	"github.com/sahanr/harvestlink/internal/carrier"
	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/events"
)

// SubmitOrderInput is everything the gate needs to turn a paid cart into a
// persisted order.
type SubmitOrderInput struct {
	Cart               domain.Cart
	Buyer              domain.Buyer
	TransportMode      domain.TransportMode
	TransportCostCents int64
	PaymentID          string
}

// OrderService is the payment and persistence gate. Orders exist only after
// their external payment is verified COMPLETED, and each payment identifier
// creates at most one order.
type OrderService interface {
	// SubmitPaidOrder verifies the payment capture, aggregates the cart and
	// persists the order. Shipment registration and event publication are
	// best effort and never fail the submission.
	SubmitPaidOrder(ctx context.Context, input SubmitOrderInput) (*domain.Order, error)

	// GetOrder loads one order.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// ListOrders returns the orders visible to the capability-scoped filter.
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type orderService struct {
	store     domain.OrderStore
	checkout  CheckoutService
	billing   billing.Provider
	carrier   carrier.Provider
	publisher events.Publisher
	logger    *slog.Logger
}

// NewOrderService creates the payment and persistence gate.
func NewOrderService(store domain.OrderStore, checkout CheckoutService, billingProvider billing.Provider, carrierProvider carrier.Provider, publisher events.Publisher, logger *slog.Logger) OrderService {
	return &orderService{
		store:     store,
		checkout:  checkout,
		billing:   billingProvider,
		carrier:   carrierProvider,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitPaidOrder runs the gate: verify capture, aggregate, validate,
// persist, then best-effort shipment and event fan-out.
func (s *orderService) SubmitPaidOrder(ctx context.Context, input SubmitOrderInput) (*domain.Order, error) {
	const op = "order.submit"

	paymentID := strings.TrimSpace(input.PaymentID)
	if paymentID == "" {
		return nil, domain.ErrMissingPaymentID
	}

	capture, err := s.billing.GetCapture(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if capture.Status != domain.PaymentCompleted {
		return nil, domain.ErrPaymentNotCompleted
	}

	order, err := s.checkout.Aggregate(input.Cart, input.Buyer, input.TransportMode, input.TransportCostCents)
	if err != nil {
		return nil, err
	}

	order.Payment = domain.Payment{
		ExternalID:  paymentID,
		Method:      capture.Method,
		AmountCents: capture.AmountCents,
		Status:      capture.Status,
		CapturedAt:  capture.CapturedAt,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order persisted",
		slog.String("order_id", order.ID.String()),
		slog.String("payment_id", paymentID),
		slog.Int64("total_cents", order.TotalPriceCents))

	// Carrier registration is informational. A carrier outage must never
	// lose a paid order.
	if order.TransportMode == domain.TransportDelivery {
		s.registerShipment(ctx, order)
	}

	if err := s.publisher.Publish(ctx, events.SubjectOrderCreated, events.OrderCreated{
		OrderID:     order.ID.String(),
		BuyerName:   order.Buyer.Name,
		BuyerEmail:  order.Buyer.Email,
		TotalCents:  order.TotalPriceCents,
		PaymentID:   paymentID,
		SellerCount: len(order.SellerGroups),
		CreatedAt:   order.CreatedAt,
	}); err != nil {
		s.logger.Warn("failed to publish order event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}

	return order, nil
}

func (s *orderService) registerShipment(ctx context.Context, order *domain.Order) {
	shipment, err := s.carrier.CreateShipment(ctx, order)
	if err != nil {
		s.logger.Warn("carrier shipment failed",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := s.store.SetShipmentRef(ctx, order.ID, shipment.Ref); err != nil {
		s.logger.Warn("failed to record shipment reference",
			slog.String("order_id", order.ID.String()),
			slog.String("shipment_ref", shipment.Ref),
			slog.String("error", err.Error()))
		return
	}
	order.ShipmentRef = shipment.Ref
}

// GetOrder loads one order.
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListOrders returns the orders visible to the filter.
func (s *orderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if !filter.Role.Valid() {
		return nil, domain.Invalid("order.list", "unknown role")
	}
	if filter.Role != domain.RoleAdmin && strings.TrimSpace(filter.Identifier) == "" {
		return nil, domain.Invalid("order.list", "identifier is required for this role")
	}
	return s.store.ListOrders(ctx, filter)
}
