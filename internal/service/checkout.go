package service

import (
	"context"
	"strings"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/shipping"
)

// CheckoutService turns a flat cart into a priced, seller-grouped order
// skeleton ready for payment.
type CheckoutService interface {
	// QuoteShipping prices delivery for the cart.
	QuoteShipping(ctx context.Context, req shipping.QuoteRequest) (*shipping.Quote, error)

	// Aggregate groups cart lines by seller and assembles the order
	// aggregate with its computed total.
	Aggregate(cart domain.Cart, buyer domain.Buyer, mode domain.TransportMode, transportCostCents int64) (*domain.Order, error)
}

type checkoutService struct {
	engine *shipping.Engine
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(engine *shipping.Engine) CheckoutService {
	return &checkoutService{engine: engine}
}

// QuoteShipping prices delivery for the cart.
func (s *checkoutService) QuoteShipping(ctx context.Context, req shipping.QuoteRequest) (*shipping.Quote, error) {
	return s.engine.Quote(ctx, req)
}

// Aggregate groups cart lines by seller email (case-insensitive, first-seen
// order) into seller groups. Lines claiming the same seller email but
// disagreeing on name, address or city are rejected rather than silently
// merged. Pickup orders must carry zero transport cost.
func (s *checkoutService) Aggregate(cart domain.Cart, buyer domain.Buyer, mode domain.TransportMode, transportCostCents int64) (*domain.Order, error) {
	const op = "checkout.aggregate"

	if err := cart.Validate(); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, domain.Invalid(op, "transport mode must be PICKUP or DELIVERY")
	}
	if mode == domain.TransportPickup && transportCostCents != 0 {
		return nil, domain.Invalid(op, "transport cost must be zero for pickup orders")
	}
	if transportCostCents < 0 {
		return nil, domain.Invalid(op, "transport cost must not be negative")
	}

	order := &domain.Order{
		Buyer:              buyer,
		TransportMode:      mode,
		TransportCostCents: transportCostCents,
	}

	index := make(map[string]int)
	for _, line := range cart.Lines {
		key := strings.ToLower(strings.TrimSpace(line.Seller.Email))

		gi, ok := index[key]
		if !ok {
			gi = len(order.SellerGroups)
			index[key] = gi
			order.SellerGroups = append(order.SellerGroups, domain.SellerGroup{
				Seller:       line.Seller,
				PayoutStatus: domain.PayoutPending,
			})
		} else if !sameSeller(order.SellerGroups[gi].Seller, line.Seller) {
			return nil, domain.ErrSellerIdentityMismatch
		}

		g := &order.SellerGroups[gi]
		g.Lines = append(g.Lines, domain.ProductLine{
			ProductRef:     line.ProductRef,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			Grade:          line.Grade,
			ImageURL:       line.ImageURL,
		})
	}

	order.TotalPriceCents = order.ComputeTotalCents()
	return order, nil
}

// sameSeller compares seller identities with a case-insensitive email.
func sameSeller(a, b domain.SellerIdentity) bool {
	return strings.EqualFold(a.Email, b.Email) &&
		a.Name == b.Name &&
		a.Address == b.Address &&
		a.City == b.City
}
