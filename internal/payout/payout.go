package payout

import (
	"context"
	"fmt"
	"time"
)

// Provider issues settlement collection links for seller shares. The link is
// an externally hosted page where the seller's share is collected; clicking
// through and completing it settles the share out-of-band.
type Provider interface {
	// CreateCollectLink creates a hosted settlement link for the given
	// amount. The amount is expressed in the settlement currency.
	CreateCollectLink(ctx context.Context, params LinkParams) (*Link, error)
}

// LinkParams describes one settlement link request.
type LinkParams struct {
	// OrderID ties the link back to the marketplace order.
	OrderID string

	// SellerEmail identifies which seller group is being settled.
	SellerEmail string

	// Amount is the settlement amount as a decimal string ("12.34").
	Amount string

	// Currency is the ISO 4217 settlement currency code.
	Currency string

	// Description appears on the hosted settlement page.
	Description string
}

// Link is one issued settlement link.
type Link struct {
	// ID is the provider's reference for the link.
	ID string

	// ApprovalURL is the hosted page the seller visits to settle.
	ApprovalURL string

	// ExpiresAt is when the link stops working, zero when the provider
	// does not report one.
	ExpiresAt time.Time
}

// FormatAmount converts marketplace minor units into a settlement-currency
// decimal string using the configured conversion rate (marketplace units per
// settlement unit).
func FormatAmount(marketplaceCents int64, conversionRate float64) string {
	settlement := float64(marketplaceCents) / 100 / conversionRate
	return fmt.Sprintf("%.2f", settlement)
}
