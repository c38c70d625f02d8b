package shipping

import (
	"github.com/sahanr/harvestlink/internal/domain"
)

// Tiers is the distance-banded pricing table, amounts in cents.
// Same-city shipments get a flat rate regardless of road distance.
type Tiers struct {
	SameCityCents int64
	NearCents     int64
	MidCents      int64
	FarCents      int64
	NearLimitKm   float64
	MidLimitKm    float64
}

// PriceForDistance applies the distance bands to a cross-city shipment.
func (t Tiers) PriceForDistance(km float64) int64 {
	switch {
	case km <= t.NearLimitKm:
		return t.NearCents
	case km <= t.MidLimitKm:
		return t.MidCents
	default:
		return t.FarCents
	}
}

// QuoteRequest asks for one consolidated delivery price for a cart.
type QuoteRequest struct {
	DestinationCity string
	Lines           []domain.CartLine
}

// OriginQuote is the priced leg for one distinct origin city.
type OriginQuote struct {
	OriginCity string  `json:"origin_city"`
	DistanceKm float64 `json:"distance_km"`
	PriceCents int64   `json:"price_cents"`
	SameCity   bool    `json:"same_city"`
}

// Quote is the consolidated shipping cost for the whole cart: one priced leg
// per distinct origin city, summed into a single total.
type Quote struct {
	TotalCents int64         `json:"total_cents"`
	Origins    []OriginQuote `json:"origins"`
}
