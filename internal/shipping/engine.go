package shipping

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/geo"
)

// Engine computes one consolidated shipping cost from independently priced
// per-origin-city legs. All legs are quoted concurrently; any failure aborts
// the whole computation (no partial totals) and cancels outstanding lookups.
type Engine struct {
	geo   geo.Client
	tiers Tiers
}

// NewEngine creates a shipping rate engine.
func NewEngine(geoClient geo.Client, tiers Tiers) *Engine {
	return &Engine{geo: geoClient, tiers: tiers}
}

// Quote prices delivery for the cart to the destination city.
// Lines are grouped by distinct origin city (case-insensitive); lines from
// the same city share one leg. Input problems fail before any network call.
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if strings.TrimSpace(req.DestinationCity) == "" {
		return nil, domain.NewValidationError("shipping.quote", "destination_city", "destination city is required")
	}
	if err := (domain.Cart{Lines: req.Lines}).Validate(); err != nil {
		return nil, err
	}

	origins := distinctOriginCities(req.Lines)

	g, ctx := errgroup.WithContext(ctx)
	quotes := make([]OriginQuote, len(origins))

	for i, originCity := range origins {
		g.Go(func() error {
			q, err := e.quoteOrigin(ctx, originCity, req.DestinationCity)
			if err != nil {
				return err
			}
			quotes[i] = *q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, "shipping.quote", "failed to compute shipping rate")
	}

	quote := &Quote{Origins: quotes}
	for _, q := range quotes {
		quote.TotalCents += q.PriceCents
	}
	return quote, nil
}

// quoteOrigin prices one origin-destination leg. Same-city legs (compared
// case-insensitively) get the flat rate without a routing call; everything
// else is priced by road distance.
func (e *Engine) quoteOrigin(ctx context.Context, originCity, destinationCity string) (*OriginQuote, error) {
	if strings.EqualFold(originCity, destinationCity) {
		return &OriginQuote{
			OriginCity: originCity,
			PriceCents: e.tiers.SameCityCents,
			SameCity:   true,
		}, nil
	}

	originCoords, err := e.geo.Geocode(ctx, originCity)
	if err != nil {
		return nil, err
	}

	destCoords, err := e.geo.Geocode(ctx, destinationCity)
	if err != nil {
		return nil, err
	}

	km, err := e.geo.Distance(ctx, originCoords, destCoords)
	if err != nil {
		return nil, err
	}

	return &OriginQuote{
		OriginCity: originCity,
		DistanceKm: km,
		PriceCents: e.tiers.PriceForDistance(km),
	}, nil
}

// distinctOriginCities returns the unique origin cities in first-seen order,
// comparing case-insensitively.
func distinctOriginCities(lines []domain.CartLine) []string {
	seen := make(map[string]bool, len(lines))
	var cities []string
	for _, l := range lines {
		key := strings.ToLower(strings.TrimSpace(l.Seller.City))
		if !seen[key] {
			seen[key] = true
			cities = append(cities, strings.TrimSpace(l.Seller.City))
		}
	}
	return cities
}
