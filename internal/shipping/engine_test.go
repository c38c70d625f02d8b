package shipping

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/geo"
)

// testTiers uses the production pricing table in whole currency units so the
// band boundaries are easy to read.
var testTiers = Tiers{
	SameCityCents: 250,
	NearCents:     350,
	MidCents:      700,
	FarCents:      1200,
	NearLimitKm:   50,
	MidLimitKm:    100,
}

func line(city string) domain.CartLine {
	return domain.CartLine{
		Name:           "Tomatoes",
		UnitPriceCents: 500,
		Quantity:       2,
		Seller:         domain.SellerIdentity{Name: "Farmer", Email: city + "@farm.lk", City: city},
	}
}

func TestPriceForDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want int64
	}{
		{0, 350},
		{49.99, 350},
		{50.00, 350}, // boundary stays in the lower band
		{50.01, 700},
		{99.99, 700},
		{100.00, 700},
		{100.01, 1200},
		{500, 1200},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2fkm", tt.km), func(t *testing.T) {
			assert.Equal(t, tt.want, testTiers.PriceForDistance(tt.km))
		})
	}
}

func TestQuoteSameCity(t *testing.T) {
	mock := geo.NewMockClient()
	engine := NewEngine(mock, testTiers)

	quote, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "Colombo",
		Lines:           []domain.CartLine{line("Colombo")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(250), quote.TotalCents)
	require.Len(t, quote.Origins, 1)
	assert.True(t, quote.Origins[0].SameCity)
	// Same-city legs must not hit the geo provider at all.
	assert.Empty(t, mock.Calls())
}

func TestQuoteSameCityCaseInsensitive(t *testing.T) {
	mock := geo.NewMockClient()
	engine := NewEngine(mock, testTiers)

	quote, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "colombo",
		Lines:           []domain.CartLine{line("COLOMBO")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), quote.TotalCents)
}

func TestQuoteZeroDistanceDifferentCity(t *testing.T) {
	// Two distinct city names resolving to identical coordinates price as
	// distance 0, which lands in the near band, not the same-city rate.
	mock := geo.NewMockClient()
	mock.Cities["moratuwa"] = geo.Coordinates{Lat: 6.77, Lng: 79.88}
	mock.Cities["colombo"] = geo.Coordinates{Lat: 6.77, Lng: 79.88}
	engine := NewEngine(mock, testTiers)

	quote, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "Colombo",
		Lines:           []domain.CartLine{line("Moratuwa")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(350), quote.TotalCents)
	assert.False(t, quote.Origins[0].SameCity)
}

func TestQuoteMultiOrigin(t *testing.T) {
	// Kandy is within the near band, Jaffna beyond the mid band. Two lines
	// from Kandy share one leg.
	mock := geo.NewMockClient()
	mock.Cities["kandy"] = geo.Coordinates{Lat: 7.29, Lng: 80.63}
	mock.Cities["jaffna"] = geo.Coordinates{Lat: 9.66, Lng: 80.02}
	mock.Cities["colombo"] = geo.Coordinates{Lat: 6.93, Lng: 79.84}
	mock.DistanceFunc = func(ctx context.Context, origin, destination geo.Coordinates) (float64, error) {
		if origin.Lat > 9 {
			return 398.5, nil
		}
		return 42.0, nil
	}
	engine := NewEngine(mock, testTiers)

	quote, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "Colombo",
		Lines: []domain.CartLine{
			line("Kandy"),
			line("Jaffna"),
			line("Kandy"),
		},
	})
	require.NoError(t, err)

	// 350 (Kandy, 42km) + 1200 (Jaffna, 398.5km)
	assert.Equal(t, int64(1550), quote.TotalCents)
	require.Len(t, quote.Origins, 2)
	assert.Equal(t, "Kandy", quote.Origins[0].OriginCity)
	assert.Equal(t, "Jaffna", quote.Origins[1].OriginCity)
}

func TestQuoteUnresolvableCityFailsWhole(t *testing.T) {
	mock := geo.NewMockClient()
	mock.Cities["kandy"] = geo.Coordinates{Lat: 7.29, Lng: 80.63}
	mock.Cities["colombo"] = geo.Coordinates{Lat: 6.93, Lng: 79.84}
	// "Atlantis" is not in the map, so its leg fails.
	engine := NewEngine(mock, testTiers)

	_, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "Colombo",
		Lines:           []domain.CartLine{line("Kandy"), line("Atlantis")},
	})
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.ErrorIs(t, err, geo.ErrCityNotFound)
}

func TestQuoteFailureCancelsOutstandingLegs(t *testing.T) {
	var canceled atomic.Bool
	mock := geo.NewMockClient()
	boom := errors.New("routing engine down")
	mock.GeocodeFunc = func(ctx context.Context, city string) (geo.Coordinates, error) {
		if city == "Kandy" {
			return geo.Coordinates{}, boom
		}
		// The sibling leg should observe cancellation.
		<-ctx.Done()
		canceled.Store(true)
		return geo.Coordinates{}, ctx.Err()
	}
	engine := NewEngine(mock, testTiers)

	_, err := engine.Quote(context.Background(), QuoteRequest{
		DestinationCity: "Colombo",
		Lines:           []domain.CartLine{line("Kandy"), line("Galle")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, canceled.Load())
}

func TestQuoteValidatesBeforeNetwork(t *testing.T) {
	mock := geo.NewMockClient()
	engine := NewEngine(mock, testTiers)

	t.Run("missing destination", func(t *testing.T) {
		_, err := engine.Quote(context.Background(), QuoteRequest{
			Lines: []domain.CartLine{line("Kandy")},
		})
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := engine.Quote(context.Background(), QuoteRequest{DestinationCity: "Colombo"})
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("line without origin city", func(t *testing.T) {
		bad := line("Kandy")
		bad.Seller.City = ""
		_, err := engine.Quote(context.Background(), QuoteRequest{
			DestinationCity: "Colombo",
			Lines:           []domain.CartLine{bad},
		})
		assert.True(t, domain.IsValidationError(err))
	})

	assert.Empty(t, mock.Calls())
}
