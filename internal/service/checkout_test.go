package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahanr/harvestlink/internal/domain"
)

func cartLine(seller domain.SellerIdentity, name string, priceCents int64, qty int32) domain.CartLine {
	return domain.CartLine{
		ProductRef:     name,
		Name:           name,
		UnitPriceCents: priceCents,
		Quantity:       qty,
		Seller:         seller,
	}
}

var (
	nimal  = domain.SellerIdentity{Name: "Nimal Perera", Email: "nimal@farm.lk", City: "Kandy"}
	kamala = domain.SellerIdentity{Name: "Kamala Silva", Email: "kamala@farm.lk", City: "Galle"}
	buyer  = domain.Buyer{Name: "Colombo Fresh Mart", Email: "orders@colombofresh.lk", City: "Colombo"}
)

func TestAggregateGroupsBySeller(t *testing.T) {
	svc := NewCheckoutService(nil)

	cart := domain.Cart{Lines: []domain.CartLine{
		cartLine(nimal, "Tomatoes", 500, 10),
		cartLine(kamala, "Carrots", 400, 8),
		cartLine(nimal, "Beans", 300, 5),
	}}

	order, err := svc.Aggregate(cart, buyer, domain.TransportDelivery, 1200)
	require.NoError(t, err)

	// Groups keep first-seen order; interleaved lines collapse per seller.
	require.Len(t, order.SellerGroups, 2)
	assert.Equal(t, "nimal@farm.lk", order.SellerGroups[0].Seller.Email)
	assert.Len(t, order.SellerGroups[0].Lines, 2)
	assert.Equal(t, "kamala@farm.lk", order.SellerGroups[1].Seller.Email)
	assert.Len(t, order.SellerGroups[1].Lines, 1)

	// Every group starts in PENDING.
	for _, g := range order.SellerGroups {
		assert.Equal(t, domain.PayoutPending, g.PayoutStatus)
	}

	// Total = 6500 + 3200 + 1200 transport.
	assert.Equal(t, int64(10900), order.TotalPriceCents)
	assert.NoError(t, order.Validate())
}

func TestAggregateSellerEmailCaseInsensitive(t *testing.T) {
	svc := NewCheckoutService(nil)

	upper := nimal
	upper.Email = "NIMAL@FARM.LK"
	cart := domain.Cart{Lines: []domain.CartLine{
		cartLine(nimal, "Tomatoes", 500, 10),
		cartLine(upper, "Beans", 300, 5),
	}}

	order, err := svc.Aggregate(cart, buyer, domain.TransportDelivery, 1200)
	require.NoError(t, err)
	assert.Len(t, order.SellerGroups, 1)
}

func TestAggregateRejectsConflictingIdentity(t *testing.T) {
	svc := NewCheckoutService(nil)

	imposter := nimal
	imposter.City = "Matara"
	cart := domain.Cart{Lines: []domain.CartLine{
		cartLine(nimal, "Tomatoes", 500, 10),
		cartLine(imposter, "Beans", 300, 5),
	}}

	_, err := svc.Aggregate(cart, buyer, domain.TransportDelivery, 1200)
	assert.ErrorIs(t, err, domain.ErrSellerIdentityMismatch)
}

func TestAggregatePickupRequiresZeroTransport(t *testing.T) {
	svc := NewCheckoutService(nil)
	cart := domain.Cart{Lines: []domain.CartLine{cartLine(nimal, "Tomatoes", 500, 10)}}

	_, err := svc.Aggregate(cart, buyer, domain.TransportPickup, 1200)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	order, err := svc.Aggregate(cart, buyer, domain.TransportPickup, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.TotalPriceCents)
}

func TestAggregateEmptyCart(t *testing.T) {
	svc := NewCheckoutService(nil)
	_, err := svc.Aggregate(domain.Cart{}, buyer, domain.TransportDelivery, 0)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}
