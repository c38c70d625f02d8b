package carrier

import (
	"context"

	"github.com/sahanr/harvestlink/internal/domain"
)

// Provider registers shipments with an external carrier API. Registration is
// best effort; orders persist whether or not the carrier accepts the
// shipment.
type Provider interface {
	// CreateShipment registers a shipment for the order and returns the
	// carrier's reference.
	CreateShipment(ctx context.Context, order *domain.Order) (*Shipment, error)
}

// Shipment is the carrier's record of a registered shipment.
type Shipment struct {
	// Ref is the carrier's shipment identifier.
	Ref string

	// Carrier names the carrier account the shipment was booked on.
	Carrier string

	// ServiceCode is the carrier service level.
	ServiceCode string
}
