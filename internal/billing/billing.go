package billing

import (
	"context"
	"time"

	"github.com/sahanr/harvestlink/internal/domain"
)

// Provider verifies payment captures against the external payment processor.
// Implementations can use PayPal, Stripe, etc. The persistence gate trusts a
// capture only when the provider reports it COMPLETED.
type Provider interface {
	// GetCapture retrieves the capture identified by the external payment
	// ID. Returns ErrCaptureNotFound when the processor has no record.
	GetCapture(ctx context.Context, externalPaymentID string) (*Capture, error)
}

// Capture is the normalized view of one external payment capture.
type Capture struct {
	// ID is the processor's payment identifier.
	ID string

	// Status is the normalized capture status.
	Status domain.PaymentStatus

	// AmountCents is the captured amount in minor units.
	AmountCents int64

	// Currency is the ISO 4217 currency code.
	Currency string

	// Method names the processor ("paypal", "stripe").
	Method string

	// CapturedAt is when the processor completed the capture.
	CapturedAt time.Time
}
