package billing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/sahanr/harvestlink/internal/domain"
)

// StripeProvider verifies captures by looking up Stripe PaymentIntents.
type StripeProvider struct{}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe capture verifier. The secret key is
// installed process-wide, matching how the Stripe SDK expects to be used.
func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

// GetCapture retrieves the PaymentIntent and normalizes its status.
func (s *StripeProvider) GetCapture(ctx context.Context, externalPaymentID string) (*Capture, error) {
	const op = "billing.stripe.GetCapture"

	pi, err := paymentintent.Get(externalPaymentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			switch stripeErr.HTTPStatusCode {
			case 404:
				return nil, domain.WrapError(ErrCaptureNotFound, domain.ENOTFOUND, op, "payment not found")
			case 401:
				return nil, domain.WrapError(ErrInvalidCredentials, domain.EPAYMENT, op, "payment provider rejected credentials")
			}
		}
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, "payment provider unreachable")
	}

	capture := &Capture{
		ID:          pi.ID,
		Status:      normalizeStripeStatus(pi.Status),
		AmountCents: pi.AmountReceived,
		Currency:    string(pi.Currency),
		Method:      "stripe",
	}
	if pi.Created > 0 {
		capture.CapturedAt = time.Unix(pi.Created, 0).UTC()
	}
	return capture, nil
}

func normalizeStripeStatus(status stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentCompleted
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentFailed
	default:
		return domain.PaymentPending
	}
}
