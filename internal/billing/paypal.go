package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sahanr/harvestlink/internal/domain"
)

// PayPalProvider verifies captures against the PayPal Orders API using
// client-credentials OAuth. Access tokens are cached until shortly before
// expiry.
type PayPalProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

var _ Provider = (*PayPalProvider)(nil)

// NewPayPalProvider creates a PayPal capture verifier.
func NewPayPalProvider(baseURL, clientID, clientSecret string, timeout time.Duration) *PayPalProvider {
	return &PayPalProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

// GetCapture looks up a PayPal order by its ID and normalizes the capture
// embedded in its first purchase unit.
func (p *PayPalProvider) GetCapture(ctx context.Context, externalPaymentID string) (*Capture, error) {
	const op = "billing.paypal.GetCapture"

	token, err := p.token(ctx)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "payment provider authentication failed")
	}

	endpoint := fmt.Sprintf("%s/v2/checkout/orders/%s", p.baseURL, url.PathEscape(externalPaymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, "payment provider unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.WrapError(ErrCaptureNotFound, domain.ENOTFOUND, op, "payment not found")
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.WrapError(ErrInvalidCredentials, domain.EPAYMENT, op, "payment provider rejected credentials")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.Errorf(domain.EPAYMENT, op, "payment provider returned status %d: %s", resp.StatusCode, body)
	}

	var order paypalOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to decode payment provider response")
	}

	return order.toCapture(externalPaymentID)
}

// token returns a cached access token, fetching a new one when the cache is
// empty or within a minute of expiry.
func (p *PayPalProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Until(p.tokenExpiry) > time.Minute {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}

	p.accessToken = tr.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return p.accessToken, nil
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
				CreateTime time.Time `json:"create_time"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (o paypalOrder) toCapture(paymentID string) (*Capture, error) {
	const op = "billing.paypal.GetCapture"

	capture := &Capture{
		ID:     paymentID,
		Status: normalizePayPalStatus(o.Status),
		Method: "paypal",
	}

	if len(o.PurchaseUnits) == 0 || len(o.PurchaseUnits[0].Payments.Captures) == 0 {
		return capture, nil
	}

	c := o.PurchaseUnits[0].Payments.Captures[0]
	capture.Currency = c.Amount.CurrencyCode
	capture.CapturedAt = c.CreateTime

	cents, err := amountToCents(c.Amount.Value)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to parse capture amount")
	}
	capture.AmountCents = cents
	return capture, nil
}

func normalizePayPalStatus(status string) domain.PaymentStatus {
	switch strings.ToUpper(status) {
	case "COMPLETED":
		return domain.PaymentCompleted
	case "VOIDED", "DECLINED":
		return domain.PaymentFailed
	default:
		return domain.PaymentPending
	}
}

// amountToCents parses a decimal money string ("12.34") into minor units.
func amountToCents(value string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(value), ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		frac = frac[:2]
	}

	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	if units < 0 {
		return units*100 - cents, nil
	}
	return units*100 + cents, nil
}
