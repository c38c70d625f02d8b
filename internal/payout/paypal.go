package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sahanr/harvestlink/internal/domain"
)

// ErrNoApprovalLink is returned when the provider response carries no
// approval URL.
var ErrNoApprovalLink = errors.New("payout: provider response has no approval link")

// PayPalProvider issues settlement links by creating PayPal checkout orders
// and extracting the hosted approval URL.
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

// NewPayPalProvider creates a PayPal settlement-link issuer.
func NewPayPalProvider(baseURL, clientID, clientSecret string, timeout time.Duration) *PayPalProvider {
	return &PayPalProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

// CreateCollectLink creates a one-off checkout order for the settlement
// amount and returns its approval URL.
func (p *PayPalProvider) CreateCollectLink(ctx context.Context, params LinkParams) (*Link, error) {
	const op = "payout.paypal.CreateCollectLink"

	token, err := p.token(ctx)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "payout provider authentication failed")
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"custom_id":   params.OrderID,
			"description": params.Description,
			"amount": map[string]string{
				"currency_code": params.Currency,
				"value":         params.Amount,
			},
		}},
		"application_context": map[string]string{
			"shipping_preference": "NO_SHIPPING",
			"user_action":         "PAY_NOW",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to encode payout request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/checkout/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, "payout provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.Errorf(domain.EPAYMENT, op, "payout provider returned status %d: %s", resp.StatusCode, raw)
	}

	var created struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to decode payout provider response")
	}

	for _, l := range created.Links {
		if l.Rel == "approve" {
			return &Link{ID: created.ID, ApprovalURL: l.Href}, nil
		}
	}
	return nil, domain.WrapError(ErrNoApprovalLink, domain.EPAYMENT, op, "payout provider returned no approval link")
}

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
