package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OpenRouteClient implements Client against the OpenRouteService HTTP API.
type OpenRouteClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Compile-time check that OpenRouteClient implements Client.
var _ Client = (*OpenRouteClient)(nil)

// NewOpenRouteClient creates a client for the OpenRouteService API.
// timeout bounds every individual geocode/distance call.
func NewOpenRouteClient(baseURL, apiKey string, timeout time.Duration) *OpenRouteClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenRouteClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// geocodeResponse is the subset of the ORS geocode payload we read.
type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			// GeoJSON order: [lng, lat]
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a city name via /geocode/search.
func (c *OpenRouteClient) Geocode(ctx context.Context, city string) (Coordinates, error) {
	u := fmt.Sprintf("%s/geocode/search?api_key=%s&text=%s", c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo: build geocode request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo: geocode %q: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geo: geocode %q: unexpected status %d", city, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinates{}, fmt.Errorf("geo: decode geocode response: %w", err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return Coordinates{}, fmt.Errorf("geo: geocode %q: %w", city, ErrCityNotFound)
	}

	coords := body.Features[0].Geometry.Coordinates
	return Coordinates{Lat: coords[1], Lng: coords[0]}, nil
}

// directionsRequest is the ORS driving-car request body.
type directionsRequest struct {
	// GeoJSON order: [lng, lat]
	Coordinates [][]float64 `json:"coordinates"`
}

// directionsResponse is the subset of the ORS directions payload we read.
type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
		} `json:"summary"`
	} `json:"routes"`
}

// Distance computes the driving distance via /v2/directions/driving-car.
func (c *OpenRouteClient) Distance(ctx context.Context, origin, destination Coordinates) (float64, error) {
	if origin == destination {
		return 0, nil
	}

	u := fmt.Sprintf("%s/v2/directions/driving-car?api_key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	payload := directionsRequest{
		Coordinates: [][]float64{
			{origin.Lng, origin.Lat},
			{destination.Lng, destination.Lat},
		},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("geo: encode directions request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(buf))
	if err != nil {
		return 0, fmt.Errorf("geo: build directions request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("geo: directions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("geo: directions: unexpected status %d", resp.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("geo: decode directions response: %w", err)
	}

	if len(body.Routes) == 0 {
		return 0, ErrNoRoute
	}

	meters := body.Routes[0].Summary.Distance
	if meters < 0 {
		return 0, ErrNoRoute
	}

	return meters / 1000, nil
}
