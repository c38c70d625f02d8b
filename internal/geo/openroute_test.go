package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		switch r.URL.Query().Get("text") {
		case "Colombo":
			json.NewEncoder(w).Encode(map[string]any{
				"features": []map[string]any{{
					"geometry": map[string]any{
						// GeoJSON order: [lng, lat]
						"coordinates": []float64{79.8612, 6.9271},
					},
				}},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
		}
	}))
	defer srv.Close()

	client := NewOpenRouteClient(srv.URL, "test-key", 0)

	t.Run("known city", func(t *testing.T) {
		coords, err := client.Geocode(context.Background(), "Colombo")
		require.NoError(t, err)
		assert.InDelta(t, 6.9271, coords.Lat, 1e-9)
		assert.InDelta(t, 79.8612, coords.Lng, 1e-9)
	})

	t.Run("unknown city", func(t *testing.T) {
		_, err := client.Geocode(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, ErrCityNotFound)
	})
}

func TestDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/driving-car", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Coordinates [][]float64 `json:"coordinates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Coordinates, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{{
				"summary": map[string]any{"distance": 115400.0},
			}},
		})
	}))
	defer srv.Close()

	client := NewOpenRouteClient(srv.URL, "test-key", 0)

	km, err := client.Distance(context.Background(),
		Coordinates{Lat: 6.9271, Lng: 79.8612},
		Coordinates{Lat: 7.2906, Lng: 80.6337})
	require.NoError(t, err)
	assert.InDelta(t, 115.4, km, 1e-9)
}

func TestDistanceIdenticalCoordinates(t *testing.T) {
	// No server: identical coordinates short-circuit without a network call.
	client := NewOpenRouteClient("http://127.0.0.1:0", "test-key", 0)

	km, err := client.Distance(context.Background(),
		Coordinates{Lat: 6.9271, Lng: 79.8612},
		Coordinates{Lat: 6.9271, Lng: 79.8612})
	require.NoError(t, err)
	assert.Zero(t, km)
}

func TestDistanceNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"routes": []any{}})
	}))
	defer srv.Close()

	client := NewOpenRouteClient(srv.URL, "test-key", 0)

	_, err := client.Distance(context.Background(),
		Coordinates{Lat: 1, Lng: 1}, Coordinates{Lat: 2, Lng: 2})
	assert.ErrorIs(t, err, ErrNoRoute)
}
