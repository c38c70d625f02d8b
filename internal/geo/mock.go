package geo

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is an in-memory geo client for testing. Cities resolve through
// the Cities map (case-insensitive); distances through the Distances map
// keyed by "city1|city2" coordinates lookups, or the DistanceFunc override.
type MockClient struct {
	mu sync.Mutex

	// Cities maps lower-cased city names to coordinates.
	Cities map[string]Coordinates

	// GeocodeFunc overrides Geocode behavior when set.
	GeocodeFunc func(ctx context.Context, city string) (Coordinates, error)

	// DistanceFunc overrides Distance behavior when set.
	DistanceFunc func(ctx context.Context, origin, destination Coordinates) (float64, error)

	// DistanceKm is returned for any pair of distinct coordinates when
	// DistanceFunc is nil.
	DistanceKm float64

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// Compile-time check that MockClient implements Client.
var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty mock geo client.
func NewMockClient() *MockClient {
	return &MockClient{Cities: make(map[string]Coordinates)}
}

// Geocode resolves a city from the Cities map.
func (m *MockClient) Geocode(ctx context.Context, city string) (Coordinates, error) {
	m.log(fmt.Sprintf("Geocode(%s)", city))

	if m.GeocodeFunc != nil {
		return m.GeocodeFunc(ctx, city)
	}

	coords, ok := m.Cities[strings.ToLower(city)]
	if !ok {
		return Coordinates{}, fmt.Errorf("geocode %q: %w", city, ErrCityNotFound)
	}
	return coords, nil
}

// Distance returns 0 for identical coordinates, DistanceKm otherwise.
func (m *MockClient) Distance(ctx context.Context, origin, destination Coordinates) (float64, error) {
	m.log(fmt.Sprintf("Distance(%v, %v)", origin, destination))

	if m.DistanceFunc != nil {
		return m.DistanceFunc(ctx, origin, destination)
	}

	if origin == destination {
		return 0, nil
	}
	return m.DistanceKm, nil
}

func (m *MockClient) log(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, entry)
}

// Calls returns a copy of the call log.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.CallLog))
	copy(out, m.CallLog)
	return out
}
