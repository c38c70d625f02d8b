package geo

import (
	"context"
	"errors"
)

var (
	// ErrCityNotFound is returned when a city name cannot be geocoded.
	// This is an input problem, not a transport failure.
	ErrCityNotFound = errors.New("geo: city not found")

	// ErrNoRoute is returned when the routing service produces no distance
	// for a coordinate pair.
	ErrNoRoute = errors.New("geo: no route between coordinates")
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Client resolves city names to coordinates and coordinate pairs to road
// distances. Implementations wrap external services like OpenRouteService.
type Client interface {
	// Geocode resolves a city name to coordinates.
	// Returns ErrCityNotFound when the name cannot be resolved.
	Geocode(ctx context.Context, city string) (Coordinates, error)

	// Distance returns the driving distance in kilometers between two
	// points. Identical coordinates yield 0 without a network call.
	Distance(ctx context.Context, origin, destination Coordinates) (float64, error)
}
