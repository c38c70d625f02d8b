// Package middleware holds cross-cutting HTTP middleware shared by every
// route: request IDs and Prometheus metrics.
package middleware

// contextKey is a private type for context keys defined in this package.
type contextKey string
