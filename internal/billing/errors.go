package billing

import "errors"

var (
	// ErrCaptureNotFound is returned when the processor has no record of
	// the payment identifier.
	ErrCaptureNotFound = errors.New("billing: payment capture not found")

	// ErrInvalidCredentials is returned when the processor rejects our
	// API credentials.
	ErrInvalidCredentials = errors.New("billing: invalid API credentials")
)
