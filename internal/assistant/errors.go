package assistant

import "errors"

var (
	// ErrNotConfigured is returned when no provider key was supplied.
	ErrNotConfigured = errors.New("assistant: provider not configured")

	// ErrMalformedLabel wraps label output that is empty or not JSON.
	ErrMalformedLabel = errors.New("assistant: could not read the label")

	// ErrProvider wraps transport and provider failures.
	ErrProvider = errors.New("assistant: provider unavailable")
)
