package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidDelay is returned when a retry delay is negative
	ErrInvalidDelay = errors.New("retry delays cannot be negative")

	// ErrEmptyResponse is returned when a model answers with no choices or no vector.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrDimensionMismatch is returned when an embedding has an unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
