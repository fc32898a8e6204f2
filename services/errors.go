package services

import "errors"

// Sentinel errors for the engine. Handlers map these to status codes; anything
// else is treated as infrastructure failure (500, retryable by the caller).
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrInvariant  = errors.New("invariant violation")
)
