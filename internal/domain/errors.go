package domain

import "errors"

// Business error taxonomy. Callers branch with errors.Is; the API layer
// maps each to an HTTP status. Everything else is treated as an internal
// or transport failure and is safe to retry with backoff.
var (
	// ErrValidation covers malformed or missing required input, such as
	// an empty rejection reason or a booking without a date.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means the referenced request or moderation item does
	// not exist or already left the queue.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means a transition was attempted from a non-eligible
	// state, including the losing side of a concurrent decision.
	// Not retryable: it signals a legitimate conflict, not transience.
	ErrInvalidState = errors.New("invalid state")

	// ErrForbidden means the caller does not own the target resource.
	ErrForbidden = errors.New("forbidden")
)
