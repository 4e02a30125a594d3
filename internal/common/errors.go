// Package common defines shared sentinel errors used across the store,
// service and handler layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// ErrInvalidRequest marks caller errors (missing or empty required
	// fields) detected before any side effect.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the persistence layer is
	// unreachable or a query fails.
	ErrUnavailable = errors.New("store unavailable")

	// ErrModelUnavailable is returned when the generation call fails or
	// times out.
	ErrModelUnavailable = errors.New("model unavailable")
)
