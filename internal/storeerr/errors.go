// Package storeerr declares the store sentinel errors in a leaf package so
// that both the domain services and the repository interfaces can reference
// them without an import cycle.
package storeerr

import "errors"

var (
	// ErrNotFound is returned when a requested row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrOpenSessionExists is returned when an insert would create a second
	// open session for the same plate key.
	ErrOpenSessionExists = errors.New("open session already exists")

	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)
