package repository

import "github.com/PhucDaizz/parkledger/internal/storeerr"

// The sentinel values live in the leaf package storeerr so the ledger
// package can match them without importing repository; they are re-exported
// here so repository's API is unchanged.
var (
	// ErrNotFound is returned when a requested row doesn't exist.
	ErrNotFound = storeerr.ErrNotFound

	// ErrOpenSessionExists is returned when an insert would create a second
	// open session for the same plate key.
	ErrOpenSessionExists = storeerr.ErrOpenSessionExists

	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = storeerr.ErrUnavailable
)
