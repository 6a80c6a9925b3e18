package repositories

import "errors"

var (
	// ErrNotFound is returned when no row exists for the given key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique constraint is violated, e.g.
	// two users racing for the same username.
	ErrConflict = errors.New("record conflict")
)
