package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrRideConflict is returned when a conditional ride update loses to a
	// concurrent writer (e.g. a second accept on an already-taken ride).
	ErrRideConflict = errors.New("ride no longer pending")

	// ErrDuplicatePhone is returned when creating a user with a phone number
	// that already exists.
	ErrDuplicatePhone = errors.New("phone already registered")
)
