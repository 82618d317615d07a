package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid property ID format")

	// ErrStatusChanged is returned when a conditional update finds the
	// listing in a different status than the caller observed.
	ErrStatusChanged = errors.New("property status changed concurrently")
)
