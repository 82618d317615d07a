package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicatePending = errors.New("a pending booking already exists for this property")

	ErrStatusChanged = errors.New("booking changed since it was read")

	ErrNoActiveRequest = errors.New("no active time change request")

	ErrActiveRequest = errors.New("a time change request is already active")
)
