package errors

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	ErrOwnerNotFound = errors.New("owner profile not found")

	ErrInvalidID = errors.New("invalid account ID format")

	ErrEmailTaken = errors.New("email already registered")

	ErrOTPNotFound = errors.New("no pending OTP for email")
)
