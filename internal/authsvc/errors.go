package authsvc

import (
	"errors"
)

var (
	// ErrMisconfigured is returned when the provider client has no usable configuration.
	ErrMisconfigured = errors.New("authentication service is not configured")

	// ErrUnavailable is returned on network failures and provider outages.
	ErrUnavailable = errors.New("authentication service unavailable")

	// ErrInvalidCredentials is returned when the provider rejects email or password.
	ErrInvalidCredentials = errors.New("invalid login credentials")

	// ErrInvalidCode is returned when a recovery or confirmation code is expired or unknown.
	ErrInvalidCode = errors.New("code is invalid or has expired")

	// ErrSessionInvalid is returned when the access token no longer maps to a live session.
	ErrSessionInvalid = errors.New("session is invalid or has expired")

	// ErrEmailTaken is returned when an account with the email already exists.
	ErrEmailTaken = errors.New("email is already registered")
)
