package authflow

import (
	"github.com/pkg/errors"

	"github.com/go-jobboard/jobboard/internal/authsvc"
)

// Kind classifies an auth flow failure for the rendering layer.
type Kind int

const (
	// KindUnknown is the generic fallback.
	KindUnknown Kind = iota

	// KindConfiguration means the auth service itself is misconfigured.
	KindConfiguration

	// KindNetwork means the auth service could not be reached.
	KindNetwork

	// KindInvalidCredentials means the submitted credentials were wrong.
	KindInvalidCredentials

	// KindExpiredRecoveryLink means the recovery code or session is no
	// longer usable.
	KindExpiredRecoveryLink

	// KindTooManyRedirects means the loop guard aborted a navigation.
	KindTooManyRedirects
)

// String implements fmt.Stringer for log output.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindExpiredRecoveryLink:
		return "expired_recovery_link"
	case KindTooManyRedirects:
		return "too_many_redirects"
	default:
		return "unknown"
	}
}

// User facing messages. Wording is part of the page contract.
const (
	MsgConfiguration      = "The authentication system is not properly set up. Please check server configuration."
	MsgNetwork            = "Network error. Please check your internet connection."
	MsgInvalidCredentials = "Incorrect email or password."
	MsgExpiredRecovery    = "Password reset session has expired or is invalid. Please try again."
	MsgTooManyRedirects   = "Too many redirects. Please clear your cookies and try again."
	MsgEmailTaken         = "This email is already registered. Try logging in instead."
	MsgPasswordTooShort   = "New password must be at least 6 characters"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgSignInFailed       = "Failed to sign in. Please try again."
	MsgSignUpFailed       = "Failed to create account. Please try again."
)

// Error is a classified auth flow failure. Message is safe to render to the
// user; the cause carries the detail for the log.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// classify maps an auth service error onto the flow taxonomy. The fallback
// message covers errors no branch recognizes.
func classify(err error, fallback string) *Error {
	switch {
	case errors.Is(err, authsvc.ErrMisconfigured):
		return &Error{Kind: KindConfiguration, Message: MsgConfiguration, cause: err}
	case errors.Is(err, authsvc.ErrUnavailable):
		return &Error{Kind: KindNetwork, Message: MsgNetwork, cause: err}
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return &Error{Kind: KindInvalidCredentials, Message: MsgInvalidCredentials, cause: err}
	case errors.Is(err, authsvc.ErrInvalidCode), errors.Is(err, authsvc.ErrSessionInvalid):
		return &Error{Kind: KindExpiredRecoveryLink, Message: MsgExpiredRecovery, cause: err}
	case errors.Is(err, authsvc.ErrEmailTaken):
		return &Error{Kind: KindUnknown, Message: MsgEmailTaken, cause: err}
	default:
		return &Error{Kind: KindUnknown, Message: fallback, cause: err}
	}
}
