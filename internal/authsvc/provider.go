// Package authsvc talks to the external authentication service.
//
// The service owns credential verification, token issuance, password storage
// and recovery mail delivery. This package only performs the network calls
// and maps provider responses to typed errors; it never inspects or creates
// tokens itself.
package authsvc

import (
	"context"
	"time"
)

// User is the provider's view of an account, as far as the job board needs it.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

// Session is an authenticated session issued by the provider.
// The token content is opaque; only presence and expiry matter here.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// SignUpResult is the outcome of account creation. Depending on provider
// configuration the account is usable immediately or pending mail confirmation.
type SignUpResult struct {
	User                User
	Session             *Session // nil while confirmation is pending
	ConfirmationPending bool
}

// Provider is the contract with the external authentication service.
// Every call is a network round trip and must be given a bounded context.
type Provider interface {
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp creates an account. callbackURL is where the confirmation
	// mail link returns to.
	SignUp(ctx context.Context, email, password, fullName, callbackURL string) (*SignUpResult, error)

	// SignOut invalidates the session behind the access token.
	SignOut(ctx context.Context, accessToken string) error

	// GetUser validates the access token and returns the current account.
	// This is the authoritative session check.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// ExchangeCode trades a one time code (mail confirmation or password
	// recovery link) for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	// UpdatePassword sets a new password for the session's account.
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error

	// SendRecoveryEmail triggers the provider's reset mail. callbackURL is
	// embedded in the mailed link and must carry the recovery indicators.
	SendRecoveryEmail(ctx context.Context, email, callbackURL string) error
}
