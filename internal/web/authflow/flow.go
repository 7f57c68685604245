// Package authflow implements the session orchestration behind the auth
// pages: sign in, sign up, password recovery and the existing session
// shortcut.
//
// Operations never write cookies themselves. Each returns the marker changes
// to apply, so every decision is inspectable in tests and the page handlers
// stay thin.
package authflow

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-jobboard/jobboard/internal/authsvc"
	"github.com/go-jobboard/jobboard/internal/web/markers"
	"github.com/go-jobboard/jobboard/internal/web/session"
)

// CheckGuardLimit is how many "already signed in" redirects the login and
// signup pages issue before giving up and telling the user to clear cookies.
const CheckGuardLimit = 3

// MinPasswordLength is the provider's minimum accepted password length.
const MinPasswordLength = 6

// Flow runs the auth page operations against the external service.
type Flow struct {
	Provider   authsvc.Provider
	SessionTTL time.Duration

	// BaseURL is the public origin, used to build callback URLs for
	// confirmation and recovery mails.
	BaseURL string

	LoginPath          string
	DashboardPath      string
	ChangePasswordPath string
	CallbackPath       string
}

// New creates a flow with the default route layout.
func New(provider authsvc.Provider, baseURL string, sessionTTL time.Duration) *Flow {
	return &Flow{
		Provider:           provider,
		SessionTTL:         sessionTTL,
		BaseURL:            baseURL,
		LoginPath:          "/auth/login",
		DashboardPath:      "/dashboard",
		ChangePasswordPath: "/auth/change-password",
		CallbackPath:       "/auth/callback",
	}
}

// Result is the successful outcome of a flow operation: where to send the
// browser next and which markers to write on the way.
type Result struct {
	RedirectTo string
	Cookies    markers.Changes
}

// SignUpOutcome extends Result for account creation, where a pending mail
// confirmation replaces the redirect.
type SignUpOutcome struct {
	Result
	ConfirmationPending bool
}

// CheckExistingSession implements the auth page shortcut: a user who still
// has a live session skips the form and goes straight to the target. The
// guard counter aborts the shortcut when it keeps firing without the browser
// ever reaching a stable page.
func (f *Flow) CheckExistingSession(ctx context.Context, m markers.Set, target string) (*Result, *Error) {
	if m.CheckGuard >= CheckGuardLimit {
		return nil, newError(KindTooManyRedirects, MsgTooManyRedirects)
	}

	data := session.Current(m.SessionID)
	if data == nil {
		return nil, nil
	}

	if _, err := f.Provider.GetUser(ctx, data.AccessToken); err != nil {
		// dead or unverifiable session, show the form
		log.Debug().Err(err).Msg("existing session not usable")

		return nil, nil
	}

	if target == "" {
		target = f.DashboardPath
	}

	return &Result{
		RedirectTo: target,
		Cookies:    markers.SetCheckGuard(m.CheckGuard + 1),
	}, nil
}

// SignIn exchanges credentials for a session, establishes the server side
// session and arms the post login grace markers. target defaults to the
// dashboard.
func (f *Flow) SignIn(ctx context.Context, email, password, target string) (*Result, *Error) {
	providerSession, err := f.Provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, classify(err, MsgSignInFailed)
	}

	cookies, err := f.establishSession(providerSession)
	if err != nil {
		return nil, classify(err, MsgSignInFailed)
	}

	if target == "" {
		target = f.DashboardPath
	}

	cookies = cookies.
		Merge(markers.SetLoginBypass()).
		Merge(markers.ClearRedirectCount()).
		Merge(markers.ClearCheckGuard())

	return &Result{RedirectTo: target, Cookies: cookies}, nil
}

// SignUp creates an account. When the provider wants mail confirmation the
// outcome is pending and the page stays put; otherwise the fresh session is
// established like a sign in.
func (f *Flow) SignUp(ctx context.Context, email, password, fullName string) (*SignUpOutcome, *Error) {
	if len(password) < MinPasswordLength {
		return nil, newError(KindUnknown, MsgPasswordTooShort)
	}

	created, err := f.Provider.SignUp(ctx, email, password, fullName, f.BaseURL+f.CallbackPath)
	if err != nil {
		return nil, classify(err, MsgSignUpFailed)
	}

	if created.ConfirmationPending || created.Session == nil {
		return &SignUpOutcome{ConfirmationPending: true}, nil
	}

	cookies, err := f.establishSession(created.Session)
	if err != nil {
		return nil, classify(err, MsgSignUpFailed)
	}

	return &SignUpOutcome{
		Result: Result{
			RedirectTo: f.DashboardPath,
			Cookies:    cookies.Merge(markers.SetLoginBypass()),
		},
	}, nil
}

// RequestPasswordReset triggers the provider's recovery mail. The callback
// URL carries type=recovery so the returning navigation is recognized.
func (f *Flow) RequestPasswordReset(ctx context.Context, email string) *Error {
	callback := f.BaseURL + f.CallbackPath + "?type=recovery"

	if err := f.Provider.SendRecoveryEmail(ctx, email, callback); err != nil {
		return classify(err, MsgNetwork)
	}

	return nil
}

// HandleCallback trades the provider code from a mail link for a session.
// Recovery codes continue to the password change page with the recovery
// markers armed; confirmation codes land on the dashboard.
func (f *Flow) HandleCallback(ctx context.Context, code string, recovery bool) (*Result, *Error) {
	providerSession, err := f.Provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, classify(err, MsgExpiredRecovery)
	}

	cookies, err := f.establishSession(providerSession)
	if err != nil {
		return nil, classify(err, MsgExpiredRecovery)
	}

	if recovery {
		return &Result{
			RedirectTo: f.ChangePasswordPath + "?from=reset",
			Cookies:    cookies.Merge(markers.SetRecoveryFlow()),
		}, nil
	}

	return &Result{
		RedirectTo: f.DashboardPath,
		Cookies:    cookies.Merge(markers.SetLoginBypass()),
	}, nil
}

// CompleteRecoverySubmission validates and submits the new password. In the
// recovery case the session is discarded afterwards and the user signs in
// again; in the signed in change password case the session stays.
func (f *Flow) CompleteRecoverySubmission(ctx context.Context, m markers.Set, newPassword, confirm string, recovery bool) (*Result, *Error) {
	if len(newPassword) < MinPasswordLength {
		return nil, newError(KindUnknown, MsgPasswordTooShort)
	}

	if newPassword != confirm {
		return nil, newError(KindUnknown, MsgPasswordMismatch)
	}

	data := session.Current(m.SessionID)
	if data == nil {
		return nil, newError(KindExpiredRecoveryLink, MsgExpiredRecovery)
	}

	if err := f.Provider.UpdatePassword(ctx, data.AccessToken, newPassword); err != nil {
		return nil, classify(err, MsgExpiredRecovery)
	}

	if recovery {
		f.dropSession(ctx, m.SessionID, data.AccessToken)

		return &Result{
			RedirectTo: f.LoginPath,
			Cookies:    markers.ClearSession().Merge(markers.ClearRecovery()).Merge(markers.ClearCheckGuard()),
		}, nil
	}

	return &Result{
		RedirectTo: f.DashboardPath,
		Cookies:    markers.ClearRecovery(),
	}, nil
}

// SignOut tears the session down on both sides and purges every marker.
func (f *Flow) SignOut(ctx context.Context, m markers.Set) *Result {
	if data := session.Current(m.SessionID); data != nil {
		f.dropSession(ctx, m.SessionID, data.AccessToken)
	}

	return &Result{
		RedirectTo: f.LoginPath,
		Cookies:    markers.ClearAll(),
	}
}

// establishSession stores the provider session server side and returns the
// session cookie write.
func (f *Flow) establishSession(providerSession *authsvc.Session) (markers.Changes, error) {
	id, err := session.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	data := session.Data{
		User:         providerSession.User,
		AccessToken:  providerSession.AccessToken,
		RefreshToken: providerSession.RefreshToken,
		ExpiresAt:    providerSession.ExpiresAt,
	}

	if err := data.Write(id, f.SessionTTL); err != nil {
		return nil, err
	}

	return markers.SetSession(id, f.SessionTTL), nil
}

func (f *Flow) dropSession(ctx context.Context, sessionID, accessToken string) {
	if err := f.Provider.SignOut(ctx, accessToken); err != nil {
		log.Debug().Err(err).Msg("provider sign out failed")
	}

	if err := session.Delete(sessionID); err != nil {
		log.Warn().Err(err).Msg("session delete failed")
	}
}
