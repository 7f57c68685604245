// Package gatekeeper decides, for every page navigation, whether the request
// may pass or must be redirected before any content is rendered.
//
// The decision logic is a pure function over the request path, query and the
// marker cookie set, so the whole state machine is testable without a running
// server. The only network call is the session check, which is bounded and
// fails open.
package gatekeeper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-jobboard/jobboard/internal/web/markers"
)

// LoopThreshold is the number of consecutive auth driven redirects tolerated
// for one browser before the loop breaker fires.
const LoopThreshold = 6

// DefaultCheckTimeout bounds the session check call.
const DefaultCheckTimeout = 3 * time.Second

// Decision is the terminal outcome of one navigation.
type Decision int

const (
	// DecisionAllowed passes the request through.
	DecisionAllowed Decision = iota

	// DecisionExcluded passes a public or asset path through unconditionally.
	DecisionExcluded

	// DecisionErrorPassthrough lets an error carrying URL render its page
	// while resetting the loop markers.
	DecisionErrorPassthrough

	// DecisionRecoveryAllowed lets a recovery navigation reach the password
	// change page.
	DecisionRecoveryAllowed

	// DecisionRecoveryRedirect sends a recovery URL to the password change
	// page, carrying its code forward.
	DecisionRecoveryRedirect

	// DecisionToDashboard sends an authenticated user away from an auth page.
	DecisionToDashboard

	// DecisionToLogin sends an unauthenticated user away from a protected
	// page.
	DecisionToLogin

	// DecisionLoopBroken halts a redirect loop and purges all markers.
	DecisionLoopBroken
)

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	switch d {
	case DecisionExcluded:
		return "excluded"
	case DecisionErrorPassthrough:
		return "error_passthrough"
	case DecisionRecoveryAllowed:
		return "recovery_allowed"
	case DecisionRecoveryRedirect:
		return "recovery_redirect"
	case DecisionToDashboard:
		return "to_dashboard"
	case DecisionToLogin:
		return "to_login"
	case DecisionLoopBroken:
		return "loop_broken"
	default:
		return "allowed"
	}
}

// Redirects reports whether the decision produces a redirect response.
func (d Decision) Redirects() bool {
	switch d {
	case DecisionRecoveryRedirect, DecisionToDashboard, DecisionToLogin, DecisionLoopBroken:
		return true
	default:
		return false
	}
}

// SessionCheck resolves whether the session behind an id is still valid.
// An error means the answer is unknown and the caller fails open.
type SessionCheck func(ctx context.Context, sessionID string) (bool, error)

// Paths names the routes the gatekeeper cares about.
type Paths struct {
	Login          string
	Signup         string
	ChangePassword string
	Callback       string
	Dashboard      string

	// Excluded prefixes pass through unconditionally. "/" matches exactly.
	Excluded []string

	// Protected prefixes require a valid session.
	Protected []string
}

// DefaultPaths returns the route layout of this application.
func DefaultPaths() Paths {
	return Paths{
		Login:          "/auth/login",
		Signup:         "/auth/signup",
		ChangePassword: "/auth/change-password",
		Callback:       "/auth/callback",
		Dashboard:      "/dashboard",
		Excluded: []string{
			"/",
			"/jobs",
			"/employers",
			"/logout",
			"/static",
			"/favicon.ico",
			"/metrics",
			"/healthz",
			"/debug",
		},
		Protected: []string{
			"/dashboard",
			"/profile",
			"/jobs/new",
		},
	}
}

// Input is everything one navigation decision depends on.
type Input struct {
	Path    string
	Query   url.Values
	Markers markers.Set
}

// Outcome is the decision plus its side effects. Location is only set for
// redirecting decisions; Cookies lists the marker writes to apply either way.
type Outcome struct {
	Decision Decision
	Location string
	Cookies  markers.Changes
}

// Gatekeeper evaluates navigations against a session check.
type Gatekeeper struct {
	Paths   Paths
	Check   SessionCheck
	Timeout time.Duration
}

// New creates a gatekeeper with the default route layout.
func New(check SessionCheck) *Gatekeeper {
	return &Gatekeeper{
		Paths:   DefaultPaths(),
		Check:   check,
		Timeout: DefaultCheckTimeout,
	}
}

// Evaluate runs the ordered decision chain for one navigation. The first
// matching rule wins and every outcome is terminal for this navigation.
func (g *Gatekeeper) Evaluate(ctx context.Context, in Input) Outcome {
	if g.isExcluded(in.Path) {
		return Outcome{Decision: DecisionExcluded}
	}

	if in.Query.Get("error") != "" || in.Query.Get("error_description") != "" {
		return Outcome{
			Decision: DecisionErrorPassthrough,
			Cookies:  clearLoopMarkers(in.Markers),
		}
	}

	if out, done := g.evaluateRecovery(ctx, in); done {
		return out
	}

	return g.evaluateGeneral(ctx, in)
}

// evaluateRecovery handles recovery flow detection. The second return value
// is false when the navigation falls through to the general check.
func (g *Gatekeeper) evaluateRecovery(ctx context.Context, in Input) (Outcome, bool) {
	fresh := hasRecoveryIndicators(in.Query)
	onChangePage := in.Path == g.Paths.ChangePassword

	if onChangePage {
		// from=reset and direct=true are set by the callback and by the
		// recovery e-mail link respectively.
		arrived := fresh ||
			in.Query.Get("from") == "reset" ||
			in.Query.Get("direct") == "true"

		if arrived {
			cookies := markers.SetRecoveryFlow()
			if in.Markers.RedirectCount > 0 {
				cookies = cookies.Merge(markers.ClearRedirectCount())
			}

			return Outcome{Decision: DecisionRecoveryAllowed, Cookies: cookies}, true
		}

		if in.Markers.RecoveryFlow || in.Markers.RecoveryBypass {
			return Outcome{Decision: DecisionRecoveryAllowed}, true
		}

		// password change without any recovery context requires a session,
		// handled by the general check
		return Outcome{}, false
	}

	if fresh {
		cookies := markers.SetRecoveryFlow()
		if in.Markers.RedirectCount > 0 {
			cookies = cookies.Merge(markers.ClearRedirectCount())
		}

		if in.Path == g.Paths.Callback {
			// the callback handler exchanges the code itself and issues its
			// own redirect to the password change page
			return Outcome{Decision: DecisionRecoveryAllowed, Cookies: cookies}, true
		}

		return Outcome{
			Decision: DecisionRecoveryRedirect,
			Location: g.recoveryLocation(in.Query),
			Cookies:  cookies,
		}, true
	}

	if in.Markers.RecoveryFlow {
		// stale marker, no recovery indicators on the URL: drop it and let
		// the general check decide
		in.Markers.RecoveryFlow = false

		out := g.evaluateGeneral(ctx, in)
		out.Cookies = markers.ClearRecovery().Merge(out.Cookies)

		return out, true
	}

	return Outcome{}, false
}

func (g *Gatekeeper) evaluateGeneral(ctx context.Context, in Input) Outcome {
	onAuthPage := in.Path == g.Paths.Login || in.Path == g.Paths.Signup
	protected := g.isProtected(in.Path) || in.Path == g.Paths.ChangePassword

	if !onAuthPage && !protected {
		return Outcome{Decision: DecisionAllowed}
	}

	if in.Markers.LoopBreak {
		// a previous decision asked for no further auth redirects
		return Outcome{Decision: DecisionAllowed}
	}

	if protected && (in.Markers.AuthBypass || in.Markers.JustLoggedIn) {
		cookies := markers.Changes{}
		if in.Markers.JustLoggedIn {
			// one shot marker, consumed here
			cookies = cookies.Merge(markers.Changes{
				{Name: markers.JustLoggedInCookie, MaxAge: -1},
			})
		}

		if in.Markers.RedirectCount > 0 {
			cookies = cookies.Merge(markers.ClearRedirectCount())
		}

		return Outcome{Decision: DecisionAllowed, Cookies: cookies}
	}

	authed := g.sessionValid(ctx, in.Markers.SessionID)

	switch {
	case authed && onAuthPage:
		cookies := markers.SetLoginBypass()
		cookies = cookies.Merge(clearLoopMarkers(in.Markers))
		if in.Markers.RecoveryFlow || in.Markers.RecoveryBypass {
			cookies = cookies.Merge(markers.ClearRecovery())
		}

		return Outcome{
			Decision: DecisionToDashboard,
			Location: g.Paths.Dashboard,
			Cookies:  cookies,
		}

	case !authed && protected:
		count := in.Markers.RedirectCount + 1
		if count > LoopThreshold {
			return Outcome{
				Decision: DecisionLoopBroken,
				Location: g.Paths.Login + "?error=too_many_redirects",
				Cookies:  markers.ClearAll(),
			}
		}

		return Outcome{
			Decision: DecisionToLogin,
			Location: g.Paths.Login + "?redirect=" + url.QueryEscape(in.Path),
			Cookies:  markers.SetRedirectCount(count),
		}

	case authed && protected:
		return Outcome{Decision: DecisionAllowed, Cookies: clearLoopMarkers(in.Markers)}

	default:
		// unauthenticated on an auth page is exactly where the user belongs
		return Outcome{Decision: DecisionAllowed}
	}
}

// sessionValid runs the bounded session check. Errors fail open: an auth
// service outage must not block every navigation.
func (g *Gatekeeper) sessionValid(ctx context.Context, sessionID string) bool {
	if g.Check == nil || sessionID == "" {
		return false
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := g.Check(checkCtx, sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("session check failed, allowing navigation")

		return true
	}

	return ok
}

func (g *Gatekeeper) isExcluded(path string) bool {
	if g.isProtected(path) {
		return false
	}

	switch path {
	case g.Paths.Login, g.Paths.Signup, g.Paths.ChangePassword, g.Paths.Callback:
		return false
	}

	for _, prefix := range g.Paths.Excluded {
		if prefix == "/" {
			if path == "/" {
				return true
			}

			continue
		}

		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}

func (g *Gatekeeper) isProtected(path string) bool {
	for _, prefix := range g.Paths.Protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}

// recoveryLocation builds the password change URL, carrying the recovery
// credentials forward.
func (g *Gatekeeper) recoveryLocation(query url.Values) string {
	forward := url.Values{}
	for _, name := range []string{"code", "token", "type"} {
		if v := query.Get(name); v != "" {
			forward.Set(name, v)
		}
	}

	if len(forward) == 0 {
		return g.Paths.ChangePassword
	}

	return g.Paths.ChangePassword + "?" + forward.Encode()
}

// hasRecoveryIndicators reports whether the URL itself marks a recovery
// navigation: type=recovery next to a code or token, or a redirect_to value
// that embeds one.
func hasRecoveryIndicators(query url.Values) bool {
	if query.Get("type") == "recovery" &&
		(query.Get("code") != "" || query.Get("token") != "") {
		return true
	}

	return strings.Contains(query.Get("redirect_to"), "type=recovery")
}

// clearLoopMarkers clears the redirect counter and bypass markers, but only
// the ones actually present so stable navigations stay cookie free.
func clearLoopMarkers(m markers.Set) markers.Changes {
	cookies := markers.Changes{}

	if m.RedirectCount > 0 {
		cookies = cookies.Merge(markers.ClearRedirectCount())
	}

	if m.AuthBypass || m.JustLoggedIn {
		cookies = cookies.Merge(markers.ClearBypass())
	}

	return cookies
}
