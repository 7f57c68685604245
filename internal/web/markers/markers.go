// Package markers defines the cookie vocabulary shared by the gatekeeper and
// the auth flow.
//
// All markers are transient, best effort hints: they steer redirect decisions
// but never prove a session is valid. The authoritative session check stays
// with the authentication service. Both components read the full marker set
// explicitly instead of poking at cookies inline, so decisions stay testable.
package markers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names. These are the wire interface with the browser and must stay
// stable across releases.
const (
	// SessionCookie carries the server side session id.
	SessionCookie = "session"

	// RecoveryFlowCookie marks an active password recovery flow.
	RecoveryFlowCookie = "password_reset_flow"

	// RecoveryBypassCookie lets the change password page past the general guard.
	RecoveryBypassCookie = "bypass_reset_redirect"

	// LoopBreakCookie suppresses further auth redirects until cleared.
	LoopBreakCookie = "prevent_auth_redirect"

	// RedirectCountCookie counts consecutive auth driven redirects.
	RedirectCountCookie = "auth_redirect_count"

	// AuthBypassCookie grants a grace period after sign in before the next
	// server side session check.
	AuthBypassCookie = "bypass_auth_check"

	// JustLoggedInCookie is a one shot post login marker.
	JustLoggedInCookie = "just_logged_in"

	// CheckGuardCookie is the auth flow's own guard against repeated
	// "already signed in" redirects from the login and signup pages. It is
	// browser session scoped.
	CheckGuardCookie = "auth_check_count"
)

// Marker lifetimes.
const (
	RecoveryFlowTTL  = 600 * time.Second
	RedirectCountTTL = 60 * time.Second
	AuthBypassTTL    = 3600 * time.Second
	JustLoggedInTTL  = 5 * time.Second
)

// Set is the marker state of one navigation, read once from the request.
type Set struct {
	SessionID      string
	RecoveryFlow   bool
	RecoveryBypass bool
	LoopBreak      bool
	RedirectCount  int
	AuthBypass     bool
	JustLoggedIn   bool
	CheckGuard     int
}

// FromCookies builds a Set from a cookie lookup function.
func FromCookies(cookie func(name string) string) Set {
	count, _ := strconv.Atoi(cookie(RedirectCountCookie))
	guard, _ := strconv.Atoi(cookie(CheckGuardCookie))

	return Set{
		SessionID:      cookie(SessionCookie),
		RecoveryFlow:   cookie(RecoveryFlowCookie) != "",
		RecoveryBypass: cookie(RecoveryBypassCookie) != "",
		LoopBreak:      cookie(LoopBreakCookie) != "",
		RedirectCount:  count,
		AuthBypass:     cookie(AuthBypassCookie) != "",
		JustLoggedIn:   cookie(JustLoggedInCookie) != "",
		CheckGuard:     guard,
	}
}

// FromRequest reads the marker set from a fiber request.
func FromRequest(c *fiber.Ctx) Set {
	return FromCookies(func(name string) string {
		return c.Cookies(name)
	})
}

// Change is one cookie write to apply to the response.
// MaxAge < 0 clears the cookie, 0 scopes it to the browser session.
type Change struct {
	Name   string
	Value  string
	MaxAge int
}

// Changes is an ordered list of cookie writes.
type Changes []Change

// Merge appends other to the change list.
func (cs Changes) Merge(other Changes) Changes {
	return append(cs, other...)
}

// Apply writes all changes to the fiber response. Every marker cookie is
// path "/" and SameSite Lax per the wire contract.
func (cs Changes) Apply(c *fiber.Ctx, secure bool) {
	for _, change := range cs {
		cookie := &fiber.Cookie{
			Name:     change.Name,
			Value:    change.Value,
			Path:     "/",
			MaxAge:   change.MaxAge,
			Secure:   secure,
			HTTPOnly: change.Name == SessionCookie,
			SameSite: "Lax",
		}

		if change.MaxAge < 0 {
			cookie.Value = ""
			cookie.Expires = time.Unix(0, 0)
		}

		c.Cookie(cookie)
	}
}

// Names returns the cookie names touched, for assertions and logging.
func (cs Changes) Names() []string {
	names := make([]string, 0, len(cs))
	for _, change := range cs {
		names = append(names, change.Name)
	}

	return names
}

func set(name, value string, ttl time.Duration) Change {
	return Change{Name: name, Value: value, MaxAge: int(ttl.Seconds())}
}

func clear(name string) Change {
	return Change{Name: name, MaxAge: -1}
}

// SetRecoveryFlow arms the recovery markers for a fresh reset link.
func SetRecoveryFlow() Changes {
	return Changes{
		set(RecoveryFlowCookie, "true", RecoveryFlowTTL),
		set(RecoveryBypassCookie, "true", RecoveryFlowTTL),
		Change{Name: LoopBreakCookie, Value: "true", MaxAge: 0},
	}
}

// ClearRecovery drops all recovery markers.
func ClearRecovery() Changes {
	return Changes{
		clear(RecoveryFlowCookie),
		clear(RecoveryBypassCookie),
		clear(LoopBreakCookie),
	}
}

// SetLoginBypass arms the post sign in grace markers.
func SetLoginBypass() Changes {
	return Changes{
		set(AuthBypassCookie, "true", AuthBypassTTL),
		set(JustLoggedInCookie, "true", JustLoggedInTTL),
	}
}

// ClearBypass drops the grace markers.
func ClearBypass() Changes {
	return Changes{
		clear(AuthBypassCookie),
		clear(JustLoggedInCookie),
	}
}

// SetRedirectCount stores the consecutive redirect counter.
func SetRedirectCount(n int) Changes {
	return Changes{set(RedirectCountCookie, strconv.Itoa(n), RedirectCountTTL)}
}

// ClearRedirectCount resets the consecutive redirect counter.
func ClearRedirectCount() Changes {
	return Changes{clear(RedirectCountCookie)}
}

// SetCheckGuard stores the auth flow's redirect guard counter.
func SetCheckGuard(n int) Changes {
	return Changes{Change{Name: CheckGuardCookie, Value: strconv.Itoa(n), MaxAge: 0}}
}

// ClearCheckGuard resets the auth flow's redirect guard counter.
func ClearCheckGuard() Changes {
	return Changes{clear(CheckGuardCookie)}
}

// SetSession stores the server side session id.
func SetSession(id string, ttl time.Duration) Changes {
	return Changes{set(SessionCookie, id, ttl)}
}

// ClearSession drops the server side session id.
func ClearSession() Changes {
	return Changes{clear(SessionCookie)}
}

// ClearAll purges every cookie this application owns. Used by the loop
// breaker and by logout.
func ClearAll() Changes {
	return Changes{
		clear(SessionCookie),
		clear(RecoveryFlowCookie),
		clear(RecoveryBypassCookie),
		clear(LoopBreakCookie),
		clear(RedirectCountCookie),
		clear(AuthBypassCookie),
		clear(JustLoggedInCookie),
		clear(CheckGuardCookie),
	}
}
