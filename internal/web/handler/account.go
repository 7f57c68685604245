package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-jobboard/jobboard/internal/web/markers"
	"github.com/go-jobboard/jobboard/internal/web/session"
)

// Account resolves the session data behind the request's session cookie.
// Returns nil for anonymous requests and stale session ids.
func Account(c *fiber.Ctx) *session.Data {
	return session.Current(c.Cookies(markers.SessionCookie))
}
