package gatekeeper

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/go-jobboard/jobboard/internal/web/markers"
)

// Config holds the middleware settings.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Secure marks the cookies written by decisions as secure.
	Secure bool
}

// Middleware adapts the decision function to a fiber handler. Only GET
// navigations are gated; form posts land on handlers that run their own
// session checks.
func (g *Gatekeeper) Middleware(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.Next != nil && config.Next(c) {
			return c.Next()
		}

		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		in := Input{
			Path:    c.Path(),
			Query:   queryValues(c),
			Markers: markers.FromRequest(c),
		}

		out := g.Evaluate(c.UserContext(), in)
		out.Cookies.Apply(c, config.Secure)

		log.Debug().
			Str("path", in.Path).
			Stringer("decision", out.Decision).
			Strs("cookies", out.Cookies.Names()).
			Msg("navigation evaluated")

		if out.Decision.Redirects() {
			return c.Redirect(out.Location, fiber.StatusFound)
		}

		return c.Next()
	}
}

func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})

	return values
}
