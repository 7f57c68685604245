// Package logout tears the session down and purges every marker cookie.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/markers"
)

// Path is the path to the logout endpoint.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	flow *authflow.Flow
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, flow *authflow.Flow) error {
	if app == nil || cfg == nil || flow == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.flow = flow

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout handles user logout.
func (s *Service) Logout(c *fiber.Ctx) error {
	result := s.flow.SignOut(c.UserContext(), markers.FromRequest(c))
	result.Cookies.Apply(c, !s.cfg.DevMode)

	return c.Redirect(result.RedirectTo, fiber.StatusFound)
}
