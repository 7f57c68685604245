// Package signup serves the account creation page.
package signup

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/markers"
	"github.com/go-jobboard/jobboard/internal/web/navigation"
)

const (
	// Path is the path to the signup page.
	Path = "/auth/signup"

	// TemplateName is the name of the signup template.
	TemplateName = "signup"
)

// Service is the signup handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	flow *authflow.Flow
}

// Handler is the signup handler.
var Handler = Service{}

// Init initializes the signup handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, flow *authflow.Flow) error {
	if app == nil || cfg == nil || flow == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.flow = flow

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get handles the signup page rendering. Like login, a live session skips
// the form.
func (s *Service) Get(c *fiber.Ctx) error {
	set := markers.FromRequest(c)
	if result, flowErr := s.flow.CheckExistingSession(c.UserContext(), set, ""); flowErr != nil {
		return s.render(c, fiber.Map{"error": flowErr.Message})
	} else if result != nil {
		result.Cookies.Apply(c, !s.cfg.DevMode)

		return c.Redirect(result.RedirectTo, fiber.StatusFound)
	}

	return s.render(c, fiber.Map{})
}

// Post handles the account creation submission.
func (s *Service) Post(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	fullName := c.FormValue("full_name")

	outcome, flowErr := s.flow.SignUp(c.UserContext(), email, password, fullName)
	if flowErr != nil {
		log.Info().Err(flowErr).Stringer("kind", flowErr.Kind).Msg("sign up failed")

		return s.render(c, fiber.Map{
			"error":     flowErr.Message,
			"email":     email,
			"full_name": fullName,
		})
	}

	if outcome.ConfirmationPending {
		return s.render(c, fiber.Map{
			"message": "Account created. Please check your inbox to confirm your email address.",
			"email":   email,
		})
	}

	outcome.Cookies.Apply(c, !s.cfg.DevMode)

	return c.Redirect(outcome.RedirectTo, fiber.StatusFound)
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	data["title"] = "Create an account"
	data["nav"] = navigation.NewContext("Create an account", "signup", false)

	return c.Render(TemplateName, data, handler.BaseLayout)
}
