// Package login serves the sign in page: credential submission, the
// "already signed in" shortcut and the password reset request form.
package login

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
	// Path is the path to the login page.
	Path = "/auth/login"

	// ForgotPath is the password reset request endpoint.
	ForgotPath = Path + "/forgot"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	flow *authflow.Flow
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
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
	app.Post(ForgotPath, s.Forgot)

	return nil
}

// Get handles the login page rendering. A live session skips the form
// unless the loop guard says otherwise.
func (s *Service) Get(c *fiber.Ctx) error {
	target := c.Query("redirect")

	set := markers.FromRequest(c)
	if result, flowErr := s.flow.CheckExistingSession(c.UserContext(), set, target); flowErr != nil {
		return s.render(c, fiber.Map{"error": flowErr.Message})
	} else if result != nil {
		result.Cookies.Apply(c, !s.cfg.DevMode)

		return c.Redirect(result.RedirectTo, fiber.StatusFound)
	}

	data := fiber.Map{"redirect": target}
	if msg := errorMessage(c.Query("error")); msg != "" {
		data["error"] = msg
	}

	return s.render(c, data)
}

// Post handles the credential submission.
func (s *Service) Post(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	target := c.FormValue("redirect")

	result, flowErr := s.flow.SignIn(c.UserContext(), email, password, target)
	if flowErr != nil {
		log.Info().Err(flowErr).Stringer("kind", flowErr.Kind).Msg("sign in failed")

		return s.render(c, fiber.Map{
			"error":    flowErr.Message,
			"email":    email,
			"redirect": target,
		})
	}

	result.Cookies.Apply(c, !s.cfg.DevMode)

	return c.Redirect(result.RedirectTo, fiber.StatusFound)
}

// Forgot handles the password reset request form.
func (s *Service) Forgot(c *fiber.Ctx) error {
	email := c.FormValue("email")
	if email == "" {
		return s.render(c, fiber.Map{"error": "Please enter your email address first."})
	}

	if flowErr := s.flow.RequestPasswordReset(c.UserContext(), email); flowErr != nil {
		log.Info().Err(flowErr).Msg("password reset request failed")

		return s.render(c, fiber.Map{"error": flowErr.Message, "email": email})
	}

	return s.render(c, fiber.Map{
		"message": "Password reset email sent to " + email + ". Please check your inbox.",
		"email":   email,
	})
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	data["title"] = "Log in"
	data["nav"] = navigation.NewContext("Log in", "login", false)

	return c.Render(TemplateName, data, handler.BaseLayout)
}

// errorMessage maps redirect error codes onto user facing text. Unknown
// values render verbatim; the callback already encodes friendly messages.
func errorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "too_many_redirects":
		return authflow.MsgTooManyRedirects
	default:
		return code
	}
}
