// Package authcallback terminates the mailed provider links: it exchanges
// the one time code for a session and routes the browser onwards.
package authcallback

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/handler/login"
)

const (
	// Path is the path to the auth callback endpoint.
	Path = "/auth/callback"

	// MsgLinkExpired is shown on the login page when a mailed link is no
	// longer usable.
	MsgLinkExpired = "Password reset link is invalid or has expired. Please request a new one."
)

// Service is the auth callback handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	flow *authflow.Flow
}

// Handler is the auth callback handler.
var Handler = Service{}

// Init initializes the auth callback handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, flow *authflow.Flow) error {
	if app == nil || cfg == nil || flow == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.flow = flow

	app.Get(Path, s.Get)

	return nil
}

// Get handles the provider callback.
func (s *Service) Get(c *fiber.Ctx) error {
	// expired links come back as an error, access_denied with otp_expired
	// being the common case
	if c.Query("error") != "" {
		log.Info().
			Str("error", c.Query("error")).
			Str("description", c.Query("error_description")).
			Msg("provider callback carried an error")

		return s.toLogin(c, MsgLinkExpired)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	recovery := c.Query("type") == "recovery"

	result, flowErr := s.flow.HandleCallback(c.UserContext(), code, recovery)
	if flowErr != nil {
		log.Info().Err(flowErr).Stringer("kind", flowErr.Kind).Msg("code exchange failed")

		if recovery {
			return s.toLogin(c, MsgLinkExpired)
		}

		return s.toLogin(c, flowErr.Message)
	}

	result.Cookies.Apply(c, !s.cfg.DevMode)

	return c.Redirect(result.RedirectTo, fiber.StatusFound)
}

func (s *Service) toLogin(c *fiber.Ctx, message string) error {
	return c.Redirect(login.Path+"?error="+url.QueryEscape(message), fiber.StatusFound)
}
