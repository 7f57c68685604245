// Package changepassword serves the password change page, which doubles as
// the landing page of the mailed recovery flow.
package changepassword

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
	// Path is the path to the password change page.
	Path = "/auth/change-password"

	// TemplateName is the name of the password change template.
	TemplateName = "changepassword"
)

// Service is the password change handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	flow *authflow.Flow
}

// Handler is the password change handler.
var Handler = Service{}

// Init initializes the password change handler.
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

// Get handles the password change page rendering. A pending recovery code in
// the URL is exchanged for a session first, so the form can submit against a
// live session.
func (s *Service) Get(c *fiber.Ctx) error {
	recovery := recoveryIndicated(c)

	if code := c.Query("code"); code != "" && recovery {
		result, flowErr := s.flow.HandleCallback(c.UserContext(), code, true)
		if flowErr != nil {
			return s.render(c, fiber.Map{"error": flowErr.Message, "invalid": true, "recovery": true})
		}

		result.Cookies.Apply(c, !s.cfg.DevMode)

		return c.Redirect(result.RedirectTo, fiber.StatusFound)
	}

	// without recovery context the page is the signed in password change
	if !recovery && handler.Account(c) == nil {
		return s.render(c, fiber.Map{
			"error":    authflow.MsgExpiredRecovery,
			"invalid":  true,
			"recovery": true,
		})
	}

	return s.render(c, fiber.Map{"recovery": recovery})
}

// Post handles the new password submission.
func (s *Service) Post(c *fiber.Ctx) error {
	recovery := c.FormValue("recovery") == "true"
	set := markers.FromRequest(c)

	result, flowErr := s.flow.CompleteRecoverySubmission(
		c.UserContext(),
		set,
		c.FormValue("password"),
		c.FormValue("confirm"),
		recovery,
	)
	if flowErr != nil {
		log.Info().Err(flowErr).Stringer("kind", flowErr.Kind).Msg("password change failed")

		return s.render(c, fiber.Map{
			"error":    flowErr.Message,
			"invalid":  flowErr.Kind == authflow.KindExpiredRecoveryLink,
			"recovery": recovery,
		})
	}

	result.Cookies.Apply(c, !s.cfg.DevMode)

	return c.Redirect(result.RedirectTo, fiber.StatusFound)
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	data["title"] = "Change password"
	data["nav"] = navigation.NewContext("Change password", "", handler.Account(c) != nil)

	return c.Render(TemplateName, data, handler.BaseLayout)
}

// recoveryIndicated reports whether this page load belongs to the recovery
// flow: callback referral, direct mail link, recovery URL or a live marker.
func recoveryIndicated(c *fiber.Ctx) bool {
	if c.Query("from") == "reset" || c.Query("direct") == "true" {
		return true
	}

	if c.Query("type") == "recovery" &&
		(c.Query("code") != "" || c.Query("token") != "") {
		return true
	}

	set := markers.FromRequest(c)

	return set.RecoveryFlow || set.RecoveryBypass
}
