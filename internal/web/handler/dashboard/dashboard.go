// Package dashboard provides the signed in overview of a user's job
// postings.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/config"
	jobctl "github.com/go-jobboard/jobboard/internal/db/controller/job"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/handler/login"
	"github.com/go-jobboard/jobboard/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = "/dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get handles the dashboard page rendering. The gate already requires a
// session here, but the handler still degrades to a login redirect when the
// session vanished between the two checks.
func (s *Service) Get(c *fiber.Ctx) error {
	account := handler.Account(c)
	if account == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	jobs, err := jobctl.ListByOwner(s.db, account.User.ID)
	if err != nil {
		log.Error().Err(err).Str("owner", account.User.ID).Msg("listing own jobs failed")

		return fiber.ErrInternalServerError
	}

	return c.Render(TemplateName, fiber.Map{
		"title": "Dashboard",
		"user":  account.User,
		"jobs":  jobs,
		"nav":   navigation.NewContext("Dashboard", "dashboard", true),
	}, handler.BaseLayout)
}
