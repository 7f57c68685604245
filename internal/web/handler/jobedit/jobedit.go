// Package jobedit provides the posting management forms: create, edit and
// delete, all scoped to the signed in owner.
package jobedit

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/config"
	jobctl "github.com/go-jobboard/jobboard/internal/db/controller/job"
	"github.com/go-jobboard/jobboard/internal/db/models"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/handler/dashboard"
	"github.com/go-jobboard/jobboard/internal/web/handler/login"
	"github.com/go-jobboard/jobboard/internal/web/navigation"
)

const (
	// NewPath is the path of the posting creation form.
	NewPath = "/jobs/new"

	// EditPath is the path of the posting edit form.
	EditPath = "/dashboard/jobs/:id/edit"

	// DeletePath is the path of the posting delete action.
	DeletePath = "/dashboard/jobs/:id/delete"

	// TemplateName is the name of the posting form template.
	TemplateName = "jobs/form"
)

// Form is the posting form payload.
type Form struct {
	Title       string `form:"title"       validate:"required,max=200"`
	Company     string `form:"company"     validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Salary      string `form:"salary"      validate:"max=100"`
	City        string `form:"city"        validate:"max=100"`
	Country     string `form:"country"     validate:"max=100"`
	Remote      bool   `form:"remote"`
	Type        string `form:"type"        validate:"required"`
	ApplyURL    string `form:"apply_url"   validate:"required,url,max=500"`
}

var validate = validator.New()

// Service is the posting form handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the posting form handler.
var Handler = Service{}

// Init initializes the posting form handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Get(NewPath, s.GetNew)
	app.Post(NewPath, s.PostNew)
	app.Get(EditPath, s.GetEdit)
	app.Post(EditPath, s.PostEdit)
	app.Post(DeletePath, s.PostDelete)

	return nil
}

// GetNew handles the creation form rendering.
func (s *Service) GetNew(c *fiber.Ctx) error {
	if handler.Account(c) == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	return s.render(c, fiber.Map{"job": &models.Job{}})
}

// PostNew handles the creation form submission.
func (s *Service) PostNew(c *fiber.Ctx) error {
	account := handler.Account(c)
	if account == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	form, posting, msg := s.parseForm(c)
	if msg != "" {
		return s.render(c, fiber.Map{"job": posting, "error": msg})
	}

	posting.OwnerID = account.User.ID

	if err := jobctl.Create(s.db, posting); err != nil {
		log.Error().Err(err).Msg("creating job failed")

		return s.render(c, fiber.Map{"job": posting, "error": "Failed to save the posting. Please try again."})
	}

	log.Info().Str("id", posting.ID).Str("title", form.Title).Msg("job created")

	return c.Redirect(dashboard.Path, fiber.StatusFound)
}

// GetEdit handles the edit form rendering.
func (s *Service) GetEdit(c *fiber.Ctx) error {
	account := handler.Account(c)
	if account == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	posting, err := jobctl.GetOwned(s.db, c.Params("id"), account.User.ID)
	if err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Str("id", c.Params("id")).Msg("loading job for edit failed")

		return fiber.ErrInternalServerError
	}

	return s.render(c, fiber.Map{"job": posting, "editing": true})
}

// PostEdit handles the edit form submission.
func (s *Service) PostEdit(c *fiber.Ctx) error {
	account := handler.Account(c)
	if account == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	_, posting, msg := s.parseForm(c)
	posting.ID = c.Params("id")

	if msg != "" {
		return s.render(c, fiber.Map{"job": posting, "editing": true, "error": msg})
	}

	if err := jobctl.Update(s.db, posting, account.User.ID); err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Str("id", posting.ID).Msg("updating job failed")

		return s.render(c, fiber.Map{"job": posting, "editing": true, "error": "Failed to save the posting. Please try again."})
	}

	return c.Redirect(dashboard.Path, fiber.StatusFound)
}

// PostDelete handles the posting delete action.
func (s *Service) PostDelete(c *fiber.Ctx) error {
	account := handler.Account(c)
	if account == nil {
		return c.Redirect(login.Path, fiber.StatusFound)
	}

	if err := jobctl.Delete(s.db, c.Params("id"), account.User.ID); err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Str("id", c.Params("id")).Msg("deleting job failed")

		return fiber.ErrInternalServerError
	}

	return c.Redirect(dashboard.Path, fiber.StatusFound)
}

// parseForm reads and validates the posting form. The returned message is
// empty when the payload is valid.
func (s *Service) parseForm(c *fiber.Ctx) (*Form, *models.Job, string) {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return form, &models.Job{}, "Invalid form submission."
	}

	posting := &models.Job{
		Title:       form.Title,
		Company:     form.Company,
		Description: form.Description,
		Salary:      form.Salary,
		City:        form.City,
		Country:     form.Country,
		Remote:      form.Remote,
		Type:        models.JobType(form.Type),
		ApplyURL:    form.ApplyURL,
	}

	if err := validate.Struct(form); err != nil {
		return form, posting, validationMessage(err)
	}

	if !posting.Type.Valid() {
		return form, posting, "Please pick a valid employment type."
	}

	return form, posting, ""
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Invalid form submission."
	}

	first := fieldErrors[0]

	switch first.Tag() {
	case "required":
		return first.Field() + " is required."
	case "url":
		return "The application link must be a valid URL."
	case "max":
		return first.Field() + " is too long."
	default:
		return "Invalid form submission."
	}
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	if _, ok := data["title"]; !ok {
		if _, editing := data["editing"]; editing {
			data["title"] = "Edit posting"
		} else {
			data["title"] = "Post a job"
		}
	}

	data["types"] = models.JobTypes()
	data["nav"] = navigation.NewContext(data["title"].(string), "job-new", true)

	return c.Render(TemplateName, data, handler.BaseLayout)
}
