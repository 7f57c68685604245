// Package jobs serves the public job board: the searchable listing and the
// posting detail page.
package jobs

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/config"
	jobctl "github.com/go-jobboard/jobboard/internal/db/controller/job"
	"github.com/go-jobboard/jobboard/internal/db/models"
	"github.com/go-jobboard/jobboard/internal/web/handler"
	"github.com/go-jobboard/jobboard/internal/web/navigation"
)

const (
	// Path is the path to the public listing page.
	Path = "/jobs"

	// ListTemplateName is the name of the listing template.
	ListTemplateName = "jobs/list"

	// DetailTemplateName is the name of the detail template.
	DetailTemplateName = "jobs/detail"

	// DefaultPageSize is the default number of postings per page.
	DefaultPageSize = 20

	// MaxPageSize caps the page size query parameter.
	MaxPageSize = 100
)

// QueryParams holds the search and pagination parameters of a listing
// request.
type QueryParams struct {
	Page        int
	PageSize    int
	SearchQuery string
	FilterType  models.JobType
}

// PageData represents one page of postings for template rendering.
type PageData struct {
	Jobs        []models.Job
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	SearchQuery string
	FilterType  models.JobType
}

// Service is the public listing handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the public listing handler.
var Handler = Service{}

// Init initializes the public listing handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.List)
	app.Get(Path+"/:id", s.Detail)

	return nil
}

// List handles the listing page rendering.
func (s *Service) List(c *fiber.Ctx) error {
	params := parseQueryParams(c)

	found, total, err := jobctl.ListPublic(s.db, jobctl.Filter{
		Search: params.SearchQuery,
		Type:   params.FilterType,
		Offset: (params.Page - 1) * params.PageSize,
		Limit:  params.PageSize,
	})
	if err != nil {
		log.Error().Err(err).Msg("public job listing failed")

		return fiber.ErrInternalServerError
	}

	return c.Render(ListTemplateName, fiber.Map{
		"title": "Find your next job",
		"page":  buildPageData(found, int(total), params),
		"types": models.JobTypes(),
		"user":  currentUser(c),
		"nav":   navigation.NewContext("Find your next job", "jobs", handler.Account(c) != nil),
	}, handler.BaseLayout)
}

// Detail handles the posting detail page rendering.
func (s *Service) Detail(c *fiber.Ctx) error {
	posting, err := jobctl.GetByID(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, jobctl.ErrJobNotFound) || errors.Is(err, jobctl.ErrJobIDEmpty) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Str("id", c.Params("id")).Msg("loading job failed")

		return fiber.ErrInternalServerError
	}

	account := handler.Account(c)

	data := fiber.Map{
		"title": posting.Title + " at " + posting.Company,
		"job":   posting,
		"user":  currentUser(c),
		"nav":   navigation.NewContext(posting.Title, "jobs", account != nil),
	}
	if account != nil {
		data["is_owner"] = account.User.ID == posting.OwnerID
	}

	return c.Render(DetailTemplateName, data, handler.BaseLayout)
}

func currentUser(c *fiber.Ctx) interface{} {
	if account := handler.Account(c); account != nil {
		return account.User
	}

	return nil
}

func parseQueryParams(c *fiber.Ctx) QueryParams {
	params := QueryParams{
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", DefaultPageSize),
		SearchQuery: c.Query("q"),
	}

	if params.Page < 1 {
		params.Page = 1
	}

	if params.PageSize < 1 || params.PageSize > MaxPageSize {
		params.PageSize = DefaultPageSize
	}

	if t := models.JobType(c.Query("type")); t.Valid() {
		params.FilterType = t
	}

	return params
}

func buildPageData(jobs []models.Job, total int, params QueryParams) PageData {
	totalPages := (total + params.PageSize - 1) / params.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return PageData{
		Jobs:        jobs,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasPrevPage: params.Page > 1,
		HasNextPage: params.Page < totalPages,
		PrevPage:    params.Page - 1,
		NextPage:    params.Page + 1,
		SearchQuery: params.SearchQuery,
		FilterType:  params.FilterType,
	}
}
