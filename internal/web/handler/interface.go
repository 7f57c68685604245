package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, flow *authflow.Flow) error
}
