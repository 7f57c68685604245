// Package daemon wires the application together: database, session storage,
// the provider client and the web service.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/authsvc"
	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/db/dsn"
	"github.com/go-jobboard/jobboard/internal/db/models"
	"github.com/go-jobboard/jobboard/internal/web"
	"github.com/go-jobboard/jobboard/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(dsn.Dialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(&models.Job{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	session.Init(sessionStorage(cfg))

	provider, err := authsvc.NewClient(authsvc.Config{
		URL:          cfg.Auth.Provider.URL,
		ClientID:     cfg.Auth.Provider.ClientID,
		ClientSecret: cfg.Auth.Provider.ClientSecret,
		Timeout:      cfg.Auth.Provider.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create auth provider client")
	}

	return &Daemon{
		webService: web.New(cfg, db, provider),
		cfg:        cfg,
	}
}

// sessionStorage picks the session backend matching the database engine.
// SQLite deployments keep sessions in process memory.
func sessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.GormEngine {
	case dsn.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case dsn.EngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and do not survive a restart")

		return session.NewMemoryStorage()
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}
}
