// Package web assembles the fiber application: templates, static files, the
// gatekeeper middleware and all page handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/authsvc"
	"github.com/go-jobboard/jobboard/internal/config"
	fiberlogger "github.com/go-jobboard/jobboard/internal/logger/adapter/fiber"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
	"github.com/go-jobboard/jobboard/internal/web/gatekeeper"
	"github.com/go-jobboard/jobboard/internal/web/handler/authcallback"
	"github.com/go-jobboard/jobboard/internal/web/handler/changepassword"
	"github.com/go-jobboard/jobboard/internal/web/handler/dashboard"
	"github.com/go-jobboard/jobboard/internal/web/handler/jobedit"
	"github.com/go-jobboard/jobboard/internal/web/handler/jobs"
	"github.com/go-jobboard/jobboard/internal/web/handler/login"
	"github.com/go-jobboard/jobboard/internal/web/handler/logout"
	"github.com/go-jobboard/jobboard/internal/web/handler/signup"
	"github.com/go-jobboard/jobboard/internal/web/session"
)

// CheckAliveURI is the health endpoint used by load balancers.
const CheckAliveURI = "/healthz"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the health endpoint first
	// so the LB drains this instance before the listener stops.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 for %d seconds to let the LB remove this instance",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, provider authsvc.Provider) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if provider == nil {
		panic("provider cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	// access log
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Get(CheckAliveURI, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("ok")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// the gatekeeper decides allow or redirect before any page renders
	gate := gatekeeper.New(session.NewValidator(provider))
	gate.Timeout = cfg.Auth.Provider.Timeout

	app.Use(gate.Middleware(gatekeeper.Config{Secure: !cfg.DevMode}))

	flow := authflow.New(provider, cfg.Webserver.URL, cfg.Webserver.Session.ExpiryTime)

	// init handlers (they register their own routes)
	initErr := func(name string, err error) {
		if err != nil {
			log.Fatal().Err(err).Str("handler", name).Msg("handler init failed")
		}
	}

	initErr("login", login.Handler.Init(app, cfg, flow))
	initErr("signup", signup.Handler.Init(app, cfg, flow))
	initErr("changepassword", changepassword.Handler.Init(app, cfg, flow))
	initErr("authcallback", authcallback.Handler.Init(app, cfg, flow))
	initErr("logout", logout.Handler.Init(app, cfg, flow))
	initErr("dashboard", dashboard.Handler.Init(app, cfg, db))
	// jobedit first: /jobs/new must win over the /jobs/:id detail route
	initErr("jobedit", jobedit.Handler.Init(app, cfg, db))
	initErr("jobs", jobs.Handler.Init(app, cfg, db))

	// root goes to the public board
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(jobs.Path)
	})

	return service
}
