package config

import (
	"time"

	"github.com/go-jobboard/jobboard/internal/logger"
)

// Session settings for the server side session store.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic bool    // enable static file browsing (for development purposes only)
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver, used to build callback links
	Session      Session // session settings
}

// Auth holds the external identity provider settings.
type Auth struct {
	Provider Provider
}

// Provider is the connection config for the external authentication service.
// The service owns credential verification, token issuance and recovery
// mail delivery; this application only talks to its HTTP API.
type Provider struct {
	URL          string        // base url of the provider API
	ClientID     string        `toml:"clientId"`
	ClientSecret string        `toml:"clientSecret"`
	Timeout      time.Duration // per request timeout; the gatekeeper must never block navigation on it
}
