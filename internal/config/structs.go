package config

import (
	"time"

	"github.com/TigerArchive/TigerArchive/internal/logger"
)

// Session settings.
type Session struct {
	// ExpiryTime bounds the stale-role window: a demoted member keeps the old
	// role until the session expires or they sign in again.
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Store     Store
	Import    Import
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	TokenSecret    string  // HMAC secret for API bearer tokens
	LoginRateLimit int     // max login/register/token attempts per minute and IP, 0 disables
	Session        Session // session settings
}

// Store holds the content store resilience settings.
type Store struct {
	RetryAttempts   int           // attempts for a call failing with store unavailable
	BreakerFailures uint32        // consecutive failures opening the circuit
	BreakerTimeout  time.Duration // open state duration before probing again
}

// Import holds the legacy content export locations.
type Import struct {
	CategoriesFile string
	PostsFile      string
}

// Seed controls the bootstrap administrator created on an empty user table.
type Seed struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string // generated and logged once when empty
}
