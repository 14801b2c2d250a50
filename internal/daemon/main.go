// Package daemon wires the content store, the session storage and the web
// service into a runnable process.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/dsn"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/logger/adapter/stdlogger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it stopped.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// OpenStore connects to the configured database, migrates the schema and
// returns the content store.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(stdlogger.NewComponent("gorm", zerolog.WarnLevel), gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get sqlite handle")
		}

		// one writer, and every query sees the same :memory: database
		sqlDB.SetMaxOpenConns(1)
	}

	if err = models.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return store.New(db, cfg.Store)
}

// sessionStorage returns the fiber storage for sessions. sqlite keeps them in
// process memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}

	log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")

	return nil
}

func tokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	secret := cfg.Webserver.TokenSecret

	if secret == "" {
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			return nil, err
		}

		log.Warn().Msg("no Webserver.TokenSecret configured: bearer tokens do not survive a restart")
	}

	return auth.NewTokenIssuer(secret, cfg.Webserver.Session.ExpiryTime)
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	s, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(ctx, cfg, s); err != nil {
		return nil, err
	}

	session.Init(sessionStorage(cfg), cfg.Webserver.Session.ExpiryTime)

	tokens, err := tokenIssuer(cfg)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, &handler.Deps{
		Store:    s,
		Enforcer: rbac.NewEnforcer(nil),
		Accounts: auth.NewLocalProvider(s),
		Tokens:   tokens,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("engine", cfg.DB.GormEngine).
		Int("port", cfg.Webserver.Port).
		Dur("session_expiry", cfg.Webserver.Session.ExpiryTime).
		Msg("daemon ready")

	return &Daemon{cfg: cfg, webService: webService}, nil
}
