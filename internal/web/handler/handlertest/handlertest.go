// Package handlertest wires handler dependencies over an in-memory store for tests.
package handlertest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/dbtest"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

// Config returns a minimal valid configuration.
func Config() *config.Config {
	return &config.Config{
		Title: "Tiger Archive",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// Deps returns handler dependencies over a fresh store and session storage.
func Deps(t testing.TB) *handler.Deps {
	t.Helper()

	webtest.InitSessions(t)

	s := dbtest.Open(t)

	tokens, err := auth.NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)

	return &handler.Deps{
		Store:    s,
		Enforcer: rbac.NewEnforcer(nil),
		Accounts: auth.NewLocalProvider(s),
		Tokens:   tokens,
	}
}
