package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// ErrIncompleteDeps is returned by Init when a dependency is missing.
var ErrIncompleteDeps = errors.New("handler dependencies are incomplete")

// Deps are the shared services handed to every handler.
type Deps struct {
	Store    *store.Store
	Enforcer *rbac.Enforcer
	Accounts *auth.LocalProvider
	Tokens   *auth.TokenIssuer
}

// Validate reports whether every dependency is set.
func (d *Deps) Validate() error {
	if d == nil || d.Store == nil || d.Enforcer == nil || d.Accounts == nil || d.Tokens == nil {
		return ErrIncompleteDeps
	}

	return nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, deps *Deps) error
}
