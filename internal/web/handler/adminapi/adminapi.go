// Package adminapi serves the administration JSON API: member accounts,
// posts, categories and the legacy import. Every mutation is audit logged.
package adminapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/importer"
	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
)

const (
	// Path is the root of the admin API.
	Path = handler.APIPath + "/admin"
	// UsersPath manages member accounts.
	UsersPath = Path + "/users"
	// PostsPath manages posts.
	PostsPath = Path + "/content/posts"
	// CategoriesPath manages categories.
	CategoriesPath = Path + "/content/categories"
	// ImportPath runs the legacy import.
	ImportPath = Path + "/import"

	idParam = "/:id"
)

// Service is the admin API handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	deps     *handler.Deps
	importer *importer.Importer
}

// Handler is the admin API handler.
var Handler = Service{}

// Init registers the admin API routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps *handler.Deps) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.cfg = cfg
	s.deps = deps
	s.importer = importer.New(deps.Store)

	e := deps.Enforcer

	users := app.Group(UsersPath, auth.RequireAPI(e, rbac.CapAdminUsers))
	users.Get("", s.ListUsers)
	users.Post("", s.CreateUser)
	users.Patch(idParam, s.UpdateUser)
	users.Delete(idParam, s.DeleteUser)

	posts := app.Group(PostsPath, auth.RequireAPI(e, rbac.CapAdminContent))
	posts.Get("", s.ListPosts)
	posts.Post("", s.CreatePost)
	posts.Patch(idParam, s.UpdatePost)
	posts.Delete(idParam, s.DeletePost)

	categories := app.Group(CategoriesPath, auth.RequireAPI(e, rbac.CapAdminContent))
	categories.Post("", s.CreateCategory)
	categories.Patch(idParam, s.UpdateCategory)
	categories.Delete(idParam, s.DeleteCategory)

	imports := app.Group(ImportPath, auth.RequireAPI(e, rbac.CapAdminSystem))
	imports.Get("", s.LastImport)
	imports.Post("", s.RunImport)

	return nil
}

// audit starts an audit event for a mutation by the caller of c.
func audit(c *fiber.Ctx, action string) *zerolog.Event {
	event := logger.Audit.Log().
		Str("action", action).
		Str("IP", c.IP())

	if identity := auth.Identity(c); identity != nil {
		event.Uint64("actor", identity.UserID)
	}

	return event
}

// failed logs a rejected mutation and writes the JSON error.
func failed(c *fiber.Ctx, action string, err error) error {
	audit(c, action).
		Str("outcome", "failure").
		Str("kind", rbac.KindOf(err).String()).
		Msg("admin")

	return handler.JSONError(c, err)
}
