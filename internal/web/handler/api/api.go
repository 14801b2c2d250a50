// Package api serves the member JSON API: post and category listings, the
// caller's identity and bearer token issuance.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
)

const (
	// PostsPath lists posts.
	PostsPath = handler.APIPath + "/posts"
	// CategoriesPath lists categories.
	CategoriesPath = handler.APIPath + "/categories"
	// MePath describes the caller.
	MePath = handler.APIPath + "/me"
	// TokenPath exchanges credentials for a bearer token.
	TokenPath = handler.APIPath + "/token"
)

// PostList is the body of GET /api/posts.
type PostList struct {
	Posts  []models.Post `json:"posts"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Me is the body of GET /api/me.
type Me struct {
	User         *rbac.Identity    `json:"user"`
	RoleName     string            `json:"roleName"`
	Description  string            `json:"roleDescription"`
	Capabilities []rbac.Capability `json:"capabilities"`
}

// TokenRequest is the body of POST /api/token.
type TokenRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service is the member API handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the member API handler.
var Handler = Service{}

// Init registers the member API routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps *handler.Deps) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.cfg = cfg
	s.deps = deps

	e := deps.Enforcer

	app.Get(PostsPath, auth.RequireAPIFor(e, listCapability), s.ListPosts)
	app.Get(PostsPath+"/:slug", auth.RequireAPI(e, rbac.CapViewHistory), s.GetPost)
	app.Get(CategoriesPath, auth.RequireAPI(e, rbac.CapViewHistory), s.ListCategories)
	app.Get(MePath, auth.RequireIdentity(), s.Me)
	app.Post(TokenPath, handler.RateLimit(cfg), s.Token)

	return nil
}

func listCapability(c *fiber.Ctx) rbac.Capability {
	return rbac.CapabilityForCategory(c.Query("category"))
}

// ListPosts handles GET /api/posts?category=&limit=&offset=.
func (s *Service) ListPosts(c *fiber.Ctx) error {
	f := post.Filter{
		Category: c.Query("category"),
		Viewer:   auth.Identity(c).Role,
		Limit:    c.QueryInt("limit", post.DefaultLimit),
		Offset:   c.QueryInt("offset", 0),
	}

	if f.Category != "" && !models.ValidSlug(f.Category) {
		return handler.JSONError(c, rbac.NewValidationError("category", "invalid category slug"))
	}

	posts, total, err := post.List(c.UserContext(), s.deps.Store, f)
	if err != nil {
		return handler.JSONError(c, err)
	}

	f = f.Normalized()

	return c.JSON(PostList{Posts: posts, Total: total, Limit: f.Limit, Offset: f.Offset})
}

// GetPost handles GET /api/posts/:slug. Posts above the caller's rank are 404.
func (s *Service) GetPost(c *fiber.Ctx) error {
	p, err := post.GetBySlug(c.UserContext(), s.deps.Store, c.Params("slug"), auth.Identity(c).Role)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"post": p})
}

// ListCategories handles GET /api/categories. Counts cover the published posts
// the caller may see.
func (s *Service) ListCategories(c *fiber.Ctx) error {
	categories, err := category.List(c.UserContext(), s.deps.Store, auth.Identity(c).Role)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"categories": categories})
}

// Me handles GET /api/me.
func (s *Service) Me(c *fiber.Ctx) error {
	identity := auth.Identity(c)

	caps, err := s.deps.Enforcer.Table().PermissionsOf(identity.Role)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(Me{
		User:         identity,
		RoleName:     identity.Role.DisplayName(),
		Description:  identity.Role.Description(),
		Capabilities: caps,
	})
}

// Token handles POST /api/token.
func (s *Service) Token(c *fiber.Ctx) error {
	in := new(TokenRequest)
	if err := handler.Bind(c, in); err != nil {
		return handler.JSONError(c, err)
	}

	u, err := s.deps.Accounts.Authenticate(c.UserContext(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Audit.Log().Str("outcome", "failure").Str("email", in.Email).Str("IP", c.IP()).Msg("token")
		}

		return handler.JSONError(c, err)
	}

	token, expires, err := s.deps.Tokens.Issue(u.Identity())
	if err != nil {
		return handler.JSONError(c, err)
	}

	logger.Audit.Log().Str("outcome", "success").Uint64("user", u.ID).Str("IP", c.IP()).Msg("token")

	return c.JSON(TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expires})
}
