// Package dashboard provides the member dashboard.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	recentPosts = 5
)

// Data is the dashboard view model.
type Data struct {
	Identity     *rbac.Identity
	RoleName     string
	RoleInfo     string
	Capabilities []rbac.Capability
	Categories   []category.Summary
	Recent       []RecentPost
	VisibleTotal int64
}

// RecentPost is a teaser on the dashboard.
type RecentPost struct {
	Title string
	Slug  string
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps *handler.Deps) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.deps = deps
	s.cfg = cfg

	app.Get(Path,
		auth.RequirePage(deps.Enforcer, rbac.CapViewDashboard),
		s.Get,
	)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	identity := auth.Identity(c)

	nav := navigation.NewContext("Dashboard", navigation.SectionMember, "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true).
		WithMenu(s.deps.Enforcer, identity)

	caps, err := s.deps.Enforcer.Table().PermissionsOf(identity.Role)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	ctx := c.UserContext()

	categories, err := category.List(ctx, s.deps.Store, identity.Role)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	posts, total, err := post.List(ctx, s.deps.Store, post.Filter{Viewer: identity.Role, Limit: recentPosts})
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	data := Data{
		Identity:     identity,
		RoleName:     identity.Role.DisplayName(),
		RoleInfo:     identity.Role.Description(),
		Capabilities: caps,
		Categories:   nonEmpty(categories),
		Recent:       make([]RecentPost, 0, len(posts)),
		VisibleTotal: total,
	}

	for i := range posts {
		data.Recent = append(data.Recent, RecentPost{Title: posts[i].Title, Slug: posts[i].Slug})
	}

	log.Debug().
		Uint64("user", identity.UserID).
		Int("categories", len(data.Categories)).
		Int64("visible_posts", total).
		Msg("dashboard rendered")

	return c.Render(TemplateName, fiber.Map{
		"Title":       s.cfg.Title,
		"Navigation":  nav,
		"CurrentUser": identity,
		"Data":        data,
	}, handler.BaseLayout)
}

func nonEmpty(in []category.Summary) []category.Summary {
	out := make([]category.Summary, 0, len(in))

	for i := range in {
		if in[i].PostCount > 0 {
			out = append(out, in[i])
		}
	}

	return out
}
