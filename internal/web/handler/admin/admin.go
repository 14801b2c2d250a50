// Package admin provides the administration pages: the system overview, the
// member list and the content list. Mutations go through the admin API.
package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/user"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/importer"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/dashboard"
	"github.com/TigerArchive/TigerArchive/internal/web/navigation"
)

const (
	// Path is the system overview.
	Path = handler.RootPath + "admin"
	// UsersPath lists member accounts.
	UsersPath = Path + "/users"
	// ContentPath lists posts of every status and the categories.
	ContentPath = Path + "/content"

	// TemplateSystem renders the system overview.
	TemplateSystem = "admin/system"
	// TemplateUsers renders the member list.
	TemplateUsers = "admin/users"
	// TemplateContent renders the content list.
	TemplateContent = "admin/content"
)

// RoleCount is one row of the membership breakdown.
type RoleCount struct {
	Role  rbac.Role
	Name  string
	Count int64
}

// SystemData is the system overview view model.
type SystemData struct {
	Users      int64
	Roles      []RoleCount
	Posts      int64
	Categories int
	LastImport *importer.Marker
}

// UserRow is one line of the member list.
type UserRow struct {
	ID        uint64
	Email     string
	Name      string
	Role      rbac.Role
	RoleName  string
	ClassYear string
	Self      bool
}

// Service is the admin pages handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	deps     *handler.Deps
	importer *importer.Importer
}

// Handler is the admin pages handler.
var Handler = Service{}

// Init registers the admin pages.
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

	app.Get(Path, auth.RequirePage(e, rbac.CapAdminSystem), s.System)
	app.Get(UsersPath, auth.RequirePage(e, rbac.CapAdminUsers), s.Users)
	app.Get(ContentPath, auth.RequirePage(e, rbac.CapAdminContent), s.Content)

	return nil
}

func (s *Service) navigation(c *fiber.Ctx, title, page, url string) *navigation.Context {
	return navigation.NewContext(title, navigation.SectionAdmin, page).
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb(title, url, true).
		WithMenu(s.deps.Enforcer, auth.Identity(c))
}

func (s *Service) render(c *fiber.Ctx, template string, nav *navigation.Context, data fiber.Map) error {
	data["Title"] = s.cfg.Title
	data["Navigation"] = nav
	data["CurrentUser"] = auth.Identity(c)

	return c.Render(template, data, handler.BaseLayout)
}

// System handles GET /admin.
func (s *Service) System(c *fiber.Ctx) error {
	nav := s.navigation(c, "System", "system", Path)
	ctx := c.UserContext()

	var (
		data SystemData
		err  error
	)

	if data.Users, err = user.Count(ctx, s.deps.Store); err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	for _, role := range rbac.Roles() {
		count, err := user.CountByRole(ctx, s.deps.Store, role)
		if err != nil {
			return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
		}

		data.Roles = append(data.Roles, RoleCount{Role: role, Name: role.DisplayName(), Count: count})
	}

	_, data.Posts, err = post.List(ctx, s.deps.Store, post.Filter{Viewer: rbac.RoleAdmin, AnyStatus: true, Limit: 1})
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	categories, err := category.List(ctx, s.deps.Store, rbac.RoleAdmin)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	data.Categories = len(categories)

	if data.LastImport, err = s.importer.LastRun(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to read the import marker")
	}

	return s.render(c, TemplateSystem, nav, fiber.Map{"Data": data})
}

// Users handles GET /admin/users?page=&pageSize=.
func (s *Service) Users(c *fiber.Ctx) error {
	nav := s.navigation(c, "Users", "users", UsersPath)
	identity := auth.Identity(c)
	page := handler.PageQuery(c, user.MaxLimit)

	users, total, err := user.List(c.UserContext(), s.deps.Store, page.PageSize, page.Offset())
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	rows := make([]UserRow, 0, len(users))
	for i := range users {
		rows = append(rows, userRow(&users[i], identity))
	}

	return s.render(c, TemplateUsers, nav, fiber.Map{
		"Users":      rows,
		"Roles":      rbac.Roles(),
		"Pagination": page.WithTotal(total),
	})
}

func userRow(u *models.User, viewer *rbac.Identity) UserRow {
	identity := u.Identity()

	return UserRow{
		ID:        u.ID,
		Email:     u.Email,
		Name:      identity.Name(),
		Role:      u.Role,
		RoleName:  u.Role.DisplayName(),
		ClassYear: u.ClassYear,
		Self:      viewer != nil && viewer.UserID == u.ID,
	}
}

// Content handles GET /admin/content?page=&pageSize=&status=.
func (s *Service) Content(c *fiber.Ctx) error {
	nav := s.navigation(c, "Content", "content", ContentPath)
	ctx := c.UserContext()
	page := handler.PageQuery(c, post.MaxLimit)

	f := post.Filter{
		Viewer:    rbac.RoleAdmin,
		AnyStatus: true,
		Limit:     page.PageSize,
		Offset:    page.Offset(),
	}

	if status := models.PostStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			return handler.RenderError(c, rbac.NewValidationError("status", "unknown post status"), fiber.Map{"Navigation": nav})
		}

		f.AnyStatus = false
		f.Status = status
	}

	posts, total, err := post.List(ctx, s.deps.Store, f)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	categories, err := category.List(ctx, s.deps.Store, rbac.RoleAdmin)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	return s.render(c, TemplateContent, nav, fiber.Map{
		"Posts":      posts,
		"Categories": categories,
		"Status":     string(f.Status),
		"Pagination": page.WithTotal(total),
	})
}
