// Package archive renders the yearbook, photo and history listings and the
// single post page. Each listing sits behind the capability of its category,
// each post query behind the viewer's rank.
package archive

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/dashboard"
	"github.com/TigerArchive/TigerArchive/internal/web/navigation"
)

const (
	// YearbooksPath lists the yearbooks.
	YearbooksPath = handler.RootPath + "yearbooks"
	// PhotosPath lists the photo categories.
	PhotosPath = handler.RootPath + "photos"
	// HistoryPath lists the history categories.
	HistoryPath = handler.RootPath + "history"
	// PostPath shows a single post.
	PostPath = handler.RootPath + "post"

	// TemplateList renders a post listing.
	TemplateList = "archive/list"
	// TemplatePost renders a single post.
	TemplatePost = "archive/post"
)

// Service is the archive handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the archive handler.
var Handler = Service{}

// Init registers the archive pages.
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

	app.Get(YearbooksPath, auth.RequirePage(e, rbac.CapViewYearbooks), s.Yearbooks)
	app.Get(PhotosPath, auth.RequirePage(e, rbac.CapViewPhotos), s.Photos)
	app.Get(HistoryPath, auth.RequirePageFor(e, historyCapability), s.History)
	app.Get(PostPath+"/:slug", auth.RequirePage(e, rbac.CapViewHistory), s.Post)

	return nil
}

// historyCapability gates /history?category=yearbooks like /yearbooks.
func historyCapability(c *fiber.Ctx) rbac.Capability {
	return rbac.CapabilityForCategory(c.Query("category"))
}

type listing struct {
	title       string
	page        string
	path        string
	filter      post.Filter
	categories  []category.Summary
	activeSlug  string
	description string
}

func (s *Service) renderList(c *fiber.Ctx, l listing) error {
	identity := auth.Identity(c)

	nav := navigation.NewContext(l.title, navigation.SectionArchive, l.page).
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb(l.title, l.path, true).
		WithMenu(s.deps.Enforcer, identity)

	page := handler.PageQuery(c, post.MaxLimit)
	l.filter.Viewer = identity.Role
	l.filter.Limit = page.PageSize
	l.filter.Offset = page.Offset()

	posts, total, err := post.List(c.UserContext(), s.deps.Store, l.filter)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	return c.Render(TemplateList, fiber.Map{
		"Title":          s.cfg.Title,
		"Navigation":     nav,
		"CurrentUser":    identity,
		"Heading":        l.title,
		"Description":    l.description,
		"Posts":          posts,
		"Categories":     l.categories,
		"ActiveCategory": l.activeSlug,
		"BasePath":       l.path,
		"Pagination":     page.WithTotal(total),
	}, handler.BaseLayout)
}

// Yearbooks lists the yearbook posts.
func (s *Service) Yearbooks(c *fiber.Ctx) error {
	return s.renderList(c, listing{
		title:       "Yearbooks",
		page:        "yearbooks",
		path:        YearbooksPath,
		description: "Digitised yearbooks of every class.",
		filter:      post.Filter{AnyCategory: rbac.YearbookCategories()},
	})
}

// Photos lists the photo posts, optionally of one photo category.
func (s *Service) Photos(c *fiber.Ctx) error {
	l := listing{
		title:       "Photos",
		page:        "photos",
		path:        PhotosPath,
		description: "Event and reunion photo galleries.",
		filter:      post.Filter{AnyCategory: rbac.PhotoCategories()},
	}

	summaries, err := s.categories(c, func(slug string) bool {
		return slices.Contains(rbac.PhotoCategories(), slug)
	})
	if err != nil {
		return handler.RenderError(c, err, nil)
	}

	l.categories = summaries

	slug := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if slug != "" && slices.Contains(rbac.PhotoCategories(), slug) {
		l.filter = post.Filter{Category: slug}
		l.activeSlug = slug
	}

	return s.renderList(c, l)
}

// History lists the history categories that hold posts, or the posts of
// one category. The route gate already checked the category capability.
func (s *Service) History(c *fiber.Ctx) error {
	identity := auth.Identity(c)

	summaries, err := s.categories(c, func(slug string) bool {
		return s.deps.Enforcer.Can(identity, rbac.CapabilityForCategory(slug))
	})
	if err != nil {
		return handler.RenderError(c, err, nil)
	}

	l := listing{
		title:       "History",
		page:        "history",
		path:        HistoryPath,
		description: "Stories, news and documents from the archive.",
		categories:  summaries,
	}

	if slug := strings.ToLower(strings.TrimSpace(c.Query("category"))); slug != "" {
		l.filter.Category = slug
		l.activeSlug = slug
	}

	return s.renderList(c, l)
}

// categories returns the non empty categories visible to the viewer that pass keep.
func (s *Service) categories(c *fiber.Ctx, keep func(slug string) bool) ([]category.Summary, error) {
	all, err := category.List(c.UserContext(), s.deps.Store, auth.Identity(c).Role)
	if err != nil {
		return nil, err
	}

	out := make([]category.Summary, 0, len(all))

	for i := range all {
		if all[i].PostCount > 0 && keep(all[i].Slug) {
			out = append(out, all[i])
		}
	}

	return out, nil
}

// Post renders a single published post. A post above the viewer's rank is
// answered exactly like a missing one.
func (s *Service) Post(c *fiber.Ctx) error {
	identity := auth.Identity(c)
	slug := c.Params("slug")

	nav := navigation.NewContext("Post", navigation.SectionArchive, "post").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("History", HistoryPath, false).
		WithMenu(s.deps.Enforcer, identity)

	if !models.ValidSlug(slug) {
		return handler.RenderError(c, rbac.ErrNotFound, fiber.Map{"Navigation": nav})
	}

	p, err := post.GetBySlug(c.UserContext(), s.deps.Store, slug, identity.Role)
	if err != nil {
		return handler.RenderError(c, err, fiber.Map{"Navigation": nav})
	}

	nav.PageTitle = p.Title
	nav.AddBreadcrumb(p.Title, PostPath+"/"+p.Slug, true)

	return c.Render(TemplatePost, fiber.Map{
		"Title":       s.cfg.Title,
		"Navigation":  nav,
		"CurrentUser": identity,
		"Post":        p,
	}, handler.BaseLayout)
}
