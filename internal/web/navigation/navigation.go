// Package navigation builds the breadcrumbs and the role filtered menu of a page.
package navigation

import "github.com/TigerArchive/TigerArchive/internal/rbac"

// Section names of the top level menu.
const (
	SectionMember  = "member"
	SectionArchive = "archive"
	SectionAdmin   = "admin"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is a menu link shown only to identities holding Capability.
type MenuItem struct {
	Title      string
	URL        string
	Section    string
	Page       string
	Capability rbac.Capability
}

// Items is the full menu in display order.
func Items() []MenuItem {
	return []MenuItem{
		{"Dashboard", "/dashboard", SectionMember, "dashboard", rbac.CapViewDashboard},
		{"History", "/history", SectionArchive, "history", rbac.CapViewHistory},
		{"Photos", "/photos", SectionArchive, "photos", rbac.CapViewPhotos},
		{"Yearbooks", "/yearbooks", SectionArchive, "yearbooks", rbac.CapViewYearbooks},
		{"Users", "/admin/users", SectionAdmin, "users", rbac.CapAdminUsers},
		{"Content", "/admin/content", SectionAdmin, "content", rbac.CapAdminContent},
		{"System", "/admin", SectionAdmin, "system", rbac.CapAdminSystem},
	}
}

// Menu returns the items identity may open. Anonymous visitors get none.
func Menu(e *rbac.Enforcer, identity *rbac.Identity) []MenuItem {
	out := make([]MenuItem, 0, len(Items()))

	for _, item := range Items() {
		if e.Can(identity, item.Capability) {
			out = append(out, item)
		}
	}

	return out
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Menu          []MenuItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
		Menu:          make([]MenuItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithMenu fills the menu for identity.
func (c *Context) WithMenu(e *rbac.Enforcer, identity *rbac.Identity) *Context {
	c.Menu = Menu(e, identity)

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// HasSection reports whether the menu holds an item of section.
func (c *Context) HasSection(section string) bool {
	for _, item := range c.Menu {
		if item.Section == section {
			return true
		}
	}

	return false
}
