package adminapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
)

// PostInput is the body of POST /api/admin/content/posts. An empty access
// level is inferred from the categories.
type PostInput struct {
	Title         string     `json:"title"         validate:"required,max=500"`
	Slug          string     `json:"slug"          validate:"required,slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Status        string     `json:"status"        validate:"omitempty,oneof=publish draft private"`
	PostType      string     `json:"postType"      validate:"max=50"`
	FeaturedImage string     `json:"featuredImage" validate:"max=1000"`
	Author        string     `json:"author"        validate:"max=255"`
	PublishedAt   *time.Time `json:"publishedAt"`
	AccessLevel   string     `json:"accessLevel"   validate:"omitempty,role"`
	CategoryIDs   []uint64   `json:"categoryIds"`
}

// PostPatch is the body of PATCH /api/admin/content/posts/:id. Changing the
// categories keeps the access level.
type PostPatch struct {
	Title         *string    `json:"title"         validate:"omitempty,max=500"`
	Slug          *string    `json:"slug"          validate:"omitempty,slug"`
	Content       *string    `json:"content"`
	Excerpt       *string    `json:"excerpt"`
	Status        *string    `json:"status"        validate:"omitempty,oneof=publish draft private"`
	PostType      *string    `json:"postType"      validate:"omitempty,max=50"`
	FeaturedImage *string    `json:"featuredImage" validate:"omitempty,max=1000"`
	Author        *string    `json:"author"        validate:"omitempty,max=255"`
	PublishedAt   *time.Time `json:"publishedAt"`
	AccessLevel   *string    `json:"accessLevel"   validate:"omitempty,role"`
	CategoryIDs   *[]uint64  `json:"categoryIds"`
}

// CategoryInput is the body of POST /api/admin/content/categories.
type CategoryInput struct {
	Name       string `json:"name"       validate:"required,max=255"`
	Slug       string `json:"slug"       validate:"required,slug"`
	ParentSlug string `json:"parentSlug" validate:"omitempty,slug"`
}

// CategoryPatch is the body of PATCH /api/admin/content/categories/:id.
type CategoryPatch struct {
	Name       *string `json:"name"       validate:"omitempty,max=255"`
	Slug       *string `json:"slug"       validate:"omitempty,slug"`
	ParentSlug *string `json:"parentSlug" validate:"omitempty,slug"`
}

// ListPosts handles GET /api/admin/content/posts?status=&category=&limit=&offset=.
// Without a status every post is listed.
func (s *Service) ListPosts(c *fiber.Ctx) error {
	f := post.Filter{
		Category:  c.Query("category"),
		Viewer:    rbac.RoleAdmin,
		AnyStatus: true,
		Limit:     c.QueryInt("limit", post.DefaultLimit),
		Offset:    c.QueryInt("offset", 0),
	}

	if status := models.PostStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			return handler.JSONError(c, rbac.NewValidationError("status", "unknown post status"))
		}

		f.AnyStatus = false
		f.Status = status
	}

	posts, total, err := post.List(c.UserContext(), s.deps.Store, f)
	if err != nil {
		return handler.JSONError(c, err)
	}

	f = f.Normalized()

	return c.JSON(fiber.Map{"posts": posts, "total": total, "limit": f.Limit, "offset": f.Offset})
}

// CreatePost handles POST /api/admin/content/posts.
func (s *Service) CreatePost(c *fiber.Ctx) error {
	const action = "post.create"

	in := new(PostInput)
	if err := handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	p, err := post.Create(c.UserContext(), s.deps.Store, post.Fields{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Status:        models.PostStatus(in.Status),
		PostType:      in.PostType,
		FeaturedImage: in.FeaturedImage,
		Author:        in.Author,
		PublishedAt:   in.PublishedAt,
		AccessLevel:   rbac.Role(in.AccessLevel),
		CategoryIDs:   in.CategoryIDs,
	})
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("post", p.ID).
		Str("access_level", p.AccessLevel.String()).Msg("admin")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": p})
}

func (in *PostPatch) patch() post.Patch {
	out := post.Patch{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		PostType:      in.PostType,
		FeaturedImage: in.FeaturedImage,
		Author:        in.Author,
		PublishedAt:   in.PublishedAt,
		CategoryIDs:   in.CategoryIDs,
	}

	if in.Status != nil {
		status := models.PostStatus(*in.Status)
		out.Status = &status
	}

	if in.AccessLevel != nil {
		level := rbac.Role(*in.AccessLevel)
		out.AccessLevel = &level
	}

	return out
}

// UpdatePost handles PATCH /api/admin/content/posts/:id.
func (s *Service) UpdatePost(c *fiber.Ctx) error {
	const action = "post.update"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	in := new(PostPatch)
	if err = handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	p, err := post.Update(c.UserContext(), s.deps.Store, id, in.patch())
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("post", p.ID).Msg("admin")

	return c.JSON(fiber.Map{"post": p})
}

// DeletePost handles DELETE /api/admin/content/posts/:id. The category links
// go with the post.
func (s *Service) DeletePost(c *fiber.Ctx) error {
	const action = "post.delete"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	if err = post.Delete(c.UserContext(), s.deps.Store, id); err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("post", id).Msg("admin")

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateCategory handles POST /api/admin/content/categories.
func (s *Service) CreateCategory(c *fiber.Ctx) error {
	const action = "category.create"

	in := new(CategoryInput)
	if err := handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	cat, err := category.Create(c.UserContext(), s.deps.Store, category.Fields{
		Name:       in.Name,
		Slug:       in.Slug,
		ParentSlug: in.ParentSlug,
	})
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("category", cat.ID).Str("slug", cat.Slug).Msg("admin")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"category": cat})
}

// UpdateCategory handles PATCH /api/admin/content/categories/:id.
func (s *Service) UpdateCategory(c *fiber.Ctx) error {
	const action = "category.update"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	in := new(CategoryPatch)
	if err = handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	cat, err := category.Update(c.UserContext(), s.deps.Store, id, category.Patch{
		Name:       in.Name,
		Slug:       in.Slug,
		ParentSlug: in.ParentSlug,
	})
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("category", cat.ID).Msg("admin")

	return c.JSON(fiber.Map{"category": cat})
}

// DeleteCategory handles DELETE /api/admin/content/categories/:id. Linked
// posts stay and lose the link.
func (s *Service) DeleteCategory(c *fiber.Ctx) error {
	const action = "category.delete"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	if err = category.Delete(c.UserContext(), s.deps.Store, id); err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("category", id).Msg("admin")

	return c.SendStatus(fiber.StatusNoContent)
}
