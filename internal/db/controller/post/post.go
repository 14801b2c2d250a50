// Package post provides the content store operations for archive posts.
// Every read applies the viewer's rank at the query, a post above the viewer's
// rank is reported as rbac.ErrNotFound.
package post

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const (
	// DefaultLimit is the page size when none is given.
	DefaultLimit = 50
	// MaxLimit caps the page size.
	MaxLimit = 100

	whereSlug   = "slug = ?"
	wherePostID = "post_id = ?"
	orderNewest = "published_at IS NULL, published_at DESC, posts.id DESC"
)

// Filter selects posts for a listing.
type Filter struct {
	Category    string            // category slug, empty for all
	AnyCategory []string          // posts linked to at least one of these slugs
	Status      models.PostStatus // empty means publish
	AnyStatus   bool              // ignore Status, for the admin content listing
	Viewer      rbac.Role         // rank gate, required
	Limit       int
	Offset      int
}

// Normalized clamps the paging values and defaults the status.
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}

	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	if f.Status == "" {
		f.Status = models.StatusPublish
	}

	f.Category = strings.ToLower(strings.TrimSpace(f.Category))

	if len(f.AnyCategory) > 0 {
		slugs := make([]string, 0, len(f.AnyCategory))
		for _, slug := range f.AnyCategory {
			slugs = append(slugs, strings.ToLower(strings.TrimSpace(slug)))
		}

		f.AnyCategory = slugs
	}

	return f
}

// Fields are the values of a new post.
type Fields struct {
	WPID          *uint64
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	Status        models.PostStatus // empty means publish
	PostType      string
	FeaturedImage string
	Author        string
	PublishedAt   *time.Time
	AccessLevel   rbac.Role // empty means inferred from the categories
	CategoryIDs   []uint64
}

// Patch holds the changed values of a post, nil fields stay untouched.
// A non nil CategoryIDs replaces every category link.
type Patch struct {
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       *string
	Status        *models.PostStatus
	PostType      *string
	FeaturedImage *string
	Author        *string
	PublishedAt   *time.Time
	AccessLevel   *rbac.Role
	CategoryIDs   *[]uint64
}

func levelStrings(viewer rbac.Role) []string {
	levels := rbac.VisibleLevels(viewer)
	out := make([]string, 0, len(levels))

	for _, l := range levels {
		out = append(out, l.String())
	}

	return out
}

func scope(db *gorm.DB, f Filter) *gorm.DB {
	q := db.Model(&models.Post{}).Where("posts.access_level IN ?", levelStrings(f.Viewer))

	if !f.AnyStatus {
		q = q.Where("posts.status = ?", f.Status)
	}

	if f.Category != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = posts.id AND c.slug = ?)`, f.Category)
	}

	if len(f.AnyCategory) > 0 {
		q = q.Where(`EXISTS (SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = posts.id AND c.slug IN ?)`, f.AnyCategory)
	}

	return q
}

// List returns one page of posts visible to f.Viewer and the total count.
func List(ctx context.Context, s *store.Store, f Filter) ([]models.Post, int64, error) {
	f = f.Normalized()

	if !f.Viewer.Valid() {
		return []models.Post{}, 0, nil
	}

	var (
		posts []models.Post
		total int64
	)

	err := s.Do(ctx, func(db *gorm.DB) error {
		if err := scope(db, f).Count(&total).Error; err != nil {
			return err
		}

		return scope(db, f).
			Preload("Categories").
			Order(orderNewest).
			Limit(f.Limit).
			Offset(f.Offset).
			Find(&posts).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetBySlug returns the published post slug if viewer may see it.
func GetBySlug(ctx context.Context, s *store.Store, slug string, viewer rbac.Role) (*models.Post, error) {
	if !viewer.Valid() {
		return nil, rbac.ErrNotFound
	}

	var p models.Post

	err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Preload("Categories").
			Where("slug = ? AND status = ? AND access_level IN ?", slug, models.StatusPublish, levelStrings(viewer)).
			First(&p).Error
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetByID returns the post id in any status, for the admin area.
func GetByID(ctx context.Context, s *store.Store, id uint64) (*models.Post, error) {
	var p models.Post

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Preload("Categories").First(&p, id).Error
	}); err != nil {
		return nil, err
	}

	return &p, nil
}

func validatePost(p *models.Post) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return rbac.NewValidationError("title", "is required")
	case !models.ValidSlug(p.Slug):
		return rbac.NewValidationError("slug", "must be lowercase letters, digits and dashes")
	case !p.Status.Valid():
		return rbac.NewValidationError("status", "must be publish, draft or private")
	case !p.AccessLevel.Valid():
		return rbac.NewValidationError("accessLevel", "unknown role")
	}

	return nil
}

func slugTaken(db *gorm.DB, slug string, exceptID uint64) error {
	var count int64

	if err := db.Model(&models.Post{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return rbac.NewValidationError("slug", "already in use")
	}

	return nil
}

func loadCategories(db *gorm.DB, ids []uint64) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var categories []models.Category
	if err := db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}

	if len(categories) != len(uniqueIDs(ids)) {
		return nil, rbac.NewValidationError("categoryIds", "unknown category")
	}

	return categories, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func replaceLinks(tx *gorm.DB, postID uint64, categories []models.Category) error {
	if err := tx.Where(wherePostID, postID).Delete(&models.PostCategory{}).Error; err != nil {
		return err
	}

	for i := range categories {
		if err := tx.Create(&models.PostCategory{PostID: postID, CategoryID: categories[i].ID}).Error; err != nil {
			return err
		}
	}

	return nil
}

// Create stores a new post. Without an access level one is inferred from the
// linked category slugs, once.
func Create(ctx context.Context, s *store.Store, in Fields) (*models.Post, error) {
	p := models.Post{
		WPID:          in.WPID,
		Title:         strings.TrimSpace(in.Title),
		Slug:          strings.TrimSpace(in.Slug),
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Status:        in.Status,
		PostType:      in.PostType,
		FeaturedImage: in.FeaturedImage,
		Author:        in.Author,
		PublishedAt:   in.PublishedAt,
		AccessLevel:   in.AccessLevel,
	}

	if p.Status == "" {
		p.Status = models.StatusPublish
	}

	if p.PostType == "" {
		p.PostType = "post"
	}

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, in.CategoryIDs)
		if err != nil {
			return err
		}

		if p.AccessLevel == "" {
			slugs := make([]string, 0, len(categories))
			for i := range categories {
				slugs = append(slugs, categories[i].Slug)
			}

			p.AccessLevel = rbac.InferAccessLevel(slugs)
		}

		if err = validatePost(&p); err != nil {
			return err
		}

		if err = slugTaken(tx, p.Slug, 0); err != nil {
			return err
		}

		if err = tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}

		if err = replaceLinks(tx, p.ID, categories); err != nil {
			return err
		}

		p.Categories = categories

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (pt *Patch) apply(p *models.Post) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&p.Title, pt.Title)
	set(&p.Slug, pt.Slug)
	set(&p.PostType, pt.PostType)
	set(&p.FeaturedImage, pt.FeaturedImage)
	set(&p.Author, pt.Author)

	if pt.Content != nil {
		p.Content = *pt.Content
	}

	if pt.Excerpt != nil {
		p.Excerpt = *pt.Excerpt
	}

	if pt.Status != nil {
		p.Status = *pt.Status
	}

	if pt.PublishedAt != nil {
		p.PublishedAt = pt.PublishedAt
	}

	if pt.AccessLevel != nil {
		p.AccessLevel = *pt.AccessLevel
	}
}

// Update changes post id. The access level is never re-inferred.
func Update(ctx context.Context, s *store.Store, id uint64, patch Patch) (*models.Post, error) {
	var p models.Post

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}

		patch.apply(&p)

		if err := validatePost(&p); err != nil {
			return err
		}

		if err := slugTaken(tx, p.Slug, p.ID); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}

		if patch.CategoryIDs != nil {
			categories, err := loadCategories(tx, *patch.CategoryIDs)
			if err != nil {
				return err
			}

			if err = replaceLinks(tx, p.ID, categories); err != nil {
				return err
			}
		}

		return tx.Preload("Categories").First(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Delete removes post id together with its category links.
func Delete(ctx context.Context, s *store.Store, id uint64) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where(wherePostID, id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return rbac.ErrNotFound
		}

		return nil
	})
}

// LinkCategory links post postID to category categoryID. Linking twice is a no-op.
func LinkCategory(ctx context.Context, s *store.Store, postID, categoryID uint64) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return err
		}

		if err := tx.Select("id").First(&models.Category{}, categoryID).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostCategory{PostID: postID, CategoryID: categoryID}).Error
	})
}

// UnlinkCategories removes every category link of post postID.
func UnlinkCategories(ctx context.Context, s *store.Store, postID uint64) error {
	return s.Do(ctx, func(db *gorm.DB) error {
		return db.Where(wherePostID, postID).Delete(&models.PostCategory{}).Error
	})
}

// SetCategories replaces the category links of post postID.
func SetCategories(ctx context.Context, s *store.Store, postID uint64, categoryIDs []uint64) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return err
		}

		categories, err := loadCategories(tx, categoryIDs)
		if err != nil {
			return err
		}

		return replaceLinks(tx, postID, categories)
	})
}

// ExistsBySlug reports whether any post uses slug, regardless of status and rank.
func ExistsBySlug(ctx context.Context, s *store.Store, slug string) (bool, error) {
	var count int64

	err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Post{}).Where(whereSlug, slug).Count(&count).Error
	})

	return count > 0, err
}
