// Package category provides the content store operations for categories.
package category

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const whereCategoryID = "category_id = ?"

// Summary is a category with the number of published posts the viewer may see.
type Summary struct {
	models.Category
	PostCount int64 `gorm:"column:post_count" json:"postCount"`
}

// Fields are the values of a new category.
type Fields struct {
	WPID       *uint64
	Name       string
	Slug       string
	ParentSlug string
}

// Patch holds the changed values of a category, nil fields stay untouched.
type Patch struct {
	Name       *string
	Slug       *string
	ParentSlug *string
}

func validateCategory(c *models.Category) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return rbac.NewValidationError("name", "is required")
	case !models.ValidSlug(c.Slug):
		return rbac.NewValidationError("slug", "must be lowercase letters, digits and dashes")
	case c.ParentSlug != "" && !models.ValidSlug(c.ParentSlug):
		return rbac.NewValidationError("parentSlug", "must be lowercase letters, digits and dashes")
	case c.ParentSlug == c.Slug:
		return rbac.NewValidationError("parentSlug", "a category can not be its own parent")
	}

	return nil
}

func slugTaken(db *gorm.DB, slug string, exceptID uint64) error {
	var count int64

	if err := db.Model(&models.Category{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return rbac.NewValidationError("slug", "already in use")
	}

	return nil
}

// List returns every category ordered by name with the post count for viewer.
func List(ctx context.Context, s *store.Store, viewer rbac.Role) ([]Summary, error) {
	levels := make([]string, 0, len(rbac.Roles()))
	for _, l := range rbac.VisibleLevels(viewer) {
		levels = append(levels, l.String())
	}

	var out []Summary

	err := s.Do(ctx, func(db *gorm.DB) error {
		posts := db.Model(&models.Post{}).
			Select("id").
			Where("status = ?", models.StatusPublish)

		if len(levels) == 0 {
			posts = posts.Where("1 = 0")
		} else {
			posts = posts.Where("access_level IN ?", levels)
		}

		return db.Model(&models.Category{}).
			Select("categories.*, COUNT(pc.post_id) AS post_count").
			Joins("LEFT JOIN post_categories pc ON pc.category_id = categories.id AND pc.post_id IN (?)", posts).
			Group("categories.id").
			Order("categories.name, categories.id").
			Scan(&out).Error
	})
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []Summary{}
	}

	return out, nil
}

// GetBySlug returns the category slug.
func GetBySlug(ctx context.Context, s *store.Store, slug string) (*models.Category, error) {
	var c models.Category

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&c).Error
	}); err != nil {
		return nil, err
	}

	return &c, nil
}

// GetByID returns the category id.
func GetByID(ctx context.Context, s *store.Store, id uint64) (*models.Category, error) {
	var c models.Category

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.First(&c, id).Error
	}); err != nil {
		return nil, err
	}

	return &c, nil
}

// BySlugs returns the categories of slugs keyed by slug. Unknown slugs are absent.
func BySlugs(ctx context.Context, s *store.Store, slugs []string) (map[string]models.Category, error) {
	out := make(map[string]models.Category, len(slugs))

	if len(slugs) == 0 {
		return out, nil
	}

	var categories []models.Category

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Where("slug IN ?", slugs).Find(&categories).Error
	}); err != nil {
		return nil, err
	}

	for _, c := range categories {
		out[c.Slug] = c
	}

	return out, nil
}

// Create stores a new category.
func Create(ctx context.Context, s *store.Store, in Fields) (*models.Category, error) {
	c := models.Category{
		WPID:       in.WPID,
		Name:       strings.TrimSpace(in.Name),
		Slug:       strings.TrimSpace(in.Slug),
		ParentSlug: strings.TrimSpace(in.ParentSlug),
	}

	if err := validateCategory(&c); err != nil {
		return nil, err
	}

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := slugTaken(tx, c.Slug, 0); err != nil {
			return err
		}

		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Update changes category id.
func Update(ctx context.Context, s *store.Store, id uint64, patch Patch) (*models.Category, error) {
	var c models.Category

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}

		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}

		if patch.Slug != nil {
			c.Slug = strings.TrimSpace(*patch.Slug)
		}

		if patch.ParentSlug != nil {
			c.ParentSlug = strings.TrimSpace(*patch.ParentSlug)
		}

		if err := validateCategory(&c); err != nil {
			return err
		}

		if err := slugTaken(tx, c.Slug, c.ID); err != nil {
			return err
		}

		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Delete removes category id. Its posts are unlinked and survive.
func Delete(ctx context.Context, s *store.Store, id uint64) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where(whereCategoryID, id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return rbac.ErrNotFound
		}

		return nil
	})
}

// CountLinks returns the number of posts linked to category id in any status.
func CountLinks(ctx context.Context, s *store.Store, id uint64) (int64, error) {
	var count int64

	err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.PostCategory{}).Where(whereCategoryID, id).Count(&count).Error
	})

	return count, err
}
