package models

import (
	"time"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// PostStatus is the publication state of a post.
type PostStatus string

// Post statuses.
const (
	StatusPublish PostStatus = "publish"
	StatusDraft   PostStatus = "draft"
	StatusPrivate PostStatus = "private"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusPublish, StatusDraft, StatusPrivate:
		return true
	default:
		return false
	}
}

// Post is one archive entry.
type Post struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	WPID          *uint64    `gorm:"column:wp_id;uniqueIndex" json:"wpId,omitempty"` // id in the legacy export
	Title         string     `gorm:"size:500;not null" json:"title"`
	Slug          string     `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	Content       string     `gorm:"type:text" json:"content,omitempty"`
	Excerpt       string     `gorm:"type:text" json:"excerpt,omitempty"`
	Status        PostStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PostType      string     `gorm:"size:50" json:"postType,omitempty"`
	FeaturedImage string     `gorm:"size:1000" json:"featuredImage,omitempty"`
	Author        string     `gorm:"size:255" json:"author,omitempty"`
	PublishedAt   *time.Time `gorm:"index" json:"publishedAt,omitempty"`
	// AccessLevel is the minimum role rank needed to see the post.
	AccessLevel rbac.Role  `gorm:"column:access_level;type:varchar(20);not null;index" json:"accessLevel"`
	Categories  []Category `gorm:"many2many:post_categories" json:"categories,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CategorySlugs returns the slugs of the loaded categories.
func (p *Post) CategorySlugs() []string {
	out := make([]string, 0, len(p.Categories))
	for i := range p.Categories {
		out = append(out, p.Categories[i].Slug)
	}

	return out
}
