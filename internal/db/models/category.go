package models

// Category groups posts, feature gates derive from its slug.
type Category struct {
	ID         uint64  `gorm:"primaryKey" json:"id"`
	WPID       *uint64 `gorm:"column:wp_id;uniqueIndex" json:"wpId,omitempty"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	Slug       string  `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	ParentSlug string  `gorm:"size:191" json:"parentSlug,omitempty"`
}

// PostCategory is the join row between posts and categories.
type PostCategory struct {
	PostID     uint64 `gorm:"primaryKey"`
	CategoryID uint64 `gorm:"primaryKey;index"`
}
