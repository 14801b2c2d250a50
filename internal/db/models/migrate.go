package models

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// All lists every model managed by Migrate.
func All() []any {
	return []any{&Setting{}, &User{}, &Category{}, &Post{}, &PostCategory{}}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Categories", &PostCategory{}); err != nil {
		return errors.Wrap(err, "setup post_categories join table")
	}

	if err := db.AutoMigrate(All()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	return nil
}
