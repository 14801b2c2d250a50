// Package dbtest opens migrated in-memory content stores for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// Open returns a migrated store over a private in-memory sqlite database.
func Open(t testing.TB) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db), "failed to migrate test database")

	s, err := store.New(db, config.Store{RetryAttempts: 1, BreakerFailures: 100})
	require.NoError(t, err)

	return s
}

// CreateUser inserts a user with password "password123".
func CreateUser(t testing.TB, s *store.Store, email string, role rbac.Role) *models.User {
	t.Helper()

	u := &models.User{
		Email:     email,
		Password:  models.HashPassword("password123"),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	require.NoError(t, s.DB().Create(u).Error)

	return u
}

// CreateCategory inserts a category.
func CreateCategory(t testing.TB, s *store.Store, name, slug string) *models.Category {
	t.Helper()

	c := &models.Category{Name: name, Slug: slug}
	require.NoError(t, s.DB().Create(c).Error)

	return c
}

// CreatePost inserts a published post with accessLevel linked to categories.
func CreatePost(t testing.TB, s *store.Store, slug string, accessLevel rbac.Role, categories ...*models.Category) *models.Post {
	t.Helper()

	p := &models.Post{
		Title:       slug,
		Slug:        slug,
		Status:      models.StatusPublish,
		AccessLevel: accessLevel,
	}
	require.NoError(t, s.DB().Create(p).Error)

	for _, c := range categories {
		require.NoError(t, s.DB().Create(&models.PostCategory{PostID: p.ID, CategoryID: c.ID}).Error)
	}

	return p
}
