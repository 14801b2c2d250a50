package dashboard

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/dbtest"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/handlertest"
	authmiddleware "github.com/TigerArchive/TigerArchive/internal/web/middleware/auth"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

func TestGet(t *testing.T) {
	deps := handlertest.Deps(t)
	app := webtest.NewApp()
	app.Use(authmiddleware.New(deps.Tokens))

	var s Service
	require.NoError(t, s.Init(app, handlertest.Config(), deps))

	c := dbtest.CreateCategory(t, deps.Store, "Sports", "sports")
	dbtest.CreatePost(t, deps.Store, "match", rbac.RoleWhite, c)

	// anonymous visitors are sent to sign in before the store is read
	resp, _ := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, Path, nil))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, auth.LoginPath, resp.Header.Get(fiber.HeaderLocation))

	for _, role := range rbac.Roles() {
		sessionID := webtest.SignIn(t, &rbac.Identity{UserID: 1, Role: role})

		resp, body := webtest.Do(t, app, webtest.WithSession(httptest.NewRequest(fiber.MethodGet, Path, nil), sessionID))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, role)
		assert.Equal(t, TemplateName, body)
	}
}

func TestNonEmpty(t *testing.T) {
	in := []category.Summary{
		{Category: models.Category{Slug: "sports"}, PostCount: 2},
		{Category: models.Category{Slug: "archive"}},
	}

	out := nonEmpty(in)
	require.Len(t, out, 1)
	assert.Equal(t, "sports", out[0].Slug)
	assert.Empty(t, nonEmpty(nil))
}
