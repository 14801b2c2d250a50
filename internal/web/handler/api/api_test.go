package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/dbtest"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/handlertest"
	authmiddleware "github.com/TigerArchive/TigerArchive/internal/web/middleware/auth"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

type fixture struct {
	app  *fiber.App
	deps *handler.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	deps := handlertest.Deps(t)
	app := webtest.NewApp()
	app.Use(authmiddleware.New(deps.Tokens))

	var s Service
	require.NoError(t, s.Init(app, handlertest.Config(), deps))

	yearbooks := dbtest.CreateCategory(t, deps.Store, "Yearbooks", "yearbooks")
	photos := dbtest.CreateCategory(t, deps.Store, "Photos", "photos")
	sports := dbtest.CreateCategory(t, deps.Store, "Sports", "sports")

	dbtest.CreatePost(t, deps.Store, "class-of-1998", rbac.RoleTiger, yearbooks)
	dbtest.CreatePost(t, deps.Store, "gala", rbac.RoleMaroon, photos)
	dbtest.CreatePost(t, deps.Store, "match", rbac.RoleWhite, sports)

	return &fixture{app: app, deps: deps}
}

func (f *fixture) get(t *testing.T, path string, role rbac.Role) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)

	if role != "" {
		token, _, err := f.deps.Tokens.Issue(&rbac.Identity{UserID: 1, Role: role})
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	return webtest.Do(t, f.app, req)
}

func TestListPosts_RankAndGates(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		path   string
		role   rbac.Role
		status int
		total  int64
	}{
		{"/api/posts", rbac.RoleWhite, fiber.StatusOK, 1},
		{"/api/posts", rbac.RoleMaroon, fiber.StatusOK, 2},
		{"/api/posts", rbac.RoleAdmin, fiber.StatusOK, 3},
		{"/api/posts?category=yearbooks", rbac.RoleMaroon, fiber.StatusForbidden, 0},
		{"/api/posts?category=yearbooks", rbac.RoleTiger, fiber.StatusOK, 1},
		{"/api/posts?category=photos", rbac.RoleWhite, fiber.StatusForbidden, 0},
		{"/api/posts?category=photos", rbac.RoleMaroon, fiber.StatusOK, 1},
		{"/api/posts?category=sports", rbac.RoleWhite, fiber.StatusOK, 1},
		{"/api/posts", "", fiber.StatusUnauthorized, 0},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role)+tc.path, func(t *testing.T) {
			resp, body := f.get(t, tc.path, tc.role)
			require.Equal(t, tc.status, resp.StatusCode, body)

			if tc.status != fiber.StatusOK {
				return
			}

			var out PostList
			require.NoError(t, json.Unmarshal([]byte(body), &out))
			assert.Equal(t, tc.total, out.Total)
			assert.Len(t, out.Posts, int(tc.total))
			assert.Equal(t, 50, out.Limit)

			for i := range out.Posts {
				assert.True(t, rbac.Visible(tc.role, out.Posts[i].AccessLevel))
			}
		})
	}
}

func TestListPosts_Paging(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/api/posts?limit=1&offset=1", rbac.RoleAdmin)

	var out PostList
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Posts, 1)
	assert.Equal(t, 1, out.Limit)
	assert.Equal(t, 1, out.Offset)

	resp, _ := f.get(t, "/api/posts?category=Not%20Valid", rbac.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetPost_HiddenIsNotFound(t *testing.T) {
	f := newFixture(t)

	hidden, hiddenBody := f.get(t, "/api/posts/gala", rbac.RoleWhite)
	missing, missingBody := f.get(t, "/api/posts/nothing-here", rbac.RoleWhite)

	assert.Equal(t, fiber.StatusNotFound, hidden.StatusCode)
	assert.Equal(t, missing.StatusCode, hidden.StatusCode)
	assert.JSONEq(t, missingBody, hiddenBody)

	resp, body := f.get(t, "/api/posts/gala", rbac.RoleMaroon)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"slug":"gala"`)
}

func TestGetPost_ExplicitLevelIsAuthoritative(t *testing.T) {
	f := newFixture(t)

	yearbooks, err := category.GetBySlug(context.Background(), f.deps.Store, "yearbooks")
	require.NoError(t, err)

	// an admin lowered this yearbook page to white on purpose
	dbtest.CreatePost(t, f.deps.Store, "open-yearbook-page", rbac.RoleWhite, yearbooks)

	resp, body := f.get(t, "/api/posts/open-yearbook-page", rbac.RoleWhite)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"slug":"open-yearbook-page"`)

	// the yearbook listing stays behind view:yearbooks
	resp, _ = f.get(t, "/api/posts?category=yearbooks", rbac.RoleWhite)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/categories", rbac.RoleWhite)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Categories []struct {
			Slug      string `json:"slug"`
			PostCount int64  `json:"postCount"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Categories, 3)

	counts := map[string]int64{}
	for _, c := range out.Categories {
		counts[c.Slug] = c.PostCount
	}

	assert.Equal(t, map[string]int64{"photos": 0, "sports": 1, "yearbooks": 0}, counts)

	resp, _ = f.get(t, "/api/categories", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/me", rbac.RoleMaroon)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out Me
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, rbac.RoleMaroon, out.User.Role)
	assert.Equal(t, "Maroon", out.RoleName)
	assert.ElementsMatch(t, []rbac.Capability{rbac.CapViewPhotos, rbac.CapViewHistory, rbac.CapViewDashboard}, out.Capabilities)

	resp, _ = f.get(t, "/api/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestToken(t *testing.T) {
	f := newFixture(t)
	dbtest.CreateUser(t, f.deps.Store, "tiger@example.org", rbac.RoleTiger)

	resp, body := webtest.Do(t, f.app, webtest.JSONRequest(fiber.MethodPost, TokenPath,
		`{"email":"tiger@example.org","password":"password123"}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	var out TokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "Bearer", out.TokenType)

	req := httptest.NewRequest(fiber.MethodGet, "/api/posts?category=yearbooks", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+out.Token)
	resp, _ = webtest.Do(t, f.app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = webtest.Do(t, f.app, webtest.JSONRequest(fiber.MethodPost, TokenPath,
		`{"email":"tiger@example.org","password":"wrong"}`))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, `"error":"unauthenticated"`)

	resp, _ = webtest.Do(t, f.app, webtest.JSONRequest(fiber.MethodPost, TokenPath, `{"email":""}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
