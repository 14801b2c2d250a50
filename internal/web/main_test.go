package web

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/handlertest"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, handlertest.Deps(t))
	require.Error(t, err)

	_, err = New(handlertest.Config(), &handler.Deps{})
	require.ErrorIs(t, err, handler.ErrIncompleteDeps)
}

func TestNew_Routes(t *testing.T) {
	s, err := New(handlertest.Config(), handlertest.Deps(t))
	require.NoError(t, err)

	white := webtest.SignIn(t, &rbac.Identity{UserID: 7, Role: rbac.RoleWhite, FirstName: "Wanda"})

	testCases := []struct {
		name     string
		path     string
		session  string
		status   int
		contains string
		location string
	}{
		{"root", "/", "", fiber.StatusFound, "", "/dashboard"},
		{"anonymous dashboard", "/dashboard", "", fiber.StatusFound, "", "/login"},
		{"login page", "/login", "", fiber.StatusOK, "Sign in", ""},
		{"register page", "/register", "", fiber.StatusOK, "Create account", ""},
		{"dashboard", "/dashboard", white, fiber.StatusOK, "Welcome, Wanda", ""},
		{"history", "/history", white, fiber.StatusOK, "No posts here yet.", ""},
		{"denied", "/yearbooks", white, fiber.StatusForbidden, "Access denied", ""},
		{"admin denied", "/admin", white, fiber.StatusForbidden, "admin:system", ""},
		{"missing post", "/post/nothing", white, fiber.StatusNotFound, "404", ""},
		{"api me", "/api/me", white, fiber.StatusOK, `"role":"white"`, ""},
		{"static", "/static/css/archive.css", "", fiber.StatusOK, "--maroon", ""},
		{"metrics", MetricsPath, "", fiber.StatusOK, "", ""},
		{"checkalive before start", CheckAlivePath, "", fiber.StatusServiceUnavailable, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := webtest.WithSession(httptest.NewRequest(fiber.MethodGet, tc.path, nil), tc.session)
			resp, body := webtest.Do(t, s.App, req)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, body, tc.contains)

			if tc.location != "" {
				assert.Equal(t, tc.location, resp.Header.Get(fiber.HeaderLocation))
			}
		})
	}

	s.alive.Store(true)
	resp, body := webtest.Do(t, s.App, httptest.NewRequest(fiber.MethodGet, CheckAlivePath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
	assert.True(t, s.Alive())
}
