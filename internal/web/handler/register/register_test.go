package register

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/db/controller/user"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/handlertest"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

func newRegisterApp(t *testing.T) (*fiber.App, *handler.Deps) {
	t.Helper()

	deps := handlertest.Deps(t)
	app := webtest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, handlertest.Config(), deps))

	return app, deps
}

func TestAPI_AlwaysWhite(t *testing.T) {
	app, deps := newRegisterApp(t)

	resp, body := webtest.Do(t, app, webtest.JSONRequest(fiber.MethodPost, APIPath,
		`{"email":"new@example.org","password":"long enough","firstName":"New","lastName":"Member","role":"admin"}`))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body, `"role":"white"`)

	u, err := user.GetByEmail(context.Background(), deps.Store, "new@example.org")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleWhite, u.Role)
}

func TestAPI_Validation(t *testing.T) {
	app, _ := newRegisterApp(t)

	body := `{"email":"dup@example.org","password":"long enough","firstName":"A","lastName":"B"}`
	resp, _ := webtest.Do(t, app, webtest.JSONRequest(fiber.MethodPost, APIPath, body))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{"duplicate email", body, `"field":"email"`},
		{"short password", `{"email":"a@example.org","password":"short","firstName":"A","lastName":"B"}`, `"field":"password"`},
		{"missing last name", `{"email":"a@example.org","password":"long enough","firstName":"A"}`, `"field":"lastName"`},
		{"bad email", `{"email":"nope","password":"long enough","firstName":"A","lastName":"B"}`, `"field":"email"`},
		{"malformed", `{`, `"error":"validation"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := webtest.Do(t, app, webtest.JSONRequest(fiber.MethodPost, APIPath, tc.body))
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, tc.field)
		})
	}
}

func TestPage(t *testing.T) {
	app, _ := newRegisterApp(t)

	_, body := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, Path, nil))
	assert.Equal(t, TemplateName, body)

	form := url.Values{}
	form.Set("email", "form@example.org")
	form.Set("password", "long enough")
	form.Set("firstName", "Form")
	form.Set("lastName", "User")

	req := httptest.NewRequest(fiber.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, _ := webtest.Do(t, app, req)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?registered=1", resp.Header.Get(fiber.HeaderLocation))

	form.Set("password", "short")
	req = httptest.NewRequest(fiber.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, body = webtest.Do(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password: must be at least 8 characters", body)
}
