package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

// newGateApp mounts one page and one API route per capability behind the
// gates. The identity of a request is set from its X-Role header.
func newGateApp(e *rbac.Enforcer) *fiber.App {
	app := webtest.NewApp()

	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			SetIdentity(c, &rbac.Identity{UserID: 1, Role: rbac.Role(role), Email: role + "@example.org"})
		}

		return c.Next()
	})

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	for _, capability := range rbac.Capabilities() {
		app.Get(gatePath("/page", capability), RequirePage(e, capability), ok)
		app.Get(gatePath("/api", capability), RequireAPI(e, capability), ok)
	}

	app.Get("/api-me", RequireIdentity(), ok)

	return app
}

// gatePath keeps the capability colon out of the route, fiber reads it as a parameter.
func gatePath(prefix string, capability rbac.Capability) string {
	return prefix + "/" + strings.ReplaceAll(capability.String(), ":", "-")
}

func gateRequest(path string, role rbac.Role) *http.Request {
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if role != "" {
		req.Header.Set("X-Role", role.String())
	}

	return req
}

func TestGates_PageAndAPIAgree(t *testing.T) {
	e := rbac.NewEnforcer(nil)
	app := newGateApp(e)

	for _, role := range rbac.Roles() {
		for _, capability := range rbac.Capabilities() {
			t.Run(role.String()+"/"+capability.String(), func(t *testing.T) {
				want := e.Table().HasCapability(role, capability)

				pageResp, pageBody := webtest.Do(t, app, gateRequest(gatePath("/page", capability), role))
				apiResp, apiBody := webtest.Do(t, app, gateRequest(gatePath("/api", capability), role))

				if want {
					assert.Equal(t, fiber.StatusOK, pageResp.StatusCode)
					assert.Equal(t, fiber.StatusOK, apiResp.StatusCode)
					assert.Equal(t, "ok", pageBody)

					return
				}

				assert.Equal(t, fiber.StatusForbidden, pageResp.StatusCode)
				assert.Equal(t, DeniedTemplate, pageBody)
				assert.Equal(t, fiber.StatusForbidden, apiResp.StatusCode)

				var payload map[string]string
				require.NoError(t, json.Unmarshal([]byte(apiBody), &payload))
				assert.Equal(t, "forbidden", payload["error"])
				assert.Equal(t, capability.String(), payload["capability"])
			})
		}
	}
}

func TestGates_Anonymous(t *testing.T) {
	app := newGateApp(rbac.NewEnforcer(nil))

	for _, capability := range rbac.Capabilities() {
		pageResp, _ := webtest.Do(t, app, gateRequest(gatePath("/page", capability), ""))
		assert.Equal(t, fiber.StatusFound, pageResp.StatusCode)
		assert.Equal(t, LoginPath, pageResp.Header.Get(fiber.HeaderLocation))

		apiResp, apiBody := webtest.Do(t, app, gateRequest(gatePath("/api", capability), ""))
		assert.Equal(t, fiber.StatusUnauthorized, apiResp.StatusCode)
		assert.NotEmpty(t, apiResp.Header.Get(fiber.HeaderWWWAuthenticate))
		assert.JSONEq(t, `{"error":"unauthenticated"}`, apiBody)
	}

	resp, _ := webtest.Do(t, app, gateRequest("/api-me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = webtest.Do(t, app, gateRequest("/api-me", rbac.RoleWhite))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGates_InvalidRoleIsAnonymous(t *testing.T) {
	app := newGateApp(rbac.NewEnforcer(nil))

	resp, _ := webtest.Do(t, app, gateRequest(gatePath("/api", rbac.CapViewHistory), rbac.Role("gold")))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAPIFor_CategoryCapability(t *testing.T) {
	app := webtest.NewApp()
	e := rbac.NewEnforcer(nil)

	app.Use(func(c *fiber.Ctx) error {
		SetIdentity(c, &rbac.Identity{UserID: 2, Role: rbac.RoleWhite})

		return c.Next()
	})
	app.Get("/posts", RequireAPIFor(e, func(c *fiber.Ctx) rbac.Capability {
		return rbac.CapabilityForCategory(c.Query("category"))
	}), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/posts?category=yearbooks", nil))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/posts?category=sports", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
