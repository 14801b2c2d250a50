package handler

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/webtest"
)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{auth.ErrInvalidToken, fiber.StatusUnauthorized},
		{&rbac.ForbiddenError{Capability: rbac.CapAdminUsers}, fiber.StatusForbidden},
		{fmt.Errorf("post: %w", rbac.ErrNotFound), fiber.StatusNotFound},
		{rbac.ErrSelfDeletion, fiber.StatusBadRequest},
		{rbac.ErrLastAdmin, fiber.StatusBadRequest},
		{fmt.Errorf("%w: dial tcp", rbac.ErrStoreUnavailable), fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, StatusOf(tc.err), "%v", tc.err)
	}
}

func TestJSONError(t *testing.T) {
	app := webtest.NewApp()
	app.Get("/self", func(c *fiber.Ctx) error { return JSONError(c, rbac.ErrSelfDeletion) })
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return JSONError(c, &rbac.ForbiddenError{Capability: rbac.CapAdminContent})
	})
	app.Get("/store", func(c *fiber.Ctx) error {
		return JSONError(c, fmt.Errorf("%w: password=secret", rbac.ErrStoreUnavailable))
	})

	resp, body := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/self", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"validation","field":"id","message":"id: you cannot delete your own account"}`, body)

	resp, body = webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/forbidden", nil))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, `"capability":"admin:content"`)

	resp, body = webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/store", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.NotContains(t, body, "secret")
}

func TestValidate(t *testing.T) {
	type input struct {
		Name string    `json:"name" validate:"required"`
		Slug string    `json:"slug" validate:"required,slug"`
		Role rbac.Role `json:"role" validate:"omitempty,role"`
	}

	require.NoError(t, Validate(input{Name: "Sports", Slug: "sports-2001"}))
	require.NoError(t, Validate(input{Name: "Sports", Slug: "sports", Role: rbac.RoleTiger}))

	testCases := []struct {
		name  string
		in    input
		field string
	}{
		{"missing name", input{Slug: "x"}, "name"},
		{"bad slug", input{Name: "x", Slug: "Not-Valid"}, "slug"},
		{"double dash", input{Name: "x", Slug: "a--b"}, "slug"},
		{"bad role", input{Name: "x", Slug: "x", Role: "gold"}, "role"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			require.ErrorIs(t, err, rbac.ErrValidation)

			var verr *rbac.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c)
		if err != nil {
			return JSONError(c, err)
		}

		return c.SendString(fmt.Sprint(id))
	})

	_, body := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/42", nil))
	assert.Equal(t, "42", body)

	for _, bad := range []string{"/0", "/-1", "/abc"} {
		resp, _ := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, bad, nil))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestPage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		p := PageQuery(c, 100).WithTotal(60)

		return c.JSON(fiber.Map{"page": p.CurrentPage, "size": p.PageSize, "pages": p.TotalPages, "offset": p.Offset(), "next": p.HasNextPage})
	})

	_, body := webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/?page=2", nil))
	assert.JSONEq(t, `{"page":2,"size":25,"pages":3,"offset":25,"next":true}`, body)

	_, body = webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/?page=-4&pageSize=500", nil))
	assert.JSONEq(t, `{"page":1,"size":25,"pages":3,"offset":0,"next":true}`, body)

	_, body = webtest.Do(t, app, httptest.NewRequest(fiber.MethodGet, "/?page=3&pageSize=30", nil))
	assert.JSONEq(t, `{"page":3,"size":30,"pages":2,"offset":60,"next":false}`, body)
}
