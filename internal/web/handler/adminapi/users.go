package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/user"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
)

// UserInput is the body of POST /api/admin/users. Unlike self registration an
// administrator may pick the role.
type UserInput struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	ClassYear string `json:"classYear" validate:"max=10"`
	Role      string `json:"role"      validate:"omitempty,role"`
}

// UserPatch is the body of PATCH /api/admin/users/:id.
type UserPatch struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,max=100"`
	ClassYear *string `json:"classYear" validate:"omitempty,max=10"`
	Role      *string `json:"role"      validate:"omitempty,role"`
}

// UserList is the body of GET /api/admin/users.
type UserList struct {
	Users  []*rbac.Identity `json:"users"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func identities(users []models.User) []*rbac.Identity {
	out := make([]*rbac.Identity, 0, len(users))
	for i := range users {
		out = append(out, users[i].Identity())
	}

	return out
}

// ListUsers handles GET /api/admin/users?limit=&offset=.
func (s *Service) ListUsers(c *fiber.Ctx) error {
	limit, offset := user.Bounds(c.QueryInt("limit", user.DefaultLimit), c.QueryInt("offset", 0))

	users, total, err := user.List(c.UserContext(), s.deps.Store, limit, offset)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(UserList{Users: identities(users), Total: total, Limit: limit, Offset: offset})
}

// CreateUser handles POST /api/admin/users.
func (s *Service) CreateUser(c *fiber.Ctx) error {
	const action = "user.create"

	in := new(UserInput)
	if err := handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	u, err := user.Create(c.UserContext(), s.deps.Store, user.Fields{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ClassYear: in.ClassYear,
		Role:      rbac.Role(in.Role),
	})
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("user", u.ID).Str("role", u.Role.String()).Msg("admin")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u.Identity()})
}

// UpdateUser handles PATCH /api/admin/users/:id. Demoting the last
// administrator is rejected.
func (s *Service) UpdateUser(c *fiber.Ctx) error {
	const action = "user.update"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	in := new(UserPatch)
	if err = handler.Bind(c, in); err != nil {
		return failed(c, action, err)
	}

	patch := user.Patch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ClassYear: in.ClassYear,
	}

	if in.Role != nil {
		role := rbac.Role(*in.Role)
		patch.Role = &role
	}

	u, err := user.Update(c.UserContext(), s.deps.Store, id, patch)
	if err != nil {
		return failed(c, action, err)
	}

	event := audit(c, action).Str("outcome", "success").Uint64("user", u.ID)
	if in.Role != nil {
		event.Str("role", *in.Role)
	}

	event.Msg("admin")

	return c.JSON(fiber.Map{"user": u.Identity()})
}

// DeleteUser handles DELETE /api/admin/users/:id. Administrators can not
// delete themselves and the last administrator stays.
func (s *Service) DeleteUser(c *fiber.Ctx) error {
	const action = "user.delete"

	id, err := handler.ParamID(c)
	if err != nil {
		return failed(c, action, err)
	}

	if err = user.Delete(c.UserContext(), s.deps.Store, auth.Identity(c), id); err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").Uint64("user", id).Msg("admin")

	return c.SendStatus(fiber.StatusNoContent)
}
