package rbac

import "strings"

// Identity is the authenticated principal resolved from a session or a token.
// It is issued at sign-in and never mutated; a role change by an administrator
// takes effect when a new identity is issued.
type Identity struct {
	UserID    uint64 `json:"id"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ClassYear string `json:"classYear,omitempty"`
}

// Name returns the display name of the identity.
func (i *Identity) Name() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}

	return name
}

// Valid reports whether the identity carries a user id and an enumerated role.
func (i *Identity) Valid() bool {
	return i != nil && i.UserID > 0 && i.Role.Valid()
}
