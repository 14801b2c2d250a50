package rbac

import (
	"fmt"
	"strings"
)

// Role is the privilege tier of a member. The set is closed.
type Role string

const (
	// RoleAdmin has full access to all content and system administration.
	RoleAdmin Role = "admin"
	// RoleTiger has full access to all archives including yearbooks.
	RoleTiger Role = "tiger"
	// RoleMaroon has access to photos, history and community content.
	RoleMaroon Role = "maroon"
	// RoleWhite has access to history and community content.
	// It is the role of every self-registered account.
	RoleWhite Role = "white"
)

// DefaultRole is assigned to self-registered accounts and to content without
// an explicit access level.
const DefaultRole = RoleWhite

// Roles returns all roles ordered from the lowest to the highest rank.
func Roles() []Role {
	return []Role{RoleWhite, RoleMaroon, RoleTiger, RoleAdmin}
}

// ParseRole converts a wire value into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}

	return r, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTiger, RoleMaroon, RoleWhite:
		return true
	}

	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Rank returns the numeric tier used for content visibility:
// white=0, maroon=1, tiger=2, admin=3. Unknown roles rank below every
// valid role, so they never see anything.
func (r Role) Rank() int {
	switch r {
	case RoleWhite:
		return 0
	case RoleMaroon:
		return 1
	case RoleTiger:
		return 2
	case RoleAdmin:
		return 3 //nolint:mnd
	}

	return -1
}

// DisplayName returns the human readable name of the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleTiger:
		return "Tiger"
	case RoleMaroon:
		return "Maroon"
	case RoleWhite:
		return "White"
	}

	return string(r)
}

// Description explains what the role grants.
func (r Role) Description() string {
	switch r {
	case RoleAdmin:
		return "Full access to all content and system administration"
	case RoleTiger:
		return "Full access to all archives including yearbooks"
	case RoleMaroon:
		return "Access to photos, history, and community content"
	case RoleWhite:
		return "Access to history and community content"
	}

	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown roles.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}
