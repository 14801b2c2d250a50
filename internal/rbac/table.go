package rbac

import "fmt"

// PermissionTable is an immutable, total mapping from Role to the set of
// Capabilities it grants. Grants are authoritative and are not derived from
// the role rank: maroon and white both lack view:yearbooks while differing on
// view:photos.
type PermissionTable struct {
	grants map[Role]map[Capability]struct{}
}

// DefaultTable returns the portal's permission table.
func DefaultTable() *PermissionTable {
	table, err := NewTable(map[Role][]Capability{
		RoleAdmin: {
			CapViewYearbooks,
			CapViewPhotos,
			CapViewHistory,
			CapViewDashboard,
			CapAdminUsers,
			CapAdminContent,
			CapAdminSystem,
		},
		RoleTiger: {
			CapViewYearbooks,
			CapViewPhotos,
			CapViewHistory,
			CapViewDashboard,
		},
		RoleMaroon: {
			CapViewPhotos,
			CapViewHistory,
			CapViewDashboard,
		},
		RoleWhite: {
			CapViewHistory,
			CapViewDashboard,
		},
	})
	if err != nil {
		panic(err)
	}

	return table
}

// NewTable builds a PermissionTable. Every role must be present (an empty
// grant list is allowed) and only enumerated roles and capabilities are
// accepted, so a missing row is a construction error instead of a silent deny.
func NewTable(grants map[Role][]Capability) (*PermissionTable, error) {
	t := &PermissionTable{grants: make(map[Role]map[Capability]struct{}, len(grants))}

	for role, caps := range grants {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}

		set := make(map[Capability]struct{}, len(caps))

		for _, c := range caps {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: %q granted to %s", ErrUnknownCapability, c, role)
			}

			set[c] = struct{}{}
		}

		t.grants[role] = set
	}

	for _, role := range Roles() {
		if _, ok := t.grants[role]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrIncompleteTable, role)
		}
	}

	return t, nil
}

// PermissionsOf returns the capabilities granted to role in the stable order
// of Capabilities. It fails only for a role outside the enumeration.
func (t *PermissionTable) PermissionsOf(role Role) ([]Capability, error) {
	set, ok := t.grants[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	out := make([]Capability, 0, len(set))

	for _, c := range Capabilities() {
		if _, granted := set[c]; granted {
			out = append(out, c)
		}
	}

	return out, nil
}

// HasCapability reports whether role is granted c.
func (t *PermissionTable) HasCapability(role Role, c Capability) bool {
	_, ok := t.grants[role][c]
	return ok
}

// policies returns the grants as casbin "p" rows in a stable order.
func (t *PermissionTable) policies() [][]string {
	var rules [][]string

	for _, role := range Roles() {
		for _, c := range Capabilities() {
			if t.HasCapability(role, c) {
				rules = append(rules, []string{string(role), string(c)})
			}
		}
	}

	return rules
}
