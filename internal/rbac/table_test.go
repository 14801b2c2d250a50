package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_HasCapability(t *testing.T) {
	table := DefaultTable()

	expected := map[Role]map[Capability]bool{
		RoleAdmin: {
			CapViewYearbooks: true, CapViewPhotos: true, CapViewHistory: true, CapViewDashboard: true,
			CapAdminUsers: true, CapAdminContent: true, CapAdminSystem: true,
		},
		RoleTiger: {
			CapViewYearbooks: true, CapViewPhotos: true, CapViewHistory: true, CapViewDashboard: true,
		},
		RoleMaroon: {
			CapViewPhotos: true, CapViewHistory: true, CapViewDashboard: true,
		},
		RoleWhite: {
			CapViewHistory: true, CapViewDashboard: true,
		},
	}

	for _, role := range Roles() {
		for _, c := range Capabilities() {
			t.Run(role.String()+"/"+c.String(), func(t *testing.T) {
				assert.Equal(t, expected[role][c], table.HasCapability(role, c))
			})
		}
	}
}

func TestPermissionsOf(t *testing.T) {
	table := DefaultTable()

	caps, err := table.PermissionsOf(RoleMaroon)
	require.NoError(t, err)
	assert.Equal(t, []Capability{CapViewPhotos, CapViewHistory, CapViewDashboard}, caps)

	caps, err = table.PermissionsOf(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, Capabilities(), caps)

	_, err = table.PermissionsOf(Role("superuser"))
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestHasCapability_UnknownRole(t *testing.T) {
	assert.False(t, DefaultTable().HasCapability(Role("root"), CapViewHistory))
	assert.False(t, DefaultTable().HasCapability("", CapViewHistory))
}

func TestNewTable_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		grants  map[Role][]Capability
		wantErr error
	}{
		{
			name:    "missing role",
			grants:  map[Role][]Capability{RoleAdmin: {CapAdminSystem}},
			wantErr: ErrIncompleteTable,
		},
		{
			name: "unknown role",
			grants: map[Role][]Capability{
				RoleAdmin: nil, RoleTiger: nil, RoleMaroon: nil, RoleWhite: nil, Role("gold"): nil,
			},
			wantErr: ErrUnknownRole,
		},
		{
			name: "unknown capability",
			grants: map[Role][]Capability{
				RoleAdmin: {Capability("delete:everything")}, RoleTiger: nil, RoleMaroon: nil, RoleWhite: nil,
			},
			wantErr: ErrUnknownCapability,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.grants)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewTable_EmptyGrantsAllowed(t *testing.T) {
	table, err := NewTable(map[Role][]Capability{
		RoleAdmin: {CapAdminSystem}, RoleTiger: {}, RoleMaroon: {}, RoleWhite: {},
	})
	require.NoError(t, err)

	assert.True(t, table.HasCapability(RoleAdmin, CapAdminSystem))
	assert.False(t, table.HasCapability(RoleAdmin, CapViewHistory))
	assert.False(t, table.HasCapability(RoleWhite, CapViewHistory))
}

func TestParseRole(t *testing.T) {
	for _, in := range []string{"admin", "Tiger", " MAROON ", "white"} {
		r, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.True(t, r.Valid())
	}

	_, err := ParseRole("gold")
	require.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseRole("")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseCapability(t *testing.T) {
	c, err := ParseCapability("view:photos")
	require.NoError(t, err)
	assert.Equal(t, CapViewPhotos, c)

	_, err = ParseCapability("view:everything")
	require.ErrorIs(t, err, ErrUnknownCapability)
}

func TestRole_UnmarshalText(t *testing.T) {
	var r Role

	require.NoError(t, r.UnmarshalText([]byte("tiger")))
	assert.Equal(t, RoleTiger, r)

	require.Error(t, r.UnmarshalText([]byte("purple")))
	assert.Equal(t, RoleTiger, r, "failed unmarshal must not change the role")
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "Administrator", RoleAdmin.DisplayName())
	assert.Equal(t, "White", RoleWhite.DisplayName())
	assert.NotEmpty(t, RoleMaroon.Description())
}
