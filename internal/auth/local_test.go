package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/db/dbtest"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

func TestAuthenticate(t *testing.T) {
	s := dbtest.Open(t)
	p := NewLocalProvider(s)
	ctx := context.Background()

	created := dbtest.CreateUser(t, s, "tiger@example.org", rbac.RoleTiger)

	u, err := p.Authenticate(ctx, " Tiger@Example.org", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, rbac.RoleTiger, u.Identity().Role)

	_, err = p.Authenticate(ctx, "tiger@example.org", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, rbac.KindUnauthenticated, rbac.KindOf(err))

	_, errUnknown := p.Authenticate(ctx, "nobody@example.org", "password123")
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, err.Error(), errUnknown.Error(), "unknown email and wrong password look the same")
}

func TestRegister(t *testing.T) {
	s := dbtest.Open(t)
	p := NewLocalProvider(s)
	ctx := context.Background()

	u, err := p.Register(ctx, RegisterInput{
		Email:     "new@example.org",
		Password:  "long enough",
		FirstName: "New",
		LastName:  "Member",
		ClassYear: "2010",
	})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleWhite, u.Role)
	assert.Equal(t, "2010", u.ClassYear)

	_, err = p.Authenticate(ctx, "new@example.org", "long enough")
	require.NoError(t, err)

	testCases := []struct {
		name string
		in   RegisterInput
	}{
		{"short password", RegisterInput{Email: "a@example.org", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing first name", RegisterInput{Email: "a@example.org", Password: "long enough", LastName: "B"}},
		{"missing last name", RegisterInput{Email: "a@example.org", Password: "long enough", FirstName: "A"}},
		{"duplicate email", RegisterInput{Email: "NEW@example.org", Password: "long enough", FirstName: "A", LastName: "B"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Register(ctx, tc.in)
			require.ErrorIs(t, err, rbac.ErrValidation)
		})
	}
}
