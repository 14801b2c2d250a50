package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/TigerArchive/TigerArchive/internal/db/controller/user"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// MinPasswordLength is the shortest accepted registration password.
const MinPasswordLength = 8

// dummyHash is verified against when the email is unknown, so both failure paths cost the same.
var dummyHash = sync.OnceValue(func() string { //nolint:gochecknoglobals
	return models.HashPassword("tigerarchive-timing-equalizer")
})

// RegisterInput holds a self-registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	ClassYear string
}

// LocalProvider handles local database authentication.
type LocalProvider struct {
	store *store.Store
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(s *store.Store) *LocalProvider {
	return &LocalProvider{store: s}
}

// Authenticate returns the account for email if password matches.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := user.GetByEmail(ctx, p.store, email)
	if errors.Is(err, rbac.ErrNotFound) {
		(&models.User{Password: dummyHash()}).VerifyPassword(password)

		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	if !u.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Register creates a white member. The requested data never selects the role.
func (p *LocalProvider) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	switch {
	case in.FirstName == "":
		return nil, rbac.NewValidationError("firstName", "is required")
	case in.LastName == "":
		return nil, rbac.NewValidationError("lastName", "is required")
	}

	return user.Create(ctx, p.store, user.Fields{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ClassYear: in.ClassYear,
		Role:      rbac.DefaultRole,
	})
}
