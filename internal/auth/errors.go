package auth

import (
	"errors"
	"fmt"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases share one error so sign-in does not disclose registered emails.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", rbac.ErrUnauthenticated)

	// ErrInvalidToken is returned for a malformed, expired or wrongly signed bearer token.
	ErrInvalidToken = fmt.Errorf("%w: invalid bearer token", rbac.ErrUnauthenticated)

	// ErrEmptySecret is returned when a token issuer is created without a secret.
	ErrEmptySecret = errors.New("token secret can not be empty")

	// ErrPasswordTooShort is returned when a registration password is below MinPasswordLength.
	ErrPasswordTooShort = rbac.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
)
