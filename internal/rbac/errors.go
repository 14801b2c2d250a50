package rbac

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a protected operation is attempted without an identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the identity lacks the required capability.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the target entity does not exist or is not visible to the viewer.
	ErrNotFound = errors.New("not found")

	// ErrValidation is the parent of every malformed-input error.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable is returned when the content store could not serve the request.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrUnknownRole is returned for a role value outside the enumeration.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownCapability is returned for a capability value outside the enumeration.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrIncompleteTable is returned when a permission table does not cover every role.
	ErrIncompleteTable = errors.New("permission table is missing a role")

	// ErrSelfDeletion is returned when an administrator tries to delete their own account.
	ErrSelfDeletion = &ValidationError{Field: "id", Message: "you cannot delete your own account"}

	// ErrLastAdmin is returned when a mutation would leave the portal without an administrator.
	ErrLastAdmin = &ValidationError{Field: "role", Message: "at least one administrator account must remain"}
)

// ValidationError describes malformed input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ForbiddenError names the capability that was required. It never names the
// resource, so a denial does not disclose what exists.
type ForbiddenError struct {
	Capability Capability
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: requires %s", ErrForbidden, e.Capability)
}

// Is makes every ForbiddenError match ErrForbidden.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// Kind classifies errors for transport adapters.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindUnauthenticated means no valid identity.
	KindUnauthenticated
	// KindForbidden means the identity lacks a capability.
	KindForbidden
	// KindNotFound means the target entity is absent.
	KindNotFound
	// KindValidation means malformed input.
	KindValidation
	// KindStoreUnavailable means the content store failed.
	KindStoreUnavailable
	// KindInternal is everything else.
	KindInternal
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindInternal:
		return "internal"
	}

	return "unknown"
}

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	}

	return KindInternal
}
