package rbac

import "fmt"

// Capability is an atomic named permission checked at feature boundaries.
type Capability string

const (
	// CapViewYearbooks allows browsing the yearbook archive.
	CapViewYearbooks Capability = "view:yearbooks"
	// CapViewPhotos allows browsing event and reunion photos.
	CapViewPhotos Capability = "view:photos"
	// CapViewHistory allows browsing history posts.
	CapViewHistory Capability = "view:history"
	// CapViewDashboard allows viewing the member dashboard.
	CapViewDashboard Capability = "view:dashboard"
	// CapAdminUsers allows managing member accounts and roles.
	CapAdminUsers Capability = "admin:users"
	// CapAdminContent allows managing posts and categories.
	CapAdminContent Capability = "admin:content"
	// CapAdminSystem allows system operations such as the legacy import.
	CapAdminSystem Capability = "admin:system"
)

// Capabilities returns every capability in a stable order.
func Capabilities() []Capability {
	return []Capability{
		CapViewYearbooks,
		CapViewPhotos,
		CapViewHistory,
		CapViewDashboard,
		CapAdminUsers,
		CapAdminContent,
		CapAdminSystem,
	}
}

// ParseCapability converts a wire value into a Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
	}

	return c, nil
}

// Valid reports whether c is one of the enumerated capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapViewYearbooks, CapViewPhotos, CapViewHistory, CapViewDashboard,
		CapAdminUsers, CapAdminContent, CapAdminSystem:
		return true
	}

	return false
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}
