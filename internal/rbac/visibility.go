package rbac

import "strings"

// Visible reports whether a viewer with role viewer may see a post stored with
// accessLevel. This is the content-level rank gate, distinct from the
// capability table: rank(viewer) >= rank(accessLevel).
func Visible(viewer, accessLevel Role) bool {
	if !viewer.Valid() || !accessLevel.Valid() {
		return false
	}

	return viewer.Rank() >= accessLevel.Rank()
}

// VisibleLevels returns every access level viewer may see, lowest first.
// It is used to push the rank gate down to the store query.
// An invalid viewer sees nothing.
func VisibleLevels(viewer Role) []Role {
	levels := make([]Role, 0, len(Roles()))

	for _, level := range Roles() {
		if Visible(viewer, level) {
			levels = append(levels, level)
		}
	}

	return levels
}

// Category slugs that carry a feature gate of their own.
var (
	yearbookCategories = []string{"yearbooks"}                                //nolint:gochecknoglobals
	photoCategories    = []string{"events-photos", "reunion-photos", "photos"} //nolint:gochecknoglobals
)

// CapabilityForCategory returns the capability needed to list posts of the
// category with the given slug. Yearbooks need view:yearbooks, photo
// categories need view:photos, everything else is part of the history archive.
func CapabilityForCategory(slug string) Capability {
	switch {
	case matchesAny(slug, yearbookCategories):
		return CapViewYearbooks
	case matchesAny(slug, photoCategories):
		return CapViewPhotos
	}

	return CapViewHistory
}

func matchesAny(s string, set []string) bool {
	for _, candidate := range set {
		if strings.EqualFold(strings.TrimSpace(s), candidate) {
			return true
		}
	}

	return false
}

// PhotoCategories returns the category slugs gated by view:photos.
func PhotoCategories() []string {
	return append([]string(nil), photoCategories...)
}

// YearbookCategories returns the category slugs gated by view:yearbooks.
func YearbookCategories() []string {
	return append([]string(nil), yearbookCategories...)
}
