package rbac

// InferAccessLevel derives the default access level of a post from its
// categories. First match wins: a yearbook category gives tiger, a photo
// category gives maroon, anything else gives white. Matching ignores case.
//
// It is evaluated once when a post is created without an explicit level and is
// never re-run on later category edits.
func InferAccessLevel(categories []string) Role {
	for _, c := range categories {
		if matchesAny(c, yearbookCategories) {
			return RoleTiger
		}
	}

	for _, c := range categories {
		if matchesAny(c, photoCategories) {
			return RoleMaroon
		}
	}

	return DefaultRole
}
