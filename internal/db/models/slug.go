package models

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase, dash separated url slug.
func ValidSlug(s string) bool {
	return len(s) <= 191 && slugPattern.MatchString(s)
}
