package importer

import (
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// CategoryRecord is one category of the legacy export.
type CategoryRecord struct {
	WPID       *uint64 `json:"wpId"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	ParentSlug *string `json:"parentSlug"`
}

// PostRecord is one post of the legacy export.
type PostRecord struct {
	WPID          *uint64  `json:"wpId"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Status        string   `json:"status"`
	Author        string   `json:"author"`
	PublishedAt   string   `json:"publishedAt"`
	FeaturedImage string   `json:"featuredImage"`
	AccessLevel   string   `json:"accessLevel"`
	Categories    []string `json:"categories"`
}

// Bundle is a complete legacy export.
type Bundle struct {
	Categories []CategoryRecord `json:"categories"`
	Posts      []PostRecord     `json:"posts"`
}

// publishedLayouts are the date layouts found in legacy exports.
var publishedLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parsePublished parses a legacy publication date. Empty and zero dates
// yield nil.
func parsePublished(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return nil, nil //nolint:nilnil
	}

	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}

	return nil, errors.Errorf("unrecognised publication date %q", s)
}

// LoadFiles reads the categories and posts JSON files of a legacy export.
func LoadFiles(categoriesPath, postsPath string) (*Bundle, error) {
	b := &Bundle{}

	if err := readJSON(categoriesPath, &b.Categories); err != nil {
		return nil, err
	}

	if err := readJSON(postsPath, &b.Posts); err != nil {
		return nil, err
	}

	return b, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read import file")
	}

	if err = json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}

	return nil
}
