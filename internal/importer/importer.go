// Package importer loads a legacy WordPress export into the content store.
//
// Categories are imported first so posts can link to them by slug. Records
// whose slug already exists are skipped, which makes a forced rerun safe. A
// post without an access level gets the one inferred from its category slugs.
// A completed run leaves a marker setting; later runs are refused unless forced.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/db/controller/category"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/post"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/setting"
	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// MarkerSetting is the setting written after a completed import.
const MarkerSetting = "import.completed"

const untitled = "(Untitled)"

// ErrAlreadyImported is returned when the marker exists and force is off.
var ErrAlreadyImported = rbac.NewValidationError("import", "the legacy import already ran, force a rerun to import again")

// Counters are the outcome of one record kind.
type Counters struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Result is the outcome of a run.
type Result struct {
	Categories Counters `json:"categories"`
	Posts      Counters `json:"posts"`
	// UnknownCategories counts post links to slugs missing from the store.
	UnknownCategories int       `json:"unknownCategories"`
	Finished          time.Time `json:"finished"`
}

// Marker is the value of MarkerSetting.
type Marker struct {
	Result Result `json:"result"`
	By     uint64 `json:"by,omitempty"`
}

// Importer runs legacy imports against a store.
type Importer struct {
	store *store.Store
	now   func() time.Time
}

// New returns an Importer writing to s.
func New(s *store.Store) *Importer {
	return &Importer{store: s, now: time.Now}
}

// LastRun returns the marker of the last completed run, nil if none.
func (im *Importer) LastRun(ctx context.Context) (*Marker, error) {
	var m Marker

	found, err := setting.GetJSON(ctx, im.store, MarkerSetting, &m)
	if err != nil || !found {
		return nil, err
	}

	return &m, nil
}

// Run imports b on behalf of actor, nil for the command line. A store outage
// aborts the run and returns the partial result with the error.
func (im *Importer) Run(ctx context.Context, b *Bundle, actor *rbac.Identity, force bool) (*Result, error) {
	if b == nil {
		return nil, rbac.NewValidationError("import", "nothing to import")
	}

	last, err := im.LastRun(ctx)
	if err != nil {
		return nil, err
	}

	if last != nil && !force {
		return nil, ErrAlreadyImported
	}

	res := &Result{}

	if err = im.importCategories(ctx, b.Categories, res); err != nil {
		return res, err
	}

	slugs, err := im.categoryIDs(ctx)
	if err != nil {
		return res, err
	}

	if err = im.importPosts(ctx, b.Posts, slugs, res); err != nil {
		return res, err
	}

	res.Finished = im.now()

	marker := Marker{Result: *res}
	if actor != nil {
		marker.By = actor.UserID
	}

	if err = setting.SetJSON(ctx, im.store, MarkerSetting, marker); err != nil {
		return res, err
	}

	log.Info().
		Int("categories_imported", res.Categories.Imported).
		Int("categories_skipped", res.Categories.Skipped).
		Int("categories_errors", res.Categories.Errors).
		Int("posts_imported", res.Posts.Imported).
		Int("posts_skipped", res.Posts.Skipped).
		Int("posts_errors", res.Posts.Errors).
		Int("unknown_categories", res.UnknownCategories).
		Msg("legacy import finished")

	return res, nil
}

// fatal reports whether err should abort the run.
func fatal(err error) bool {
	return rbac.KindOf(err) == rbac.KindStoreUnavailable || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (im *Importer) importCategories(ctx context.Context, records []CategoryRecord, res *Result) error {
	for i := range records {
		rec := &records[i]
		slug := strings.ToLower(strings.TrimSpace(rec.Slug))

		_, err := category.GetBySlug(ctx, im.store, slug)

		switch {
		case err == nil:
			res.Categories.Skipped++

			continue
		case !errors.Is(err, rbac.ErrNotFound):
			if fatal(err) {
				return err
			}

			res.Categories.Errors++

			continue
		}

		in := category.Fields{WPID: rec.WPID, Name: rec.Name, Slug: slug}
		if rec.ParentSlug != nil {
			in.ParentSlug = strings.ToLower(strings.TrimSpace(*rec.ParentSlug))
		}

		if _, err = category.Create(ctx, im.store, in); err != nil {
			if fatal(err) {
				return err
			}

			log.Warn().Err(err).Str("slug", rec.Slug).Msg("failed to import category")

			res.Categories.Errors++

			continue
		}

		res.Categories.Imported++
	}

	return nil
}

func (im *Importer) categoryIDs(ctx context.Context) (map[string]uint64, error) {
	all, err := category.List(ctx, im.store, rbac.RoleAdmin)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uint64, len(all))
	for i := range all {
		ids[all[i].Slug] = all[i].ID
	}

	return ids, nil
}

func (im *Importer) importPosts(ctx context.Context, records []PostRecord, categoryIDs map[string]uint64, res *Result) error {
	for i := range records {
		in, unknown, err := postFields(&records[i], categoryIDs)
		res.UnknownCategories += unknown

		if err != nil {
			log.Warn().Err(err).Str("slug", records[i].Slug).Msg("failed to import post")

			res.Posts.Errors++

			continue
		}

		exists, err := post.ExistsBySlug(ctx, im.store, in.Slug)
		if err != nil {
			if fatal(err) {
				return err
			}

			res.Posts.Errors++

			continue
		}

		if exists {
			res.Posts.Skipped++

			continue
		}

		if _, err = post.Create(ctx, im.store, in); err != nil {
			if fatal(err) {
				return err
			}

			log.Warn().Err(err).Str("slug", in.Slug).Msg("failed to import post")

			res.Posts.Errors++

			continue
		}

		res.Posts.Imported++
	}

	return nil
}

// postFields converts rec. The access level is inferred from every category
// slug of the record, including slugs missing from the store.
func postFields(rec *PostRecord, categoryIDs map[string]uint64) (post.Fields, int, error) {
	in := post.Fields{
		WPID:          rec.WPID,
		Title:         strings.TrimSpace(rec.Title),
		Slug:          strings.ToLower(strings.TrimSpace(rec.Slug)),
		Content:       rec.Content,
		Excerpt:       rec.Excerpt,
		Status:        models.PostStatus(strings.TrimSpace(rec.Status)),
		PostType:      "post",
		FeaturedImage: rec.FeaturedImage,
		Author:        rec.Author,
	}

	if in.Title == "" {
		in.Title = untitled
	}

	if in.Slug == "" && rec.WPID != nil {
		in.Slug = fmt.Sprintf("post-%d", *rec.WPID)
	}

	published, err := parsePublished(rec.PublishedAt)
	if err != nil {
		return in, 0, rbac.NewValidationError("publishedAt", err.Error())
	}

	in.PublishedAt = published

	if level := strings.TrimSpace(rec.AccessLevel); level != "" {
		role, err := rbac.ParseRole(level)
		if err != nil {
			return in, 0, rbac.NewValidationError("accessLevel", err.Error())
		}

		in.AccessLevel = role
	} else {
		in.AccessLevel = rbac.InferAccessLevel(rec.Categories)
	}

	var unknown int

	seen := make(map[uint64]struct{}, len(rec.Categories))

	for _, slug := range rec.Categories {
		id, ok := categoryIDs[strings.ToLower(strings.TrimSpace(slug))]
		if !ok {
			unknown++

			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		in.CategoryIDs = append(in.CategoryIDs, id)
	}

	return in, unknown, nil
}
