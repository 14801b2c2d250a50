package daemon

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/db/controller/user"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const defaultAdminEmail = "admin@tigerarchive.local"

// seed creates the bootstrap administrator when the user table is empty.
func seed(ctx context.Context, cfg *config.Config, s *store.Store) error {
	if !cfg.Seed.Enabled {
		return nil
	}

	count, err := user.Count(ctx, s)
	if err != nil || count > 0 {
		return err
	}

	email := cfg.Seed.AdminEmail
	if email == "" {
		email = defaultAdminEmail
	}

	password := cfg.Seed.AdminPassword
	generated := password == ""

	if generated {
		if password, err = auth.RandomSecret(); err != nil {
			return err
		}

		password = password[:24]
	}

	u, err := user.Create(ctx, s, user.Fields{
		Email:     email,
		Password:  password,
		FirstName: "Archive",
		LastName:  "Administrator",
		Role:      rbac.RoleAdmin,
	})
	if err != nil {
		return err
	}

	event := log.Warn().Uint64("user", u.ID).Str("email", u.Email)
	if generated {
		// only chance to see it
		event.Str("password", password)
	}

	event.Msg("created the bootstrap administrator, change its password")

	return nil
}
