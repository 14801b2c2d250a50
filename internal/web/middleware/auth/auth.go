package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/web/session"
)

const (
	// LoginPath is the path of the sign-in page.
	LoginPath = "/login"

	// HomePath is where signed-in members visiting LoginPath are sent.
	HomePath = "/dashboard"

	bearerPrefix = "bearer "
)

// New returns the identity resolver. A valid session cookie wins over an
// Authorization bearer token; requests carrying neither stay anonymous and
// are left to the route gates.
func New(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		originalURL := strings.ToLower(c.OriginalURL())
		if strings.HasPrefix(originalURL, "/static") {
			return c.Next()
		}

		if sessionID := c.Cookies(session.CookieName); sessionID != "" {
			sessData := new(session.Data)

			err := sessData.Read(sessionID)
			if err == nil && sessData.Identity.Valid() {
				auth.SetIdentity(c, &sessData.Identity)
			} else if err != nil && !errors.Is(err, session.ErrNoSession) {
				log.Warn().Err(err).Msg("failed to read session")
			}
		}

		if auth.Identity(c) == nil && tokens != nil {
			if token, ok := BearerToken(c); ok {
				identity, err := tokens.Parse(token)
				if err != nil {
					log.Debug().Err(err).Str("IP", c.IP()).Msg("rejected bearer token")
				} else {
					auth.SetIdentity(c, identity)
				}
			}
		}

		if auth.Identity(c) != nil && IsLoginPage(c) && c.Method() == fiber.MethodGet {
			return c.Redirect(HomePath)
		}

		return c.Next()
	}
}

// BearerToken extracts the token of an Authorization: Bearer header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())

	return originalURL == LoginPath || strings.HasPrefix(originalURL, LoginPath+"?")
}
