package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/config"
)

// RateLimit limits credential endpoints to Webserver.LoginRateLimit requests
// per minute and client IP. A zero limit disables it.
func RateLimit(cfg *config.Config) fiber.Handler {
	if cfg == nil || cfg.Webserver.LoginRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Webserver.LoginRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().Str("IP", c.IP()).Str("path", c.Path()).Msg("credential rate limit reached")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many attempts, try again later",
			})
		},
	})
}
