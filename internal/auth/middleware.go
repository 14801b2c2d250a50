package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// LocalsIdentity is the fiber.Locals key of the resolved *rbac.Identity.
const LocalsIdentity = "identity"

var (
	// LoginPath is where RequirePage sends anonymous visitors.
	LoginPath = "/login" //nolint:gochecknoglobals

	// DeniedTemplate is rendered by RequirePage with status 403.
	DeniedTemplate = "denied" //nolint:gochecknoglobals

	// DeniedLayout wraps DeniedTemplate.
	DeniedLayout = "layouts/base" //nolint:gochecknoglobals
)

// CapabilityFunc selects the capability a request needs, for routes whose gate
// depends on the request, for example the category of a listing.
type CapabilityFunc func(c *fiber.Ctx) rbac.Capability

// Static returns a CapabilityFunc always selecting capability.
func Static(capability rbac.Capability) CapabilityFunc {
	return func(*fiber.Ctx) rbac.Capability { return capability }
}

// Identity returns the identity resolved for c, nil for anonymous requests.
func Identity(c *fiber.Ctx) *rbac.Identity {
	identity, ok := c.Locals(LocalsIdentity).(*rbac.Identity)
	if !ok || !identity.Valid() {
		return nil
	}

	return identity
}

// SetIdentity stores identity for the rest of the handler chain.
func SetIdentity(c *fiber.Ctx, identity *rbac.Identity) {
	c.Locals(LocalsIdentity, identity)
}

func authorize(e *rbac.Enforcer, c *fiber.Ctx, capability rbac.Capability) rbac.Decision {
	identity := Identity(c)
	decision := e.Authorize(identity, capability)

	if !decision.Allowed {
		event := logger.Audit.Log().
			Str("outcome", decision.Reason.String()).
			Str("capability", capability.String()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("IP", c.IP())

		if identity != nil {
			event.Uint64("user", identity.UserID).Str("role", identity.Role.String())
		}

		event.Msg("access denied")
	}

	return decision
}

// RequirePage guards a page route: anonymous visitors are redirected to
// LoginPath, members without capability get the denied view with status 403.
func RequirePage(e *rbac.Enforcer, capability rbac.Capability) fiber.Handler {
	return RequirePageFor(e, Static(capability))
}

// RequirePageFor is RequirePage with a per request capability.
func RequirePageFor(e *rbac.Enforcer, capability CapabilityFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := authorize(e, c, capability(c))

		switch decision.Reason {
		case rbac.ReasonNone:
			return c.Next()
		case rbac.ReasonUnauthenticated:
			return c.Redirect(LoginPath)
		case rbac.ReasonForbidden:
		}

		return c.Status(fiber.StatusForbidden).Render(DeniedTemplate, fiber.Map{
			"Title":       "Access denied",
			"Capability":  decision.Capability.String(),
			"CurrentUser": Identity(c),
		}, DeniedLayout)
	}
}

// RequireAPI guards an API route with JSON 401 and 403 responses.
func RequireAPI(e *rbac.Enforcer, capability rbac.Capability) fiber.Handler {
	return RequireAPIFor(e, Static(capability))
}

// RequireAPIFor is RequireAPI with a per request capability.
func RequireAPIFor(e *rbac.Enforcer, capability CapabilityFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := authorize(e, c, capability(c))

		switch decision.Reason {
		case rbac.ReasonNone:
			return c.Next()
		case rbac.ReasonUnauthenticated:
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="tigerarchive"`)

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": rbac.KindUnauthenticated.String(),
			})
		case rbac.ReasonForbidden:
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":      rbac.KindForbidden.String(),
			"capability": decision.Capability.String(),
		})
	}
}

// RequireIdentity guards routes every signed-in member may use, such as /api/me.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Identity(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": rbac.KindUnauthenticated.String(),
			})
		}

		return c.Next()
	}
}
