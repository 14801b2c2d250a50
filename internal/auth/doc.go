// Package auth signs members in and guards routes.
//
// # Sign-in
//
// LocalProvider checks an email and password against the account table with
// Argon2id hashes. Registration always creates a white member; only an
// administrator can grant a higher role.
//
// TokenIssuer issues HS256 bearer tokens for API clients. A token carries the
// identity snapshot taken at issue time, like a cookie session does.
//
// # Guards
//
// RequirePage and RequireAPI protect fiber routes with a capability. Both call
// the same rbac.Enforcer.Authorize and differ only in how a denial is written:
//
//	app.Get("/yearbooks", auth.RequirePage(enforcer, rbac.CapViewYearbooks), handler)
//	app.Get("/api/posts", auth.RequireAPIFor(enforcer, categoryCapability), handler)
//
// The identity is read from fiber.Locals, see Identity. Resolving it from a
// cookie or a bearer token is the job of the web auth middleware.
package auth
