// Package auth resolves the identity of every web request.
//
// The middleware reads the session cookie first and falls back to an
// Authorization bearer token. The resolved identity is stored in fiber.Locals
// for the route gates of the internal auth package, the access log and the
// templates. It never rejects a request on its own: anonymous requests reach
// the gates, which redirect pages to the login form and answer API calls
// with 401.
//
// Usage:
//
//	app.Use(authmiddleware.New(tokenIssuer))
//
// Signed-in members opening the login page are sent to the dashboard.
package auth
