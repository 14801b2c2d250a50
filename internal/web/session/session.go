// Package session keeps signed-in identities in the fiber session storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// ErrNoSession is returned by Read when the session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Data represents the session data structure.
type Data struct {
	Identity rbac.Identity
	IssuedAt time.Time
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return Store.Storage.Set(sessionID, out, exp) //nolint:wrapcheck
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	// storages return nil, nil for unknown keys
	if len(byteData) == 0 {
		return ErrNoSession
	}

	return json.Unmarshal(byteData, s) //nolint:wrapcheck
}

// Destroy removes the session sessionID.
func Destroy(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return Store.Storage.Delete(sessionID) //nolint:wrapcheck
}

// Init initializes the session store. A nil storage selects the in-process memory storage.
func Init(storage fiber.Storage, expiration time.Duration) {
	Store = session.New(session.Config{
		Storage:    storage,
		Expiration: expiration,
		KeyLookup:  "cookie:" + CookieName,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err //nolint:wrapcheck
	}

	return hex.EncodeToString(b), nil
}
