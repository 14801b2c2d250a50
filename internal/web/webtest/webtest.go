// Package webtest holds fiber helpers shared by handler tests.
package webtest

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/session"
)

// NoOpViews is a minimal fiber Views engine. It writes the "error" field of a
// fiber.Map if present, the template name otherwise.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, data any, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string)) //nolint:forcetypeassert

			return nil
		}
	}

	_, _ = io.WriteString(w, name)

	return nil
}

// NewApp returns a fiber app rendering with NoOpViews.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{Views: NoOpViews{}})
}

// Storage is a minimal in-memory fiber.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*Storage)(nil)

// Get implements fiber.Storage.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set implements fiber.Storage.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete implements fiber.Storage.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset implements fiber.Storage.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil

	return nil
}

// Close implements fiber.Storage.
func (s *Storage) Close() error { return nil }

// InitSessions points the session package at a fresh Storage.
func InitSessions(t testing.TB) *Storage {
	t.Helper()

	st := &Storage{}
	session.Init(st, time.Hour)

	return st
}

// SignIn writes a session for identity and returns its cookie value.
func SignIn(t testing.TB, identity *rbac.Identity) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := session.Data{Identity: *identity, IssuedAt: time.Now()}
	require.NoError(t, data.Write(id, time.Hour))

	return id
}

// Do runs req against app and returns the response with its body.
func Do(t testing.TB, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	_ = resp.Body.Close()

	return resp, string(body)
}

// WithSession adds the session cookie to req.
func WithSession(req *http.Request, sessionID string) *http.Request {
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	return req
}

// JSONRequest builds a request with a JSON body.
func JSONRequest(method, target, body string) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(body)) //nolint:noctx
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return req
}
