package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/TigerArchive/TigerArchive/internal/logger/adapter/fiber"

	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

type accessLine struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	User   uint64 `json:"user"`
	Role   string `json:"role"`
}

var consoleAccess = logger.Log{ //nolint:gochecknoglobals
	EnableAccessLogToConsole: true,
	Console:                  logger.Console{Enabled: true},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "disabled writes nothing",
			targetPath: "/",
		},
		{
			name:       "anonymous request",
			config:     adapter.Config{Config: consoleAccess},
			targetPath: "/",
			want:       &accessLine{Status: fiber.StatusOK, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			// the request URI arrives collapsed to a single leading slash
			name:       "double slash path with query",
			config:     adapter.Config{Config: consoleAccess},
			targetPath: "//yearbooks?page=2",
			want:       &accessLine{Status: fiber.StatusNotFound, URI: "/yearbooks?page=2", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "identity is logged",
			config:     adapter.Config{Config: consoleAccess},
			targetPath: "/member",
			want: &accessLine{
				Status: fiber.StatusOK, URI: "/member", Method: fiber.MethodGet, Host: "example.com",
				User: 7, Role: "maroon",
			},
		},
		{
			name: "checkalive skipped",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/checkalive",
			},
			targetPath: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := serveCaptured(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)

				return
			}

			var got accessLine

			require.NoError(t, json.Unmarshal([]byte(output), &got), output)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.User, got.User)
			assert.Equal(t, tt.want.Role, got.Role)
		})
	}
}

func serveCaptured(t *testing.T, targetPath string, cfg adapter.Config) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(adapter.New(cfg))

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})
	app.Get("/checkalive", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	app.Get("/member", func(ctx *fiber.Ctx) error {
		ctx.Locals("identity", &rbac.Identity{UserID: 7, Role: rbac.RoleMaroon})

		return ctx.SendString("hello member")
	})

	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), -1)

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr
	out := <-outC

	require.NoError(t, err)

	return out
}
