package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectEtc(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectEtc(t))
	require.NoError(t, err)

	assert.Equal(t, "Tiger Archive", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	assert.Equal(t, 24*time.Hour, cfg.Webserver.Session.ExpiryTime)
	assert.Equal(t, 30*time.Second, cfg.Store.BreakerTimeout)
	assert.Equal(t, "audit.log", cfg.Log.File.Audit.Name)
	assert.True(t, cfg.Seed.Enabled)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090,"URL":"http://x"}}`)

	cfg, err := ReadConfig(projectEtc(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	// untouched keys survive the merge
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
}

func TestReadConfigWithBrokenJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":`)

	_, err := ReadConfig(projectEtc(t))
	require.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid config",
			config: Config{Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}},
		},
		{
			name:    "missing port",
			config:  Config{Webserver: Webserver{URL: "http://localhost:8080"}},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "missing URL",
			config:  Config{Webserver: Webserver{Port: 8080}},
			wantErr: ErrEmptyURL,
		},
		{
			name: "unknown engine",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				DB:        DB{GormEngine: "oracle"},
			},
			wantErr: ErrUnsupportedGormEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	c := Config{Webserver: Webserver{Port: 1, URL: "http://x"}}
	require.NoError(t, validate(&c))

	assert.Equal(t, EngineSQLite, c.DB.GormEngine)
	assert.Equal(t, defaultShutDownTime, c.Webserver.ShutDownTime)
	assert.Equal(t, defaultSessionExpiry, c.Webserver.Session.ExpiryTime)
	assert.Equal(t, defaultRetryAttempts, c.Store.RetryAttempts)
	assert.Equal(t, uint32(defaultBreakerFailure), c.Store.BreakerFailures)
	assert.Equal(t, defaultBreakerTimeout, c.Store.BreakerTimeout)
}

func TestDumpConfigJSONMasksSecrets(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DB:        DB{Password: "db-secret"},
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080", TokenSecret: "hmac-secret"},
		Seed:      Seed{AdminPassword: "seed-secret"},
	}

	out, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "Test")
	assert.NotContains(t, out, "db-secret")
	assert.NotContains(t, out, "hmac-secret")
	assert.NotContains(t, out, "seed-secret")
	// the caller's copy is untouched
	assert.Equal(t, "db-secret", cfg.DB.Password)
}

func TestMain(m *testing.M) {
	_ = os.Unsetenv(EnvConfigJSON)

	os.Exit(m.Run())
}
