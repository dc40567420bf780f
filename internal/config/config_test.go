package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ThemeStoreCookie, cfg.Theme.Store)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 365*24*time.Hour, cfg.Theme.MaxAge)
	assert.Equal(t, 30*time.Second, cfg.PDF.Timeout)
	assert.False(t, cfg.SMTPConfigured())
	assert.Equal(t, "http://localhost:8080", cfg.ResolvedBaseURL())
}

func TestLoad_File(t *testing.T) {
	t.Setenv("FOLIO_TEST_REDIS", "redis://cache:6379/2")
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  base_url: "https://folio.example/"
profile:
  path: ./me.yaml
  watch: true
theme:
  store: Redis
  max_age: 720h
redis:
  url: "${FOLIO_TEST_REDIS}"
pdf:
  timeout: 45s
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "https://folio.example", cfg.ResolvedBaseURL())
	assert.True(t, cfg.Profile.Watch)
	assert.Equal(t, ThemeStoreRedis, cfg.Theme.Store)
	assert.Equal(t, 720*time.Hour, cfg.Theme.MaxAge)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, 45*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	// Untouched sections keep defaults.
	assert.Equal(t, "587", cfg.SMTP.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\ntheme:\n  store: memory\n")
	t.Setenv("PORT", "7070")
	t.Setenv("THEME_STORE", "sqlite")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASS", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, ThemeStoreSQLite, cfg.Theme.Store)
	assert.True(t, cfg.SMTPConfigured())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "server: [", "parsing config file"},
		{"bad duration", "pdf:\n  timeout: soon\n", "parsing pdf.timeout"},
		{"unknown store", "theme:\n  store: etcd\n", "theme.store must be one of"},
		{"watch without path", "profile:\n  watch: true\n", "profile.watch requires profile.path"},
		{"empty addr", "server:\n  addr: \"\"\n", "server.addr is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOLIO_A", "alpha")
	assert.Equal(t, "x alpha y ", expandEnvVars("x ${FOLIO_A} y ${FOLIO_UNSET_VAR}"))
}
