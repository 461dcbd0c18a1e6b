package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_ADDR", "POSTGRES_DSN", "SESSION_HASH_KEY", "APP_ENV"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir()) // no stray .env or ./config/config.yaml
}

func TestLoadConfig_FileWithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, `
http:
  addr: ":9000"
  readTimeout: 3s
session:
  hashKey: "0123456789abcdef0123456789abcdef"
postgres:
  dsn: "postgres://localhost/study"
`))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "postgres://localhost/study", cfg.Postgres.DSN)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "study-room", cfg.Logging.Service)
	assert.Equal(t, "std", cfg.Logging.Backend)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, `
http:
  addr: ":9000"
session:
  hashKey: "0123456789abcdef0123456789abcdef"
`))
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("POSTGRES_DSN", "postgres://db/rooms")
	t.Setenv("APP_ENV", "prod")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://db/rooms", cfg.Postgres.DSN)
	assert.Equal(t, "prod", cfg.Logging.Env)
}

func TestLoadConfig_NoFileUsesEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_HASH_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("CONFIG_PATH", writeConfig(t, "session:\n  hashKey: short\n"))
	_, err = LoadConfig()
	require.ErrorContains(t, err, "hashKey")

	t.Setenv("CONFIG_PATH", writeConfig(t, "session:\n  hashKey: \"0123456789abcdef0123456789abcdef\"\n  blockKey: \"abc\"\n"))
	_, err = LoadConfig()
	require.ErrorContains(t, err, "blockKey")

	t.Setenv("CONFIG_PATH", writeConfig(t, "http: [not, a, map]\n"))
	_, err = LoadConfig()
	require.ErrorContains(t, err, "unmarshal yaml")
}
