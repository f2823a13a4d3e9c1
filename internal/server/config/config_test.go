package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 30*24*time.Hour, c.SessionTTL)
	assert.Equal(t, "goalkeeper_session", c.CookieName)
	assert.Equal(t, 7*24*time.Hour, c.RetentionWindow)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 10, c.BcryptCost)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	t.Setenv("GOALKEEPER_CONFIG", "")
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 7*24*time.Hour, c.RetentionWindow)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "server.json", `{
		"addr": ":9000",
		"database_dsn": "postgres://db",
		"session_ttl": "2h",
		"retention_window": 3600000000000,
		"allowed_origins": ["https://a.example"],
		"cookie_secure": true
	}`)

	c := defaults()
	require.NoError(t, loadFile(path, c))

	want := defaults()
	want.Addr = ":9000"
	want.DatabaseDSN = "postgres://db"
	want.SessionTTL = 2 * time.Hour
	want.RetentionWindow = time.Hour
	want.AllowedOrigins = []string{"https://a.example"}
	want.CookieSecure = true
	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "server.yaml", `
addr: ":9100"
redis_addr: "redis:6379"
nats_url: "nats://nats:4222"
rate_limit: 5
shutdown_timeout: 30s
`)

	c := defaults()
	require.NoError(t, loadFile(path, c))

	assert.Equal(t, ":9100", c.Addr)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, "nats://nats:4222", c.NATSURL)
	assert.Equal(t, 5, c.RateLimit)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "secretKey", c.SecretKey, "absent keys keep their value")
}

func TestLoadFile_Errors(t *testing.T) {
	c := defaults()
	assert.Error(t, loadFile(filepath.Join(t.TempDir(), "missing.json"), c))
	assert.Error(t, loadFile(writeFile(t, "bad.json", `{"addr":`), c))
	assert.Error(t, loadFile(writeFile(t, "bad.yml", "session_ttl: soon\n"), c))
}

func TestProcessEnv(t *testing.T) {
	c := defaults()
	err := processEnv(context.Background(), c, envconfig.MapLookuper(map[string]string{
		"GOALKEEPER_ADDR":             ":7000",
		"GOALKEEPER_SESSION_TTL":      "15m",
		"GOALKEEPER_ALLOWED_ORIGINS":  "https://a.example,https://b.example",
		"GOALKEEPER_COOKIE_SECURE":    "true",
		"GOALKEEPER_RETENTION_WINDOW": "168h",
		"ADDR":                        ":1",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, "secretKey", c.SecretKey, "unset variables keep the current value")
}

func TestProcessEnv_Invalid(t *testing.T) {
	c := defaults()
	err := processEnv(context.Background(), c, envconfig.MapLookuper(map[string]string{
		"GOALKEEPER_RATE_LIMIT": "lots",
	}))
	assert.Error(t, err)
}
