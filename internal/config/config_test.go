package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8083", cfg.HTTP.Addr)
	assert.Equal(t, "holiday.events", cfg.AMQP.Exchange)
	assert.Equal(t, 30, cfg.RateLimit.MessagesPerMinute)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holiday.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[http]
addr = ":9999"

[auth]
jwt_secret = "from-file"
issuer = "https://id.example.com"
`), 0o600))

	t.Setenv("HOLIDAY_AUTH_JWT_SECRET", "from-env")
	t.Setenv("HOLIDAY_RATELIMIT_MESSAGES_PER_MINUTE", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "https://id.example.com", cfg.Auth.Issuer)
	assert.Equal(t, 12, cfg.RateLimit.MessagesPerMinute)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Environment)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.EqualError(t, cfg.Validate(), "auth.jwt_secret is required")

	cfg.Auth.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	cfg.Log.Format = "xml"
	require.Error(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "auth.jwt_secret", envKey("HOLIDAY_AUTH_JWT_SECRET"))
	assert.Equal(t, "environment", envKey("HOLIDAY_ENVIRONMENT"))
	assert.Equal(t, "http.addr", envKey("HOLIDAY_HTTP_ADDR"))
}
