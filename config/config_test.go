package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "HTTP_ADDR", "PORT", "CORS_ORIGINS", "DATABASE_URL", "REDIS_ADDR",
		"JWT_SECRET", "JWT_TTL", "QUOTA_DAILY", "DB_MAX_OPEN_CONNS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 2000, cfg.Limits.DailyQuota)
	assert.False(t, cfg.Production())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "eventhub.yaml")
	yml := `
env: staging
http:
  addr: ":9000"
auth:
  token_ttl: 1h
limits:
  daily_quota: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("QUOTA_DAILY", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 7, cfg.Limits.DailyQuota)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTP.Addr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad int", env: map[string]string{"QUOTA_DAILY": "many"}},
		{name: "bad duration", env: map[string]string{"JWT_TTL": "forever"}},
		{name: "default secret in production", env: map[string]string{"APP_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
