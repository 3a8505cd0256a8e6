package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("CORS_ORIGIN", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("ADMIN_EMAIL", "")

	cfg := FromEnv("/srv/app")

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.HelmetCSP)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, filepath.Join("/srv/app", "storage", "database.sqlite"), cfg.DBPath)
	assert.Equal(t, "admin@altarie.local", cfg.Admin.Email)
}

func TestFromEnv_ReadsValues(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("APP_PORT", "8081")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example ,")
	t.Setenv("CSP_CONNECT_SRC", "https://api.example")
	t.Setenv("CSP_SCRIPT_INLINE", "1")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_ALLOWLIST", "127.0.0.1,10.0.0.1")
	t.Setenv("ADMIN_SALT", "pepper")

	cfg := FromEnv("")

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"https://api.example"}, cfg.CSPConnectSrc)
	assert.True(t, cfg.CSPScriptInline)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.1"}, cfg.RateLimit.Allowlist)
	assert.Equal(t, "pepper", cfg.Admin.Salt)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")
	t.Setenv("RATE_LIMIT_MAX", "-3")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("TRUST_PROXY", "maybe")

	cfg := FromEnv("")

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.TrustProxy)
}

func TestWindowOr(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"60000", time.Minute},
		{"1 minute", time.Minute},
		{"15 minutes", 15 * time.Minute},
		{"2 hours", 2 * time.Hour},
		{"1 day", 24 * time.Hour},
		{"0", time.Minute},
		{"3 fortnights", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowOr(tt.raw, time.Minute))
		})
	}
}

func TestLoadEnv_ReadsDotEnvAndDefaultsNodeEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_NAME=from-dotenv\n"), 0o644))

	t.Setenv("NODE_ENV", "")
	t.Setenv("APP_NAME", "")
	os.Unsetenv("APP_NAME")
	os.Unsetenv("NODE_ENV")

	cfg := Load(dir)

	assert.Equal(t, "from-dotenv", cfg.Name)
	assert.Equal(t, EnvDevelopment, os.Getenv("NODE_ENV"))
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnv_ExistingVariablesWin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_NAME=from-dotenv\n"), 0o644))
	t.Setenv("APP_NAME", "from-process")

	cfg := Load(dir)

	assert.Equal(t, "from-process", cfg.Name)
}
