// Package config resolves the application's environment.
//
// Values come from the process environment, optionally seeded from a .env
// file in the application's base directory. A value that is present but
// malformed (RATE_LIMIT_MAX=lots) falls back to its default instead of
// failing startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// RateLimit configures the optional per-IP request limiter.
type RateLimit struct {
	Enabled   bool
	Max       int
	Window    time.Duration
	Allowlist []string
}

// Admin holds the credentials the admin seed migration creates.
type Admin struct {
	Name     string
	Email    string
	Password string
	Salt     string
}

// Config is the resolved application configuration.
type Config struct {
	BaseDir  string
	Name     string
	Env      string
	Port     int
	LogLevel string

	TrustProxy bool
	DBPath     string

	HelmetCSP       bool
	CSPConnectSrc   []string
	CSPScriptInline bool
	CORSOrigins     []string

	RateLimit      RateLimit
	Admin          Admin
	PasswordHasher string
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }

// Addr is the listen address for the configured port.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// LoadEnv reads <baseDir>/.env into the process environment, falling back
// to a .env in the working directory. Variables that are already set win.
// NODE_ENV defaults to development.
func LoadEnv(baseDir string) {
	envPath := filepath.Join(baseDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // a missing .env is normal
	}

	if os.Getenv("NODE_ENV") == "" {
		os.Setenv("NODE_ENV", EnvDevelopment)
	}
}

// Load resolves the environment for baseDir and returns the typed config.
func Load(baseDir string) *Config {
	LoadEnv(baseDir)
	return FromEnv(baseDir)
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv(baseDir string) *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "altarie")
	v.SetDefault("NODE_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("DB_PATH", filepath.Join("storage", "database.sqlite"))
	v.SetDefault("HELMET_CSP", "true")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("RATE_LIMIT_MAX", "100")
	v.SetDefault("RATE_LIMIT_WINDOW", "1 minute")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("ADMIN_EMAIL", "admin@altarie.local")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("PASSWORD_HASHER", "sha256")

	env := strings.ToLower(strings.TrimSpace(v.GetString("NODE_ENV")))
	if env == "" {
		env = EnvDevelopment
	}

	dbPath := v.GetString("DB_PATH")
	if !filepath.IsAbs(dbPath) && baseDir != "" {
		dbPath = filepath.Join(baseDir, dbPath)
	}

	logLevel := strings.ToLower(v.GetString("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
		if env == EnvDevelopment {
			logLevel = "debug"
		}
	}

	return &Config{
		BaseDir:  baseDir,
		Name:     v.GetString("APP_NAME"),
		Env:      env,
		Port:     intOr(v.GetString("APP_PORT"), 3000),
		LogLevel: logLevel,

		TrustProxy: boolOr(v.GetString("TRUST_PROXY"), false),
		DBPath:     dbPath,

		HelmetCSP:       boolOr(v.GetString("HELMET_CSP"), true),
		CSPConnectSrc:   SplitList(v.GetString("CSP_CONNECT_SRC")),
		CSPScriptInline: boolOr(v.GetString("CSP_SCRIPT_INLINE"), false),
		CORSOrigins:     listOr(v.GetString("CORS_ORIGIN"), []string{"*"}),

		RateLimit: RateLimit{
			Enabled:   boolOr(v.GetString("RATE_LIMIT_ENABLED"), false),
			Max:       positiveIntOr(v.GetString("RATE_LIMIT_MAX"), 100),
			Window:    WindowOr(v.GetString("RATE_LIMIT_WINDOW"), time.Minute),
			Allowlist: SplitList(v.GetString("RATE_LIMIT_ALLOWLIST")),
		},
		Admin: Admin{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			Salt:     v.GetString("ADMIN_SALT"),
		},
		PasswordHasher: strings.ToLower(v.GetString("PASSWORD_HASHER")),
	}
}

// SplitList splits a comma-separated value, trimming blanks and dropping empty items.
func SplitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func listOr(raw string, def []string) []string {
	if items := SplitList(raw); len(items) > 0 {
		return items
	}
	return def
}

func intOr(raw string, def int) int {
	n, err := cast.ToIntE(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return def
	}
	return n
}

func positiveIntOr(raw string, def int) int {
	if n := intOr(raw, def); n > 0 {
		return n
	}
	return def
}

func boolOr(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return def
	}
	return b
}

// WindowOr parses a rate-limit window. Accepted forms: a Go duration
// ("90s"), a bare number of milliseconds ("60000") or "<n> <unit>" with
// unit second, minute, hour or day ("1 minute", "15 minutes").
func WindowOr(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}

	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return def
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return def
	}
	unit := strings.TrimSuffix(fields[1], "s")
	switch unit {
	case "second":
		return time.Duration(n) * time.Second
	case "minute":
		return time.Duration(n) * time.Minute
	case "hour":
		return time.Duration(n) * time.Hour
	case "day":
		return time.Duration(n) * 24 * time.Hour
	}
	return def
}
