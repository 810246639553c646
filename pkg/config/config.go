// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Process-wide OAuth client fallbacks; a community record may carry its own.
	DefaultClientID     string
	DefaultClientSecret string

	// Development disables remote signature validation (logged loudly).
	Development bool
	// IgnoreRegistrationSource skips signature validation even outside dev.
	IgnoreRegistrationSource bool

	// Admin surface JWT settings (list/inspect communities).
	Issuer   string
	Audience string
	JWKSURL  string

	// Outbound HTTP budget for signature checks, token exchanges and proxying.
	HTTPTimeout time.Duration

	// Optional directory of YAML/JSON community seed files.
	SeedDir string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                      env("JIVELINK_ENV", "dev"),
		HTTPAddr:                 env("JIVELINK_HTTP_ADDR", ":8080"),
		DefaultClientID:          env("JIVE_CLIENT_ID", ""),
		DefaultClientSecret:      env("JIVE_CLIENT_SECRET", ""),
		Development:              envBool("JIVELINK_DEVELOPMENT", false),
		IgnoreRegistrationSource: envBool("IGNORE_REGISTRATION_SOURCE", false),
		Issuer:                   env("OIDC_ISSUER", ""),
		Audience:                 env("OIDC_AUDIENCE", "jivelink-admin"),
		JWKSURL:                  env("JWKS_URL", ""),
		HTTPTimeout:              envDur("HTTP_TIMEOUT_SEC", 30) * time.Second,
		SeedDir:                  env("COMMUNITY_SEED_DIR", ""),
		RedisURL:                 env("REDIS_URL", ""),
		DatabaseURL:              env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		log.Println("[WARN] neither DATABASE_URL nor REDIS_URL set — using in-memory community store for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
