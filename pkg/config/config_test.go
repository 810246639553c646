package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"JIVELINK_ENV", "JIVELINK_HTTP_ADDR", "JIVE_CLIENT_ID", "JIVE_CLIENT_SECRET",
		"JIVELINK_DEVELOPMENT", "IGNORE_REGISTRATION_SOURCE", "HTTP_TIMEOUT_SEC",
		"COMMUNITY_SEED_DIR", "REDIS_URL", "DATABASE_URL",
	} {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Errorf("Load() Env = %v, want dev", cfg.Env)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Load() HTTPAddr = %v, want :8080", cfg.HTTPAddr)
	}
	if cfg.Development {
		t.Errorf("Load() Development = true, want false")
	}
	if cfg.IgnoreRegistrationSource {
		t.Errorf("Load() IgnoreRegistrationSource = true, want false")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Load() HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.Audience != "jivelink-admin" {
		t.Errorf("Load() Audience = %v, want jivelink-admin", cfg.Audience)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JIVELINK_ENV", "prod")
	t.Setenv("JIVELINK_DEVELOPMENT", "true")
	t.Setenv("JIVE_CLIENT_ID", "cid")
	t.Setenv("HTTP_TIMEOUT_SEC", "5")

	cfg := Load()

	if cfg.Env != "prod" {
		t.Errorf("Load() Env = %v, want prod", cfg.Env)
	}
	if !cfg.Development {
		t.Errorf("Load() Development = false, want true")
	}
	if cfg.DefaultClientID != "cid" {
		t.Errorf("Load() DefaultClientID = %v, want cid", cfg.DefaultClientID)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Load() HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
}
