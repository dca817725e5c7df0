package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/virtgrid/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}

	cfg, err = Load("")
	if err != nil || cfg != Default() {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", cfg, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[viewport]
width = 1024
overscan = 0

[index]
bucket_size = 250

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"
ttl = "1h30m"
key_scope = "staging"

[server]
session_ttl = "5m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Viewport.Width != 1024 || cfg.Viewport.Height != 600 {
		t.Errorf("viewport = %vx%v, want 1024x600", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Viewport.Overscan != 0 {
		t.Errorf("overscan = %v, want explicit 0", cfg.Viewport.Overscan)
	}
	if cfg.Index.BucketSize != 250 {
		t.Errorf("bucket_size = %v, want 250", cfg.Index.BucketSize)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.KeyScope != "staging" {
		t.Errorf("key_scope = %q, want staging", cfg.Cache.KeyScope)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v, want 1h30m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.SessionTTL.Duration != 5*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `[viewport`},
		{"unknown key", "[viewport]\nwidht = 10\n"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"negative size", "[viewport]\nwidth = -1\n"},
		{"negative bucket size", "[index]\nbucket_size = -5\n"},
		{"bad duration", "[cache]\nttl = \"soon\"\n"},
		{"bad redis addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"localhost\"\n"},
		{"zero session ttl", "[server]\nsession_ttl = \"0s\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load(encoded defaults): %v\n%s", err, buf.String())
	}
	if cfg != Default() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if got, _ := DefaultPath(); got != "/tmp/xdg-config/virtgrid/config.toml" {
		t.Errorf("DefaultPath = %s", got)
	}
	if got, _ := Default().CacheDir(); got != "/tmp/xdg-cache/virtgrid" {
		t.Errorf("CacheDir = %s", got)
	}

	cfg := Default()
	cfg.Cache.Dir = "/var/cache/vg"
	if got, _ := cfg.CacheDir(); got != "/var/cache/vg" {
		t.Errorf("CacheDir with override = %s", got)
	}
}
