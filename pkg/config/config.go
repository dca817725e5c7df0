// Package config loads virtgrid's TOML configuration file.
//
// The file is optional; every value has a default and command-line flags
// override whatever the file sets. A complete file:
//
//	[viewport]
//	width = 800
//	height = 600
//	overscan = 100
//
//	[index]
//	bucket_size = 0        # 0 derives the size from the canvas
//
//	[cache]
//	backend = "file"       # file | redis | none
//	redis_addr = "localhost:6379"
//	redis_prefix = "virtgrid:"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "virtgrid"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Index    Index    `toml:"index"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Viewport holds the default viewport for query and browse.
type Viewport struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Overscan float64 `toml:"overscan"`
}

// Index holds index build options.
type Index struct {
	BucketSize float64 `toml:"bucket_size"`
}

// Cache selects and configures the snapshot cache.
type Cache struct {
	Backend     string   `toml:"backend"`
	Dir         string   `toml:"dir"`
	RedisAddr   string   `toml:"redis_addr"`
	RedisPrefix string   `toml:"redis_prefix"`
	TTL         Duration `toml:"ttl"`

	// KeyScope namespaces snapshot keys so that several deployments can
	// share one backend. Empty means unscoped.
	KeyScope string `toml:"key_scope"`
}

// Server configures the HTTP API.
type Server struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Viewport: Viewport{Width: 800, Height: 600, Overscan: 100},
		Cache: Cache{
			Backend:     BackendFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: AppName + ":",
			TTL:         Duration{cache.TTLSnapshot},
		},
		Server: Server{
			Addr:       ":8080",
			SessionTTL: Duration{30 * time.Minute},
		},
	}
}

// Load reads the file at path on top of [Default]. A missing file is not
// an error. Unknown keys are rejected so that typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and the cache backend name.
func (c Config) Validate() error {
	if err := errors.ValidateSize(c.Viewport.Width, c.Viewport.Height); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "viewport")
	}
	if err := errors.ValidateOverscan(c.Viewport.Overscan); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "viewport")
	}
	if err := errors.ValidateBucketSize(c.Index.BucketSize); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "index")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if err := errors.ValidateAddr(c.Cache.RedisAddr); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if err := errors.ValidateAddr(c.Server.Addr); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.addr")
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/virtgrid/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, defaulting to
// $XDG_CACHE_HOME/virtgrid or ~/.cache/virtgrid.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
