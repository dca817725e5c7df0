package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/virtgrid/pkg/buildinfo"
	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/config"
	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/httputil"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// remoteLayoutTTL is how long downloaded layouts are cached.
	remoteLayoutTTL = time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "virtgrid finds the items visible in a viewport over large 2D layouts",
		Long: `virtgrid indexes 2D layouts of positioned items in a uniform bucket grid
and answers which items intersect a scrolling viewport, without scanning
the whole layout.

It can index layout files, query and browse them from the terminal, and
serve virtualization sessions over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/virtgrid/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.scrollToCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default path when the flag
// is unset. Only an explicitly named file must exist.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
	} else {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope := c.Config.Cache.KeyScope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory degrades to no caching; an unreachable Redis is an error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   c.Config.Cache.RedisAddr,
			Prefix: c.Config.Cache.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.Config.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache directory unusable, caching disabled", "dir", dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// loadLayout reads a layout from a file or an http(s) URL. Downloads are
// cached in the runner's cache.
func (c *CLI) loadLayout(ctx context.Context, runner *pipeline.Runner, src string, refresh bool) (pkgio.Layout, error) {
	if !httputil.IsURL(src) {
		return pkgio.ImportLayout(src)
	}
	client := httputil.NewClient(runner.Cache, "layout:", remoteLayoutTTL, nil)
	l, err := client.FetchLayout(ctx, src, refresh)
	if err != nil {
		return pkgio.Layout{}, fmt.Errorf("fetch layout: %w", err)
	}
	c.Logger.Debug("fetched layout", "url", src, "items", len(l.Items))
	return l, nil
}
