package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/grid"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/observability"
	"github.com/matzehuels/virtgrid/pkg/store"
)

const snapshotKeyType = "snapshot"

// Runner indexes layouts through a snapshot cache.
//
// The Runner holds no per-layout state. Multiple goroutines can use the
// same Runner as long as the cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long snapshots stay cached.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses the default keyer, a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLSnapshot,
	}
}

// Index returns the bucket index for layout. A cached snapshot is used
// when it matches the layout's hash and indexes exactly its keys; a
// stale or unreadable entry is rebuilt and overwritten.
func (r *Runner) Index(ctx context.Context, layout pkgio.Layout, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	hash, err := layout.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash layout: %w", err)
	}
	key := r.Keyer.SnapshotKey(hash, cache.SnapshotKeyOpts{BucketSize: opts.BucketSize})
	result := &Result{LayoutHash: hash}

	if !opts.Refresh {
		if snap, ok := r.cached(ctx, key, layout, opts); ok {
			result.Snapshot = snap
			result.CacheHit = true
			result.Stats = Stats{Items: len(layout.Items), Buckets: len(snap.Buckets), IndexTime: time.Since(start)}
			opts.Logger.Debug("loaded cached index", "hash", hash[:12], "buckets", len(snap.Buckets))
			return result, nil
		}
	}

	state := grid.Build(layout.Collection(), grid.Boxes[string](), grid.Options[string]{BucketSize: opts.BucketSize})
	result.Snapshot = pkgio.NewSnapshot(state)
	result.Stats = Stats{Items: len(layout.Items), Buckets: len(state.Buckets), IndexTime: time.Since(start)}
	observability.Index().OnBuild(len(layout.Items), len(state.Buckets), result.Stats.IndexTime)

	if data, err := pkgio.MarshalSnapshot(result.Snapshot); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			opts.Logger.Warn("failed to cache index", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, snapshotKeyType, len(data))
		}
	}

	opts.Logger.Info("built index",
		"items", result.Stats.Items,
		"buckets", result.Stats.Buckets,
		"bucket_size", state.BucketSize,
		"duration", result.Stats.IndexTime)
	return result, nil
}

func (r *Runner) cached(ctx context.Context, key string, layout pkgio.Layout, opts Options) (pkgio.Snapshot, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, snapshotKeyType)
		return pkgio.Snapshot{}, false
	}

	snap, err := pkgio.UnmarshalSnapshot(data)
	if err != nil || !snap.Covers(layout) || (opts.BucketSize > 0 && snap.BucketSize != opts.BucketSize) {
		opts.Logger.Debug("discarding stale cached index", "key", key)
		observability.Cache().OnCacheMiss(ctx, snapshotKeyType)
		return pkgio.Snapshot{}, false
	}
	observability.Cache().OnCacheHit(ctx, snapshotKeyType)
	return snap, true
}

// Open indexes layout and returns a store over it, seeded with the
// snapshot's buckets. The bucket size is fixed only when opts sets one;
// otherwise the store derives it, like the canvas size, so that later item
// replacements keep both current.
func (r *Runner) Open(ctx context.Context, layout pkgio.Layout, opts Options, view ViewOptions) (*store.Store[string, geom.Box], *Result, error) {
	view.SetDefaults()
	if err := view.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid view: %w", err)
	}
	result, err := r.Index(ctx, layout, opts)
	if err != nil {
		return nil, nil, err
	}

	pre := result.Snapshot.Options()
	s := store.New(store.Params[string, geom.Box]{
		Items:          layout.Collection(),
		Bounds:         grid.Boxes[string](),
		ViewportSize:   view.Viewport,
		ScrollPosition: view.Scroll,
		Overscan:       view.Overscan,
		BucketSize:     opts.BucketSize,
		Buckets:        pre.Buckets,
		Logger:         r.Logger,
	})
	return s, result, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
