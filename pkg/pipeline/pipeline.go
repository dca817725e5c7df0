// Package pipeline turns a layout file into a ready-to-query store.
//
// The pipeline has two stages:
//
//  1. Index: build the bucket index for a layout, or load it from the
//     snapshot cache when the same layout was indexed before
//  2. Open: create a [store.Store] seeded with the indexed snapshot, so the
//     store skips its own build pass
//
// The CLI and the HTTP server both go through a [Runner] so that caching
// behaves identically for every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	layout, _ := pkgio.ImportLayout("layout.json")
//	s, result, err := runner.Open(ctx, layout, pipeline.Options{}, pipeline.ViewOptions{
//	    Viewport: geom.Size{Width: 800, Height: 600},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.CacheHit, s.State().VisibleKeys)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/store"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultViewportWidth  = 800
	DefaultViewportHeight = 600
	DefaultOverscan       = store.DefaultOverscan
)

// =============================================================================
// Options
// =============================================================================

// Options configures the index stage.
type Options struct {
	// BucketSize fixes the grid cell size; 0 derives it from the canvas.
	BucketSize float64 `json:"bucket_size,omitempty"`

	// Refresh ignores cached snapshots and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Validate checks the options and fills in the logger.
func (o *Options) Validate() error {
	if err := errors.ValidateBucketSize(o.BucketSize); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ViewOptions configures the store opened over an indexed layout.
type ViewOptions struct {
	Viewport geom.Size
	Scroll   geom.Position

	// Overscan defaults to DefaultOverscan when nil.
	Overscan *float64
}

// SetDefaults fills an empty viewport with the default size.
func (v *ViewOptions) SetDefaults() {
	if v.Viewport.IsZero() {
		v.Viewport = geom.Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
}

// Validate checks the view parameters.
func (v ViewOptions) Validate() error {
	if err := errors.ValidateSize(v.Viewport.Width, v.Viewport.Height); err != nil {
		return err
	}
	if v.Overscan != nil {
		return errors.ValidateOverscan(*v.Overscan)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result describes one run of the index stage.
type Result struct {
	// LayoutHash is the content hash of the layout.
	LayoutHash string

	// Snapshot is the index, loaded or built.
	Snapshot pkgio.Snapshot

	// CacheHit reports whether the snapshot came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats contains index statistics.
type Stats struct {
	Items     int
	Buckets   int
	IndexTime time.Duration
}
