// Package store holds the derived state of one virtualized collection and
// notifies subscribers when that state changes.
//
// A [Store] owns a bucket index over its items and the visible-key set for
// the current viewport. Parameter updates rerun only the stages whose
// inputs changed: item, accessor or precomputed-value changes reindex,
// viewport changes only requery. Subscribers are notified only when the
// canvas size or the visible-key set actually differs from what they last
// saw, so scroll deltas that keep the same items on screen are silent.
//
// A Store is not safe for concurrent use; callers that share one across
// goroutines must serialize their calls.
package store

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/grid"
	"github.com/matzehuels/virtgrid/pkg/observability"
	"github.com/matzehuels/virtgrid/pkg/scroll"
)

// DefaultOverscan is the margin, in canvas units, added around the
// viewport when Params.Overscan is nil.
const DefaultOverscan = 100

// Params configures a new [Store].
type Params[K grid.Key, I comparable] struct {
	// Items is the collection to virtualize. Nil means empty.
	Items grid.Collection[K, I]

	// Bounds returns an item's box. Required.
	Bounds grid.Bounder[K, I]

	ViewportSize   geom.Size
	ScrollPosition geom.Position

	// Overscan defaults to DefaultOverscan when nil.
	Overscan *float64

	// Precomputed values. Each one skips the matching computation.
	// CanvasSize and BucketSize stay in effect until replaced; Buckets
	// seeds the index once and is patched by later item changes.
	CanvasSize *geom.Size
	BucketSize float64
	Buckets    grid.Buckets[K]

	// Logger receives debug timings. Nil discards them.
	Logger *log.Logger
}

// Update is a partial parameter change for [Store.Set]. Nil fields are
// left as they are.
type Update[K grid.Key, I comparable] struct {
	// Items replaces the collection. Passing the collection the store
	// already holds is a no-op unless Changes is set.
	Items grid.Collection[K, I]

	// Changes lists the keys that changed since the last update. When
	// set, it is used instead of comparing items by value; use it when
	// items are mutated in place.
	Changes *grid.Diff[K]

	// Bounds replaces the accessor and forces a full rebuild.
	Bounds grid.Bounder[K, I]

	ViewportSize   *geom.Size
	ScrollPosition *geom.Position
	Overscan       *float64

	// CanvasSize and BucketSize replace the precomputed values; a zero
	// value returns to deriving them from the items.
	CanvasSize *geom.Size
	BucketSize *float64
	Buckets    grid.Buckets[K]
}

// State is what subscribers observe.
type State[K grid.Key] struct {
	CanvasSize geom.Size `json:"canvas"`

	// VisibleKeys is shared with the store and must not be modified.
	// Its order carries no meaning.
	VisibleKeys []K `json:"visible"`
}

// Listener is called after the observable state changed.
type Listener func()

type subscription struct {
	fn Listener
}

// Store is an observable virtualization state for one collection.
type Store[K grid.Key, I comparable] struct {
	logger *log.Logger

	items      grid.Collection[K, I]
	bounds     grid.Bounder[K, I]
	viewport   grid.Viewport
	canvasSize *geom.Size
	bucketSize float64

	index       *grid.State[K]
	visible     grid.KeySet[K]
	visibleKeys []K
	output      State[K]
	published   grid.KeySet[K]

	subs []*subscription
}

// New builds the index for p.Items and computes the initial visible set.
// No listener is notified.
func New[K grid.Key, I comparable](p Params[K, I]) *Store[K, I] {
	s := &Store[K, I]{
		logger:     p.Logger,
		items:      p.Items,
		bounds:     p.Bounds,
		canvasSize: p.CanvasSize,
		bucketSize: p.BucketSize,
		viewport: grid.Viewport{
			Scroll:   p.ScrollPosition,
			Size:     p.ViewportSize,
			Overscan: DefaultOverscan,
		},
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.items == nil {
		s.items = grid.FromMap(map[K]I{})
	}
	if p.Overscan != nil {
		s.viewport.Overscan = *p.Overscan
	}

	s.rebuild(p.Buckets)
	s.query()
	s.output = State[K]{CanvasSize: s.index.Size, VisibleKeys: s.visibleKeys}
	s.published = s.visible
	return s
}

// Subscribe registers fn and returns a function that removes it.
// Removing twice is harmless. Listeners added or removed while a
// notification is in flight take effect from the next notification.
func (s *Store[K, I]) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	s.subs = append(s.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			if i := slices.Index(s.subs, sub); i >= 0 {
				s.subs = slices.Delete(slices.Clone(s.subs), i, i+1)
			}
		})
	}
}

// State returns the last published state.
func (s *Store[K, I]) State() State[K] { return s.output }

// Viewport returns the current viewport, scroll position and overscan.
func (s *Store[K, I]) Viewport() grid.Viewport { return s.viewport }

// Items returns the current collection.
func (s *Store[K, I]) Items() grid.Collection[K, I] { return s.items }

// Index returns the current bucket index. It is owned by the store and is
// patched by later updates.
func (s *Store[K, I]) Index() *grid.State[K] { return s.index }

// Set applies u, recomputes the affected stages and notifies listeners if
// the canvas size or visible-key set changed. It reports whether listeners
// were notified.
func (s *Store[K, I]) Set(u Update[K, I]) bool {
	var (
		reindex, rebuild, requery bool
		prevItems                 = s.items
	)

	if u.Items != nil && !grid.SameCollection(u.Items, s.items) {
		s.items = u.Items
		reindex = true
	}
	if u.Changes != nil {
		reindex = true
	}
	if u.Bounds != nil {
		s.bounds = u.Bounds
		rebuild = true
	}
	if u.CanvasSize != nil {
		if u.CanvasSize.IsZero() {
			rebuild = rebuild || s.canvasSize != nil
			s.canvasSize = nil
		} else if s.canvasSize == nil || !s.canvasSize.Equal(*u.CanvasSize) {
			size := *u.CanvasSize
			s.canvasSize = &size
			rebuild = true
		}
	}
	if u.BucketSize != nil && *u.BucketSize != s.bucketSize {
		s.bucketSize = *u.BucketSize
		rebuild = true
	}
	if u.Buckets != nil {
		rebuild = true
	}

	if u.ViewportSize != nil && !u.ViewportSize.Equal(s.viewport.Size) {
		s.viewport.Size = *u.ViewportSize
		requery = true
	}
	if u.ScrollPosition != nil && *u.ScrollPosition != s.viewport.Scroll {
		s.viewport.Scroll = *u.ScrollPosition
		requery = true
	}
	if u.Overscan != nil && *u.Overscan != s.viewport.Overscan {
		s.viewport.Overscan = *u.Overscan
		requery = true
	}

	switch {
	case rebuild:
		s.rebuild(u.Buckets)
	case reindex:
		s.patch(prevItems, u.Changes)
	}
	if rebuild || reindex || requery {
		s.query()
	}
	return s.publish()
}

// Recompute rebuilds the index from scratch and requeries, notifying
// listeners if the result differs from the published state.
func (s *Store[K, I]) Recompute() bool {
	s.rebuild(nil)
	s.query()
	return s.publish()
}

// ScrollToItem returns the scroll offset that brings key into view under
// opts, relative to the store's current viewport and scroll position.
// The store itself is not scrolled; apply the target with [Store.Set].
func (s *Store[K, I]) ScrollToItem(key K, opts scroll.Options) (scroll.Target, error) {
	item, ok := s.items.Get(key)
	if !ok {
		return scroll.Target{}, errors.New(errors.ErrCodeKeyNotFound, "item %v not found", key)
	}
	box := s.bounds.Bounds(item, key)
	return scroll.ScrollTo(box, s.viewport.Size, s.viewport.Scroll, opts), nil
}

func (s *Store[K, I]) options() grid.Options[K] {
	return grid.Options[K]{CanvasSize: s.canvasSize, BucketSize: s.bucketSize}
}

func (s *Store[K, I]) rebuild(seed grid.Buckets[K]) {
	start := time.Now()
	opts := s.options()
	opts.Buckets = seed
	s.index = grid.Build(s.items, s.bounds, opts)
	d := time.Since(start)

	observability.Index().OnBuild(s.items.Len(), len(s.index.Buckets), d)
	s.logger.Debug("built index",
		"items", s.items.Len(),
		"buckets", len(s.index.Buckets),
		"bucket_size", s.index.BucketSize,
		"precomputed", seed != nil,
		"duration", d)
}

func (s *Store[K, I]) patch(prevItems grid.Collection[K, I], changes *grid.Diff[K]) {
	start := time.Now()
	var report grid.Report
	if changes != nil {
		s.index, report = grid.UpdateWith(s.index, prevItems, s.items, *changes, s.bounds, s.options())
	} else {
		s.index, report = grid.Update(s.index, prevItems, s.items, s.bounds, s.options())
	}
	d := time.Since(start)

	observability.Index().OnUpdate(report.Added, report.Removed, report.Rebuilt, d)
	s.logger.Debug("updated index",
		"added", report.Added,
		"removed", report.Removed,
		"rebuilt", report.Rebuilt,
		"buckets", len(s.index.Buckets),
		"duration", d)
}

func (s *Store[K, I]) query() {
	start := time.Now()
	keys := grid.Query(s.viewport, s.index, s.items, s.bounds)
	d := time.Since(start)

	s.visibleKeys = keys
	s.visible = grid.NewKeySet(keys)
	observability.Index().OnQuery(len(keys), d)
	s.logger.Debug("queried visible keys", "visible", len(keys), "duration", d)
}

// publish replaces the output and notifies a snapshot of the listeners
// if the canvas size or the visible set changed.
func (s *Store[K, I]) publish() bool {
	if s.output.CanvasSize.Equal(s.index.Size) && s.published.Equal(s.visible) {
		observability.Store().OnSuppressed()
		return false
	}

	s.output = State[K]{CanvasSize: s.index.Size, VisibleKeys: s.visibleKeys}
	s.published = s.visible

	subs := s.subs
	observability.Store().OnNotify(len(subs))
	for _, sub := range subs {
		sub.fn()
	}
	return true
}

// Ptr returns a pointer to v, for filling [Update] fields.
func Ptr[T any](v T) *T { return &v }
