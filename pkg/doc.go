// Package pkg provides the core libraries for virtgrid viewport virtualization.
//
// # Overview
//
// virtgrid answers "which of these positioned items intersect the visible
// window?" for 2D layouts with tens of thousands of items, without looking
// at every item on every scroll. Items are indexed in a uniform grid of
// square buckets; a query only inspects the buckets around the viewport.
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [geom], [grid], [scroll] and [store]
//  2. Infrastructure: [cache], [config], [errors], [observability], [io]
//  3. Orchestration: [pipeline], [session], [server], [httputil]
//
// # Architecture
//
// The typical data flow through virtgrid:
//
//	Layout file / URL / HTTP request
//	         ↓
//	    [io] package (decode and validate items)
//	         ↓
//	    [pipeline] package (index, cached by layout hash)
//	         ↓
//	    [store] package (viewport state + change notification)
//	         ↓
//	    visible keys, scroll targets
//
// # Quick Start
//
// Virtualize a map of boxes and follow the visible set:
//
//	import (
//	    "github.com/matzehuels/virtgrid/pkg/geom"
//	    "github.com/matzehuels/virtgrid/pkg/grid"
//	    "github.com/matzehuels/virtgrid/pkg/store"
//	)
//
//	s := store.New(store.Params[string, geom.Box]{
//	    Items:        grid.FromMap(boxes),
//	    Bounds:       grid.Boxes[string](),
//	    ViewportSize: geom.Size{Width: 800, Height: 600},
//	})
//	unsubscribe := s.Subscribe(func() {
//	    render(s.State().VisibleKeys)
//	})
//	defer unsubscribe()
//
//	s.Set(store.Update[string, geom.Box]{
//	    ScrollPosition: &geom.Position{Y: 1200},
//	})
//
// # Main Packages
//
// [grid] - The bucket index: canvas sizing, bucket size selection, full
// builds, incremental updates from a key diff and viewport queries.
//
// [store] - Owns the index for one collection and one viewport. Recomputes
// only what a change invalidates and notifies subscribers only when the
// canvas size or the visible set actually changed.
//
// [scroll] - Scroll-to-item targets for every vertical/horizontal
// alignment pair, including the "auto" nearest-edge rule.
//
// [pipeline] - Builds indexes through a [cache.Cache] keyed by the layout's
// content hash. Used by the CLI and the HTTP server alike.
//
// [session] - Expiring registry of per-client stores for the HTTP API.
//
// [server] - chi router exposing sessions over JSON.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/grid/...               # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	go test -bench . ./pkg/grid          # Index benchmarks
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/geom
// [grid]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/grid
// [scroll]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/scroll
// [store]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/cache
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/cache#Cache
// [config]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/virtgrid/pkg/httputil
package pkg
