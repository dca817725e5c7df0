// Package grid implements a uniform-grid spatial index for finding which
// items of a large collection are visible inside a scrollable viewport.
//
// # Overview
//
// The canvas is partitioned into square buckets of side BucketSize. Each
// item is registered under exactly one bucket: the one containing the
// top-left corner of its bounding box. A visible-set query scans the buckets
// covering the viewport plus one extra ring of buckets, then filters the
// candidates with an exact box intersection test.
//
// The pipeline has three stages:
//
//  1. [Build] computes the canvas size, derives the bucket size and fills
//     the bucket map. O(n) in the number of items.
//  2. [Update] patches an existing bucket map when the collection is
//     replaced, touching only the buckets of added and removed entries.
//     It falls back to a full build when the bucket size changes.
//  3. [Query] returns the keys of items intersecting the overscanned
//     viewport, in time proportional to the occupancy of the scanned
//     buckets.
//
// # Limitations
//
// The index is an approximation tuned for items of roughly uniform size.
// Because an item lives only in its origin bucket, an item wider or taller
// than a bucket whose origin lies more than one bucket outside the queried
// range is not returned even though its box overlaps the viewport. Supply a
// larger BucketSize in [Options] when items are large.
//
// # Usage
//
//	items := grid.FromMap(map[string]geom.Box{
//	    "a": {X: 0, Y: 0, Width: 10, Height: 10},
//	    "b": {X: 500, Y: 500, Width: 10, Height: 10},
//	})
//	state := grid.Build(items, grid.Boxes[string](), grid.Options[string]{})
//	visible := grid.Query(grid.Viewport{Size: geom.Size{Width: 100, Height: 100}},
//	    state, items, grid.Boxes[string]())
//
// None of the functions in this package lock; callers serialize access.
package grid
