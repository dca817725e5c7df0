package grid

import "github.com/matzehuels/virtgrid/pkg/geom"

// Bucket size bounds used by [DefaultBucketSize].
const (
	MinBucketSize = 100
	MaxBucketSize = 1000
)

// State is the processed form of a collection: the canvas it spans, the
// grid cell size and the bucket map. A State is owned by whoever built it;
// [Update] takes ownership of the previous State's bucket map and patches it.
type State[K Key] struct {
	Size       geom.Size
	BucketSize float64
	Buckets    Buckets[K]
}

// Options carries precomputed values that let [Build] and [Update] skip
// the corresponding computation. Zero values mean "compute".
type Options[K Key] struct {
	// CanvasSize replaces the canvas size fold when non-nil.
	CanvasSize *geom.Size

	// BucketSize fixes the grid cell size when positive. An explicit
	// value has no upper bound.
	BucketSize float64

	// Buckets is used as-is when non-nil. It is never patched.
	Buckets Buckets[K]
}

// CanvasSize returns the smallest size containing the bottom-right corner
// of every item's box. An empty collection yields a zero size.
func CanvasSize[K Key, I comparable](items Collection[K, I], bounds Bounder[K, I]) geom.Size {
	var size geom.Size
	for key, item := range items.All() {
		size = size.Union(bounds.Bounds(item, key))
	}
	return size
}

// DefaultBucketSize derives the grid cell size from the canvas size:
// the smaller canvas dimension, clamped to [MinBucketSize, MaxBucketSize].
// It assumes items are not drastically larger than the viewport.
func DefaultBucketSize(size geom.Size) float64 {
	return max(MinBucketSize, min(size.Width, size.Height, MaxBucketSize))
}

// Build indexes every item under the bucket holding its top-left corner.
// No item is registered in more than one bucket, so items larger than a
// bucket can be missed by [Query] when their origin lies more than one
// bucket outside the queried range.
func Build[K Key, I comparable](items Collection[K, I], bounds Bounder[K, I], opts Options[K]) *State[K] {
	size := sizeOf(items, bounds, opts)
	bucketSize := bucketSizeOf(size, opts)

	buckets := opts.Buckets
	if buckets == nil {
		buckets = make(Buckets[K])
		for key, item := range items.All() {
			buckets.add(BucketOf(bounds.Bounds(item, key), bucketSize), key)
		}
	}

	return &State[K]{Size: size, BucketSize: bucketSize, Buckets: buckets}
}

func sizeOf[K Key, I comparable](items Collection[K, I], bounds Bounder[K, I], opts Options[K]) geom.Size {
	if opts.CanvasSize != nil {
		return *opts.CanvasSize
	}
	return CanvasSize(items, bounds)
}

func bucketSizeOf[K Key](size geom.Size, opts Options[K]) float64 {
	if opts.BucketSize > 0 {
		return opts.BucketSize
	}
	return DefaultBucketSize(size)
}
