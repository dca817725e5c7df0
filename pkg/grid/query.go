package grid

import (
	"math"

	"github.com/matzehuels/virtgrid/pkg/geom"
)

// Viewport is the visible window into the canvas.
type Viewport struct {
	Scroll   geom.Position
	Size     geom.Size
	Overscan float64
}

// Rect returns the viewport rectangle grown by the overscan margin.
func (v Viewport) Rect() geom.Box {
	return geom.BoxAt(v.Scroll, v.Size).Expand(v.Overscan)
}

// Range returns the inclusive bucket range covering the overscanned
// viewport, widened by one bucket in every direction. The widening catches
// items whose origin lies in the neighbouring bucket but whose box reaches
// into the viewport; it is what makes single-bucket indexing correct for
// items no larger than a bucket.
func (v Viewport) Range(bucketSize float64) (lo, hi BucketKey) {
	b := v.bucketRange(bucketSize)
	return BucketKey{X: int(b.x0), Y: int(b.y0)}, BucketKey{X: int(b.x1), Y: int(b.y1)}
}

// maxScanCoord bounds the bucket coordinates the cell scan converts to int.
const maxScanCoord = 1 << 52

// bucketRange is [Viewport.Range] in float coordinates, so that huge or
// far-off viewports can be measured without overflowing int.
type bucketRange struct {
	x0, y0, x1, y1 float64
}

func (v Viewport) bucketRange(bucketSize float64) bucketRange {
	r := v.Rect()
	return bucketRange{
		x0: math.Floor(r.X/bucketSize) - 1,
		y0: math.Floor(r.Y/bucketSize) - 1,
		x1: math.Floor(r.Right()/bucketSize) + 1,
		y1: math.Floor(r.Bottom()/bucketSize) + 1,
	}
}

func (b bucketRange) contains(k BucketKey) bool {
	x, y := float64(k.X), float64(k.Y)
	return x >= b.x0 && x <= b.x1 && y >= b.y0 && y <= b.y1
}

// scannable reports whether visiting every cell of the range is cheaper
// than walking the n occupied buckets.
func (b bucketRange) scannable(n int) bool {
	for _, c := range [...]float64{b.x0, b.y0, b.x1, b.y1} {
		if math.Abs(c) > maxScanCoord {
			return false
		}
	}
	return (b.x1-b.x0+1)*(b.y1-b.y0+1) <= float64(n)
}

// Query returns the keys of the items whose box intersects the overscanned
// viewport. Only buckets in [Viewport.Range] are inspected, so the cost is
// proportional to the occupancy of those buckets, not to the collection
// size. When the range spans more cells than there are occupied buckets,
// the occupied buckets are walked instead, which bounds the cost of huge
// viewports by the bucket count. The result is de-duplicated; its order
// carries no meaning. Keys whose item is missing from items are skipped.
func Query[K Key, I comparable](v Viewport, state *State[K], items Collection[K, I], bounds Bounder[K, I]) []K {
	if state == nil || len(state.Buckets) == 0 || state.BucketSize <= 0 {
		return nil
	}

	q := visibleSet[K, I]{rect: v.Rect(), items: items, bounds: bounds}
	br := v.bucketRange(state.BucketSize)
	if !br.scannable(len(state.Buckets)) {
		for bk, keys := range state.Buckets {
			if br.contains(bk) {
				q.collect(keys)
			}
		}
		return q.visible
	}

	for x := int(br.x0); x <= int(br.x1); x++ {
		for y := int(br.y0); y <= int(br.y1); y++ {
			q.collect(state.Buckets[BucketKey{X: x, Y: y}])
		}
	}
	return q.visible
}

// visibleSet accumulates the de-duplicated keys of one query.
type visibleSet[K Key, I comparable] struct {
	rect    geom.Box
	items   Collection[K, I]
	bounds  Bounder[K, I]
	visible []K
	seen    map[K]struct{}
}

func (q *visibleSet[K, I]) collect(keys []K) {
	for _, key := range keys {
		item, ok := q.items.Get(key)
		if !ok || !q.bounds.Bounds(item, key).Intersects(q.rect) {
			continue
		}
		if q.seen == nil {
			q.seen = make(map[K]struct{})
		}
		if _, dup := q.seen[key]; dup {
			continue
		}
		q.seen[key] = struct{}{}
		q.visible = append(q.visible, key)
	}
}

// KeySet is an unordered set of keys.
type KeySet[K Key] map[K]struct{}

// NewKeySet builds a set from keys.
func NewKeySet[K Key](keys []K) KeySet[K] {
	s := make(KeySet[K], len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s KeySet[K]) Has(key K) bool {
	_, ok := s[key]
	return ok
}

// Equal reports set equality.
func (s KeySet[K]) Equal(o KeySet[K]) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}
