package grid

import (
	"iter"

	"github.com/matzehuels/virtgrid/pkg/geom"
)

// Key identifies one item within a collection. Keys must be stable across
// collection updates for incremental diffing to work.
type Key interface {
	~string | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Collection is a keyed set of items. The index never inspects items
// directly; it only reads them through a [Bounder].
//
// Collections are treated as immutable once handed to the index. Two
// collections are the same collection when they are the same pointer;
// replacing a collection means passing a new value.
type Collection[K Key, I comparable] interface {
	Len() int
	Get(key K) (I, bool)
	All() iter.Seq2[K, I]
}

// Slice is a collection backed by a slice. The slice index is the key.
type Slice[I comparable] struct {
	items []I
}

// FromSlice wraps items as a collection keyed by index.
// The slice must not be modified afterwards.
func FromSlice[I comparable](items []I) *Slice[I] {
	return &Slice[I]{items: items}
}

// Len returns the number of items.
func (s *Slice[I]) Len() int { return len(s.items) }

// Get returns the item at index key.
func (s *Slice[I]) Get(key int) (I, bool) {
	if key < 0 || key >= len(s.items) {
		var zero I
		return zero, false
	}
	return s.items[key], true
}

// All yields items in slice order.
func (s *Slice[I]) All() iter.Seq2[int, I] {
	return func(yield func(int, I) bool) {
		for i, item := range s.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Map is a collection backed by a map. Iteration order is unspecified.
type Map[K Key, I comparable] struct {
	items map[K]I
}

// FromMap wraps items as a collection. The map must not be modified afterwards.
func FromMap[K Key, I comparable](items map[K]I) *Map[K, I] {
	return &Map[K, I]{items: items}
}

// Len returns the number of items.
func (m *Map[K, I]) Len() int { return len(m.items) }

// Get returns the item stored under key.
func (m *Map[K, I]) Get(key K) (I, bool) {
	item, ok := m.items[key]
	return item, ok
}

// All yields every key/item pair.
func (m *Map[K, I]) All() iter.Seq2[K, I] {
	return func(yield func(K, I) bool) {
		for k, item := range m.items {
			if !yield(k, item) {
				return
			}
		}
	}
}

// Bounder returns the bounding box of an item.
//
// Implementations must be pure and deterministic: the index calls Bounds
// once per item per build or query pass and assumes the same (item, key)
// always yields the same box. This is a precondition; it is not checked.
type Bounder[K Key, I comparable] interface {
	Bounds(item I, key K) geom.Box
}

// BoundsFunc adapts a plain function to a [Bounder].
type BoundsFunc[K Key, I comparable] func(item I, key K) geom.Box

// Bounds calls f(item, key).
func (f BoundsFunc[K, I]) Bounds(item I, key K) geom.Box { return f(item, key) }

type boxes[K Key] struct{}

func (boxes[K]) Bounds(item geom.Box, _ K) geom.Box { return item }

// Boxes returns the identity [Bounder] for collections whose items are boxes.
func Boxes[K Key]() Bounder[K, geom.Box] { return boxes[K]{} }
