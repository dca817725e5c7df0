package grid

import "reflect"

// Diff lists the keys whose entries differ between two collections.
// A key whose item changed appears in both lists.
type Diff[K Key] struct {
	Added   []K
	Removed []K
}

// Empty reports whether the diff has no changes.
func (d Diff[K]) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

// ComputeDiff compares two collections by item value. An entry is
// unchanged only if next holds an equal item under the same key, so an
// item that moved keeps no stale key behind and duplicate items under
// different keys are tracked independently. Two keys that swap items
// both appear in Added and Removed, where a diff of item values alone
// would see no change.
//
// Items are compared with ==; mutating an item in place defeats the
// comparison. Pass an explicit [Diff] to [UpdateWith] in that case.
func ComputeDiff[K Key, I comparable](prev, next Collection[K, I]) Diff[K] {
	var d Diff[K]
	for key, item := range next.All() {
		if old, ok := prev.Get(key); !ok || old != item {
			d.Added = append(d.Added, key)
		}
	}
	for key, item := range prev.All() {
		if cur, ok := next.Get(key); !ok || cur != item {
			d.Removed = append(d.Removed, key)
		}
	}
	return d
}

// Report describes the work done by [Update].
type Report struct {
	Added   int
	Removed int
	Rebuilt bool
}

// Update brings prev in line with next. If next is the same collection as
// prevItems, prev is returned untouched. Otherwise the canvas size and
// bucket size are recomputed; when the bucket size is unchanged the bucket
// map of prev is patched in place with the value diff, and when it changed
// the buckets are rebuilt from scratch.
//
// prev must have been produced from prevItems with the same bounds.
func Update[K Key, I comparable](prev *State[K], prevItems, next Collection[K, I], bounds Bounder[K, I], opts Options[K]) (*State[K], Report) {
	return update(prev, prevItems, next, bounds, opts, nil)
}

// UpdateWith is [Update] with a caller-supplied diff instead of a value
// comparison. Use it when items are mutated in place; prevItems and next
// may then be the same collection.
func UpdateWith[K Key, I comparable](prev *State[K], prevItems, next Collection[K, I], diff Diff[K], bounds Bounder[K, I], opts Options[K]) (*State[K], Report) {
	return update(prev, prevItems, next, bounds, opts, &diff)
}

func update[K Key, I comparable](prev *State[K], prevItems, next Collection[K, I], bounds Bounder[K, I], opts Options[K], explicit *Diff[K]) (*State[K], Report) {
	if prev == nil || prevItems == nil {
		return Build(next, bounds, opts), Report{Added: next.Len(), Rebuilt: true}
	}
	if explicit == nil && SameCollection(prevItems, next) {
		return prev, Report{}
	}

	size := sizeOf(next, bounds, opts)
	bucketSize := bucketSizeOf(size, opts)

	if opts.Buckets != nil {
		return &State[K]{Size: size, BucketSize: bucketSize, Buckets: opts.Buckets}, Report{Rebuilt: true}
	}
	if bucketSize != prev.BucketSize || prev.Buckets == nil {
		state := Build(next, bounds, Options[K]{CanvasSize: &size, BucketSize: bucketSize})
		return state, Report{Added: next.Len(), Rebuilt: true}
	}

	var d Diff[K]
	if explicit != nil {
		d = *explicit
	} else {
		d = ComputeDiff(prevItems, next)
	}
	buckets := prev.Buckets
	for _, key := range d.Removed {
		var bk BucketKey
		item, ok := prevItems.Get(key)
		if ok {
			bk = BucketOf(bounds.Bounds(item, key), bucketSize)
		}
		if !ok || !buckets.has(bk, key) {
			// Mutated or deleted in place; the recorded bucket is unknown.
			if bk, ok = buckets.find(key); !ok {
				continue
			}
		}
		buckets.remove(bk, key)
	}
	for _, key := range d.Added {
		item, ok := next.Get(key)
		if !ok {
			continue
		}
		buckets.add(BucketOf(bounds.Bounds(item, key), bucketSize), key)
	}

	return &State[K]{Size: size, BucketSize: bucketSize, Buckets: buckets},
		Report{Added: len(d.Added), Removed: len(d.Removed)}
}

// SameCollection reports whether a and b are the same collection value.
// Collections with non-comparable dynamic types are never the same.
func SameCollection[K Key, I comparable](a, b Collection[K, I]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (b Buckets[K]) has(bk BucketKey, key K) bool {
	for _, k := range b[bk] {
		if k == key {
			return true
		}
	}
	return false
}

func (b Buckets[K]) find(key K) (BucketKey, bool) {
	for bk, keys := range b {
		for _, k := range keys {
			if k == key {
				return bk, true
			}
		}
	}
	return BucketKey{}, false
}
