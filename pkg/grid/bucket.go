package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/virtgrid/pkg/geom"
)

// BucketKey identifies one cell of the uniform grid.
type BucketKey struct {
	X, Y int
}

// BucketOf returns the cell containing the top-left corner of box.
func BucketOf(box geom.Box, bucketSize float64) BucketKey {
	return BucketKey{
		X: int(math.Floor(box.X / bucketSize)),
		Y: int(math.Floor(box.Y / bucketSize)),
	}
}

// String returns the composite "x-y" form, e.g. "3-4" or "-1--2".
func (k BucketKey) String() string {
	return strconv.Itoa(k.X) + "-" + strconv.Itoa(k.Y)
}

// MarshalText implements encoding.TextMarshaler so bucket keys can be used
// as JSON object keys.
func (k BucketKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form produced by [BucketKey.String].
func (k *BucketKey) UnmarshalText(text []byte) error {
	parsed, err := ParseBucketKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseBucketKey parses "x-y". The separator is the first '-' after the
// first character, so negative coordinates round-trip.
func ParseBucketKey(s string) (BucketKey, error) {
	if len(s) < 3 {
		return BucketKey{}, fmt.Errorf("invalid bucket key %q", s)
	}
	sep := strings.IndexByte(s[1:], '-')
	if sep < 0 {
		return BucketKey{}, fmt.Errorf("invalid bucket key %q", s)
	}
	sep++

	x, err := strconv.Atoi(s[:sep])
	if err != nil {
		return BucketKey{}, fmt.Errorf("invalid bucket key %q: %w", s, err)
	}
	y, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return BucketKey{}, fmt.Errorf("invalid bucket key %q: %w", s, err)
	}
	return BucketKey{X: x, Y: y}, nil
}

// Buckets maps each grid cell to the keys of the items whose origin falls
// in it. Every indexed key appears in exactly one bucket.
type Buckets[K Key] map[BucketKey][]K

// Len returns the total number of indexed keys.
func (b Buckets[K]) Len() int {
	n := 0
	for _, keys := range b {
		n += len(keys)
	}
	return n
}

// Clone returns a deep copy.
func (b Buckets[K]) Clone() Buckets[K] {
	out := make(Buckets[K], len(b))
	for bk, keys := range b {
		out[bk] = append([]K(nil), keys...)
	}
	return out
}

// Equal reports whether a and b hold the same cells with the same key sets.
// Key order within a bucket is ignored.
func (b Buckets[K]) Equal(o Buckets[K]) bool {
	if len(b) != len(o) {
		return false
	}
	for bk, keys := range b {
		other, ok := o[bk]
		if !ok || !sameKeys(keys, other) {
			return false
		}
	}
	return true
}

func (b Buckets[K]) add(bk BucketKey, key K) {
	b[bk] = append(b[bk], key)
}

// remove swap-removes key from bucket bk and drops the bucket once empty.
// Missing buckets and keys are ignored.
func (b Buckets[K]) remove(bk BucketKey, key K) {
	keys := b[bk]
	for i, k := range keys {
		if k != key {
			continue
		}
		last := len(keys) - 1
		keys[i] = keys[last]
		keys = keys[:last]
		if len(keys) == 0 {
			delete(b, bk)
		} else {
			b[bk] = keys
		}
		return
	}
}

// Occupancy summarizes how keys are spread across buckets.
type Occupancy struct {
	Buckets int
	Keys    int
	Max     int
	Mean    float64
}

// Occupancy computes bucket statistics.
func (b Buckets[K]) Occupancy() Occupancy {
	occ := Occupancy{Buckets: len(b)}
	for _, keys := range b {
		occ.Keys += len(keys)
		occ.Max = max(occ.Max, len(keys))
	}
	if occ.Buckets > 0 {
		occ.Mean = float64(occ.Keys) / float64(occ.Buckets)
	}
	return occ
}

func sameKeys[K Key](a, b []K) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[K]int, len(a))
	for _, k := range a {
		counts[k]++
	}
	for _, k := range b {
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}
