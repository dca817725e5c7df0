package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/grid"
)

// Snapshot is a serialized bucket index.
type Snapshot struct {
	Canvas     geom.Size            `json:"canvas"`
	BucketSize float64              `json:"bucket_size"`
	Buckets    grid.Buckets[string] `json:"buckets"`
}

// NewSnapshot captures an index state.
func NewSnapshot(s *grid.State[string]) Snapshot {
	return Snapshot{Canvas: s.Size, BucketSize: s.BucketSize, Buckets: s.Buckets}
}

// Options returns the snapshot as precomputed values for [grid.Build].
// The buckets are cloned so that later patches do not alter the snapshot.
func (s Snapshot) Options() grid.Options[string] {
	canvas := s.Canvas
	return grid.Options[string]{
		CanvasSize: &canvas,
		BucketSize: s.BucketSize,
		Buckets:    s.Buckets.Clone(),
	}
}

// Validate checks that the snapshot is usable.
func (s Snapshot) Validate() error {
	if err := errors.ValidateSize(s.Canvas.Width, s.Canvas.Height); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "canvas")
	}
	if s.BucketSize <= 0 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "bucket_size must be positive, got %g", s.BucketSize)
	}
	seen := make(map[string]grid.BucketKey)
	for bk, keys := range s.Buckets {
		for _, k := range keys {
			if prev, dup := seen[k]; dup {
				return errors.New(errors.ErrCodeInvalidSnapshot, "key %q indexed in buckets %s and %s", k, prev, bk)
			}
			seen[k] = bk
		}
	}
	return nil
}

// Covers reports whether the snapshot indexes exactly the keys of l.
func (s Snapshot) Covers(l Layout) bool {
	n := 0
	keys := make(map[string]struct{}, len(l.Items))
	for _, it := range l.Items {
		keys[it.Key] = struct{}{}
	}
	for _, bucket := range s.Buckets {
		for _, k := range bucket {
			if _, ok := keys[k]; !ok {
				return false
			}
			n++
		}
	}
	return n == len(keys)
}

// MarshalSnapshot encodes s as compact JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	if s.Buckets == nil {
		s.Buckets = grid.Buckets[string]{}
	}
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes and validates a snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// ReadSnapshot decodes and validates a snapshot from r.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return UnmarshalSnapshot(data)
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	if s.Buckets == nil {
		s.Buckets = grid.Buckets[string]{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ImportSnapshot reads a snapshot file.
func ImportSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ReadSnapshot(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ExportSnapshot writes s to a file at path.
func ExportSnapshot(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSnapshot(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
