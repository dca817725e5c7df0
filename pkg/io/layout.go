package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/grid"
)

// Item is one keyed box of a layout.
type Item struct {
	Key    string  `json:"key"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box returns the item's bounding box.
func (it Item) Box() geom.Box {
	return geom.Box{X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// Layout is an ordered list of keyed boxes.
type Layout struct {
	Items []Item `json:"items"`
}

// NewLayout builds a layout from keyed boxes in the given key order.
func NewLayout(keys []string, boxes map[string]geom.Box) Layout {
	l := Layout{Items: make([]Item, 0, len(keys))}
	for _, k := range keys {
		b := boxes[k]
		l.Items = append(l.Items, Item{Key: k, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height})
	}
	return l
}

// Validate checks keys and boxes.
func (l Layout) Validate() error {
	seen := make(map[string]int, len(l.Items))
	for i, it := range l.Items {
		if err := errors.ValidateKey(it.Key); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "item %d", i)
		}
		if j, dup := seen[it.Key]; dup {
			return errors.New(errors.ErrCodeInvalidLayout, "item %d: duplicate key %q (first used by item %d)", i, it.Key, j)
		}
		seen[it.Key] = i
		if err := errors.ValidateBox(it.X, it.Y, it.Width, it.Height); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "item %d (%q)", i, it.Key)
		}
	}
	return nil
}

// Boxes returns the layout as a key to box map.
func (l Layout) Boxes() map[string]geom.Box {
	m := make(map[string]geom.Box, len(l.Items))
	for _, it := range l.Items {
		m[it.Key] = it.Box()
	}
	return m
}

// Collection returns the layout as a collection for the index. The
// collection is a fresh value on every call.
func (l Layout) Collection() *grid.Map[string, geom.Box] {
	return grid.FromMap(l.Boxes())
}

// Hash returns the content hash of the layout's canonical JSON encoding.
func (l Layout) Hash() (string, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// ReadLayout decodes and validates a layout.
func ReadLayout(r io.Reader) (Layout, error) {
	var l Layout
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// ImportLayout reads a layout file.
func ImportLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	l, err := ReadLayout(f)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// WriteLayout encodes l as indented JSON.
func WriteLayout(l Layout, w io.Writer) error {
	if l.Items == nil {
		l.Items = []Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes l to a file at path.
func ExportLayout(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(l, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
