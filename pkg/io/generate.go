package io

import "fmt"

// GridSpec describes a uniform grid of equally sized items.
type GridSpec struct {
	Rows, Cols int

	// Spacing is the distance between the origins of neighbouring items.
	Spacing float64

	// Width and Height are the item dimensions.
	Width, Height float64
}

// GridLayout lays out Rows×Cols items keyed "row-col", row-major. Item
// (r, c) sits at (c·Spacing, r·Spacing).
func GridLayout(spec GridSpec) Layout {
	if spec.Rows <= 0 || spec.Cols <= 0 {
		return Layout{Items: []Item{}}
	}
	l := Layout{Items: make([]Item, 0, spec.Rows*spec.Cols)}
	for r := 0; r < spec.Rows; r++ {
		for c := 0; c < spec.Cols; c++ {
			l.Items = append(l.Items, Item{
				Key:    fmt.Sprintf("%d-%d", r, c),
				X:      float64(c) * spec.Spacing,
				Y:      float64(r) * spec.Spacing,
				Width:  spec.Width,
				Height: spec.Height,
			})
		}
	}
	return l
}
