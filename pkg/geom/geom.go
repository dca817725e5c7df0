// Package geom provides the axis-aligned geometry primitives shared by the
// index, the store and the scroll alignment code.
//
// All coordinates are canvas coordinates: the origin is the top-left corner
// of the canvas, x grows to the right and y grows downwards. Boxes are
// expected to have non-negative width and height; negative extents are not
// rejected here but produce geometrically meaningless results.
package geom

import "fmt"

// Position is a point on the canvas, typically a scroll offset.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Equal reports whether s and o have identical dimensions.
func (s Size) Equal(o Size) bool { return s.Width == o.Width && s.Height == o.Height }

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// Box is an axis-aligned rectangle whose X, Y is the top-left corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoxAt builds a box from an origin and a size.
func BoxAt(p Position, s Size) Box {
	return Box{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (b Box) Origin() Position { return Position{X: b.X, Y: b.Y} }

// Size returns the box extent.
func (b Box) Size() Size { return Size{Width: b.Width, Height: b.Height} }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// CenterX returns the horizontal center.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Equal reports whether b and o describe the same rectangle.
func (b Box) Equal(o Box) bool {
	return b.X == o.X && b.Y == o.Y && b.Width == o.Width && b.Height == o.Height
}

// Intersects reports whether b and o overlap with a non-empty area.
// Edges that merely touch do not count: b must start before o ends and
// end after o starts, on both axes.
func (b Box) Intersects(o Box) bool {
	return b.X < o.Right() &&
		b.Y < o.Bottom() &&
		b.Right() > o.X &&
		b.Bottom() > o.Y
}

// Expand grows the box by margin on every side. A negative margin shrinks it.
func (b Box) Expand(margin float64) Box {
	return Box{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", b.X, b.Y, b.Width, b.Height)
}

// Union returns the smallest size, anchored at the canvas origin, that
// contains the bottom-right corner of both s and b.
func (s Size) Union(b Box) Size {
	return Size{
		Width:  max(s.Width, b.Right()),
		Height: max(s.Height, b.Bottom()),
	}
}
