package scroll

import (
	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
)

// Behavior is passed through to the consumer's native scroll call.
type Behavior string

// Scroll behaviors.
const (
	BehaviorAuto   Behavior = "auto"
	BehaviorSmooth Behavior = "smooth"
)

// ParseBehavior parses "auto" or "smooth"; the empty string is "auto".
func ParseBehavior(s string) (Behavior, error) {
	switch Behavior(s) {
	case "", BehaviorAuto:
		return BehaviorAuto, nil
	case BehaviorSmooth:
		return BehaviorSmooth, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown scroll behavior %q (want auto or smooth)", s)
}

// Options configures a scroll-to-item request.
type Options struct {
	Alignment Alignment
	Behavior  Behavior
	Padding   float64
}

// Target is the scroll offset to apply. A nil axis means "leave as is".
type Target struct {
	Top      *float64 `json:"top,omitempty"`
	Left     *float64 `json:"left,omitempty"`
	Behavior Behavior `json:"behavior,omitempty"`
}

// IsZero reports whether the target leaves both axes untouched.
func (t Target) IsZero() bool { return t.Top == nil && t.Left == nil }

// Apply returns scroll moved to the target; untouched axes keep their value.
func (t Target) Apply(scroll geom.Position) geom.Position {
	if t.Top != nil {
		scroll.Y = *t.Top
	}
	if t.Left != nil {
		scroll.X = *t.Left
	}
	return scroll
}

// ResolveTarget computes the scroll offset that places box in a viewport
// of the given size, currently scrolled to scroll, under alignment.
// Padding is kept between the item and the viewport edge for the edge
// policies and ignored by center.
func ResolveTarget(box geom.Box, viewport geom.Size, scroll geom.Position, alignment Alignment, padding float64) Target {
	a := alignment.Resolve(box, geom.BoxAt(scroll, viewport))

	var t Target
	switch a.Vertical {
	case Top:
		t.Top = ptr(box.Y - padding)
	case Bottom:
		t.Top = ptr(box.Bottom() + padding - viewport.Height)
	case VerticalCenter:
		t.Top = ptr(box.CenterY() - viewport.Height/2)
	}
	switch a.Horizontal {
	case Left:
		t.Left = ptr(box.X - padding)
	case Right:
		t.Left = ptr(box.Right() + padding - viewport.Width)
	case HorizontalCenter:
		t.Left = ptr(box.CenterX() - viewport.Width/2)
	}
	return t
}

// ScrollTo is [ResolveTarget] driven by [Options]; the behavior is copied
// into the target unchanged.
func ScrollTo(box geom.Box, viewport geom.Size, scroll geom.Position, opts Options) Target {
	alignment := opts.Alignment
	if alignment == (Alignment{}) {
		alignment = Auto
	}
	t := ResolveTarget(box, viewport, scroll, alignment, opts.Padding)
	t.Behavior = opts.Behavior
	if t.Behavior == "" {
		t.Behavior = BehaviorAuto
	}
	return t
}

func ptr(v float64) *float64 { return &v }
