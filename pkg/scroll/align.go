// Package scroll computes the scroll offset that brings an item into view
// under a requested alignment.
//
// An alignment names one policy per axis, written "<vertical>-<horizontal>"
// (for example "top-left" or "center-ignore"). The shorthands "auto" and
// "center" apply the same policy to both axes.
//
//   - top / left: the item's leading edge meets the viewport's leading edge.
//   - bottom / right: the item's trailing edge meets the viewport's trailing edge.
//   - center: the item is centered in the viewport.
//   - ignore: the axis is left untouched.
//   - auto: leading edge if the item starts before the visible window,
//     trailing edge if it ends after it, ignore if it is fully visible.
package scroll

import (
	"strings"

	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
)

// Vertical is the vertical alignment policy.
type Vertical string

// Vertical policies.
const (
	Top            Vertical = "top"
	Bottom         Vertical = "bottom"
	VerticalCenter Vertical = "center"
	VerticalIgnore Vertical = "ignore"
	VerticalAuto   Vertical = "auto"
)

// Horizontal is the horizontal alignment policy.
type Horizontal string

// Horizontal policies.
const (
	Left             Horizontal = "left"
	Right            Horizontal = "right"
	HorizontalCenter Horizontal = "center"
	HorizontalIgnore Horizontal = "ignore"
	HorizontalAuto   Horizontal = "auto"
)

// Alignment pairs a vertical and a horizontal policy.
type Alignment struct {
	Vertical   Vertical
	Horizontal Horizontal
}

// Common alignments.
var (
	Auto   = Alignment{Vertical: VerticalAuto, Horizontal: HorizontalAuto}
	Center = Alignment{Vertical: VerticalCenter, Horizontal: HorizontalCenter}
)

// ParseAlignment parses "auto", "center" or "<vertical>-<horizontal>".
// The empty string parses as "auto".
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "center":
		return Center, nil
	}

	v, h, ok := strings.Cut(s, "-")
	if !ok {
		return Alignment{}, errors.New(errors.ErrCodeInvalidAlignment,
			"unknown alignment %q (want auto, center or <vertical>-<horizontal>)", s)
	}
	a := Alignment{Vertical: Vertical(v), Horizontal: Horizontal(h)}
	if !a.Vertical.valid() {
		return Alignment{}, errors.New(errors.ErrCodeInvalidAlignment,
			"unknown vertical alignment %q in %q (want top, bottom, center, ignore or auto)", v, s)
	}
	if !a.Horizontal.valid() {
		return Alignment{}, errors.New(errors.ErrCodeInvalidAlignment,
			"unknown horizontal alignment %q in %q (want left, right, center, ignore or auto)", h, s)
	}
	return a, nil
}

// String returns the "<vertical>-<horizontal>" form.
func (a Alignment) String() string {
	return string(a.Vertical) + "-" + string(a.Horizontal)
}

// MarshalText implements encoding.TextMarshaler.
func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseAlignment].
func (a *Alignment) UnmarshalText(text []byte) error {
	parsed, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Resolve replaces auto policies with a concrete one by comparing box with
// the visible window.
func (a Alignment) Resolve(box, window geom.Box) Alignment {
	out := a
	if out.Vertical == VerticalAuto {
		switch {
		case box.Y < window.Y:
			out.Vertical = Top
		case box.Bottom() > window.Bottom():
			out.Vertical = Bottom
		default:
			out.Vertical = VerticalIgnore
		}
	}
	if out.Horizontal == HorizontalAuto {
		switch {
		case box.X < window.X:
			out.Horizontal = Left
		case box.Right() > window.Right():
			out.Horizontal = Right
		default:
			out.Horizontal = HorizontalIgnore
		}
	}
	return out
}

func (v Vertical) valid() bool {
	switch v {
	case Top, Bottom, VerticalCenter, VerticalIgnore, VerticalAuto:
		return true
	}
	return false
}

func (h Horizontal) valid() bool {
	switch h {
	case Left, Right, HorizontalCenter, HorizontalIgnore, HorizontalAuto:
		return true
	}
	return false
}
