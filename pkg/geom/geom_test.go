package geom

import "testing"

func TestBoxIntersects(t *testing.T) {
	view := Box{X: 0, Y: 0, Width: 50, Height: 50}

	tests := []struct {
		name string
		box  Box
		want bool
	}{
		{"inside", Box{X: 10, Y: 10, Width: 10, Height: 10}, true},
		{"overlaps right edge", Box{X: 45, Y: 10, Width: 10, Height: 10}, true},
		{"touches right edge", Box{X: 50, Y: 10, Width: 10, Height: 10}, false},
		{"touches left edge", Box{X: -10, Y: 10, Width: 10, Height: 10}, false},
		{"touches bottom edge", Box{X: 10, Y: 50, Width: 10, Height: 10}, false},
		{"contains view", Box{X: -10, Y: -10, Width: 100, Height: 100}, true},
		{"far away", Box{X: 500, Y: 500, Width: 10, Height: 10}, false},
		{"zero size inside", Box{X: 10, Y: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Intersects(view); got != tt.want {
				t.Errorf("Intersects(%v, %v) = %v, want %v", tt.box, view, got, tt.want)
			}
			if got := view.Intersects(tt.box); got != tt.want {
				t.Errorf("Intersects is not symmetric for %v", tt.box)
			}
		})
	}
}

func TestBoxExpand(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 30, Height: 40}.Expand(5)
	want := Box{X: 5, Y: 15, Width: 40, Height: 50}
	if !b.Equal(want) {
		t.Errorf("Expand = %v, want %v", b, want)
	}
}

func TestSizeUnion(t *testing.T) {
	var s Size
	s = s.Union(Box{X: 10, Y: 0, Width: 5, Height: 100})
	s = s.Union(Box{X: 0, Y: 20, Width: 50, Height: 5})
	if !s.Equal(Size{Width: 50, Height: 100}) {
		t.Errorf("Union = %v, want 50x100", s)
	}
}

func TestBoxAccessors(t *testing.T) {
	b := BoxAt(Position{X: 10, Y: 20}, Size{Width: 30, Height: 40})
	if b.Right() != 40 || b.Bottom() != 60 {
		t.Errorf("Right/Bottom = %v/%v", b.Right(), b.Bottom())
	}
	if b.CenterX() != 25 || b.CenterY() != 40 {
		t.Errorf("Center = %v/%v", b.CenterX(), b.CenterY())
	}
	if b.Origin() != (Position{X: 10, Y: 20}) {
		t.Errorf("Origin = %v", b.Origin())
	}
	if b.Size() != (Size{Width: 30, Height: 40}) {
		t.Errorf("Size = %v", b.Size())
	}
}
