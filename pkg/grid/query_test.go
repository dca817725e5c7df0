package grid

import (
	"math/rand"
	"testing"
	"time"

	"github.com/matzehuels/virtgrid/pkg/geom"
)

func TestQueryGrid(t *testing.T) {
	items := FromMap(gridLayout(20, 20, 10))
	state := Build(items, Boxes[string](), Options[string]{})

	tests := []struct {
		name   string
		scroll geom.Position
		want   []string
	}{
		{
			name:   "top-left",
			scroll: geom.Position{X: 0, Y: 0},
			want:   []string{"0-0", "0-1", "0-2", "1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
		},
		{
			name:   "bottom-right",
			scroll: geom.Position{X: 340, Y: 340},
			want:   []string{"17-17", "17-18", "17-19", "18-17", "18-18", "18-19", "19-17", "19-18", "19-19"},
		},
		{
			name:   "middle",
			scroll: geom.Position{X: 170, Y: 170},
			want:   []string{"10-10", "10-9", "9-10", "9-9"},
		},
		{
			name:   "past the canvas",
			scroll: geom.Position{X: 5000, Y: 5000},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewport{Scroll: tt.scroll, Size: geom.Size{Width: 50, Height: 50}}
			got := sorted(Query(v, state, items, Boxes[string]()))
			if !equalKeys(got, tt.want) {
				t.Errorf("Query = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryOverscan(t *testing.T) {
	items := FromMap(gridLayout(20, 20, 10))
	state := Build(items, Boxes[string](), Options[string]{})

	v := Viewport{Scroll: geom.Position{X: 100, Y: 100}, Size: geom.Size{Width: 20, Height: 20}}
	without := Query(v, state, items, Boxes[string]())

	v.Overscan = 20
	with := Query(v, state, items, Boxes[string]())

	if len(with) <= len(without) {
		t.Errorf("overscan should widen the result: %d vs %d", len(with), len(without))
	}
	set := NewKeySet(with)
	for _, k := range without {
		if !set.Has(k) {
			t.Errorf("key %s visible without overscan but not with it", k)
		}
	}
}

func TestQueryIdempotent(t *testing.T) {
	items := FromMap(gridLayout(50, 20, 10))
	state := Build(items, Boxes[string](), Options[string]{})
	v := Viewport{Scroll: geom.Position{X: 333, Y: 417}, Size: geom.Size{Width: 200, Height: 150}, Overscan: 30}

	first := NewKeySet(Query(v, state, items, Boxes[string]()))
	second := NewKeySet(Query(v, state, items, Boxes[string]()))
	if !first.Equal(second) {
		t.Error("repeated queries should return equal sets")
	}
}

// Items no larger than a bucket are always found: the result equals a
// brute-force scan over every item.
func TestQueryCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	layout := randomBoxes(rng, 2000, 5000, 100)
	items := FromMap(layout)
	state := Build(items, Boxes[int](), Options[int]{BucketSize: 100})

	for i := 0; i < 200; i++ {
		v := Viewport{
			Scroll:   geom.Position{X: rng.Float64()*5200 - 100, Y: rng.Float64()*5200 - 100},
			Size:     geom.Size{Width: rng.Float64() * 600, Height: rng.Float64() * 600},
			Overscan: float64(rng.Intn(3)) * 50,
		}

		got := NewKeySet(Query(v, state, items, Boxes[int]()))
		want := make(KeySet[int])
		rect := v.Rect()
		for k, box := range layout {
			if box.Intersects(rect) {
				want[k] = struct{}{}
			}
		}
		if !got.Equal(want) {
			t.Fatalf("viewport %+v: got %d keys, brute force %d", v, len(got), len(want))
		}
	}
}

// An item larger than a bucket whose origin lies more than one bucket
// outside the scanned range is missed even though it overlaps the viewport.
func TestQueryOversizedItemIsMissed(t *testing.T) {
	items := FromMap(map[string]geom.Box{
		"small": {X: 510, Y: 510, Width: 10, Height: 10},
		"huge":  {X: 0, Y: 0, Width: 1000, Height: 1000},
	})
	state := Build(items, Boxes[string](), Options[string]{BucketSize: 100})

	v := Viewport{Scroll: geom.Position{X: 500, Y: 500}, Size: geom.Size{Width: 50, Height: 50}}
	got := NewKeySet(Query(v, state, items, Boxes[string]()))

	if !got.Has("small") {
		t.Error("small item should be visible")
	}
	if got.Has("huge") {
		t.Error("oversized item is expected to be missed: its origin bucket (0,0) is outside the scanned range")
	}
	if !items.items["huge"].Intersects(v.Rect()) {
		t.Fatal("test setup: huge should overlap the viewport")
	}
}

func TestQuerySkipsStaleKeys(t *testing.T) {
	items := FromMap(map[string]geom.Box{"a": {X: 0, Y: 0, Width: 10, Height: 10}})
	state := &State[string]{
		Size:       geom.Size{Width: 10, Height: 10},
		BucketSize: 100,
		Buckets:    Buckets[string]{{0, 0}: {"a", "gone", "a"}},
	}

	got := Query(Viewport{Size: geom.Size{Width: 50, Height: 50}}, state, items, Boxes[string]())
	if !equalKeys(got, []string{"a"}) {
		t.Errorf("Query = %v, want [a]", got)
	}
}

func TestQueryEmpty(t *testing.T) {
	items := FromSlice[geom.Box](nil)
	state := Build(items, Boxes[int](), Options[int]{})
	if got := Query(Viewport{Size: geom.Size{Width: 100, Height: 100}}, state, items, Boxes[int]()); len(got) != 0 {
		t.Errorf("Query(empty) = %v", got)
	}
	if got := Query[int, geom.Box](Viewport{}, nil, items, Boxes[int]()); got != nil {
		t.Errorf("Query(nil state) = %v", got)
	}
}

func TestViewportRange(t *testing.T) {
	v := Viewport{Scroll: geom.Position{X: 150, Y: 0}, Size: geom.Size{Width: 100, Height: 100}, Overscan: 10}
	lo, hi := v.Range(100)
	if lo != (BucketKey{0, -2}) || hi != (BucketKey{3, 2}) {
		t.Errorf("Range = %v..%v, want 0--2..3-2", lo, hi)
	}
}

func TestQueryHugeViewport(t *testing.T) {
	items := FromMap(map[string]geom.Box{
		"a": {X: 10, Y: 10, Width: 10, Height: 10},
		"b": {X: 250, Y: 40, Width: 10, Height: 10},
	})
	state := Build(items, Boxes[string](), Options[string]{})

	tests := []struct {
		name string
		v    Viewport
		want []string
	}{
		{"covers everything", Viewport{Size: geom.Size{Width: 1e7, Height: 1e7}}, []string{"a", "b"}},
		{"far away", Viewport{Scroll: geom.Position{X: 1e300, Y: 1e300}, Size: geom.Size{Width: 1e300, Height: 1e300}}, nil},
		{"negative origin", Viewport{Scroll: geom.Position{X: -1e12, Y: -1e12}, Size: geom.Size{Width: 2e12, Height: 1e12 + 15}}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan []string, 1)
			go func() { done <- sorted(Query(tt.v, state, items, Boxes[string]())) }()
			select {
			case got := <-done:
				if !equalKeys(got, tt.want) {
					t.Errorf("Query = %v, want %v", got, tt.want)
				}
			case <-time.After(time.Second):
				t.Fatal("Query did not finish within a second")
			}
		})
	}
}
