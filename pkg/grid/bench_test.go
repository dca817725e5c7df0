package grid

import (
	"maps"
	"testing"

	"github.com/matzehuels/virtgrid/pkg/geom"
)

var benchSizes = []struct {
	name string
	n    int
}{
	{"100", 10},
	{"10K", 100},
}

func BenchmarkBuild(b *testing.B) {
	for _, bs := range benchSizes {
		items := FromMap(gridLayout(bs.n, 20, 10))
		b.Run(bs.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Build(items, Boxes[string](), Options[string]{})
			}
		})
	}
}

func BenchmarkQuery(b *testing.B) {
	for _, bs := range benchSizes {
		items := FromMap(gridLayout(bs.n, 20, 10))
		state := Build(items, Boxes[string](), Options[string]{})
		v := Viewport{Scroll: geom.Position{X: 100, Y: 100}, Size: geom.Size{Width: 100, Height: 100}, Overscan: 100}
		b.Run(bs.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Query(v, state, items, Boxes[string]())
			}
		})
	}
}

func BenchmarkUpdateAddOne(b *testing.B) {
	for _, bs := range benchSizes {
		layout := gridLayout(bs.n, 20, 10)
		prev := FromMap(layout)
		next := maps.Clone(layout)
		next["new"] = geom.Box{X: 5, Y: 5, Width: 5, Height: 5}
		nextItems := FromMap(next)
		opts := Options[string]{BucketSize: 100}

		b.Run(bs.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				state := Build(prev, Boxes[string](), opts)
				b.StartTimer()
				Update(state, prev, nextItems, Boxes[string](), opts)
			}
		})
	}
}
