package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/grid"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/pipeline"
	"github.com/matzehuels/virtgrid/pkg/store"
)

// viewFlags are the viewport flags shared by query, scroll-to and browse.
// Zero sizes and a negative overscan fall back to the configuration.
type viewFlags struct {
	width, height    float64
	scrollX, scrollY float64
	overscan         float64
	bucketSize       float64
	snapshot         string
	noCache          bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().Float64VarP(&f.scrollX, "scroll-x", "x", 0, "horizontal scroll offset")
	cmd.Flags().Float64VarP(&f.scrollY, "scroll-y", "y", 0, "vertical scroll offset")
	cmd.Flags().Float64Var(&f.overscan, "overscan", -1, "margin around the viewport (default from config)")
	cmd.Flags().Float64Var(&f.bucketSize, "bucket-size", 0, "bucket size (default: derived from the canvas)")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "load the index from a snapshot file instead of building it")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f viewFlags) view(c *CLI) pipeline.ViewOptions {
	v := pipeline.ViewOptions{
		Viewport: geom.Size{Width: f.width, Height: f.height},
		Scroll:   geom.Position{X: f.scrollX, Y: f.scrollY},
	}
	if v.Viewport.Width == 0 {
		v.Viewport.Width = c.Config.Viewport.Width
	}
	if v.Viewport.Height == 0 {
		v.Viewport.Height = c.Config.Viewport.Height
	}
	overscan := f.overscan
	if overscan < 0 {
		overscan = c.Config.Viewport.Overscan
	}
	v.Overscan = &overscan
	return v
}

// openStore loads src and opens a store over it, either through the
// runner's cached index or seeded from a snapshot file.
func (c *CLI) openStore(ctx context.Context, src string, f viewFlags) (*store.Store[string, geom.Box], pkgio.Layout, error) {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, pkgio.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, err := c.loadLayout(ctx, runner, src, false)
	if err != nil {
		return nil, pkgio.Layout{}, err
	}

	view := f.view(c)
	if f.snapshot == "" {
		bucketSize := f.bucketSize
		if bucketSize == 0 {
			bucketSize = c.Config.Index.BucketSize
		}
		s, _, err := runner.Open(ctx, layout, pipeline.Options{BucketSize: bucketSize}, view)
		return s, layout, err
	}

	snap, err := pkgio.ImportSnapshot(f.snapshot)
	if err != nil {
		return nil, pkgio.Layout{}, err
	}
	if !snap.Covers(layout) {
		return nil, pkgio.Layout{}, fmt.Errorf("snapshot %s does not index %s", f.snapshot, src)
	}
	if err := view.Validate(); err != nil {
		return nil, pkgio.Layout{}, err
	}
	pre := snap.Options()
	s := store.New(store.Params[string, geom.Box]{
		Items:          layout.Collection(),
		Bounds:         grid.Boxes[string](),
		ViewportSize:   view.Viewport,
		ScrollPosition: view.Scroll,
		Overscan:       view.Overscan,
		CanvasSize:     pre.CanvasSize,
		BucketSize:     pre.BucketSize,
		Buckets:        pre.Buckets,
		Logger:         c.Logger,
	})
	return s, layout, nil
}

// queryCommand creates the query command for visible-set lookups.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		flags  viewFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query [layout.json | URL]",
		Short: "Print the items visible in a viewport",
		Long: `Print the items visible in a viewport.

An item is visible when its box overlaps the viewport grown by the
overscan margin on every side. Items that only touch the edge are not
visible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.Context(), args[0], flags, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the state as JSON")

	return cmd
}

func (c *CLI) runQuery(ctx context.Context, src string, flags viewFlags, asJSON bool) error {
	s, layout, err := c.openStore(ctx, src, flags)
	if err != nil {
		return err
	}

	state := s.State()
	keys := slices.Clone(state.VisibleKeys)
	slices.Sort(keys)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.State[string]{CanvasSize: state.CanvasSize, VisibleKeys: keys})
	}

	v := s.Viewport()
	printKeyValue("canvas", state.CanvasSize.String())
	printKeyValue("viewport", fmt.Sprintf("%s at %g,%g (+%g)", v.Size, v.Scroll.X, v.Scroll.Y, v.Overscan))
	printKeyValue("visible", fmt.Sprintf("%d of %d", len(keys), len(layout.Items)))
	if len(keys) == 0 {
		return nil
	}

	boxes := layout.Boxes()
	t := newTable("key", "x", "y", "width", "height")
	for _, k := range keys {
		b := boxes[k]
		t.Row(k, formatFloat(b.X), formatFloat(b.Y), formatFloat(b.Width), formatFloat(b.Height))
	}
	printNewline()
	fmt.Println(t.Render())
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
