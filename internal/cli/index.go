package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/pipeline"
)

// indexCommand creates the index command for building bucket indexes.
func (c *CLI) indexCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "index [layout.json | URL]",
		Short: "Build the bucket index of a layout",
		Long: `Build the bucket index of a layout.

The index maps every item to the grid bucket that holds its origin. It is
cached by the layout's content hash, so indexing an unchanged layout again
is a cache lookup. Use -o to also write the index as a snapshot file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.BucketSize == 0 {
				opts.BucketSize = c.Config.Index.BucketSize
			}
			return c.runIndex(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "rebuild and overwrite cached entries")
	cmd.Flags().Float64Var(&opts.BucketSize, "bucket-size", 0, "bucket size (default: derived from the canvas)")

	return cmd
}

func (c *CLI) runIndex(ctx context.Context, src string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, err := c.loadLayout(ctx, runner, src, opts.Refresh)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, spinnerOutput, fmt.Sprintf("Indexing %d items...", len(layout.Items)))
	spinner.Start()
	result, err := runner.Index(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Index failed")
		return fmt.Errorf("index: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Index ready")
	printStats(result.Stats.Items, result.Stats.Buckets, result.CacheHit)
	printNewline()
	fmt.Println(indexTable(result).Render())

	if output != "" {
		if err := pkgio.ExportSnapshot(result.Snapshot, output); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		printNewline()
		printSuccess("Snapshot written")
		printFile(output)
	}
	printNewline()
	printNextStep("Query", appName+" query "+src)
	return nil
}

func indexTable(result *pipeline.Result) *table.Table {
	snap := result.Snapshot
	occ := snap.Buckets.Occupancy()
	return newTable().
		Row("layout", result.LayoutHash[:12]).
		Row("canvas", snap.Canvas.String()).
		Row("bucket size", strconv.FormatFloat(snap.BucketSize, 'g', -1, 64)).
		Row("buckets", strconv.Itoa(occ.Buckets)).
		Row("keys/bucket", fmt.Sprintf("%.1f mean, %d max", occ.Mean, occ.Max)).
		Row("took", result.Stats.IndexTime.String())
}
