package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/virtgrid/pkg/io"
)

// generateCommand creates the generate command for synthetic grid layouts.
func (c *CLI) generateCommand() *cobra.Command {
	var output string
	spec := pkgio.GridSpec{Rows: 100, Cols: 100, Spacing: 120, Width: 100, Height: 100}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic grid layout",
		Long: `Write a synthetic grid layout.

Items are keyed "row-col" and placed row-major, item (r, c) at
(c*spacing, r*spacing). Useful for trying out queries and benchmarking
the index on large inputs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(spec, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "layout.json", "output file")
	cmd.Flags().IntVar(&spec.Rows, "rows", spec.Rows, "number of rows")
	cmd.Flags().IntVar(&spec.Cols, "cols", spec.Cols, "number of columns")
	cmd.Flags().Float64Var(&spec.Spacing, "spacing", spec.Spacing, "distance between item origins")
	cmd.Flags().Float64Var(&spec.Width, "item-width", spec.Width, "item width")
	cmd.Flags().Float64Var(&spec.Height, "item-height", spec.Height, "item height")

	return cmd
}

func (c *CLI) runGenerate(spec pkgio.GridSpec, output string) error {
	if spec.Rows < 0 || spec.Cols < 0 {
		return fmt.Errorf("rows and cols cannot be negative")
	}
	prog := newProgress(c.Logger)
	layout := pkgio.GridLayout(spec)
	if err := layout.Validate(); err != nil {
		return err
	}
	if err := pkgio.ExportLayout(layout, output); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	prog.done(fmt.Sprintf("Generated %d items", len(layout.Items)))

	printSuccess("Layout written")
	printFile(output)
	printNewline()
	printNextStep("Index", appName+" index "+output)
	return nil
}
