package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/virtgrid/pkg/scroll"
)

// scrollToCommand creates the scroll-to command.
func (c *CLI) scrollToCommand() *cobra.Command {
	var (
		flags     viewFlags
		alignment string
		behavior  string
		padding   float64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "scroll-to [layout.json | URL] [key]",
		Short: "Compute the scroll offset that brings an item into view",
		Long: `Compute the scroll offset that brings an item into view.

Alignment is "vertical-horizontal" with vertical one of top, bottom,
center, auto or ignore and horizontal one of left, right, center, auto or
ignore; "auto" and "center" alone apply to both axes. Auto aligns the
nearest edge when the item is cut off and leaves the axis alone
otherwise. Axes left alone are omitted from the output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := scroll.ParseAlignment(alignment)
			if err != nil {
				return err
			}
			b, err := scroll.ParseBehavior(behavior)
			if err != nil {
				return err
			}
			opts := scroll.Options{Alignment: a, Behavior: b, Padding: padding}
			return c.runScrollTo(cmd.Context(), args[0], args[1], flags, opts, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&alignment, "align", "a", "auto", "alignment, e.g. top-left, center, bottom-ignore")
	cmd.Flags().StringVar(&behavior, "behavior", "auto", "scroll behavior passed through to the target: auto, smooth")
	cmd.Flags().Float64Var(&padding, "padding", 0, "space kept between the item and the viewport edge")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the target as JSON")

	return cmd
}

func (c *CLI) runScrollTo(ctx context.Context, src, key string, flags viewFlags, opts scroll.Options, asJSON bool) error {
	if opts.Padding < 0 {
		return fmt.Errorf("padding cannot be negative")
	}
	s, _, err := c.openStore(ctx, src, flags)
	if err != nil {
		return err
	}
	target, err := s.ScrollToItem(key, opts)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(target)
	}
	if target.IsZero() {
		printInfo("%s is already in view", key)
		return nil
	}
	if target.Top != nil {
		printKeyValue("top", formatFloat(*target.Top))
	}
	if target.Left != nil {
		printKeyValue("left", formatFloat(*target.Left))
	}
	printKeyValue("behavior", string(target.Behavior))
	return nil
}
