package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/layout"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		depth   int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout <dir|tree.json>",
		Short: "Compute the diagram layout of a folder or tree file",
		Long: `Compute the diagram layout of a folder or tree file.

Every folder becomes a node placed on its depth level and centered above its
children; every parent/child pair becomes an edge. The result is written as
layout JSON (the same document 'render -f json' produces).

Layout constants come from the [layout] table of the config file.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, depth, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.layout.json)")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum folder depth (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan even if a cached tree exists")

	return cmd
}

// runLayout fetches the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, depth int, refresh bool) error {
	opts, err := c.sourceOptions(input, depth, refresh)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	tree, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("load %s: %w", input, err)
	}
	l, err := runner.Layout(ctx, tree, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = outputBase(opts) + ".layout.json"
	}
	if err := layout.WriteFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(l.Nodes), len(l.Edges), cached)
	printDetail("%.0f x %.0f", l.Bounds.Width, l.Bounds.Height)
	printNewline()
	printNextStep("Render", "entitymap render "+input)

	return nil
}
