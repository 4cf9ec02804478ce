package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/foldertree"
)

// walkCommand creates the walk command, which scans a folder into tree JSON.
func (c *CLI) walkCommand() *cobra.Command {
	var (
		output  string
		depth   int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "walk <dir>",
		Short: "Scan a folder into a tree.json file",
		Long: `Scan a folder into a tree.json file.

Folders containing a project indicator (go.mod, package.json, .git, ...) are
marked as projects and not descended into. Hidden and blocklisted names are
skipped. The tree can be laid out later with 'entitymap layout tree.json'.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWalk(cmd.Context(), args[0], output, depth, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tree.json", "output file")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum folder depth (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan even if a cached tree exists")

	return cmd
}

func (c *CLI) runWalk(ctx context.Context, dir, output string, depth int, refresh bool) error {
	opts, err := c.sourceOptions(dir, depth, refresh)
	if err != nil {
		return err
	}
	if opts.Root == "" {
		return fmt.Errorf("%s is not a folder", dir)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Scanning "+dir+"...")
	spinner.Start()

	tree, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	spinner.Stop()
	prog.done("walked", "root", dir, "cached", cached)

	if err := foldertree.WriteFile(tree, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Scanned %s", dir)
	printFile(output)
	printStats(tree.Count(), tree.Count()-1, cached)
	printNewline()
	printNextStep("Lay out", "entitymap layout "+output)

	return nil
}
