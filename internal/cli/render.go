package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path (several)
	formats []string // svg, dot, png, json
	depth   int
	refresh bool
	stats   bool // print the per-stage table
}

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <dir|tree.json>",
		Short: "Render a folder or tree file to SVG, DOT, PNG or JSON",
		Long: `Render a folder or tree file to SVG, DOT, PNG or JSON.

svg is drawn directly from the layout. dot pins every node at its layout
position; png goes through Graphviz with those pinned positions. json is the
layout document.

Rendered artifacts are cached by layout hash.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "maximum folder depth (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rescan even if a cached tree exists")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print stage timings")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, ro *renderOpts) error {
	opts, err := c.sourceOptions(input, ro.depth, ro.refresh)
	if err != nil {
		return err
	}
	opts.Formats = ro.formats

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(ro.formats, ", ")+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(ro.output, outputBase(opts), ro.formats)
	for _, f := range ro.formats {
		if err := writeArtifact(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", input)
	for _, f := range ro.formats {
		printFile(paths[f])
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.FetchHit && result.CacheInfo.RenderHit)
	if ro.stats {
		printNewline()
		printStatsTable(result.Stats, result.CacheInfo)
	}
	return nil
}

// outputPaths maps each format to its file. A single format with an explicit
// output uses it verbatim; otherwise output (or base) gets one extension per
// format.
func outputPaths(output, base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
