package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		roots []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve folder trees and layouts over HTTP",
		Long: `Serve folder trees and layouts over HTTP.

Endpoints:
  GET  /healthz
  GET  /api/tree?path=&depth=&refresh=
  GET  /api/layout?path=&depth=&view=
  POST /api/layout            (tree JSON body)
  GET  /api/render?path=&depth=&format=svg|dot|png|json

Requests that pass the same view id supersede each other: only the newest
gets a layout, older ones are answered with 409. Use --root to restrict which
folders may be scanned. With [cache] backend = "redis" several servers share
one tree cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, roots)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "folder that may be scanned (repeatable; default: any)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, roots []string) error {
	cfg := c.cfg.Server
	cfg.Layout = c.cfg.Layout
	if addr != "" {
		cfg.Addr = addr
	}
	if len(roots) > 0 {
		cfg.Roots = roots
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, cfg, c.Logger)
	printInfo("Serving on %s", StyleValue.Render("http://"+srv.Addr()))
	for _, r := range cfg.Roots {
		printDetail("root %s", r)
	}

	err = srv.ListenAndServe(ctx)
	if stderrors.Is(err, context.Canceled) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}
