package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tree and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached tree and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	store, _, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	clearer, ok := store.(cache.Clearer)
	if !ok {
		return fmt.Errorf("cache backend %q cannot be cleared", c.cfg.Cache.Backend)
	}
	if err := clearer.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	printSuccess("Cache cleared")
	printDetail("%s", c.cacheLocation())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the active backend: a directory for the file
// cache, a redis URL otherwise.
func (c *CLI) cacheLocation() string {
	switch {
	case c.noCache || c.cfg.Cache.Backend == backendNone:
		return "disabled"
	case c.cfg.Cache.Backend == backendRedis:
		return fmt.Sprintf("redis://%s/%d", c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisDB)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return dir
}
