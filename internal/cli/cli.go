// Package cli implements the entitymap command-line interface.
//
// Commands scan folders into trees, lay trees out as top-down diagrams,
// render layouts, serve the HTTP API and browse folders interactively.
// Settings come from a TOML config file (see [Config]); flags override it.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/buildinfo"
	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/observability"
	"github.com/matzehuels/entitymap/pkg/pipeline"
	"github.com/matzehuels/entitymap/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "entitymap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        Config
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP hooks log through the same logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "entitymap draws folder trees as top-down diagrams",
		Long:         `entitymap scans a folder, marks project folders, and lays the tree out as a top-down node/edge diagram that can be rendered to SVG, DOT, PNG or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/entitymap/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.walkCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", cfg.path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner wired to the configured cache and walker.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache.Instrument(store), keyer, c.Logger)

	runner.Walker = foldertree.NewWalker(c.cfg.Walk.Indicators, c.cfg.Walk.Blocklist)
	runner.Walker.Logger = c.Logger
	if c.cfg.Cache.TreeTTL > 0 {
		runner.TreeTTL = c.cfg.Cache.TreeTTL
	}
	if c.cfg.Cache.ArtifactTTL > 0 {
		runner.ArtifactTTL = c.cfg.Cache.ArtifactTTL
	}
	return runner, nil
}

// newCache opens the configured cache backend. --no-cache wins over config.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer
	if c.cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Cache.Namespace)
	}

	if c.noCache {
		return cache.NewNullCache(), keyer, nil
	}

	switch c.cfg.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), keyer, nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.cfg.Cache.RedisAddr,
			Password: c.cfg.Cache.RedisPassword,
			DB:       c.cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, keyer, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), keyer, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache %s: %w", dir, err)
		}
		return fc, keyer, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/entitymap/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the XDG config directory (~/.config/entitymap/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// sourceOptions turns a command argument into pipeline options. A directory
// is walked; a regular file is read as tree JSON.
func (c *CLI) sourceOptions(arg string, depth int, refresh bool) (pipeline.Options, error) {
	opts := pipeline.Options{
		MaxDepth: depth,
		Refresh:  refresh,
		Layout:   c.cfg.Layout,
		Logger:   c.Logger,
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = c.cfg.Walk.MaxDepth
	}

	info, err := os.Stat(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", arg)
		}
		return opts, fmt.Errorf("stat %s: %w", arg, err)
	}
	if info.IsDir() {
		opts.Root = arg
	} else {
		opts.TreeFile = arg
	}
	return opts, nil
}

// outputBase derives the base name for output files: the tree file without
// its extension, or the folder's name in the working directory.
func outputBase(opts pipeline.Options) string {
	if opts.TreeFile != "" {
		return strings.TrimSuffix(opts.TreeFile, filepath.Ext(opts.TreeFile))
	}
	abs, err := filepath.Abs(opts.Root)
	if err != nil {
		abs = opts.Root
	}
	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." {
		name = "root"
	}
	return name
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
