package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// A Runner keeps no per-run state, so one Runner may serve concurrent
// requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Walker *foldertree.Walker
	Logger *log.Logger

	// TreeTTL and ArtifactTTL bound how long cached entries live.
	TreeTTL     time.Duration
	ArtifactTTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	w := foldertree.NewWalker(nil, nil)
	w.Logger = logger
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Walker: w,
		Logger: logger,

		TreeTTL:     cache.TTLTree,
		ArtifactTTL: cache.TTLArtifact,
	}
}

// Execute runs fetch, layout and render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	start := time.Now()
	tree, hit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Tree = tree
	result.Stats.FetchTime = time.Since(start)
	result.Stats.FileCount = tree.Files()
	result.Stats.Depth = tree.Depth()
	result.CacheInfo.FetchHit = hit

	r.Logger.Info("fetched tree",
		"folders", tree.Count(),
		"files", result.Stats.FileCount,
		"cached", hit,
		"duration", result.Stats.FetchTime)

	start = time.Now()
	l, err := r.Layout(ctx, tree, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	if data, err := layout.Marshal(l); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo returns the tree for opts and whether it came from cache.
// Tree files are read directly and never cached.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*foldertree.Node, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}

	if opts.TreeFile != "" {
		return r.observeFetch(ctx, opts.TreeFile, opts.MaxDepth, func() (*foldertree.Node, error) {
			return foldertree.ReadFile(opts.TreeFile)
		})
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		root = opts.Root
	}
	key := r.Keyer.TreeKey(root, opts.TreeKeyOpts(r.Walker))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if tree, err := foldertree.Unmarshal(data); err == nil {
				r.Logger.Debug("tree cache hit", "root", root)
				return tree, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("tree cache read failed", "err", err)
		}
	}

	tree, _, err := r.observeFetch(ctx, root, opts.MaxDepth, func() (*foldertree.Node, error) {
		return r.Walker.Walk(ctx, root, opts.MaxDepth)
	})
	if err != nil {
		return nil, false, err
	}

	if data, err := foldertree.Marshal(tree); err == nil {
		if err := r.Cache.Set(ctx, key, data, ttlOr(r.TreeTTL, cache.TTLTree)); err != nil {
			r.Logger.Warn("tree cache write failed", "err", err)
		}
	}
	return tree, false, nil
}

// Fetch is FetchWithCacheInfo without the cache flag.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*foldertree.Node, error) {
	tree, _, err := r.FetchWithCacheInfo(ctx, opts)
	return tree, err
}

func (r *Runner) observeFetch(ctx context.Context, source string, depth int, fetch func() (*foldertree.Node, error)) (*foldertree.Node, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, source, depth)
	start := time.Now()
	tree, err := fetch()
	count := 0
	if tree != nil {
		count = tree.Count()
	}
	hooks.OnFetchComplete(ctx, source, count, time.Since(start), err)
	return tree, false, err
}

// Layout computes the layout of tree with opts.Layout. It is pure apart from
// hooks and a context check, and is never cached.
func (r *Runner) Layout(ctx context.Context, tree *foldertree.Node, opts Options) (layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}
	if err := ctx.Err(); err != nil {
		return layout.Layout{}, err
	}

	count := 0
	if tree != nil {
		count = tree.Count()
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, count)
	start := time.Now()
	l, err := layout.Compute(tree, opts.Layout)
	hooks.OnLayoutComplete(ctx, count, time.Since(start), err)
	return l, err
}

// RenderWithCacheInfo renders every format in opts.Formats, reusing cached
// artifacts when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := layout.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	hash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, f))
		if err != nil || !hit {
			break
		}
		artifacts[f] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, opts.Formats)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for f, out := range rendered {
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(hash, f), out, ttlOr(r.ArtifactTTL, cache.TTLArtifact)); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", f, "err", err)
		}
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache flag.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	out, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return out, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func ttlOr(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}
