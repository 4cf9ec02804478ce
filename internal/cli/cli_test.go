package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/pipeline"
)

// isolate points the XDG directories at temp dirs so tests never touch the
// user's config or cache.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func sampleFolder(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "workspace")
	for _, d := range []string{"api", "web/src", ".hidden", "node_modules/x"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "api", "go.mod"), []byte("module api\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), nil, 0o644))
	return root
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)
}

func TestCacheDirFromConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = "/var/cache/maps"
	dir, err := c.cacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/maps", dir)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,dot", []string{"svg", "dot"}},
		{" png , json ,", []string{"png", "json"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFormats(tt.in), "parseFormats(%q)", tt.in)
	}
}

func TestSourceOptions(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Walk.MaxDepth = 3
	dir := t.TempDir()
	file := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name":"x"}`), 0o644))

	opts, err := c.sourceOptions(dir, 0, true)
	require.NoError(t, err)
	assert.Equal(t, dir, opts.Root)
	assert.Empty(t, opts.TreeFile)
	assert.Equal(t, 3, opts.MaxDepth, "zero depth falls back to the config")
	assert.True(t, opts.Refresh)

	opts, err = c.sourceOptions(file, 2, false)
	require.NoError(t, err)
	assert.Equal(t, file, opts.TreeFile)
	assert.Empty(t, opts.Root)
	assert.Equal(t, 2, opts.MaxDepth)

	_, err = c.sourceOptions(filepath.Join(dir, "missing"), 0, false)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestOutputBase(t *testing.T) {
	assert.Equal(t, "/data/tree", outputBase(pipeline.Options{TreeFile: "/data/tree.json"}))
	assert.Equal(t, "projects", outputBase(pipeline.Options{Root: "/home/me/projects"}))
	assert.Equal(t, "root", outputBase(pipeline.Options{Root: "/"}))
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, map[string]string{"svg": "out.svg"},
		outputPaths("out.svg", "ignored", []string{"svg"}))
	assert.Equal(t, map[string]string{"svg": "maps/x.svg", "dot": "maps/x.dot"},
		outputPaths("maps/x.svg", "ignored", []string{"svg", "dot"}))
	assert.Equal(t, map[string]string{"svg": "src.svg", "json": "src.json"},
		outputPaths("", "src", []string{"svg", "json"}))
}

func TestStatsTable(t *testing.T) {
	out := statsTable(pipeline.Stats{NodeCount: 4, EdgeCount: 3, FileCount: 9, Depth: 2}, pipeline.CacheInfo{FetchHit: true})
	for _, want := range []string{"fetch", "layout", "render", "4 folders, 9 files, depth 2", "4 nodes, 3 edges", "cached", "fresh"} {
		assert.Contains(t, out, want)
	}
}

func TestWalkCommand(t *testing.T) {
	isolate(t)
	root := sampleFolder(t)
	out := filepath.Join(t.TempDir(), "tree.json")

	require.NoError(t, execute(t, "walk", root, "-o", out))

	tree, err := foldertree.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "workspace", tree.Name)
	// workspace, api, web, web/src; hidden and node_modules are skipped.
	assert.Equal(t, 4, tree.Count())
	assert.Equal(t, 1, tree.FileCount)
}

func TestLayoutCommandFromTreeFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	treeFile := filepath.Join(dir, "tree.json")
	require.NoError(t, foldertree.WriteFile(&foldertree.Node{
		Name: "src", Path: "/src",
		Children: []*foldertree.Node{
			{Name: "a", Path: "/src/a", Children: []*foldertree.Node{}},
			{Name: "bb", Path: "/src/bb", Children: []*foldertree.Node{}},
		},
	}, treeFile))

	require.NoError(t, execute(t, "layout", treeFile))

	l, err := layout.ReadFile(filepath.Join(dir, "tree.layout.json"))
	require.NoError(t, err)
	require.Len(t, l.Nodes, 3)
	assert.Equal(t, 145.0, l.Nodes[0].Position.X)
	assert.Equal(t, 440.0, l.Bounds.Width)
}

func TestLayoutCommandUsesConfig(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[layout]\nmargin_top = 10.0\n"), 0o644))
	out := filepath.Join(t.TempDir(), "map.layout.json")

	require.NoError(t, execute(t, "--config", cfgPath, "--no-cache", "layout", sampleFolder(t), "-o", out))

	l, err := layout.ReadFile(out)
	require.NoError(t, err)
	root, ok := l.Root()
	require.True(t, ok)
	assert.Equal(t, 10.0, root.Position.Y)
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	base := filepath.Join(t.TempDir(), "out", "map")

	require.NoError(t, execute(t, "render", sampleFolder(t), "-f", "svg,dot,json", "-o", base+".svg"))

	svg, err := os.ReadFile(base + ".svg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg"))

	dot, err := os.ReadFile(base + ".dot")
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")

	l, err := layout.ReadFile(base + ".json")
	require.NoError(t, err)
	assert.Len(t, l.Nodes, 4)
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	isolate(t)
	err := execute(t, "render", sampleFolder(t), "-f", "pdf")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.GetCode(err))
}

func TestCommandMissingInput(t *testing.T) {
	isolate(t)
	err := execute(t, "layout", filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestCacheClear(t *testing.T) {
	isolate(t)
	root := sampleFolder(t)
	require.NoError(t, execute(t, "walk", root, "-o", filepath.Join(t.TempDir(), "tree.json")))

	dir, err := cacheDir()
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries, "walk should populate the file cache")

	require.NoError(t, execute(t, "cache", "clear"))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheLocation(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = "/tmp/maps"
	assert.Equal(t, "/tmp/maps", c.cacheLocation())

	c.cfg.Cache = CacheConfig{Backend: backendRedis, RedisAddr: "localhost:6379", RedisDB: 2}
	assert.Equal(t, "redis://localhost:6379/2", c.cacheLocation())

	c.noCache = true
	assert.Equal(t, "disabled", c.cacheLocation())
}
