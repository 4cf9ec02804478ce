package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/observability"
)

// mkdirs creates dirs and files (paths ending in a name with a dot are files)
// under a temp root.
func mkdirs(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.Contains(filepath.Base(p), ".") {
			require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
			require.NoError(t, os.WriteFile(full, nil, 0o644))
			continue
		}
		require.NoError(t, os.MkdirAll(full, 0o755))
	}
	return root
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestExecute(t *testing.T) {
	root := mkdirs(t,
		"api/go.mod",
		"api/cmd",
		"docs/readme.md",
		"docs/img",
		"node_modules/x",
	)

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Root: root, Formats: []string{"svg", "json", "dot"}})
	require.NoError(t, err)

	// root, api (project, not descended), docs, docs/img
	assert.Equal(t, 4, res.Stats.NodeCount)
	assert.Equal(t, 3, res.Stats.EdgeCount)
	assert.Equal(t, 2, res.Stats.FileCount)
	assert.False(t, res.CacheInfo.FetchHit)
	assert.Len(t, res.LayoutHash, 64)

	for _, f := range []string{"svg", "json", "dot"} {
		assert.NotEmpty(t, res.Artifacts[f], "missing %s artifact", f)
	}
	assert.Contains(t, string(res.Artifacts["svg"]), "<svg")
	assert.Contains(t, string(res.Artifacts["dot"]), "digraph entitymap")

	back, err := layout.Unmarshal(res.Artifacts["json"])
	require.NoError(t, err)
	assert.Equal(t, res.Layout.Nodes, back.Nodes)
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func TestExecuteMissingRoot(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Options{Root: filepath.Join(t.TempDir(), "nope")})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)
}

func TestFetchUsesCache(t *testing.T) {
	root := mkdirs(t, "a/b", "c")
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Root: root}

	first, hit, err := r.FetchWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)

	// A folder created after the first walk is invisible until refresh.
	require.NoError(t, os.Mkdir(filepath.Join(root, "d"), 0o755))

	second, hit, err := r.FetchWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Count(), second.Count())

	opts.Refresh = true
	third, hit, err := r.FetchWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, first.Count()+1, third.Count())

	// The refreshed tree replaced the cached one.
	opts.Refresh = false
	fourth, hit, err := r.FetchWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, third.Count(), fourth.Count())
}

func TestFetchTreeFile(t *testing.T) {
	tree := &foldertree.Node{
		Name: "remote", Path: "/srv/remote",
		Children: []*foldertree.Node{{Name: "x", Path: "/srv/remote/x", Children: []*foldertree.Node{}}},
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, foldertree.WriteFile(tree, path))

	r := NewRunner(nil, nil, quietLogger())
	got, hit, err := r.FetchWithCacheInfo(context.Background(), Options{TreeFile: path})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, tree, got)
}

func TestLayoutHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Layout(ctx, &foldertree.Node{Name: "x"}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderCachesArtifacts(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	l, err := layout.Compute(&foldertree.Node{Name: "solo", Path: "/solo"}, layout.DefaultConfig())
	require.NoError(t, err)
	opts := Options{Formats: []string{"svg", "dot"}}

	first, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	// Adding a format that is not cached yet re-renders everything.
	opts.Formats = append(opts.Formats, "json")
	_, hit, err = r.RenderWithCacheInfo(ctx, l, opts)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, err := Render(context.Background(), layout.Layout{}, []string{"pdf"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnFetchStart(context.Context, string, int) { h.record("fetch-start") }
func (h *recordingHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {
	h.record("fetch-done")
}
func (h *recordingHooks) OnLayoutStart(context.Context, int) { h.record("layout-start") }
func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.record("layout-done")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-done")
}

func TestExecuteCallsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	root := mkdirs(t, "a")
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"fetch-start", "fetch-done",
		"layout-start", "layout-done",
		"render-start", "render-done",
	}, hooks.events)
}
