package foldertree

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// DefaultMaxDepth is the depth the desktop entity map requested.
const DefaultMaxDepth = 5

// DefaultIndicators are entry names that mark a folder as a project root.
// Patterns use doublestar syntax.
var DefaultIndicators = []string{
	".git",
	".env",
	".env.local",
	"package.json",
	"go.mod",
	"Cargo.toml",
	"requirements.txt",
	"Pipfile",
	"pyproject.toml",
	"Makefile",
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	".gitignore",
	"pom.xml",
	"build.gradle",
	"CMakeLists.txt",
	"Gemfile",
	"composer.json",
	"pubspec.yaml",
	"Package.swift",
	".project",
	"*.xcodeproj",
	"*.sln",
	"wails.json",
}

// DefaultBlocklist are entry names that are never counted or descended into.
// Dot-names are always blocked in addition to these.
var DefaultBlocklist = []string{
	"node_modules",
	".git",
	"__pycache__",
	".vscode",
	".idea",
	"dist",
	"build",
	".next",
	".DS_Store",
	".localized",
	"Utilities",
}

// Walker builds folder trees from the local filesystem.
//
// A Walker is safe for concurrent use once configured.
type Walker struct {
	// Indicators are glob patterns; a folder containing a matching entry is a project.
	Indicators []string
	// Blocklist are glob patterns for names that are skipped entirely.
	Blocklist []string
	// Logger receives debug output for unreadable folders. Nil discards.
	Logger *log.Logger
}

// NewWalker returns a Walker with the default indicators and blocklist plus
// any extra patterns.
func NewWalker(extraIndicators, extraBlocklist []string) *Walker {
	return &Walker{
		Indicators: append(append([]string{}, DefaultIndicators...), extraIndicators...),
		Blocklist:  append(append([]string{}, DefaultBlocklist...), extraBlocklist...),
	}
}

// Walk builds the folder tree rooted at root, descending at most maxDepth
// levels below it.
//
// Project folders are not descended into; their files are still counted.
// Folders whose entries cannot be read are returned without children, and
// children that fail to stat are dropped. Only a failure on root itself is
// returned as an error.
func (w *Walker) Walk(ctx context.Context, root string, maxDepth int) (*Node, error) {
	if err := errors.ValidateRootPath(root); err != nil {
		return nil, err
	}
	if err := errors.ValidateMaxDepth(maxDepth); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "folder %s does not exist", abs)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a folder", abs)
	}

	return w.walk(ctx, abs, info, 0, maxDepth)
}

func (w *Walker) walk(ctx context.Context, path string, info fs.FileInfo, depth, maxDepth int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node := &Node{
		Name:     info.Name(),
		Path:     path,
		Children: []*Node{},
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		w.logger().Debug("unreadable folder", "path", path, "err", err)
		return node, nil
	}

	for _, e := range entries {
		if w.IsProjectIndicator(e.Name()) {
			node.IsProject = true
			break
		}
	}

	for _, e := range entries {
		if w.IsBlocked(e.Name()) {
			continue
		}
		if !e.IsDir() {
			node.FileCount++
			continue
		}
		if node.IsProject || depth >= maxDepth {
			continue
		}

		childPath := filepath.Join(path, e.Name())
		childInfo, err := e.Info()
		if err != nil {
			w.logger().Debug("skipping folder", "path", childPath, "err", err)
			continue
		}
		child, err := w.walk(ctx, childPath, childInfo, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// IsProjectIndicator reports whether an entry name marks its folder as a project.
func (w *Walker) IsProjectIndicator(name string) bool {
	return matchAny(w.Indicators, name)
}

// IsBlocked reports whether an entry name should be skipped.
func (w *Walker) IsBlocked(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return matchAny(w.Blocklist, name)
}

func (w *Walker) logger() *log.Logger {
	if w.Logger == nil {
		return log.New(io.Discard)
	}
	return w.Logger
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
