// Package pipeline runs the fetch → layout → render flow shared by the CLI,
// the HTTP API and the terminal browser.
//
// # Stages
//
//  1. Fetch: walk a folder on disk (cached by root and walk options) or read
//     a tree JSON file.
//  2. Layout: run the layout engine. Layouts are cheap and never cached.
//  3. Render: produce SVG, DOT, PNG or JSON artifacts (cached by layout
//     hash and format).
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Root:    "/home/me/code",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// # Latest request wins
//
// Interactive callers that re-run the pipeline on every user action use a
// [Tracker] so that only the newest request for a view delivers a result.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultMaxDepth is the walk depth used when Options.MaxDepth is zero.
const DefaultMaxDepth = foldertree.DefaultMaxDepth

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{render.FormatSVG}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. Exactly one of Root and TreeFile is set.
type Options struct {
	// Fetch options
	Root     string `json:"root,omitempty"`
	TreeFile string `json:"tree_file,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"` // zero means DefaultMaxDepth
	Refresh  bool   `json:"refresh,omitempty"`   // bypass the tree cache

	// Layout options
	Layout layout.Config `json:"layout"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is everything a full run produced.
type Result struct {
	Tree       *foldertree.Node
	Layout     layout.Layout
	LayoutHash string
	Artifacts  map[string][]byte
	Stats      Stats
	CacheInfo  CacheInfo
}

// Stats holds counts and stage timings.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FileCount  int
	Depth      int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	FetchHit  bool
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks every entry against render.Formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, render.Formats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the source fields and applies fetch defaults.
func (o *Options) ValidateForFetch() error {
	switch {
	case o.Root == "" && o.TreeFile == "":
		return errors.New(errors.ErrCodeInvalidInput, "a root folder or a tree file is required")
	case o.Root != "" && o.TreeFile != "":
		return errors.New(errors.ErrCodeInvalidInput, "root and tree file are mutually exclusive")
	case o.Root != "":
		if err := errors.ValidateRootPath(o.Root); err != nil {
			return err
		}
	default:
		if err := errors.ValidateRootPath(o.TreeFile); err != nil {
			return err
		}
	}

	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if err := errors.ValidateMaxDepth(o.MaxDepth); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForLayout uses the default constants for an unset layout config and
// validates them.
func (o *Options) ValidateForLayout() error {
	o.Layout = o.Layout.WithDefaults()
	o.setLogger()
	return o.Layout.Validate()
}

// ValidateForRender defaults and validates the format list.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// TreeKeyOpts returns the cache key options for a walk with w.
func (o *Options) TreeKeyOpts(w *foldertree.Walker) cache.TreeKeyOpts {
	opts := cache.TreeKeyOpts{MaxDepth: o.MaxDepth}
	if w != nil {
		opts.Indicators = w.Indicators
		opts.Blocklist = w.Blocklist
	}
	return opts
}
