// Package pkg provides the core libraries for entitymap folder maps.
//
// # Overview
//
// entitymap scans a folder hierarchy and draws it as a top-down tree diagram:
// every folder becomes a labelled box, parents sit centered above their
// children, and folders that look like projects are highlighted. The pkg
// directory is organized into these areas:
//
//  1. [foldertree] - The folder tree model and the filesystem walker
//  2. [layout] - The deterministic tree layout engine
//  3. [render] - SVG, DOT, PNG and JSON output
//  4. [pipeline] - Orchestration (fetch → layout → render) with caching
//  5. [server] - The HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	Folder on disk / tree.json
//	         ↓
//	    [foldertree] package (walk, validate)
//	         ↓
//	    [layout] package (measure subtrees, place nodes)
//	         ↓
//	    [render] package (sinks)
//	         ↓
//	    SVG/DOT/PNG/JSON output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/entitymap/pkg/foldertree"
//	    "github.com/matzehuels/entitymap/pkg/layout"
//	    "github.com/matzehuels/entitymap/pkg/render/sink"
//	)
//
//	// 1. Walk a folder
//	tree, _ := foldertree.NewWalker(nil, nil).Walk(context.Background(), "./src", 4)
//
//	// 2. Compute layout
//	l, _ := layout.Compute(tree, layout.DefaultConfig())
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(l)
//
// # Supporting Packages
//
// [cache] - Content-addressed caching for trees and artifacts, with null,
// file and Redis backends.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information stamped at build time.
//
// [foldertree]: github.com/matzehuels/entitymap/pkg/foldertree
// [layout]: github.com/matzehuels/entitymap/pkg/layout
// [render]: github.com/matzehuels/entitymap/pkg/render
// [pipeline]: github.com/matzehuels/entitymap/pkg/pipeline
// [server]: github.com/matzehuels/entitymap/pkg/server
// [cache]: github.com/matzehuels/entitymap/pkg/cache
// [errors]: github.com/matzehuels/entitymap/pkg/errors
// [observability]: github.com/matzehuels/entitymap/pkg/observability
// [buildinfo]: github.com/matzehuels/entitymap/pkg/buildinfo
package pkg
