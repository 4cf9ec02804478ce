package layout

import (
	"github.com/matzehuels/entitymap/pkg/foldertree"
)

// Engine lays out folder trees with a fixed configuration.
//
// An Engine holds no state between calls: every Compute builds its own width
// memo and ID allocator, so one Engine may serve concurrent callers.
type Engine struct {
	cfg Config
}

// New returns an engine for cfg after validating it.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's constants.
func (e *Engine) Config() Config { return e.cfg }

// Compute lays out the tree rooted at root.
//
// The tree is checked first: a nil root, a nil child, a folder reachable
// twice (including cycles) or a tree deeper than Config.MaxDepth fails
// with an INVALID_* error instead of recursing without bound. A root with
// no children is valid and yields one node and no edges.
func (e *Engine) Compute(root *foldertree.Node) (Layout, error) {
	if err := foldertree.Validate(root, e.cfg.MaxDepth); err != nil {
		return Layout{}, err
	}

	memo := measure(root, e.cfg)

	p := newPositioner(e.cfg, memo, &IDAllocator{})
	p.placeRoot(root)

	return Layout{
		Nodes:  p.nodes,
		Edges:  p.edges,
		Bounds: p.bounds(root),
	}, nil
}

// Compute lays out root with cfg. It is shorthand for New followed by
// Engine.Compute.
func Compute(root *foldertree.Node, cfg Config) (Layout, error) {
	e, err := New(cfg)
	if err != nil {
		return Layout{}, err
	}
	return e.Compute(root)
}
