// Package layout positions folder trees as top-down node/edge diagrams.
//
// # Overview
//
// Given a [foldertree.Node], the engine produces a [Layout]: one box per
// folder, one edge per parent/child pair, and the canvas bounds. The result
// is plain data in the shape node/edge diagram libraries expect (id,
// position, size, label payload and style), so a renderer can draw it
// without knowing anything about folders.
//
// # Algorithm
//
// Layout runs in two passes over the tree.
//
//  1. Measure (post-order). Every folder gets a box width from its label
//     ([Config.NodeWidth]: a fixed width per character plus padding, never
//     below the minimum). A folder's subtree width is the larger of its own
//     box and its children's subtree widths laid side by side with a fixed
//     gap between them. Widths are memoized per node for the second pass.
//
//  2. Place (pre-order). The root is centered over its subtree width. The
//     children of a folder centered at cx share a span centered at cx; each
//     child is centered in its own slot of that span. Every depth level sits
//     on its own horizontal band, VerticalSpacing apart.
//
// Because every slot is at least as wide as the subtree placed in it, no two
// sibling subtrees overlap, and every parent is centered over the span its
// children occupy. Both passes are linear in the number of folders.
//
// # Determinism
//
// Widths are estimated from rune counts rather than font metrics, and node
// identifiers come from a per-run [IDAllocator], so identical trees and
// configurations always yield identical layouts.
//
// # Usage
//
//	l, err := layout.Compute(tree, layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.Data.Label, n.Position.X, n.Position.Y)
//	}
//
// The engine does no I/O and keeps no state between calls. Malformed trees
// (cycles, shared folders, depth beyond [Config.MaxDepth]) are rejected with
// an INVALID_TREE error before any recursion.
package layout
