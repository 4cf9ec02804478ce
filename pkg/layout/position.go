package layout

import "github.com/matzehuels/entitymap/pkg/foldertree"

// positioner places nodes top-down using a finished width memo.
// It owns the output slices for one run; the allocator is passed in.
type positioner struct {
	cfg      Config
	memo     widthMemo
	ids      *IDAllocator
	nodes    []Node
	edges    []Edge
	maxDepth int
}

func newPositioner(cfg Config, memo widthMemo, ids *IDAllocator) *positioner {
	return &positioner{
		cfg:   cfg,
		memo:  memo,
		ids:   ids,
		nodes: make([]Node, 0, len(memo)),
		edges: make([]Edge, 0, max(len(memo)-1, 0)),
	}
}

// placeRoot centers the root over its whole subtree, inset by the margins.
func (p *positioner) placeRoot(root *foldertree.Node) {
	cx := p.cfg.MarginLeft + p.memo[root].subtree/2
	p.place(root, "", cx, 0)
}

// place emits n centered at cx on level depth, then lays its children out
// left to right across the span centered under cx.
func (p *positioner) place(n *foldertree.Node, parentID string, cx float64, depth int) {
	e := p.memo[n]
	id := p.ids.NextNodeID()

	p.nodes = append(p.nodes, Node{
		ID: id,
		Position: Position{
			X: cx - e.own/2,
			Y: p.levelY(depth),
		},
		Size: Size{Width: e.own, Height: p.cfg.NodeHeight},
		Data: NodeData{
			Label:     n.Name,
			Subtitle:  subtitle(n.FileCount),
			Path:      n.Path,
			IsProject: n.IsProject,
			FileCount: n.FileCount,
			Depth:     depth,
		},
		Style: styleFor(n.IsProject),
	})
	if parentID != "" {
		p.edges = append(p.edges, Edge{
			ID:     EdgeID(parentID, id),
			Source: parentID,
			Target: id,
			Type:   EdgeType,
			Style:  DefaultEdgeStyle,
		})
	}
	p.maxDepth = max(p.maxDepth, depth)

	offset := cx - e.span/2
	for _, c := range n.Children {
		w := p.memo[c].subtree
		p.place(c, id, offset+w/2, depth+1)
		offset += w + p.cfg.HorizontalGap
	}
}

func (p *positioner) levelY(depth int) float64 {
	return p.cfg.MarginTop + float64(depth)*p.cfg.VerticalSpacing
}

// bounds returns the canvas size: the root subtree plus a margin on every side.
func (p *positioner) bounds(root *foldertree.Node) Bounds {
	return Bounds{
		Width:  p.memo[root].subtree + 2*p.cfg.MarginLeft,
		Height: p.levelY(p.maxDepth) + p.cfg.NodeHeight + p.cfg.MarginTop,
	}
}
