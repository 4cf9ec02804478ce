package layout

import "github.com/matzehuels/entitymap/pkg/foldertree"

// extent is the horizontal space a node needs.
type extent struct {
	own     float64 // width of the node's own box
	span    float64 // width of the children laid side by side, gaps included; 0 for leaves
	subtree float64 // max(own, span)
}

// widthMemo holds one extent per node for a single run. It is keyed by node
// identity, so two folders with the same name never share an entry.
type widthMemo map[*foldertree.Node]extent

// measure computes the extent of every node in post-order.
//
// A node is never narrower than its own label and never narrower than the
// room its children need side by side; that is what keeps sibling subtrees
// from overlapping once they are placed.
func measure(root *foldertree.Node, cfg Config) widthMemo {
	memo := make(widthMemo)
	measureNode(root, cfg, memo)
	return memo
}

func measureNode(n *foldertree.Node, cfg Config, memo widthMemo) float64 {
	if e, ok := memo[n]; ok {
		return e.subtree
	}

	e := extent{own: cfg.NodeWidth(n.Name)}
	if len(n.Children) > 0 {
		for _, c := range n.Children {
			e.span += measureNode(c, cfg, memo)
		}
		e.span += cfg.HorizontalGap * float64(len(n.Children)-1)
	}
	e.subtree = max(e.own, e.span)

	memo[n] = e
	return e.subtree
}
