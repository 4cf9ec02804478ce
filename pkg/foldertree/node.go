package foldertree

// Node is one directory in a folder tree.
//
// The JSON shape matches the tree produced by the desktop backend, so trees
// captured there can be laid out offline.
type Node struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	IsProject bool    `json:"isProject"`
	Children  []*Node `json:"children"`
	FileCount int     `json:"fileCount"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Depth returns the number of levels below n. A leaf has depth 0.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Files returns the total file count of the subtree rooted at n.
func (n *Node) Files() int {
	if n == nil {
		return 0
	}
	total := n.FileCount
	for _, c := range n.Children {
		total += c.Files()
	}
	return total
}

// Visit calls fn for every node in pre-order, passing the node's depth
// relative to n. Returning false from fn skips that node's children.
func (n *Node) Visit(fn func(node *Node, depth int) bool) {
	if n == nil {
		return
	}
	var visit func(*Node, int)
	visit = func(node *Node, depth int) {
		if !fn(node, depth) {
			return
		}
		for _, c := range node.Children {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
}
