package foldertree

import (
	"github.com/matzehuels/entitymap/pkg/errors"
)

// Validate checks that the tree rooted at n is finite, acyclic and no deeper
// than maxDepth levels below the root.
//
// The check is iterative and stops at the first node that sits on its own
// ancestor chain or exceeds maxDepth, so malformed input can never make it
// loop. A node shared by two branches (a DAG, not a cycle) is also rejected:
// layout emits one box per visit and would draw the shared folder twice.
func Validate(n *Node, maxDepth int) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidInput, "tree has no root")
	}

	type frame struct {
		node  *Node
		depth int
	}
	seen := make(map[*Node]struct{})
	stack := []frame{{n, 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node == nil {
			return errors.New(errors.ErrCodeInvalidTree, "nil child at depth %d", f.depth)
		}
		if _, dup := seen[f.node]; dup {
			return errors.New(errors.ErrCodeInvalidTree, "folder %q is reachable more than once", label(f.node))
		}
		if f.depth > maxDepth {
			return errors.New(errors.ErrCodeInvalidTree, "tree deeper than %d levels at %q", maxDepth, label(f.node))
		}
		seen[f.node] = struct{}{}

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return nil
}

func label(n *Node) string {
	if n.Path != "" {
		return n.Path
	}
	return n.Name
}
