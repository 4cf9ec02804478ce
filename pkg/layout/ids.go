package layout

import "strconv"

// IDAllocator issues node identifiers for a single layout run.
//
// Identifiers strictly increase and are never reused, even if a caller
// abandons a partially built subtree and retries. The zero value starts at 0.
// An IDAllocator is not safe for concurrent use; each run owns its own.
type IDAllocator struct {
	next int
}

// Next returns the next sequence number.
func (a *IDAllocator) Next() int {
	n := a.next
	a.next++
	return n
}

// NextNodeID returns the next node identifier.
func (a *IDAllocator) NextNodeID() string {
	return NodeID(a.Next())
}

// Issued returns how many identifiers have been handed out.
func (a *IDAllocator) Issued() int { return a.next }

// NodeID formats sequence number n as a node identifier.
func NodeID(n int) string { return "node-" + strconv.Itoa(n) }

// EdgeID derives an edge identifier from its endpoints.
func EdgeID(source, target string) string { return "edge-" + source + "-" + target }
