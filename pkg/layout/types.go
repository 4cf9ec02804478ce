package layout

import "fmt"

// Layout is the result of one layout run: positioned nodes, the edges between
// them, and the bounding box of the whole diagram including margins.
//
// Nodes are in pre-order (root first); edges are in the order their targets
// were placed.
type Layout struct {
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
	Bounds Bounds `json:"bounds"`
}

// Bounds is the canvas size a renderer needs to show every node.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is the top-left anchor of a node box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the extent of a node box.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one positioned folder box.
type Node struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	Size     Size      `json:"size"`
	Data     NodeData  `json:"data"`
	Style    NodeStyle `json:"style"`
}

// NodeData is the label payload shown inside a node box.
type NodeData struct {
	Label     string `json:"label"`
	Subtitle  string `json:"subtitle,omitempty"`
	Path      string `json:"path"`
	IsProject bool   `json:"isProject"`
	FileCount int    `json:"fileCount"`
	Depth     int    `json:"depth"`
}

// NodeStyle is the visual treatment of a node box.
type NodeStyle struct {
	Background   string  `json:"background"`
	BorderColor  string  `json:"borderColor"`
	BorderWidth  float64 `json:"borderWidth"`
	BorderRadius float64 `json:"borderRadius"`
}

// CenterX returns the horizontal center of the node box.
func (n Node) CenterX() float64 { return n.Position.X + n.Size.Width/2 }

// Right returns the right edge of the node box.
func (n Node) Right() float64 { return n.Position.X + n.Size.Width }

// Bottom returns the bottom edge of the node box.
func (n Node) Bottom() float64 { return n.Position.Y + n.Size.Height }

// Edge connects a parent node to one of its children.
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Type   string    `json:"type"`
	Style  EdgeStyle `json:"style"`
}

// EdgeStyle is the visual treatment of an edge.
type EdgeStyle struct {
	Stroke string `json:"stroke"`
	Marker Marker `json:"markerEnd"`
}

// Marker is the arrowhead drawn at an edge's target.
type Marker struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Styles for folders and projects.
var (
	FolderStyle = NodeStyle{
		Background:   "#E0F2FE",
		BorderColor:  "#0EA5E9",
		BorderWidth:  1,
		BorderRadius: 8,
	}
	ProjectStyle = NodeStyle{
		Background:   "#FEE2E2",
		BorderColor:  "#EF4444",
		BorderWidth:  2,
		BorderRadius: 8,
	}
	DefaultEdgeStyle = EdgeStyle{
		Stroke: "#94A3B8",
		Marker: Marker{Type: "arrowclosed", Width: 15, Height: 15},
	}
)

// EdgeType is the connector shape requested from the renderer.
const EdgeType = "smoothstep"

// styleFor picks the node style from the project flag.
func styleFor(isProject bool) NodeStyle {
	if isProject {
		return ProjectStyle
	}
	return FolderStyle
}

// subtitle formats the file count line; empty when there are no files.
func subtitle(fileCount int) string {
	if fileCount <= 0 {
		return ""
	}
	return fmt.Sprintf("%d files", fileCount)
}

// NodeByID returns the node with the given id.
func (l Layout) NodeByID(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Root returns the root node; ok is false for an empty layout.
func (l Layout) Root() (Node, bool) {
	if len(l.Nodes) == 0 {
		return Node{}, false
	}
	return l.Nodes[0], true
}
