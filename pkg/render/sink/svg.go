package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/entitymap/pkg/layout"
)

const (
	defaultFont       = "Inter, -apple-system, Helvetica, Arial, sans-serif"
	labelColor        = "#0F172A"
	subtitleColor     = "#64748B"
	labelFontSize     = 14
	subtitleFontSize  = 11
	arrowMarkerID     = "arrowclosed"
	smoothstepRadius  = 8.0
	subtitleLineShift = 9.0
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	font       string
	title      string
}

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithFont overrides the CSS font-family.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.font = family } }

// WithTitle adds a <title> element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// RenderSVG draws l as a standalone SVG document sized to l.Bounds.
// Edges are drawn first so boxes sit on top of them.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{font: defaultFont}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w, h := l.Bounds.Width, l.Bounds.Height
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	renderDefs(&buf)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	byID := make(map[string]layout.Node, len(l.Nodes))
	for _, n := range l.Nodes {
		byID[n.ID] = n
	}

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range l.Edges {
		src, ok1 := byID[e.Source]
		dst, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		renderEdge(&buf, e, src, dst)
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <g class="nodes" font-family="%s">`+"\n", html.EscapeString(r.font))
	for _, n := range l.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	m := layout.DefaultEdgeStyle.Marker
	fmt.Fprintf(buf, `  <defs>
    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="%g" markerHeight="%g" markerUnits="userSpaceOnUse" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>
    </marker>
  </defs>
`, arrowMarkerID, m.Width, m.Height, layout.DefaultEdgeStyle.Stroke)
}

// renderEdge draws a smoothstep connector: down from the parent's bottom
// center to the midpoint between levels, across, then down into the child.
func renderEdge(buf *bytes.Buffer, e layout.Edge, src, dst layout.Node) {
	x1, y1 := src.CenterX(), src.Bottom()
	x2, y2 := dst.CenterX(), dst.Position.Y
	midY := (y1 + y2) / 2

	var d string
	dx := x2 - x1
	switch {
	case dx == 0:
		d = fmt.Sprintf("M %.1f %.1f L %.1f %.1f", x1, y1, x2, y2)
	default:
		rad := min(smoothstepRadius, abs(dx)/2, (y2-y1)/2)
		sign := 1.0
		if dx < 0 {
			sign = -1
		}
		d = fmt.Sprintf("M %.1f %.1f L %.1f %.1f Q %.1f %.1f %.1f %.1f L %.1f %.1f Q %.1f %.1f %.1f %.1f L %.1f %.1f",
			x1, y1,
			x1, midY-rad,
			x1, midY, x1+sign*rad, midY,
			x2-sign*rad, midY,
			x2, midY, x2, midY+rad,
			x2, y2)
	}

	marker := ""
	if e.Style.Marker.Type != "" {
		marker = fmt.Sprintf(` marker-end="url(#%s)"`, arrowMarkerID)
	}
	fmt.Fprintf(buf, `    <path id="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		html.EscapeString(e.ID), d, e.Style.Stroke, marker)
}

func renderNode(buf *bytes.Buffer, n layout.Node) {
	s := n.Style
	cls := "folder"
	if n.Data.IsProject {
		cls = "project"
	}
	fmt.Fprintf(buf, `    <g id="%s" class="node %s">`+"\n", html.EscapeString(n.ID), cls)
	fmt.Fprintf(buf, "      <title>%s</title>\n", html.EscapeString(n.Data.Path))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%g" fill="%s" stroke="%s" stroke-width="%g"/>`+"\n",
		n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height, s.BorderRadius, s.Background, s.BorderColor, s.BorderWidth)

	cx, cy := n.CenterX(), n.Position.Y+n.Size.Height/2
	labelY := cy
	if n.Data.Subtitle != "" {
		labelY = cy - subtitleLineShift/2
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-weight="600" fill="%s">%s</text>`+"\n",
		cx, labelY, labelFontSize, labelColor, html.EscapeString(n.Data.Label))
	if n.Data.Subtitle != "" {
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%d" fill="%s">%s</text>`+"\n",
			cx, labelY+subtitleLineShift+subtitleFontSize/2, subtitleFontSize, subtitleColor, html.EscapeString(n.Data.Subtitle))
	}
	buf.WriteString("    </g>\n")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
