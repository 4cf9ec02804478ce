package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/entitymap/pkg/layout"
)

// pointsPerInch converts layout pixels to Graphviz inches for node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout to Graphviz DOT. Every node is pinned to the
// engine's coordinates (pos="x,y!" with inputscale=72), so neato only draws
// and never moves anything. Graphviz's y axis points up, so y is flipped
// against the layout bounds.
func ToDOT(l layout.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("digraph entitymap {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%s,%s\";\n", num(l.Bounds.Width), num(l.Bounds.Height))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\", fontsize=12];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, arrowhead=normal, arrowsize=0.6];\n", layout.DefaultEdgeStyle.Stroke)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, l.Bounds.Height), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.Node, height float64) []string {
	label := n.Data.Label
	if n.Data.Subtitle != "" {
		label += "\n" + n.Data.Subtitle
	}
	cy := height - (n.Position.Y + n.Size.Height/2)
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.CenterX()), num(cy)),
		fmt.Sprintf("width=%s", num(n.Size.Width/pointsPerInch)),
		fmt.Sprintf("height=%s", num(n.Size.Height/pointsPerInch)),
		fmt.Sprintf("fillcolor=%q", n.Style.Background),
		fmt.Sprintf("color=%q", n.Style.BorderColor),
		fmt.Sprintf("penwidth=%s", num(n.Style.BorderWidth)),
		fmt.Sprintf("tooltip=%q", n.Data.Path),
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG with the embedded Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based <svg> header with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
