// Package render turns computed folder-map layouts into files.
//
// Renderers consume a [layout.Layout] and never lay anything out themselves;
// every coordinate comes from the engine.
//
//   - [sink]: self-contained SVG and the diagram JSON, no external tools.
//   - [nodelink]: Graphviz DOT with pinned positions, plus SVG and PNG
//     rendered through the embedded Graphviz.
//
//	l, _ := layout.Compute(tree, layout.DefaultConfig())
//	svg := sink.RenderSVG(l)
//	dot := nodelink.ToDOT(l)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [layout.Layout]: github.com/matzehuels/entitymap/pkg/layout.Layout
// [sink]: github.com/matzehuels/entitymap/pkg/render/sink
// [nodelink]: github.com/matzehuels/entitymap/pkg/render/nodelink
package render

// Output formats understood by the renderers.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Formats lists every supported format in a stable order.
var Formats = []string{FormatSVG, FormatDOT, FormatPNG, FormatJSON}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}
