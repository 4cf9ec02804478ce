// Package nodelink exports folder-map layouts through Graphviz.
//
// [ToDOT] produces DOT source in which every node is pinned to the position
// the layout engine computed, so the Graphviz drawing matches the in-process
// SVG exactly. The source opens in any Graphviz tool (neato -n2 honors the
// pins) and renders in-process through the WebAssembly Graphviz bundled by
// github.com/goccy/go-graphviz:
//
//	dot := nodelink.ToDOT(l)
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Node fill, border color and border width come from the layout's node
// styles; edges share the default edge stroke.
package nodelink
