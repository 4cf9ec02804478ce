// Package sink writes folder-map layouts as SVG and JSON.
//
// Both outputs are produced in-process without external tools. [RenderSVG]
// draws each folder as a rounded box with its label and file-count subtitle
// and each edge as a smoothstep connector ending in an arrow, using the
// colors carried in the layout's node and edge styles. [RenderJSON] writes
// the node/edge diagram JSON, optionally with a meta block.
package sink
