package sink

import (
	"encoding/json"

	"github.com/matzehuels/entitymap/pkg/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	meta jsonMeta
}

// WithJSONRoot records the folder the layout was computed from.
func WithJSONRoot(root string) JSONOption { return func(r *jsonRenderer) { r.meta.Root = root } }

// WithJSONConfig records the layout constants used, so a consumer can
// reproduce the diagram.
func WithJSONConfig(cfg layout.Config) JSONOption {
	return func(r *jsonRenderer) { r.meta.Config = &cfg }
}

// WithJSONVersion records the producing binary's version.
func WithJSONVersion(v string) JSONOption { return func(r *jsonRenderer) { r.meta.Version = v } }

type jsonMeta struct {
	Root    string         `json:"root,omitempty"`
	Version string         `json:"version,omitempty"`
	Config  *layout.Config `json:"config,omitempty"`
}

func (m jsonMeta) empty() bool { return m.Root == "" && m.Version == "" && m.Config == nil }

// jsonOutput is the diagram JSON with an optional meta block. The layout
// fields are inlined so the file still reads back with layout.Unmarshal.
type jsonOutput struct {
	layout.Layout
	Meta *jsonMeta `json:"meta,omitempty"`
}

// RenderJSON serializes l as indented diagram JSON.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Layout: l}
	if !r.meta.empty() {
		out.Meta = &r.meta
	}
	if out.Nodes == nil {
		out.Nodes = []layout.Node{}
	}
	if out.Edges == nil {
		out.Edges = []layout.Edge{}
	}
	return json.MarshalIndent(out, "", "  ")
}
