package layout

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// Default layout constants, in diagram units (pixels for the SVG sink).
const (
	DefaultMinNodeWidth    = 150.0
	DefaultCharWidth       = 8.0
	DefaultNodePadding     = 30.0
	DefaultNodeHeight      = 56.0
	DefaultHorizontalGap   = 40.0
	DefaultVerticalSpacing = 120.0
	DefaultMarginLeft      = 50.0
	DefaultMarginTop       = 50.0

	// DefaultMaxDepth bounds how deep a tree the engine accepts before it
	// gives up. Folder walks are far shallower; this only trips on
	// malformed input.
	DefaultMaxDepth = 256
)

// Config holds the fixed constants of a layout run.
//
// Config is passed by value into the engine, so a run always sees one
// consistent set of constants.
type Config struct {
	// MinNodeWidth is the narrowest a node box may be.
	MinNodeWidth float64 `json:"min_node_width" toml:"min_node_width"`
	// CharWidth approximates the rendered width of one label character.
	CharWidth float64 `json:"char_width" toml:"char_width"`
	// NodePadding is added to the estimated text width.
	NodePadding float64 `json:"node_padding" toml:"node_padding"`
	// NodeHeight is the height of every node box.
	NodeHeight float64 `json:"node_height" toml:"node_height"`
	// HorizontalGap separates adjacent sibling subtrees.
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	// VerticalSpacing is the distance between consecutive depth levels.
	VerticalSpacing float64 `json:"vertical_spacing" toml:"vertical_spacing"`
	// MarginLeft and MarginTop offset the whole diagram from the origin.
	MarginLeft float64 `json:"margin_left" toml:"margin_left"`
	MarginTop  float64 `json:"margin_top" toml:"margin_top"`
	// MaxDepth is the deepest tree accepted; deeper or cyclic input fails fast.
	MaxDepth int `json:"max_depth" toml:"max_depth"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{
		MinNodeWidth:    DefaultMinNodeWidth,
		CharWidth:       DefaultCharWidth,
		NodePadding:     DefaultNodePadding,
		NodeHeight:      DefaultNodeHeight,
		HorizontalGap:   DefaultHorizontalGap,
		VerticalSpacing: DefaultVerticalSpacing,
		MarginLeft:      DefaultMarginLeft,
		MarginTop:       DefaultMarginTop,
		MaxDepth:        DefaultMaxDepth,
	}
}

// WithDefaults returns DefaultConfig for the zero Config, which callers use
// to mean "not configured". Any other config keeps its values, zeros
// included, so a zero gap or margin can be set on purpose; only a zero
// MaxDepth falls back to the default guard.
//
// Partial config files should be decoded on top of DefaultConfig instead.
func (c Config) WithDefaults() Config {
	if c == (Config{}) {
		return DefaultConfig()
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// Validate rejects negative or non-finite constants.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"min_node_width", c.MinNodeWidth},
		{"char_width", c.CharWidth},
		{"node_padding", c.NodePadding},
		{"node_height", c.NodeHeight},
		{"horizontal_gap", c.HorizontalGap},
		{"vertical_spacing", c.VerticalSpacing},
		{"margin_left", c.MarginLeft},
		{"margin_top", c.MarginTop},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be finite", f.name)
		}
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s cannot be negative: %v", f.name, f.v)
		}
	}
	if c.MaxDepth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must be at least 1: %d", c.MaxDepth)
	}
	return nil
}

// NodeWidth estimates the box width needed for label.
//
// The estimate is a fixed width per character plus padding, clamped to
// MinNodeWidth. It never consults font metrics, so the same label always
// gets the same width on every machine.
func (c Config) NodeWidth(label string) float64 {
	text := float64(utf8.RuneCountInString(label)) * c.CharWidth
	return math.Max(c.MinNodeWidth, text+c.NodePadding)
}
