package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/entitymap/pkg/errors"
)

func TestNodeWidth(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{"empty", "", DefaultMinNodeWidth},
		{"short clamps to minimum", "src", DefaultMinNodeWidth},
		{"at threshold", strings.Repeat("x", 15), DefaultMinNodeWidth},
		{"just above threshold", strings.Repeat("x", 16), 16*DefaultCharWidth + DefaultNodePadding},
		{"long", strings.Repeat("x", 40), 40*DefaultCharWidth + DefaultNodePadding},
		{"counts runes not bytes", strings.Repeat("日", 20), 20*DefaultCharWidth + DefaultNodePadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.NodeWidth(tt.label))
		})
	}
}

func TestNodeWidthMonotone(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), {MinNodeWidth: 0, CharWidth: 3, NodePadding: 0}} {
		prev := math.Inf(-1)
		for n := 0; n <= 80; n++ {
			w := cfg.NodeWidth(strings.Repeat("m", n))
			assert.GreaterOrEqual(t, w, prev, "width decreased at length %d", n)
			assert.GreaterOrEqual(t, w, cfg.MinNodeWidth)
			prev = w
		}
	}
}

func TestNodeWidthDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	label := "a-rather-long-folder-name"
	assert.Equal(t, cfg.NodeWidth(label), cfg.NodeWidth(label))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min width", func(c *Config) { c.MinNodeWidth = -1 }},
		{"negative gap", func(c *Config) { c.HorizontalGap = -0.5 }},
		{"NaN spacing", func(c *Config) { c.VerticalSpacing = math.NaN() }},
		{"infinite margin", func(c *Config) { c.MarginLeft = math.Inf(1) }},
		{"zero max depth", func(c *Config) { c.MaxDepth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), Config{}.WithDefaults())

	tight := DefaultConfig()
	tight.HorizontalGap = 0
	tight.MarginLeft = 0
	tight.MarginTop = 0
	assert.Equal(t, tight, tight.WithDefaults(), "explicit zeros are kept")

	noGuard := DefaultConfig()
	noGuard.MaxDepth = 0
	assert.Equal(t, DefaultMaxDepth, noGuard.WithDefaults().MaxDepth)
}

func TestIDAllocator(t *testing.T) {
	var a IDAllocator
	assert.Equal(t, 0, a.Next())
	assert.Equal(t, 1, a.Next())
	assert.Equal(t, "node-2", a.NextNodeID())
	assert.Equal(t, 3, a.Issued())

	assert.Equal(t, "node-7", NodeID(7))
	assert.Equal(t, "edge-node-0-node-3", EdgeID("node-0", "node-3"))
}
