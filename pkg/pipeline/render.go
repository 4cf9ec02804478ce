package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/render"
	"github.com/matzehuels/entitymap/pkg/render/nodelink"
	"github.com/matzehuels/entitymap/pkg/render/sink"
)

// Render produces one artifact per format without touching any cache.
func Render(ctx context.Context, l layout.Layout, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(l)
		}
		return dot
	}

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data = sink.RenderSVG(l)
		case render.FormatJSON:
			data, err = sink.RenderJSON(l)
		case render.FormatDOT:
			data = []byte(dotSource())
		case render.FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dotSource())
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
