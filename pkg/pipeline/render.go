package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/render"
)

// RenderFromLayout generates output artifacts in the requested formats.
// DOT source is built once and shared by the Graphviz formats.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = render.ToDOT(l, render.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case render.FormatJSON:
			data, err = graph.MarshalLayout(l)
		case render.FormatDOT:
			data = []byte(dotSource())
		case render.FormatSVG:
			data, err = render.RenderSVG(ctx, dotSource())
		case render.FormatPNG:
			data, err = render.RenderPNG(ctx, dotSource())
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
