// Package render draws computed family-tree layouts.
//
// # Overview
//
// The layout engine already decides where every member and junction goes,
// so rendering never asks Graphviz to lay anything out. [ToDOT] emits DOT
// source with every node pinned (pos="x,y!") and the neato engine, which
// honours pinned positions, draws it:
//
//	dot := render.ToDOT(l, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.RenderPNG(ctx, dot)
//
// # Coordinates
//
// Layout positions are top-left corners with y growing downwards. Graphviz
// positions are node centres with y growing upwards, so ToDOT shifts by half
// a node and negates y. One canvas unit maps to one Graphviz point.
//
// # Styling
//
// Member boxes are sized from the layout's Spacing so drawn boxes match the
// reserved intervals. Custom-positioned members are tinted, junctions are
// small points, parent edges are solid with an arrow into the child, and
// spouse edges are dashed with the ring label.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is needed.
package render
