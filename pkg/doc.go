// Package pkg provides the libraries behind kintree, a family tree layout
// engine.
//
// # Overview
//
// Kintree places the members of a family tree on a canvas: one row per
// generation, spouses side by side, and a junction point under each couple
// from which their children hang. Positions a user dragged are kept as they
// are. The pkg directory is organized as:
//
//  1. [family] - Member records, validation and the bio position codec
//  2. [layout] - The layout engine and the re-layout tracker
//  3. [graph] - Serialization types for members files and computed layouts
//  4. [render] - Graphviz DOT, SVG and PNG output
//  5. [store], [cache], [session] - Persistence of members, results and
//     per-tree layout state
//  6. [pipeline] - Orchestration (load → layout → render) with caching
//  7. [server], [config], [observability] - The HTTP API and its plumbing
//
// # Architecture
//
//	store (sqlite, mongo, supabase, memory)
//	         ↓
//	    [layout] Compute (levels → placement → junctions → edges)
//	         ↓
//	    [graph] Layout (nodes, edges, bounds)
//	         ↓
//	    [render] DOT / SVG / PNG, or JSON for a canvas client
//
// # Quick Start
//
//	members := []family.Member{
//	    {ID: "a", Name: "Arthur"},
//	    {ID: "b", Name: "Beatrice", SpouseID: "a"},
//	    {ID: "c", Name: "Carl", ParentID: "a", Parent2ID: "b"},
//	}
//	l := layout.Compute(members, layout.Options{})
//	out := graph.FromLayout(members, l)
//	svg, err := render.RenderSVG(ctx, render.ToDOT(out, render.Options{}))
//
// For cached runs use [pipeline.Runner]; for the interactive case, where
// layouts are only recomputed when the member set changes, use
// [session.Session].
package pkg
