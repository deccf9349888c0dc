// Package graph provides serialization types for member files and layouts.
//
// This package defines the canonical wire format for kintree's tree data,
// used for JSON files, API responses, caching and the Graphviz renderer.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Layout], [Node], [Edge]: Serialization types (this package)
//   - pkg/family.Member: Member records
//   - pkg/layout.Layout: Internal layout (positions, units, reservations)
//
// Use [FromLayout] to convert a computed layout into its wire form.
//
// # Members Files
//
// Member snapshots are plain JSON, either a bare array or an object with a
// "members" key:
//
//	{
//	  "members": [
//	    {"id": "ada", "name": "Ada", "spouse_id": "ben"},
//	    {"id": "ben", "name": "Ben", "spouse_id": "ada"},
//	    {"id": "cy", "name": "Cy", "parent_id": "ada", "parent2_id": "ben"}
//	  ]
//	}
//
// Common operations:
//
//	members, _ := graph.ReadMembersFile("members.json")
//	graph.WriteMembersFile(members, "out.json")
//	data, _ := graph.MarshalMembers(members)  // canonical bytes for hashing
//
// # Layout Serialization
//
// A layout lists member and junction nodes with their top-left positions,
// the edges between them, the spacing used, and the bounding box:
//
//	l := graph.FromLayout(members, computed)
//	graph.WriteLayoutFile(l, "layout.json")
//	parsed, _ := graph.ReadLayoutFile("layout.json")
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
