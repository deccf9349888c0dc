package graph

import (
	"github.com/matzehuels/kintree/pkg/layout"
)

// Node kinds.
const (
	KindMember   = "member"
	KindJunction = "junction"
)

// =============================================================================
// Layout - Computed Tree Serialization
// =============================================================================

// Layout is the serialization format for a computed family tree.
//
// Node positions are top-left corners in canvas units. Member boxes are
// Spacing.NodeWidth by Spacing.NodeHeight; junctions are points. MinX/MinY
// and Width/Height describe the bounding box of everything drawn.
type Layout struct {
	Nodes   []Node         `json:"nodes" bson:"nodes"`
	Edges   []Edge         `json:"edges" bson:"edges"`
	Spacing layout.Spacing `json:"spacing" bson:"spacing"`

	MinX   float64 `json:"min_x" bson:"min_x"`
	MinY   float64 `json:"min_y" bson:"min_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Offset is the horizontal shift applied when centering.
	Offset float64 `json:"offset,omitempty" bson:"offset,omitempty"`
}

// =============================================================================
// Node - Positioned Member or Junction
// =============================================================================

// Node is a positioned element of a layout.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Kind   string  `json:"kind" bson:"kind"`                       // "member" or "junction"
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Level  int     `json:"level" bson:"level"`                       // Generation; 0 for custom members
	Custom bool    `json:"custom,omitempty" bson:"custom,omitempty"` // Position came from storage
}

// IsJunction returns true if this is a synthetic junction point.
func (n *Node) IsJunction() bool { return n.Kind == KindJunction }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Connector
// =============================================================================

// Edge is a connector between two nodes.
type Edge struct {
	ID           string `json:"id" bson:"id"`
	From         string `json:"from" bson:"from"`
	To           string `json:"to" bson:"to"`
	Kind         string `json:"kind" bson:"kind"`
	Label        string `json:"label,omitempty" bson:"label,omitempty"`
	SourceHandle string `json:"source_handle,omitempty" bson:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty" bson:"target_handle,omitempty"`
}

// IsSpouse returns true for marriage connectors.
func (e *Edge) IsSpouse() bool { return e.Kind == string(layout.EdgeSpouse) }
