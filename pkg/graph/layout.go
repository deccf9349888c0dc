package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

// =============================================================================
// Conversion
// =============================================================================

// FromLayout converts a computed layout into its serialization format.
// Member nodes follow the order of members; junction nodes follow in the
// order they were synthesized. Members missing from l are skipped.
func FromLayout(members []family.Member, l *layout.Layout) Layout {
	out := Layout{
		Nodes:   make([]Node, 0, len(members)+len(l.Junctions)),
		Edges:   make([]Edge, 0, len(l.Edges)),
		Spacing: l.Spacing,
		Offset:  l.Offset,
	}

	for _, m := range members {
		pos, ok := l.Positions[m.ID]
		if !ok {
			continue
		}
		out.Nodes = append(out.Nodes, Node{
			ID:     m.ID,
			Label:  m.Name,
			Kind:   KindMember,
			X:      pos.X,
			Y:      pos.Y,
			Level:  l.Levels[m.ID],
			Custom: l.IsCustom(m.ID),
		})
	}
	for _, j := range l.Junctions {
		out.Nodes = append(out.Nodes, Node{
			ID:    j.ID,
			Kind:  KindJunction,
			X:     j.Position.X,
			Y:     j.Position.Y,
			Level: l.Levels[j.ChildID],
		})
	}
	for _, e := range l.Edges {
		out.Edges = append(out.Edges, Edge{
			ID:           e.ID,
			From:         e.From,
			To:           e.To,
			Kind:         string(e.Kind),
			Label:        e.Label,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}

	out.updateBounds()
	return out
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Move places a member node at (x, y) and marks it custom. Junctions and
// other nodes are not touched. It returns the node as it was before the
// move.
func (l *Layout) Move(id string, x, y float64) (Node, bool) {
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.ID != id || n.IsJunction() {
			continue
		}
		prev := *n
		n.X, n.Y, n.Custom = x, y, true
		l.updateBounds()
		return prev, true
	}
	return Node{}, false
}

// Replace overwrites a node with n, matched by ID. It is used to revert a
// move.
func (l *Layout) Replace(n Node) bool {
	for i := range l.Nodes {
		if l.Nodes[i].ID == n.ID {
			l.Nodes[i] = n
			l.updateBounds()
			return true
		}
	}
	return false
}

// MemberCount returns the number of member nodes.
func (l *Layout) MemberCount() int {
	n := 0
	for _, node := range l.Nodes {
		if !node.IsJunction() {
			n++
		}
	}
	return n
}

func (l *Layout) updateBounds() {
	if len(l.Nodes) == 0 {
		l.MinX, l.MinY, l.Width, l.Height = 0, 0, 0, 0
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range l.Nodes {
		w, h := l.Spacing.NodeWidth, l.Spacing.NodeHeight
		if n.IsJunction() {
			w, h = 0, 0
		}
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X+w)
		maxY = math.Max(maxY, n.Y+h)
	}
	l.MinX, l.MinY = minX, minY
	l.Width, l.Height = maxX-minX, maxY-minY
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Missing spacing falls back to the defaults; node kinds and edge endpoints
// are checked.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if l.Spacing.IsZero() {
		l.Spacing = layout.DefaultSpacing()
	}
	if err := l.validate(); err != nil {
		return Layout{}, err
	}
	l.updateBounds()
	return l, nil
}

func (l *Layout) validate() error {
	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return kerrors.New(kerrors.ErrCodeInvalidFormat, "layout node without id")
		}
		if n.Kind != KindMember && n.Kind != KindJunction {
			return kerrors.New(kerrors.ErrCodeInvalidFormat, "node %s: unknown kind %q", n.ID, n.Kind)
		}
		if ids[n.ID] {
			return kerrors.New(kerrors.ErrCodeInvalidFormat, "duplicate node %s", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range l.Edges {
		if !ids[e.From] || !ids[e.To] {
			return kerrors.New(kerrors.ErrCodeInvalidFormat, "edge %s references unknown node", e.ID)
		}
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
