package layout

import (
	"github.com/matzehuels/kintree/pkg/family"
)

// connect synthesizes junctions and builds the edge list. Edges come in
// three groups, in member order within each: two-parent junction edges,
// single-parent edges, then spouse edges. Any edge whose endpoint has no
// position is dropped.
func connect(l *Layout, a *arena) {
	var single []family.Member

	for _, child := range a.members {
		switch {
		case child.HasBothParents() && child.ParentID != child.Parent2ID:
			p1, ok1 := l.Positions[child.ParentID]
			p2, ok2 := l.Positions[child.Parent2ID]
			switch {
			case ok1 && ok2:
				junction(l, child, p1, p2)
			case ok1:
				single = append(single, child.Unlink(child.Parent2ID))
			case ok2:
				single = append(single, child.Unlink(child.ParentID))
			}
		case !child.IsRoot():
			single = append(single, child)
		}
	}

	for _, child := range single {
		from := child.ParentID
		if from == "" {
			from = child.Parent2ID
		}
		if !l.hasEdgeEnds(from, child.ID) {
			continue
		}
		l.Edges = append(l.Edges, Edge{
			ID:           from + "-" + child.ID,
			From:         from,
			To:           child.ID,
			Kind:         EdgeParent,
			SourceHandle: HandleBottom,
			TargetHandle: HandleTop,
		})
	}

	spouses(l, a)
}

func junction(l *Layout, child family.Member, p1, p2 family.Position) {
	sp := l.Spacing
	cp, ok := l.Positions[child.ID]
	if !ok {
		return
	}
	j := Junction{
		ID:      JunctionPrefix + child.ID,
		ChildID: child.ID,
		Parents: [2]string{child.ParentID, child.Parent2ID},
		Position: family.Position{
			X: (p1.X + p2.X + sp.NodeWidth) / 2,
			Y: cp.Y - sp.JunctionOffset,
		},
	}
	l.Junctions = append(l.Junctions, j)

	for k, pid := range j.Parents {
		pos := p1
		if k == 1 {
			pos = p2
		}
		handle := HandleRight
		if pos.X < j.Position.X {
			handle = HandleLeft
		}
		l.Edges = append(l.Edges, Edge{
			ID:           pid + "-" + j.ID,
			From:         pid,
			To:           j.ID,
			Kind:         EdgeParentJunction,
			SourceHandle: HandleBottom,
			TargetHandle: handle,
		})
	}
	l.Edges = append(l.Edges, Edge{
		ID:           j.ID + "-" + child.ID,
		From:         j.ID,
		To:           child.ID,
		Kind:         EdgeJunctionChild,
		SourceHandle: HandleBottom,
		TargetHandle: HandleTop,
	})
}

// spouses emits one edge per unordered spouse pair, running left to right.
func spouses(l *Layout, a *arena) {
	done := make(map[string]bool)
	for _, m := range a.members {
		s := m.SpouseID
		if s == "" || s == m.ID || done[m.ID] || done[s] {
			continue
		}
		if !l.hasEdgeEnds(m.ID, s) {
			continue
		}
		// The member goes left only when strictly left of its spouse.
		left, right := s, m.ID
		if l.Positions[m.ID].X < l.Positions[s].X {
			left, right = m.ID, s
		}
		l.Edges = append(l.Edges, Edge{
			ID:           "spouse-" + left + "-" + right,
			From:         left,
			To:           right,
			Kind:         EdgeSpouse,
			SourceHandle: HandleRight,
			TargetHandle: HandleLeft,
			Label:        SpouseLabel,
		})
		done[m.ID] = true
		done[s] = true
	}
}

func (l *Layout) hasEdgeEnds(from, to string) bool {
	if from == to {
		return false
	}
	_, okFrom := l.Positions[from]
	_, okTo := l.Positions[to]
	return okFrom && okTo
}
