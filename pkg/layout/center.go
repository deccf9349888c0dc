package layout

import "math"

// center shifts automatic members and all junctions so the automatic
// extent is centred on x = 0. Custom members stay where they are.
func center(l *Layout, a *arena) {
	if len(a.auto) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range a.auto {
		p := l.Positions[a.members[i].ID]
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X+l.Spacing.NodeWidth)
	}
	off := -(hi + lo) / 2
	if off == 0 {
		return
	}
	l.Offset = off

	for _, i := range a.auto {
		id := a.members[i].ID
		p := l.Positions[id]
		p.X += off
		l.Positions[id] = p
	}
	for k := range l.Junctions {
		l.Junctions[k].Position.X += off
	}
	for k := range l.Units {
		l.Units[k].Start += off
		l.Units[k].End += off
	}
	for level, rs := range l.Reservations {
		for k := range rs {
			rs[k].Start += off
			rs[k].End += off
		}
		l.Reservations[level] = rs
	}
}
