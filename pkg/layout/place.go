package layout

import (
	"github.com/matzehuels/kintree/pkg/family"
)

// units groups one generation into family units. A member is paired with
// its partner when the partner is in the same generation and not yet taken.
// Partners are matched in both directions, so a spouse reference recorded
// on only one side still pairs the two members.
func (a *arena) units(gen []int, level []int) [][]int {
	partner := a.partners()
	taken := make(map[int]bool, len(gen))
	var out [][]int
	for _, i := range gen {
		if taken[i] {
			continue
		}
		taken[i] = true
		if j, ok := partner[i]; ok && !taken[j] && level[j] == level[i] {
			taken[j] = true
			out = append(out, []int{i, j})
			continue
		}
		out = append(out, []int{i})
	}
	return out
}

// partners maps every automatic member with a resolvable automatic spouse
// to that spouse. A member's own SpouseID wins; otherwise the first member
// that names it as spouse is used.
func (a *arena) partners() map[int]int {
	if a.partner != nil {
		return a.partner
	}
	p := make(map[int]int)
	for _, i := range a.auto {
		if j, ok := a.resolveAuto(a.members[i].SpouseID); ok && j != i {
			p[i] = j
		}
	}
	for _, i := range a.auto {
		if j, ok := a.resolveAuto(a.members[i].SpouseID); ok && j != i {
			if _, has := p[j]; !has {
				p[j] = i
			}
		}
	}
	a.partner = p
	return p
}

type placer struct {
	layout  *Layout
	arena   *arena
	spacing Spacing
}

// place positions one unit on a row and reserves its interval.
func (p *placer) place(unit []int, level int) {
	width := p.spacing.UnitWidth(len(unit))
	start := p.nextFree(level)

	first := p.arena.members[unit[0]]
	if level > 0 && !first.IsRoot() {
		if cx, ok := p.parentCenter(first); ok {
			ideal := cx - width/2
			if !p.overlaps(level, ideal, ideal+width) {
				start = ideal
			}
		}
	}

	y := p.spacing.rowY(level)
	ids := make([]string, len(unit))
	for k, i := range unit {
		id := p.arena.members[i].ID
		ids[k] = id
		p.layout.Positions[id] = family.Position{X: start + float64(k)*p.spacing.memberStep(), Y: y}
	}

	l := p.layout
	l.Reservations[level] = append(l.Reservations[level], Reservation{Level: level, Start: start, End: start + width})
	l.Units = append(l.Units, Unit{Level: level, Members: ids, Start: start, End: start + width})
}

// nextFree returns the start of the first slot right of every reservation
// on the row, or 0 for an empty row.
func (p *placer) nextFree(level int) float64 {
	rs := p.layout.Reservations[level]
	if len(rs) == 0 {
		return 0
	}
	end := rs[0].End
	for _, r := range rs[1:] {
		end = max(end, r.End)
	}
	return end + p.spacing.HorizontalGap
}

func (p *placer) overlaps(level int, start, end float64) bool {
	for _, r := range p.layout.Reservations[level] {
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// parentCenter averages the box centres of every parent that already has a
// position, custom or placed earlier in this pass.
func (p *placer) parentCenter(m family.Member) (float64, bool) {
	var sum float64
	var n int
	for _, id := range m.ParentIDs() {
		pos, ok := p.layout.Positions[id]
		if !ok {
			continue
		}
		sum += pos.X + p.spacing.NodeWidth/2
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
