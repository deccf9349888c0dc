package layout

import (
	"github.com/matzehuels/kintree/pkg/family"
)

// EdgeKind distinguishes the connectors a renderer draws.
type EdgeKind string

const (
	// EdgeParent connects a single parent directly to a child.
	EdgeParent EdgeKind = "parent"
	// EdgeParentJunction connects one of two parents to their junction.
	EdgeParentJunction EdgeKind = "parent_junction"
	// EdgeJunctionChild connects a junction to the shared child.
	EdgeJunctionChild EdgeKind = "junction_child"
	// EdgeSpouse is the marriage connector between a left and right spouse.
	EdgeSpouse EdgeKind = "spouse"
)

// Connector handles, matching the sides of a member box.
const (
	HandleTop    = "top"
	HandleBottom = "bottom"
	HandleLeft   = "left"
	HandleRight  = "right"
)

// SpouseLabel is the label placed on marriage connectors.
const SpouseLabel = "💍"

// JunctionPrefix prefixes synthetic junction IDs; the child ID follows.
const JunctionPrefix = "junction-"

// Options configures Compute. The zero value uses DefaultSpacing and the
// caller's member order.
type Options struct {
	Spacing Spacing
	Order   Order
}

func (o Options) spacing() Spacing {
	if o.Spacing.IsZero() {
		return DefaultSpacing()
	}
	return o.Spacing
}

// Unit is a family unit: one member or a spouse pair occupying one
// contiguous interval of a row.
type Unit struct {
	Level   int      `json:"level"`
	Members []string `json:"members"`
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
}

// Reservation is an occupied interval [Start, End) on a row.
type Reservation struct {
	Level int     `json:"level"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Overlaps reports whether the interval [start, end) intersects r.
func (r Reservation) Overlaps(start, end float64) bool {
	return start < r.End && end > r.Start
}

// Junction is a synthetic point where the edges of two parents meet before
// continuing to their shared child.
type Junction struct {
	ID       string          `json:"id"`
	ChildID  string          `json:"child_id"`
	Parents  [2]string       `json:"parents"`
	Position family.Position `json:"position"`
}

// Edge is a connector between two members or a member and a junction.
type Edge struct {
	ID           string   `json:"id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Kind         EdgeKind `json:"kind"`
	SourceHandle string   `json:"source_handle,omitempty"`
	TargetHandle string   `json:"target_handle,omitempty"`
	Label        string   `json:"label,omitempty"`
}

// Layout is the result of Compute.
type Layout struct {
	// Spacing is the spacing the layout was computed with.
	Spacing Spacing
	// Positions holds the top-left corner of every member box.
	Positions map[string]family.Position
	// Custom marks members whose position came from storage.
	Custom map[string]bool
	// Levels holds the generation of every automatically placed member.
	Levels map[string]int
	// Units lists placed family units in placement order.
	Units []Unit
	// Reservations lists occupied intervals per level.
	Reservations map[int][]Reservation
	Junctions    []Junction
	Edges        []Edge
	// Offset is the horizontal shift applied while centering.
	Offset float64
}

func newLayout(sp Spacing, n int) *Layout {
	return &Layout{
		Spacing:      sp,
		Positions:    make(map[string]family.Position, n),
		Custom:       make(map[string]bool),
		Levels:       make(map[string]int, n),
		Reservations: make(map[int][]Reservation),
	}
}

// Position returns the position of a member or junction.
func (l *Layout) Position(id string) (family.Position, bool) {
	if p, ok := l.Positions[id]; ok {
		return p, true
	}
	for _, j := range l.Junctions {
		if j.ID == id {
			return j.Position, true
		}
	}
	return family.Position{}, false
}

// IsCustom reports whether a member kept its stored position.
func (l *Layout) IsCustom(id string) bool { return l.Custom[id] }

// Pin moves a member to p and marks it custom, as happens after a drag.
// Other members, junctions and edges are left untouched. It returns the
// previous position and whether the member exists in the layout.
func (l *Layout) Pin(id string, p family.Position) (family.Position, bool) {
	prev, ok := l.Positions[id]
	if !ok {
		return family.Position{}, false
	}
	l.Positions[id] = p
	l.Custom[id] = true
	return prev, true
}

// Restore puts a member back at p with the given custom flag. It is used to
// revert a failed drag.
func (l *Layout) Restore(id string, p family.Position, custom bool) {
	if _, ok := l.Positions[id]; !ok {
		return
	}
	l.Positions[id] = p
	if custom {
		l.Custom[id] = true
	} else {
		delete(l.Custom, id)
	}
}

// Compute lays out members. See the package documentation for the passes.
func Compute(members []family.Member, opts Options) *Layout {
	sp := opts.spacing()
	a := newArena(opts.Order.Apply(members))
	l := newLayout(sp, len(a.members))

	for i, m := range a.members {
		if a.isAuto[i] {
			continue
		}
		pos, _ := m.StoredPosition()
		l.Positions[m.ID] = pos
		l.Custom[m.ID] = true
	}

	if len(a.auto) > 0 {
		levels := a.assignLevels()
		p := placer{layout: l, arena: a, spacing: sp}
		for level, gen := range a.generations(levels) {
			for _, unit := range a.units(gen, levels) {
				p.place(unit, level)
			}
		}
		for _, i := range a.auto {
			l.Levels[a.members[i].ID] = levels[i]
		}
	}

	connect(l, a)
	center(l, a)
	return l
}

// arena indexes a member snapshot by slice position.
type arena struct {
	members []family.Member
	index   map[string]int
	auto    []int
	isAuto  []bool
	partner map[int]int
}

func newArena(members []family.Member) *arena {
	a := &arena{
		members: members,
		index:   family.Index(members),
		isAuto:  make([]bool, len(members)),
	}
	for i, m := range members {
		if !m.HasCustomPosition() {
			a.isAuto[i] = true
			a.auto = append(a.auto, i)
		}
	}
	return a
}

func (a *arena) resolve(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	i, ok := a.index[id]
	return i, ok
}

func (a *arena) resolveAuto(id string) (int, bool) {
	i, ok := a.resolve(id)
	if !ok || !a.isAuto[i] {
		return 0, false
	}
	return i, true
}
