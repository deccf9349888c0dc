package layout

// assignLevels returns the generation of every automatic member, indexed by
// arena position. Non-automatic entries are left at zero.
//
// Each root starts a depth-first walk. A child is descended into only when
// the walk raises its level, so a member reachable along several paths ends
// at the deepest of them. Members already on the current path are skipped,
// which cuts parent cycles. Automatic members no walk reaches stay at 0.
func (a *arena) assignLevels() []int {
	n := len(a.members)
	children := a.childIndex()

	level := make([]int, n)
	for i := range level {
		level[i] = -1
	}

	type frame struct{ node, next int }
	onPath := make([]bool, n)
	var stack []frame

	for _, r := range a.auto {
		if !a.members[r].IsRoot() {
			continue
		}
		if level[r] < 0 {
			level[r] = 0
		}
		stack = append(stack[:0], frame{node: r})
		onPath[r] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := children[top.node]
			if top.next >= len(kids) {
				onPath[top.node] = false
				stack = stack[:len(stack)-1]
				continue
			}
			c := kids[top.next]
			top.next++

			want := level[top.node] + 1
			if onPath[c] || level[c] >= want {
				continue
			}
			level[c] = want
			onPath[c] = true
			stack = append(stack, frame{node: c})
		}
	}

	for _, i := range a.auto {
		if level[i] < 0 {
			level[i] = 0
		}
	}

	// Spouses share the deeper row.
	for _, i := range a.auto {
		j, ok := a.resolveAuto(a.members[i].SpouseID)
		if !ok {
			continue
		}
		deeper := max(level[i], level[j])
		level[i], level[j] = deeper, deeper
	}

	for i := range level {
		if level[i] < 0 {
			level[i] = 0
		}
	}
	return level
}

// childIndex lists, for every automatic member, the automatic members that
// name it as a parent, in arena order.
func (a *arena) childIndex() [][]int {
	children := make([][]int, len(a.members))
	for _, c := range a.auto {
		m := a.members[c]
		if p, ok := a.resolveAuto(m.ParentID); ok {
			children[p] = append(children[p], c)
		}
		if m.Parent2ID != m.ParentID {
			if p, ok := a.resolveAuto(m.Parent2ID); ok {
				children[p] = append(children[p], c)
			}
		}
	}
	return children
}

// generations buckets automatic members by level, keeping arena order.
// The result is indexed by level from 0 to the deepest level.
func (a *arena) generations(level []int) [][]int {
	deepest := 0
	for _, i := range a.auto {
		deepest = max(deepest, level[i])
	}
	gens := make([][]int, deepest+1)
	for _, i := range a.auto {
		gens[level[i]] = append(gens[level[i]], i)
	}
	return gens
}
