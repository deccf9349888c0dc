package layout

import (
	"slices"
	"sync"

	"github.com/matzehuels/kintree/pkg/family"
)

// Tracker remembers the member set the current layout was computed from and
// reports when a new snapshot needs a fresh layout. Position updates on
// known members do not count as a change. A Tracker is safe for concurrent
// use.
type Tracker struct {
	mu    sync.Mutex
	init  bool
	count int
	known map[string]struct{}
}

// TrackerState is the serializable form of a Tracker.
type TrackerState struct {
	Initialized bool     `json:"initialized"`
	Count       int      `json:"count"`
	Known       []string `json:"known,omitempty"`
}

// NewTracker returns an uninitialized tracker; its first Changed call
// reports true.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[string]struct{})}
}

// Changed reports whether members differs materially from the accepted
// snapshot: the tracker was never initialized, the count differs, or an ID
// appears that was not seen before.
func (t *Tracker) Changed(members []family.Member) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.init || len(members) != t.count {
		return true
	}
	for _, m := range members {
		if _, ok := t.known[m.ID]; !ok {
			return true
		}
	}
	return false
}

// Accept records members as the snapshot the current layout reflects.
func (t *Tracker) Accept(members []family.Member) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.init = true
	t.count = len(members)
	t.known = make(map[string]struct{}, len(members))
	for _, m := range members {
		t.known[m.ID] = struct{}{}
	}
}

// Observe accepts members if they changed and reports whether they did.
func (t *Tracker) Observe(members []family.Member) bool {
	if !t.Changed(members) {
		return false
	}
	t.Accept(members)
	return true
}

// Reset forgets the accepted snapshot.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.init = false
	t.count = 0
	t.known = make(map[string]struct{})
}

// State exports the tracker for persistence. Known IDs are sorted.
func (t *Tracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.known))
	for id := range t.known {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return TrackerState{Initialized: t.init, Count: t.count, Known: ids}
}

// RestoreTracker rebuilds a tracker from a persisted state.
func RestoreTracker(s TrackerState) *Tracker {
	t := NewTracker()
	t.init = s.Initialized
	t.count = s.Count
	for _, id := range s.Known {
		t.known[id] = struct{}{}
	}
	return t
}
