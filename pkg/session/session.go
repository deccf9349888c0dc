// Package session keeps per-tree editing state between layout requests.
//
// A tree editor fetches the member list repeatedly, for example after each
// drag. Recomputing the layout on every fetch would throw away positions the
// user has just moved on screen, so a [Session] only recomputes when the
// member set changes materially (see [layout.Tracker]). Between recomputes
// it serves the cached [graph.Layout] and applies successful drags to it in
// place.
//
// # Storage
//
// Session state is persisted through a [Store]:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [FileStore]: JSON files, for the CLI
//   - [CacheStore]: any [cache.Cache], e.g. Redis for multi-instance servers
//
// # Usage
//
//	sess, err := session.Open(ctx, store, "default", nil)
//	if err != nil {
//	    return err
//	}
//	l, recomputed, err := sess.Refresh(ctx, members)
//
//	// After the user drops a node:
//	err = sess.Move(ctx, id, x, y, func(ctx context.Context) error {
//	    return svc.UpdateMemberPosition(ctx, id, x, y, actor)
//	})
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned by stores when no state exists for a tree.
	ErrNotFound = errors.New("session not found")

	// ErrNoLayout is returned by Move before the first Refresh.
	ErrNoLayout = errors.New("no layout computed yet")

	// ErrUnknownNode is returned by Move for IDs that are not member nodes.
	ErrUnknownNode = errors.New("unknown member node")
)

// DefaultTTL bounds how long cache-backed state is kept without activity.
const DefaultTTL = 30 * 24 * time.Hour

// State is the persisted form of a session.
type State struct {
	Tree      string              `json:"tree"`
	Tracker   layout.TrackerState `json:"tracker"`
	Layout    *graph.Layout       `json:"layout,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store is the interface for session state backends.
type Store interface {
	// Get returns the state for tree or ErrNotFound.
	Get(ctx context.Context, tree string) (*State, error)
	// Set stores st under st.Tree.
	Set(ctx context.Context, st *State) error
	// Delete removes the state for tree. Missing state is not an error.
	Delete(ctx context.Context, tree string) error
	Close() error
}

// LayoutFunc computes a layout for a member snapshot.
type LayoutFunc func(ctx context.Context, members []family.Member) (*graph.Layout, error)

// Compute returns a LayoutFunc that runs the layout engine directly.
func Compute(opts layout.Options) LayoutFunc {
	return func(_ context.Context, members []family.Member) (*graph.Layout, error) {
		out := graph.FromLayout(members, layout.Compute(members, opts))
		return &out, nil
	}
}

// Session is the editing state of one tree. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	tree    string
	store   Store
	compute LayoutFunc
	tracker *layout.Tracker
	layout  *graph.Layout
	now     func() time.Time
}

// Open loads the state of tree from store, or starts empty if none exists.
// A nil compute uses the engine with default options.
func Open(ctx context.Context, store Store, tree string, compute LayoutFunc) (*Session, error) {
	if compute == nil {
		compute = Compute(layout.Options{})
	}
	s := &Session{
		tree:    tree,
		store:   store,
		compute: compute,
		tracker: layout.NewTracker(),
		now:     time.Now,
	}
	st, err := store.Get(ctx, tree)
	switch {
	case errors.Is(err, ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load session %s: %w", tree, err)
	}
	if st.Layout != nil {
		s.tracker = layout.RestoreTracker(st.Tracker)
		s.layout = st.Layout
	}
	return s, nil
}

// Tree returns the tree name.
func (s *Session) Tree() string { return s.tree }

// Layout returns a copy of the current layout, or nil before the first
// Refresh.
func (s *Session) Layout() *graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.layout)
}

// Refresh returns the layout for members. It recomputes only when the
// member set changed materially since the last accepted snapshot;
// otherwise the cached layout, including moves applied since, is returned.
func (s *Session) Refresh(ctx context.Context, members []family.Member) (*graph.Layout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout != nil && !s.tracker.Changed(members) {
		return clone(s.layout), false, nil
	}

	l, err := s.compute(ctx, members)
	if err != nil {
		return nil, false, err
	}
	s.layout = l
	s.tracker.Accept(members)
	if err := s.save(ctx); err != nil {
		return nil, true, err
	}
	return clone(s.layout), true, nil
}

// Move places member id at (x, y) in the cached layout and then calls
// persist. If persist fails, the node is restored to its previous position
// and the error is returned; other nodes are never touched.
func (s *Session) Move(ctx context.Context, id string, x, y float64, persist func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil {
		return ErrNoLayout
	}
	prev, ok := s.layout.Move(id, x, y)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if persist != nil {
		if err := persist(ctx); err != nil {
			s.layout.Replace(prev)
			return err
		}
	}
	return s.save(ctx)
}

// Invalidate drops the cached layout so the next Refresh recomputes. Use
// it after changes the tracker cannot see, such as a layout reset.
func (s *Session) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset()
	s.layout = nil
	return s.store.Delete(ctx, s.tree)
}

func (s *Session) save(ctx context.Context) error {
	st := &State{
		Tree:      s.tree,
		Tracker:   s.tracker.State(),
		Layout:    s.layout,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Set(ctx, st); err != nil {
		return fmt.Errorf("save session %s: %w", s.tree, err)
	}
	return nil
}

func clone(l *graph.Layout) *graph.Layout {
	if l == nil {
		return nil
	}
	out := *l
	out.Nodes = append([]graph.Node(nil), l.Nodes...)
	out.Edges = append([]graph.Edge(nil), l.Edges...)
	return &out
}
