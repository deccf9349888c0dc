package session

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
)

func family3() []family.Member {
	return []family.Member{
		{ID: "ada", Name: "Ada", SpouseID: "ben"},
		{ID: "ben", Name: "Ben"},
		{ID: "cy", Name: "Cy", ParentID: "ada", Parent2ID: "ben"},
	}
}

// countingCompute wraps the engine and counts invocations.
func countingCompute(n *int) LayoutFunc {
	base := Compute(layout.Options{})
	return func(ctx context.Context, ms []family.Member) (*graph.Layout, error) {
		*n++
		return base(ctx, ms)
	}
}

func openTest(t *testing.T, store Store, n *int) *Session {
	t.Helper()
	s, err := Open(context.Background(), store, "default", countingCompute(n))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestRefreshRecomputesOnlyOnMaterialChange(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := openTest(t, NewMemoryStore(), &calls)

	members := family3()
	if _, recomputed, err := s.Refresh(ctx, members); err != nil || !recomputed {
		t.Fatalf("first Refresh: recomputed=%v err=%v", recomputed, err)
	}
	if _, recomputed, _ := s.Refresh(ctx, members); recomputed {
		t.Error("identical snapshot recomputed")
	}

	members[0] = members[0].WithPosition(900, 900)
	if _, recomputed, _ := s.Refresh(ctx, members); recomputed {
		t.Error("position-only change recomputed")
	}

	members = append(members, family.Member{ID: "dee", Name: "Dee", ParentID: "cy"})
	l, recomputed, _ := s.Refresh(ctx, members)
	if !recomputed {
		t.Error("new member did not recompute")
	}
	if l.MemberCount() != 4 {
		t.Errorf("MemberCount = %d, want 4", l.MemberCount())
	}
	if calls != 2 {
		t.Errorf("compute calls = %d, want 2", calls)
	}
}

func TestMovePersistsAndReverts(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := openTest(t, NewMemoryStore(), &calls)

	if err := s.Move(ctx, "ada", 1, 1, nil); !errors.Is(err, ErrNoLayout) {
		t.Errorf("Move before Refresh = %v, want ErrNoLayout", err)
	}

	before, _, err := s.Refresh(ctx, family3())
	if err != nil {
		t.Fatal(err)
	}

	persisted := false
	err = s.Move(ctx, "ada", 500, 500, func(context.Context) error {
		persisted = true
		return nil
	})
	if err != nil || !persisted {
		t.Fatalf("Move: err=%v persisted=%v", err, persisted)
	}
	moved, _ := s.Layout().Node("ada")
	if moved.X != 500 || moved.Y != 500 || !moved.Custom {
		t.Errorf("moved node = %+v", moved)
	}

	failure := errors.New("write failed")
	err = s.Move(ctx, "ada", -40, 7, func(context.Context) error { return failure })
	if !errors.Is(err, failure) {
		t.Fatalf("Move error = %v, want %v", err, failure)
	}
	reverted, _ := s.Layout().Node("ada")
	if reverted != moved {
		t.Errorf("failed move not reverted: %+v, want %+v", reverted, moved)
	}
	if ben, _ := s.Layout().Node("ben"); ben.Custom {
		t.Error("unrelated node marked custom")
	}

	if err := s.Move(ctx, "junction-cy", 0, 0, nil); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("moving a junction = %v, want ErrUnknownNode", err)
	}
	if n, _ := before.Node("ada"); n.Custom {
		t.Error("layout returned by Refresh was mutated by Move")
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	calls := 0
	store := NewMemoryStore()
	s := openTest(t, store, &calls)

	s.Refresh(ctx, family3())
	if err := s.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Layout() != nil {
		t.Error("layout kept after Invalidate")
	}
	if _, err := store.Get(ctx, "default"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stored state after Invalidate: %v", err)
	}
	if _, recomputed, _ := s.Refresh(ctx, family3()); !recomputed {
		t.Error("Refresh after Invalidate did not recompute")
	}
}

func TestStoresRoundTrip(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"cache":  NewCacheStore(fc, 0),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			calls := 0
			s := openTest(t, store, &calls)
			if _, _, err := s.Refresh(ctx, family3()); err != nil {
				t.Fatal(err)
			}
			if err := s.Move(ctx, "cy", 42, 300, nil); err != nil {
				t.Fatal(err)
			}

			// A second process picks up the moved layout without recomputing.
			reopened := openTest(t, store, &calls)
			l, recomputed, err := reopened.Refresh(ctx, family3())
			if err != nil {
				t.Fatal(err)
			}
			if recomputed {
				t.Error("reopened session recomputed an unchanged tree")
			}
			if n, _ := l.Node("cy"); n.X != 42 || n.Y != 300 {
				t.Errorf("cy = (%v,%v), want (42,300)", n.X, n.Y)
			}
			if calls != 1 {
				t.Errorf("compute calls = %d, want 1", calls)
			}
		})
	}
}

func TestFileStoreMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}
