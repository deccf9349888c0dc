package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
)

// backends returns a fresh instance of every store that runs without
// external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "tree.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func mustCreate(t *testing.T, s Store, m family.Member) family.Member {
	t.Helper()
	created, err := s.Create(context.Background(), m)
	if err != nil {
		t.Fatalf("Create(%s): %v", m.Name, err)
	}
	return created
}

func TestStoreCreateGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := family.Member{ID: "ignored", Name: "Ada", BirthDate: "1815-12-10", Gender: family.GenderFemale,
				Location: "London", AddedBy: "ada@example.com"}
			created := mustCreate(t, s, in)
			if created.ID == "" || created.ID == "ignored" {
				t.Errorf("Create ID = %q, want fresh UUID", created.ID)
			}
			if created.CreatedAt.IsZero() {
				t.Error("Create did not set CreatedAt")
			}

			got, err := s.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Name != "Ada" || got.Location != "London" || got.BirthDate != "1815-12-10" {
				t.Errorf("Get = %+v", got)
			}
			if !got.CreatedAt.Equal(created.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
			}
			if _, ok := got.StoredPosition(); ok {
				t.Error("new member has a stored position")
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreListOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"Cy", "Ada", "Ben", "Ada"} {
				mustCreate(t, s, family.Member{Name: n})
			}
			ms, err := s.List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(ms) != 4 {
				t.Fatalf("List len = %d, want 4", len(ms))
			}
			want := []string{"Ada", "Ada", "Ben", "Cy"}
			for i, m := range ms {
				if m.Name != want[i] {
					t.Errorf("List[%d] = %s, want %s", i, m.Name, want[i])
				}
			}
			if ms[0].ID > ms[1].ID {
				t.Errorf("equal names not ordered by id: %s > %s", ms[0].ID, ms[1].ID)
			}
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := mustCreate(t, s, family.Member{Name: "Ada"})
			b := mustCreate(t, s, family.Member{Name: "Ben"})

			b.ParentID = a.ID
			b.Bio = "engineer"
			if err := s.Update(ctx, b); err != nil {
				t.Fatalf("Update: %v", err)
			}
			got, _ := s.Get(ctx, b.ID)
			if got.ParentID != a.ID || got.Bio != "engineer" {
				t.Errorf("after Update = %+v", got)
			}

			if err := s.Update(ctx, family.Member{ID: "nope", Name: "X"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreDeleteClearsReferences(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := mustCreate(t, s, family.Member{Name: "Ada"})
			b := mustCreate(t, s, family.Member{Name: "Ben", SpouseID: a.ID})
			c := mustCreate(t, s, family.Member{Name: "Cy", ParentID: b.ID, Parent2ID: a.ID})

			if err := s.Delete(ctx, a.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("deleted member still present: %v", err)
			}
			gotB, _ := s.Get(ctx, b.ID)
			if gotB.SpouseID != "" {
				t.Errorf("Ben.SpouseID = %q, want cleared", gotB.SpouseID)
			}
			gotC, _ := s.Get(ctx, c.ID)
			if gotC.ParentID != b.ID || gotC.Parent2ID != "" {
				t.Errorf("Cy parents = %q/%q, want %q/\"\"", gotC.ParentID, gotC.Parent2ID, b.ID)
			}

			if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStorePositions(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := mustCreate(t, s, family.Member{Name: "Ada"})
			b := mustCreate(t, s, family.Member{Name: "Ben"})

			if err := s.SetPosition(ctx, a.ID, 500, -25.5); err != nil {
				t.Fatalf("SetPosition: %v", err)
			}
			got, _ := s.Get(ctx, a.ID)
			if !got.HasCustomPosition() || *got.PositionX != 500 || *got.PositionY != -25.5 {
				t.Errorf("after SetPosition = %+v", got)
			}
			if err := s.SetPosition(ctx, "nope", 1, 1); !errors.Is(err, ErrNotFound) {
				t.Errorf("SetPosition(missing) error = %v, want ErrNotFound", err)
			}

			if err := s.ClearPositions(ctx); err != nil {
				t.Fatalf("ClearPositions: %v", err)
			}
			for _, id := range []string{a.ID, b.ID} {
				m, _ := s.Get(ctx, id)
				if m.CustomPosition || m.PositionX != nil || m.PositionY != nil {
					t.Errorf("%s still has a position after ClearPositions", m.Name)
				}
			}
		})
	}
}

func TestMemoryStoreSeedKeepsIDs(t *testing.T) {
	s := NewMemoryStore(family.Member{ID: "a", Name: "Ada"})
	if _, err := s.Get(context.Background(), "a"); err != nil {
		t.Errorf("seeded member not found: %v", err)
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tree.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	a := mustCreate(t, s, family.Member{Name: "Ada"})
	if err := s.SetPosition(ctx, a.ID, 10, 20); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if p, ok := got.StoredPosition(); !ok || p.X != 10 || p.Y != 20 {
		t.Errorf("position after reopen = %v %v", p, ok)
	}
}
