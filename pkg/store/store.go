package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

// ErrNotFound is returned when a member does not exist.
var ErrNotFound = errors.New("member not found")

// Store persists the members of one family tree.
//
// Implementations must be safe for concurrent use. Concurrent writes to the
// same member are last-write-wins.
type Store interface {
	// List returns every member sorted by name, then ID.
	List(ctx context.Context) ([]family.Member, error)
	// Get returns one member or ErrNotFound.
	Get(ctx context.Context, id string) (family.Member, error)
	// Create stores m under a new UUID and sets CreatedAt. Any ID on m is
	// ignored.
	Create(ctx context.Context, m family.Member) (family.Member, error)
	// Update replaces every field of an existing member or returns
	// ErrNotFound.
	Update(ctx context.Context, m family.Member) error
	// Delete clears every reference to id held by other members, then
	// removes the member. It returns ErrNotFound if id does not exist.
	Delete(ctx context.Context, id string) error
	// SetPosition stores (x, y) and marks the position custom.
	SetPosition(ctx context.Context, id string, x, y float64) error
	// ClearPositions nulls stored positions and custom flags of all members.
	ClearPositions(ctx context.Context) error
	Close() error
}

// sortMembers orders members by name, then ID.
func sortMembers(ms []family.Member) {
	slices.SortStableFunc(ms, func(a, b family.Member) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
