package layout

import (
	"cmp"
	"slices"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Order selects the member order used for tie-breaking during placement.
type Order string

const (
	// OrderInput keeps the caller's order.
	OrderInput Order = ""
	// OrderID sorts members by ID.
	OrderID Order = "id"
	// OrderName sorts members by name, then ID.
	OrderName Order = "name"
)

// ParseOrder converts a flag or config value into an Order.
// "input" and the empty string both mean OrderInput.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "input":
		return OrderInput, nil
	case string(OrderID):
		return OrderID, nil
	case string(OrderName):
		return OrderName, nil
	}
	return OrderInput, kerrors.New(kerrors.ErrCodeInvalidInput, "invalid order: %q (must be one of: input, id, name)", s)
}

// String returns the flag spelling of the order.
func (o Order) String() string {
	if o == OrderInput {
		return "input"
	}
	return string(o)
}

// Apply returns members in this order. The input slice is never modified.
func (o Order) Apply(members []family.Member) []family.Member {
	out := slices.Clone(members)
	switch o {
	case OrderID:
		slices.SortStableFunc(out, func(a, b family.Member) int { return cmp.Compare(a.ID, b.ID) })
	case OrderName:
		slices.SortStableFunc(out, func(a, b family.Member) int {
			if c := cmp.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return out
}
