package layout

import (
	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// Default spacing values in canvas units.
const (
	DefaultNodeWidth      = 180.0
	DefaultNodeHeight     = 100.0
	DefaultHorizontalGap  = 120.0
	DefaultVerticalGap    = 200.0
	DefaultSpouseGap      = 60.0
	DefaultJunctionOffset = 100.0
)

// Spacing holds the node size and gap constants used for placement.
// Renderers should size nodes from the same values so that drawn boxes match
// the reserved intervals.
type Spacing struct {
	NodeWidth      float64 `json:"node_width" toml:"node_width"`
	NodeHeight     float64 `json:"node_height" toml:"node_height"`
	HorizontalGap  float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	VerticalGap    float64 `json:"vertical_gap" toml:"vertical_gap"`
	SpouseGap      float64 `json:"spouse_gap" toml:"spouse_gap"`
	JunctionOffset float64 `json:"junction_offset" toml:"junction_offset"`
}

// DefaultSpacing returns the standard spacing.
func DefaultSpacing() Spacing {
	return Spacing{
		NodeWidth:      DefaultNodeWidth,
		NodeHeight:     DefaultNodeHeight,
		HorizontalGap:  DefaultHorizontalGap,
		VerticalGap:    DefaultVerticalGap,
		SpouseGap:      DefaultSpouseGap,
		JunctionOffset: DefaultJunctionOffset,
	}
}

// IsZero reports whether no field has been set.
func (s Spacing) IsZero() bool { return s == Spacing{} }

// Validate rejects non-positive node sizes and negative gaps.
func (s Spacing) Validate() error {
	if s.NodeWidth <= 0 || s.NodeHeight <= 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "node width and height must be positive")
	}
	if s.HorizontalGap < 0 || s.VerticalGap < 0 || s.SpouseGap < 0 || s.JunctionOffset < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "spacing gaps must not be negative")
	}
	return nil
}

// UnitWidth returns the horizontal extent of a unit with n members.
func (s Spacing) UnitWidth(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*s.NodeWidth + float64(n-1)*s.SpouseGap
}

// memberStep is the x distance between consecutive members of a unit.
func (s Spacing) memberStep() float64 { return s.NodeWidth + s.SpouseGap }

// rowY returns the y coordinate of a generation.
func (s Spacing) rowY(level int) float64 { return float64(level) * s.VerticalGap }
