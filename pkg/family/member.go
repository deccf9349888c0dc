package family

import (
	"strings"
	"time"
)

// Gender values accepted by [Validate].
const (
	GenderMale         = "male"
	GenderFemale       = "female"
	GenderNonBinary    = "non_binary"
	GenderNotSpecified = "not_specified"
)

// noneRef is the form and CLI input that clears a parent or spouse reference.
const noneRef = "none"

// Position is a point on the tree canvas. It is not geographic.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Member is one person in a family tree.
//
// PositionX and PositionY are nil when no coordinate has been stored.
// CustomPosition marks a user-dragged position; it only takes effect when
// both coordinates are present (see HasCustomPosition).
type Member struct {
	ID           string `json:"id" bson:"_id"`
	Name         string `json:"name" bson:"name" validate:"required,max=100"`
	BirthDate    string `json:"birth_date,omitempty" bson:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty" validate:"max=100"`
	Gender       string `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female non_binary not_specified"`

	ParentID  string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Parent2ID string `json:"parent2_id,omitempty" bson:"parent2_id,omitempty"`
	SpouseID  string `json:"spouse_id,omitempty" bson:"spouse_id,omitempty"`

	Bio       string `json:"bio,omitempty" bson:"bio,omitempty" validate:"max=1600"`
	Location  string `json:"location,omitempty" bson:"location,omitempty" validate:"max=300"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`

	PositionX      *float64 `json:"position_x,omitempty" bson:"position_x,omitempty"`
	PositionY      *float64 `json:"position_y,omitempty" bson:"position_y,omitempty"`
	CustomPosition bool     `json:"custom_position,omitempty" bson:"custom_position,omitempty"`

	AddedBy   string    `json:"added_by,omitempty" bson:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" bson:"created_at"`
}

// HasCustomPosition reports whether the stored coordinates are authoritative.
func (m Member) HasCustomPosition() bool {
	return m.CustomPosition && m.PositionX != nil && m.PositionY != nil
}

// StoredPosition returns the stored coordinates, if both are present.
func (m Member) StoredPosition() (Position, bool) {
	if m.PositionX == nil || m.PositionY == nil {
		return Position{}, false
	}
	return Position{X: *m.PositionX, Y: *m.PositionY}, true
}

// IsRoot reports whether the member has no recorded parent.
func (m Member) IsRoot() bool {
	return m.ParentID == "" && m.Parent2ID == ""
}

// ParentIDs returns the set parent references in slot order.
func (m Member) ParentIDs() []string {
	ids := make([]string, 0, 2)
	if m.ParentID != "" {
		ids = append(ids, m.ParentID)
	}
	if m.Parent2ID != "" {
		ids = append(ids, m.Parent2ID)
	}
	return ids
}

// HasBothParents reports whether both parent slots are set.
func (m Member) HasBothParents() bool {
	return m.ParentID != "" && m.Parent2ID != ""
}

// WithPosition returns a copy of m pinned at (x, y).
func (m Member) WithPosition(x, y float64) Member {
	m.PositionX = &x
	m.PositionY = &y
	m.CustomPosition = true
	return m
}

// WithoutPosition returns a copy of m with stored coordinates cleared.
func (m Member) WithoutPosition() Member {
	m.PositionX = nil
	m.PositionY = nil
	m.CustomPosition = false
	return m
}

// References reports whether m points at id through any relationship slot.
func (m Member) References(id string) bool {
	return id != "" && (m.ParentID == id || m.Parent2ID == id || m.SpouseID == id)
}

// Unlink returns a copy of m with every reference to id cleared.
func (m Member) Unlink(id string) Member {
	if m.ParentID == id {
		m.ParentID = ""
	}
	if m.Parent2ID == id {
		m.Parent2ID = ""
	}
	if m.SpouseID == id {
		m.SpouseID = ""
	}
	return m
}

// Normalize trims free-text fields, maps "none" references to empty and
// defaults the gender.
func Normalize(m Member) Member {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Relationship = strings.TrimSpace(m.Relationship)
	m.Bio = strings.TrimSpace(m.Bio)
	m.Location = strings.TrimSpace(m.Location)
	m.AddedBy = strings.TrimSpace(m.AddedBy)
	m.ParentID = normalizeRef(m.ParentID)
	m.Parent2ID = normalizeRef(m.Parent2ID)
	m.SpouseID = normalizeRef(m.SpouseID)
	if m.Relationship == noneRef {
		m.Relationship = ""
	}
	if m.Gender == "" {
		m.Gender = GenderNotSpecified
	}
	return m
}

func normalizeRef(id string) string {
	id = strings.TrimSpace(id)
	if id == noneRef {
		return ""
	}
	return id
}

// Index maps member IDs to their position in members.
func Index(members []Member) map[string]int {
	idx := make(map[string]int, len(members))
	for i, m := range members {
		idx[m.ID] = i
	}
	return idx
}
