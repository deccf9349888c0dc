package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/matzehuels/kintree/pkg/family"
)

// DefaultSupabaseTable is the table used by the legacy web application.
const DefaultSupabaseTable = "family_members"

// SupabaseOptions configures a SupabaseStore.
type SupabaseOptions struct {
	URL   string `toml:"url"`
	Key   string `toml:"key"`
	Table string `toml:"table"`
}

// SupabaseStore reads and writes the legacy family_members table, where
// location and position live as tokens inside the bio column.
type SupabaseStore struct {
	client *supabase.Client
	table  string
	now    func() time.Time
}

// supabaseRow is one row of the legacy table. Nullable columns are
// pointers so that empty values are written as NULL.
type supabaseRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	BirthDate    *string `json:"birth_date"`
	Relationship *string `json:"relationship"`
	Gender       *string `json:"gender"`
	ParentID     *string `json:"parent_id"`
	Parent2ID    *string `json:"parent2_id"`
	SpouseID     *string `json:"spouse_id"`
	Bio          *string `json:"bio"`
	AvatarURL    *string `json:"avatar_url"`
	AddedBy      *string `json:"added_by"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// OpenSupabase creates a client for the project at opts.URL.
func OpenSupabase(opts SupabaseOptions) (*SupabaseStore, error) {
	if opts.Table == "" {
		opts.Table = DefaultSupabaseTable
	}
	client, err := supabase.NewClient(opts.URL, opts.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: opts.Table, now: time.Now}, nil
}

func (s *SupabaseStore) List(ctx context.Context) ([]family.Member, error) {
	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, supabaseErr("list members", err)
	}
	out := make([]family.Member, len(rows))
	for i, r := range rows {
		out[i] = r.member()
	}
	return out, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id string) (family.Member, error) {
	r, err := s.getRow(id)
	if err != nil {
		return family.Member{}, err
	}
	return r.member(), nil
}

func (s *SupabaseStore) getRow(id string) (supabaseRow, error) {
	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return supabaseRow{}, supabaseErr("get member", err)
	}
	if len(rows) == 0 {
		return supabaseRow{}, ErrNotFound
	}
	return rows[0], nil
}

func (s *SupabaseStore) Create(ctx context.Context, m family.Member) (family.Member, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	_, _, err := s.client.From(s.table).
		Insert(rowFromMember(m), false, "", "minimal", "").
		Execute()
	if err != nil {
		return family.Member{}, supabaseErr("insert member", err)
	}
	return m, nil
}

func (s *SupabaseStore) Update(ctx context.Context, m family.Member) error {
	row := rowFromMember(m)
	row.CreatedAt = ""
	return s.patch(m.ID, row, "update member")
}

func (s *SupabaseStore) Delete(ctx context.Context, id string) error {
	if _, err := s.getRow(id); err != nil {
		return err
	}
	for _, col := range []string{"parent_id", "parent2_id", "spouse_id"} {
		_, _, err := s.client.From(s.table).
			Update(map[string]any{col: nil}, "minimal", "").
			Eq(col, id).
			Execute()
		if err != nil {
			return supabaseErr("clear "+col, err)
		}
	}
	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Delete("representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return supabaseErr("delete member", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SupabaseStore) SetPosition(ctx context.Context, id string, x, y float64) error {
	r, err := s.getRow(id)
	if err != nil {
		return err
	}
	m := r.member().WithPosition(x, y)
	return s.patch(id, map[string]any{"bio": nullable(family.EncodeBio(m))}, "set position")
}

func (s *SupabaseStore) ClearPositions(ctx context.Context) error {
	var rows []supabaseRow
	_, err := s.client.From(s.table).Select("id,bio", "", false).ExecuteTo(&rows)
	if err != nil {
		return supabaseErr("list bios", err)
	}
	for _, r := range rows {
		m := r.member()
		if !m.HasCustomPosition() {
			continue
		}
		bio := family.EncodeBio(m.WithoutPosition())
		if err := s.patch(r.ID, map[string]any{"bio": nullable(bio)}, "clear position"); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the client holds no connections of its own.
func (s *SupabaseStore) Close() error { return nil }

func (s *SupabaseStore) patch(id string, value any, op string) error {
	var rows []json.RawMessage
	_, err := s.client.From(s.table).
		Update(value, "representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return supabaseErr(op, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// member decodes a legacy row, lifting the bio tokens into fields.
func (r supabaseRow) member() family.Member {
	m := family.Member{
		ID:           r.ID,
		Name:         r.Name,
		BirthDate:    deref(r.BirthDate),
		Relationship: deref(r.Relationship),
		Gender:       deref(r.Gender),
		ParentID:     deref(r.ParentID),
		Parent2ID:    deref(r.Parent2ID),
		SpouseID:     deref(r.SpouseID),
		Bio:          deref(r.Bio),
		AvatarURL:    deref(r.AvatarURL),
		AddedBy:      deref(r.AddedBy),
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		m.CreatedAt = t
	}
	return family.DecodeMember(m)
}

// rowFromMember encodes m for the legacy table, folding location and a
// custom position into the bio.
func rowFromMember(m family.Member) supabaseRow {
	r := supabaseRow{
		ID:           m.ID,
		Name:         m.Name,
		BirthDate:    nullable(m.BirthDate),
		Relationship: nullable(m.Relationship),
		Gender:       nullable(m.Gender),
		ParentID:     nullable(m.ParentID),
		Parent2ID:    nullable(m.Parent2ID),
		SpouseID:     nullable(m.SpouseID),
		Bio:          nullable(family.EncodeBio(m)),
		AvatarURL:    nullable(m.AvatarURL),
		AddedBy:      nullable(m.AddedBy),
	}
	if !m.CreatedAt.IsZero() {
		r.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// supabaseErr wraps err with context. Transport failures are retryable;
// errors reported by PostgREST are not.
func supabaseErr(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	var ue *url.Error
	if errors.As(err, &ue) {
		return Retryable(wrapped)
	}
	return wrapped
}

var _ Store = (*SupabaseStore)(nil)
