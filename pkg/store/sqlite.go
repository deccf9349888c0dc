package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/matzehuels/kintree/pkg/family"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS family_members (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	birth_date      TEXT NOT NULL DEFAULT '',
	relationship    TEXT NOT NULL DEFAULT '',
	gender          TEXT NOT NULL DEFAULT '',
	parent_id       TEXT,
	parent2_id      TEXT,
	spouse_id       TEXT,
	bio             TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	avatar_url      TEXT NOT NULL DEFAULT '',
	position_x      REAL,
	position_y      REAL,
	custom_position INTEGER NOT NULL DEFAULT 0,
	added_by        TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_family_members_name ON family_members(name, id);
`

const memberColumns = `id, name, birth_date, relationship, gender, parent_id, parent2_id, spouse_id,
	bio, location, avatar_url, position_x, position_y, custom_position, added_by, created_at`

// SQLiteStore keeps members in a SQLite database with one column per field.
type SQLiteStore struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite database with WAL mode and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{conn: conn, path: path, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) List(ctx context.Context) ([]family.Member, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+memberColumns+` FROM family_members ORDER BY name, id`)
	if err != nil {
		return nil, sqliteErr("list members", err)
	}
	defer rows.Close()

	var out []family.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr("list members", err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (family.Member, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM family_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return family.Member{}, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) Create(ctx context.Context, m family.Member) (family.Member, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = s.now().UTC()
	_, err := s.conn.ExecContext(ctx, `INSERT INTO family_members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.BirthDate, m.Relationship, m.Gender,
		nullString(m.ParentID), nullString(m.Parent2ID), nullString(m.SpouseID),
		m.Bio, m.Location, m.AvatarURL, m.PositionX, m.PositionY, m.CustomPosition,
		m.AddedBy, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return family.Member{}, sqliteErr("insert member", err)
	}
	return m, nil
}

func (s *SQLiteStore) Update(ctx context.Context, m family.Member) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE family_members SET
		name = ?, birth_date = ?, relationship = ?, gender = ?,
		parent_id = ?, parent2_id = ?, spouse_id = ?,
		bio = ?, location = ?, avatar_url = ?,
		position_x = ?, position_y = ?, custom_position = ?, added_by = ?
		WHERE id = ?`,
		m.Name, m.BirthDate, m.Relationship, m.Gender,
		nullString(m.ParentID), nullString(m.Parent2ID), nullString(m.SpouseID),
		m.Bio, m.Location, m.AvatarURL,
		m.PositionX, m.PositionY, m.CustomPosition, m.AddedBy,
		m.ID)
	if err != nil {
		return sqliteErr("update member", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return sqliteErr("begin delete", err)
	}
	defer tx.Rollback()

	for _, col := range []string{"parent_id", "parent2_id", "spouse_id"} {
		q := fmt.Sprintf(`UPDATE family_members SET %s = NULL WHERE %s = ?`, col, col)
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return sqliteErr("clear "+col, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM family_members WHERE id = ?`, id)
	if err != nil {
		return sqliteErr("delete member", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return sqliteErr("commit delete", err)
	}
	return nil
}

func (s *SQLiteStore) SetPosition(ctx context.Context, id string, x, y float64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE family_members SET position_x = ?, position_y = ?, custom_position = 1 WHERE id = ?`, x, y, id)
	if err != nil {
		return sqliteErr("set position", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) ClearPositions(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE family_members SET position_x = NULL, position_y = NULL, custom_position = 0`)
	return sqliteErr("clear positions", err)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(sc scanner) (family.Member, error) {
	var (
		m                   family.Member
		parent, parent2, sp sql.NullString
		posX, posY          sql.NullFloat64
		created             string
	)
	err := sc.Scan(&m.ID, &m.Name, &m.BirthDate, &m.Relationship, &m.Gender,
		&parent, &parent2, &sp, &m.Bio, &m.Location, &m.AvatarURL,
		&posX, &posY, &m.CustomPosition, &m.AddedBy, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, sqliteErr("scan member", err)
	}
	m.ParentID, m.Parent2ID, m.SpouseID = parent.String, parent2.String, sp.String
	if posX.Valid {
		m.PositionX = &posX.Float64
	}
	if posY.Valid {
		m.PositionY = &posY.Float64
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		m.CreatedAt = t
	}
	return m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// sqliteErr wraps err with context and marks lock contention as retryable.
func sqliteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return Retryable(wrapped)
		}
	}
	return wrapped
}

var _ Store = (*SQLiteStore)(nil)
