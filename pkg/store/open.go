package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverSupabase = "supabase"
)

// Options selects and configures a member store.
//
// DSN is driver specific: a file path for sqlite (an optional sqlite://
// prefix is stripped) and a mongodb:// URI for mongo. Supabase reads its
// URL and key from the Supabase section.
type Options struct {
	Driver   string          `toml:"driver"`
	DSN      string          `toml:"dsn"`
	Supabase SupabaseOptions `toml:"supabase"`
	Mongo    MongoOptions    `toml:"mongo"`
}

// SetDefaults infers the driver from the DSN scheme and falls back to a
// SQLite database in the user's data directory.
func (o *Options) SetDefaults() {
	if o.Driver == "" {
		switch {
		case strings.HasPrefix(o.DSN, "memory://"):
			o.Driver = DriverMemory
		case strings.HasPrefix(o.DSN, "mongodb://"), strings.HasPrefix(o.DSN, "mongodb+srv://"):
			o.Driver = DriverMongo
		case o.Supabase.URL != "" && o.DSN == "":
			o.Driver = DriverSupabase
		default:
			o.Driver = DriverSQLite
		}
	}
	if o.Driver == DriverSQLite && o.DSN == "" {
		if path, err := DefaultDBPath(); err == nil {
			o.DSN = path
		}
	}
	if o.Supabase.Table == "" {
		o.Supabase.Table = DefaultSupabaseTable
	}
	if o.Mongo.Database == "" {
		o.Mongo.Database = DefaultMongoDatabase
	}
	if o.Mongo.Collection == "" {
		o.Mongo.Collection = DefaultMongoCollection
	}
}

// Validate checks that the selected driver has what it needs to connect.
func (o Options) Validate() error {
	switch o.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverMongo:
		if o.DSN == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "store dsn is required for the %s driver", o.Driver)
		}
		return nil
	case DriverSupabase:
		if o.Supabase.URL == "" || o.Supabase.Key == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "supabase url and key are required")
		}
		return nil
	}
	return kerrors.New(kerrors.ErrCodeInvalidConfig,
		"invalid store driver: %q (must be one of: memory, sqlite, mongo, supabase)", o.Driver)
}

// Open connects to the store selected by o.Driver.
func Open(ctx context.Context, o Options) (Store, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	var (
		s   Store
		err error
	)
	switch o.Driver {
	case DriverMemory:
		s = NewMemoryStore()
	case DriverSQLite:
		path := strings.TrimPrefix(o.DSN, "sqlite://")
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, kerrors.Wrap(kerrors.ErrCodeStorage, err, "create database directory")
			}
		}
		s, err = OpenSQLite(ctx, path)
	case DriverMongo:
		s, err = OpenMongo(ctx, o.DSN, o.Mongo)
	case DriverSupabase:
		s, err = OpenSupabase(o.Supabase)
	}
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStorage, err, "open %s store", o.Driver)
	}
	return Instrument(s, o.Driver), nil
}

// DefaultDBPath returns $XDG_DATA_HOME/kintree/kintree.db, falling back to
// ~/.local/share when XDG_DATA_HOME is unset.
func DefaultDBPath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "kintree", "kintree.db"), nil
}
