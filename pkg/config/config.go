// Package config loads kintree settings from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/kintree/config.toml unless a path is
// given explicitly. Every setting is optional:
//
//	tree = "default"
//
//	[layout]
//	order = "name"
//
//	[layout.spacing]
//	node_width = 180
//
//	[store]
//	driver = "sqlite"
//	dsn = "/var/lib/kintree/tree.db"
//
//	[cache]
//	driver = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	listen = ":8080"
//	cors_origins = ["https://family.example.com"]
//
// Environment variables override the file; see [Config.ApplyEnv].
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/cache"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/store"
)

// Environment variables read by ApplyEnv.
const (
	EnvStoreDriver     = "KINTREE_STORE_DRIVER"
	EnvStoreDSN        = "KINTREE_STORE_DSN"
	EnvCacheDriver     = "KINTREE_CACHE_DRIVER"
	EnvRedisAddr       = "KINTREE_REDIS_ADDR"
	EnvListen          = "KINTREE_LISTEN"
	EnvSupabaseURL     = "SUPABASE_URL"
	EnvSupabaseRoleKey = "SUPABASE_SERVICE_ROLE_KEY"
)

// DefaultListen is the server address used when none is configured.
const DefaultListen = ":8080"

// DefaultTree names the tree when only one is managed.
const DefaultTree = "default"

// Config is the full kintree configuration.
type Config struct {
	// Tree names the family tree; it scopes cache keys and session state.
	Tree   string        `toml:"tree"`
	Layout LayoutConfig  `toml:"layout"`
	Store  store.Options `toml:"store"`
	Cache  cache.Options `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// LayoutConfig holds engine options.
type LayoutConfig struct {
	Order   string         `toml:"order"`
	Spacing layout.Spacing `toml:"spacing"`
}

// Options converts the layout settings into engine options. Call Validate
// first; an invalid order falls back to input order.
func (c LayoutConfig) Options() layout.Options {
	order, _ := layout.ParseOrder(c.Order)
	return layout.Options{Spacing: c.Spacing, Order: order}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen      string   `toml:"listen"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DefaultPath returns $XDG_CONFIG_HOME/kintree/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "kintree", "config.toml"), nil
}

// Load reads the file at path, applies environment overrides and defaults,
// and validates the result. An empty path means DefaultPath, which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg Config
	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes TOML data without touching the environment or defaults.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return checkUndecoded(md)
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return kerrors.New(kerrors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(names, ", "))
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvStoreDriver, &c.Store.Driver)
	set(EnvStoreDSN, &c.Store.DSN)
	set(EnvCacheDriver, &c.Cache.Driver)
	set(EnvRedisAddr, &c.Cache.Redis.Addr)
	set(EnvListen, &c.Server.Listen)
	set(EnvSupabaseURL, &c.Store.Supabase.URL)
	set(EnvSupabaseRoleKey, &c.Store.Supabase.Key)
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Tree == "" {
		c.Tree = DefaultTree
	}
	fillSpacing(&c.Layout.Spacing)
	c.Store.SetDefaults()
	c.Cache.SetDefaults()
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Tree, "/\\:") || strings.TrimSpace(c.Tree) == "" {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "invalid tree name: %q", c.Tree)
	}
	if _, err := layout.ParseOrder(c.Layout.Order); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "layout.order")
	}
	if err := c.Layout.Spacing.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// fillSpacing replaces zero spacing fields with the defaults, so a file can
// override a single value.
func fillSpacing(s *layout.Spacing) {
	d := layout.DefaultSpacing()
	for _, f := range []struct {
		dst *float64
		def float64
	}{
		{&s.NodeWidth, d.NodeWidth},
		{&s.NodeHeight, d.NodeHeight},
		{&s.HorizontalGap, d.HorizontalGap},
		{&s.VerticalGap, d.VerticalGap},
		{&s.SpouseGap, d.SpouseGap},
		{&s.JunctionOffset, d.JunctionOffset},
	} {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}
}
