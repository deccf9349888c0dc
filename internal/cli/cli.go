// Package cli implements the kintree command-line interface.
//
// # Commands
//
//   - layout: compute a tree layout from a members file or the configured store
//   - render: render a layout to SVG, PNG or DOT
//   - member: list, add and remove family members
//   - move, reset: pin a member on the canvas or clear every pinned position
//   - browse: step through the tree generation by generation
//   - serve: run the HTTP API
//   - cache: inspect and clear the layout cache
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/kintree/config.toml, or the file
// given with --config, and overridden by KINTREE_* environment variables.
// See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also attached to the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "kintree"

// actorEnv overrides the acting user for commands that modify the tree.
const actorEnv = "KINTREE_ACTOR"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Logger.Debug("loaded config",
		"tree", cfg.Tree,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Driver)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// openService opens the configured member store.
func (c *CLI) openService(ctx context.Context, cfg *config.Config) (*store.Service, error) {
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return store.NewService(s, c.Logger), nil
}

// newRunner creates a pipeline runner whose cache keys are scoped to the
// configured tree.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	ca, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "tree:"+cfg.Tree+":")
	return pipeline.NewRunner(ca, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.Cache)
}

// openSession opens the layout session of the configured tree. With a Redis
// cache the session lives there, so the CLI and a running server share it;
// otherwise it is kept in a file.
func (c *CLI) openSession(ctx context.Context, cfg *config.Config, runner *pipeline.Runner) (*session.Session, error) {
	var st session.Store
	if cfg.Cache.Driver == cache.DriverRedis {
		st = session.NewCacheStore(runner.Cache, session.DefaultTTL)
	} else {
		fs, err := session.NewFileStore("")
		if err != nil {
			return nil, err
		}
		st = fs
	}
	return session.Open(ctx, st, cfg.Tree, runner.LayoutFunc(layoutOptions(cfg)))
}

// layoutOptions maps the layout configuration onto pipeline options.
func layoutOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Order:   cfg.Layout.Order,
		Spacing: cfg.Layout.Spacing,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// defaultActor is the identity recorded on member changes when --as is not
// given.
func defaultActor() string {
	if a := os.Getenv(actorEnv); a != "" {
		return a
	}
	return os.Getenv("USER")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
