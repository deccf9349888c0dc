package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/session"
)

// MemberSource supplies a member snapshot. store.Store satisfies it.
type MemberSource interface {
	List(ctx context.Context) ([]family.Member, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src MemberSource, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	members, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result := &Result{Members: members}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.MemberCount = len(members)

	r.Logger.Info("loaded members",
		"members", len(members),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.Layout(ctx, members, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = *l
	result.MembersHash, _ = MembersHash(members)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.JunctionCount = len(l.Nodes) - l.MemberCount()
	result.Stats.EdgeCount = len(l.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, *l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// MembersHash returns the SHA-256 of the canonical members JSON.
func MembersHash(members []family.Member) (string, error) {
	data, err := graph.MarshalMembers(members)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Layout computes the layout of members with caching and reports whether
// it came from the cache.
func (r *Runner) Layout(ctx context.Context, members []family.Member, opts Options) (*graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	hash, err := MembersHash(members)
	if err != nil {
		return nil, false, fmt.Errorf("hash members: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, cache.PrefixLayout)
				return &cached, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "error", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.PrefixLayout)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(members))
	start := time.Now()
	l, err := GenerateLayout(members, opts)
	hooks.OnLayoutComplete(ctx, len(members), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("failed to cache layout", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.PrefixLayout, len(data))
		}
	}
	return &l, false, nil
}

// Render generates the artifacts for opts.Formats with caching and reports
// whether every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, cache.PrefixArtifact)
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.PrefixArtifact)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("failed to cache artifact", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, cache.PrefixArtifact, len(data))
	}
	return rendered, false, nil
}

// LayoutFunc adapts the runner for session.Open, so session recomputes go
// through the layout cache.
func (r *Runner) LayoutFunc(opts Options) session.LayoutFunc {
	return func(ctx context.Context, members []family.Member) (*graph.Layout, error) {
		l, _, err := r.Layout(ctx, members, opts)
		return l, err
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
