// Package pipeline provides the load → layout → render pipeline for kintree.
//
// The CLI and the HTTP server both run family trees through this package,
// so caching, validation and instrumentation behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the member snapshot from a store or a members file
//  2. Layout: Compute positions, junctions and edges with [layout.Compute]
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PNG)
//
// Layouts are cached by the SHA-256 of the canonical members JSON plus the
// layout options; rendered artifacts are cached by the hash of the layout.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, st, pipeline.Options{
//	    Order:   "name",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, hit, err := runner.Layout(ctx, members, opts)
//	artifacts, hit, err := runner.Render(ctx, *l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatJSON

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Order   string         `json:"order,omitempty"`
	Spacing layout.Spacing `json:"spacing,omitzero"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	order     layout.Order
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Members is the snapshot the layout was computed from.
	Members []family.Member

	// MembersHash is the content hash of the snapshot.
	MembersHash string

	// Layout is the computed layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MemberCount   int
	JunctionCount int
	EdgeCount     int
	LoadTime      time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks every option and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout parses the order and fills in the default spacing.
func (o *Options) ValidateForLayout() error {
	order, err := layout.ParseOrder(o.Order)
	if err != nil {
		return err
	}
	o.order = order
	if o.Spacing.IsZero() {
		o.Spacing = layout.DefaultSpacing()
	}
	if err := o.Spacing.Validate(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid spacing")
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks the formats, defaulting to JSON.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions returns the engine options. Call ValidateForLayout first.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Spacing: o.Spacing, Order: o.order}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Order: o.order.String(), Spacing: o.Spacing}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
