package cache

import (
	"github.com/matzehuels/kintree/pkg/layout"
)

// Key prefixes.
const (
	PrefixLayout   = "layout"
	PrefixArtifact = "artifact"
)

// LayoutKeyOpts are the inputs besides the member snapshot that change a
// computed layout.
type LayoutKeyOpts struct {
	Order   string         `json:"order"`
	Spacing layout.Spacing `json:"spacing"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its member snapshot.
	LayoutKey(membersHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered output by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(membersHash string, opts LayoutKeyOpts) string {
	return hashKey(PrefixLayout, membersHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(PrefixArtifact, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
