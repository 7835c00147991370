package cache

import (
	"fmt"

	"github.com/matzehuels/spiderfy/pkg/spider"
)

// Keyer generates cache keys for each entry type.
type Keyer interface {
	// LayoutKey identifies a computed layout.
	LayoutKey(count int, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout document.
	ArtifactKey(documentHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every input that affects a layout document.
type LayoutKeyOpts struct {
	Params  spider.Parameters `json:"params"`
	Lng     float64           `json:"lng"`
	Lat     float64           `json:"lat"`
	Markers string            `json:"markers,omitempty"` // hash of marker metadata
}

// ArtifactKeyOpts holds every input that affects a rendered artifact.
type ArtifactKeyOpts struct {
	Format       string  `json:"format"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Scale        float64 `json:"scale"`
	Theme        string  `json:"theme"`
	MarkerRadius float64 `json:"marker_radius"`
	Labels       bool    `json:"labels"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<count>:<hash(opts)>".
func (DefaultKeyer) LayoutKey(count int, opts LayoutKeyOpts) string {
	return hashKey(fmt.Sprintf("layout:%d", count), opts)
}

// ArtifactKey returns "artifact:<documentHash>:<hash(opts)>".
func (DefaultKeyer) ArtifactKey(documentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+documentHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
