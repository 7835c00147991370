// Package pipeline provides the layout → render pipeline for spiderfy.
//
// This package implements the pipeline that the CLI and the HTTP API share.
// By centralizing this logic, both entry points validate, cache and render
// in exactly the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Compute marker placements and wrap them in a document
//  2. Render: Generate output in various formats (SVG, JSON, DOT, PNG, WebP, PDF)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage is cached through a [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Count:   12,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Many anchors at once:
//
//	results, err := pipeline.Batch(ctx, runner, jobs, 8)
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spiderfy/pkg/cache"
	"github.com/matzehuels/spiderfy/pkg/document"
	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/render"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

// Format constants for output formats.
const (
	FormatSVG    = "svg"
	FormatJSON   = "json"
	FormatDOT    = "dot"
	FormatDOTSVG = "dot.svg"
	FormatDOTPNG = "dot.png"
	FormatPNG    = "png"
	FormatWebP   = "webp"
	FormatPDF    = "pdf"
)

// Formats lists the supported output formats in display order.
var Formats = []string{FormatSVG, FormatJSON, FormatDOT, FormatDOTSVG, FormatDOTPNG, FormatPNG, FormatWebP, FormatPDF}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:    true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatDOTSVG: true,
	FormatDOTPNG: true,
	FormatPNG:    true,
	FormatWebP:   true,
	FormatPDF:    true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Count   int                `json:"count"`
	Params  *spider.Parameters `json:"params,omitempty"` // nil means spider.DefaultParameters()
	Anchor  document.Anchor    `json:"anchor"`
	Markers []document.Marker  `json:"markers,omitempty"`
	Refresh bool               `json:"refresh,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Width        float64  `json:"width,omitempty"`
	Height       float64  `json:"height,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	Theme        string   `json:"theme,omitempty"`
	MarkerRadius float64  `json:"marker_radius,omitempty"`
	Labels       bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the computed layout document.
	Document document.Document

	// DocumentHash is the content hash of the document.
	DocumentHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Count      int
	Mode       spider.Mode
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, dot, dot.svg, dot.png, png, webp, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults fills in parameters, count and logger.
func (o *Options) SetLayoutDefaults() {
	if o.Params == nil {
		p := spider.DefaultParameters()
		o.Params = &p
	}
	if o.Count == 0 && len(o.Markers) > 0 {
		o.Count = len(o.Markers)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errs.ValidateCount(o.Count); err != nil {
		return err
	}
	if len(o.Markers) > 0 && len(o.Markers) != o.Count {
		return errs.New(errs.ErrCodeInvalidInput, "got %d markers for count %d", len(o.Markers), o.Count)
	}
	return errs.ValidateParameters(*o.Params)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = render.LightTheme.Name
	}
	if o.Scale == 0 {
		o.Scale = render.DefaultScale
	}
	if o.MarkerRadius == 0 {
		o.MarkerRadius = render.DefaultMarkerRadius
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := render.ThemeByName(o.Theme); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid theme")
	}
	if o.Width < 0 || o.Height < 0 || o.Scale < 0 || o.MarkerRadius < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "render sizes must not be negative")
	}
	return nil
}

// Parameters returns the effective layout parameters.
func (o *Options) Parameters() spider.Parameters {
	if o.Params == nil {
		return spider.DefaultParameters()
	}
	return *o.Params
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Params: o.Parameters(),
		Lng:    o.Anchor.Lng,
		Lat:    o.Anchor.Lat,
	}
	if len(o.Markers) > 0 {
		if data, err := json.Marshal(o.Markers); err == nil {
			k.Markers = cache.Hash(data)
		}
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		Width:        o.Width,
		Height:       o.Height,
		Scale:        o.Scale,
		Theme:        o.Theme,
		MarkerRadius: o.MarkerRadius,
		Labels:       o.Labels,
	}
}

// RenderOptions converts the render fields into render options.
func (o *Options) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithSize(o.Width, o.Height),
		render.WithTheme(o.Theme),
	}
	if o.Scale > 0 {
		opts = append(opts, render.WithScale(o.Scale))
	}
	if o.MarkerRadius > 0 {
		opts = append(opts, render.WithMarkerRadius(o.MarkerRadius))
	}
	if o.Labels {
		opts = append(opts, render.WithLabels())
	}
	return opts
}
