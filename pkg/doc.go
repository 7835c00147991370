// Package pkg provides the core libraries for spiderfy.
//
// # Overview
//
// When several map markers share one coordinate they hide each other. Spiderfy
// fans them out around the shared anchor: a few markers on a circle, many on
// an outward spiral, each connected back to the anchor by a leg. The pkg
// directory is organized into four areas:
//
//  1. [spider] - the pure layout engine
//  2. [document], [session] - serialization and host-side anchor state
//  3. [render] - output sinks (SVG, JSON, DOT, raster, PDF)
//  4. [pipeline], [cache], [config] - orchestration shared by the CLI and the HTTP API
//
// # Architecture
//
//	marker count + parameters
//	         ↓
//	    [spider] package (circle or spiral placement records)
//	         ↓
//	    [document] package (records + anchor + marker metadata + bounds)
//	         ↓
//	    [render] package (SVG, PNG, WebP, PDF, JSON, Graphviz)
//
// [pipeline] runs these stages with a [cache] in front of each, so repeated
// requests for the same anchor are served without recomputation.
//
// # Quick Start
//
//	l := spider.Compute(12, spider.DefaultParameters())
//	doc := document.FromLayout(l, document.Anchor{Lng: 2.35, Lat: 48.86}, nil)
//	svg := render.RenderSVG(doc, render.WithTheme("dark"))
//
// # Main Packages
//
// [spider] - Compute, Circle, Spiral, SelectMode and NeedsRelayout. Pure
// functions with no I/O; identical inputs give identical output.
//
// [document] - The serialized layout: records, anchor, optional per-marker
// metadata and bounds. Read and written as JSON.
//
// [session] - Anchor sessions as a map host keeps them: the current markers,
// parameters and cached layout, recomputed only when a relayout field changes.
// Memory, file and Redis stores.
//
// [render] - Sinks that turn a document into SVG (with CSS entrance
// animation), PNG and WebP (vector rasterizer), PDF (via rsvg-convert),
// JSON and Graphviz DOT (rendered through go-graphviz).
//
// [pipeline] - Layout → render with caching, plus Batch for many anchors.
//
// [cache] - File, Redis and MongoDB caches behind one interface.
//
// [config] - TOML configuration with layout, render, cache and server sections.
//
// [errors] - Coded errors that map onto HTTP statuses.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [spider]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/spider
// [document]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/document
// [session]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/session
// [render]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/spiderfy/pkg/observability
package pkg
