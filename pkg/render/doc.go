// Package render turns spiderfied layout documents into visual artifacts.
//
// # Overview
//
// Every sink takes a [document.Document] and the same functional [Option]
// set, so an artifact is fully described by the document plus its options:
//
//   - [RenderSVG]: standalone SVG with legs, markers and CSS entrance
//     animation driven by each record's transition delay
//   - [RenderJSON]: the document itself, pretty-printed
//   - [ToDOT], [RenderDOTSVG], [RenderDOTPNG]: Graphviz output using the
//     neato engine with every node pinned to its computed position
//   - [RenderRaster], [RenderPNG], [RenderWebP]: pure-Go rasterization
//   - [RenderPDF]: SVG converted with rsvg-convert
//
// # Coordinates
//
// Records are planar offsets from the anchor with Y growing downwards, the
// same convention map libraries use for marker pixel offsets. A [Frame]
// encloses the anchor, every marker and a margin of
// MarkerRadius+Padding. Legs run from the offset anchor point
// (AnchorOffsetX, AnchorOffsetY) to the marker, so they stay attached to
// their markers; the record's LegLength is left as computed.
//
// # Stacking
//
// Spiral layouts carry a StackOrder per record. Sinks draw markers in
// ascending StackOrder so inner markers end up on top, matching what a
// z-index would do in a browser.
//
//	doc := document.FromLayout(spider.Compute(12, spider.DefaultParameters()), document.Anchor{}, nil)
//	svg := render.RenderSVG(doc, render.WithTheme("dark"), render.WithLabels())
//	png, err := render.RenderPNG(doc, render.WithScale(2))
package render
