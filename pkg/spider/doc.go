// Package spider computes the "spiderfied" arrangement of markers that share a
// single map anchor.
//
// # Overview
//
// When several markers sit on the same point they hide each other. Spiderfying
// explodes them outward so each one is visible and clickable. This package
// contains only the geometry: given a marker count and a set of [Parameters],
// [Compute] returns one [Record] per marker with its angle, leg length, planar
// offset, animation stagger and (for spirals) stacking order.
//
// Rendering, event handling and the decision of when to recompute belong to
// the host. The host can use [NeedsRelayout] to decide whether a cached
// [Layout] is still valid.
//
// # Modes
//
// Two generators are available and chosen by [SelectMode]:
//
//   - Circle: markers are spaced evenly around a ring whose circumference
//     grows with the count.
//   - Spiral: markers follow an outward spiral, so density stays bounded for
//     large counts. Records carry a StackOrder so inner markers draw on top.
//
// The switch happens when the count reaches CircleSpiralSwitchover. A
// switchover of 0 always selects the spiral; [AlwaysCircle] never does.
//
// # Usage
//
//	l := spider.Compute(12, spider.DefaultParameters())
//	for _, r := range l.Records {
//	    fmt.Printf("%d: (%.1f, %.1f) delay=%.3fs\n", r.Index, r.X, r.Y, r.TransitionDelay)
//	}
//
// # Preconditions
//
// Compute does not validate its input. Negative or non-finite parameters can
// yield NaN or Inf coordinates; hosts that accept untrusted parameters should
// call [Parameters.Validate] first and may check [Layout.Finite] before
// rendering.
//
// # Leg length and the anchor offset
//
// The reported LegLength has AnchorOffsetX subtracted, while X has it added.
// Consumers that need the true ring radius should add AnchorOffsetX back (see
// [Layout.Radius]). This mirrors the behavior existing map front-ends rely on.
package spider
