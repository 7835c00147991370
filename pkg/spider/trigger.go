package spider

// RelayoutFields lists the parameters whose change invalidates a cached
// layout. Animate, AnimationSpeed and AnchorOffsetY are not among them: a
// host keeps serving the cached records when only those change.
var RelayoutFields = []string{
	"circle_foot_separation",
	"circle_spiral_switchover",
	"spiral_foot_separation",
	"spiral_length_start",
	"spiral_length_factor",
	"anchor_offset_x",
	"force_legs_when_single",
}

// NeedsRelayout reports whether a host holding a layout computed from
// (prevCount, prev) must recompute it for (count, next). It compares the
// marker count and every field in [RelayoutFields] by value.
func NeedsRelayout(prevCount int, prev Parameters, count int, next Parameters) bool {
	return prevCount != count ||
		prev.CircleFootSeparation != next.CircleFootSeparation ||
		prev.CircleSpiralSwitchover != next.CircleSpiralSwitchover ||
		prev.SpiralFootSeparation != next.SpiralFootSeparation ||
		prev.SpiralLengthStart != next.SpiralLengthStart ||
		prev.SpiralLengthFactor != next.SpiralLengthFactor ||
		prev.AnchorOffsetX != next.AnchorOffsetX ||
		prev.ForceLegsWhenSingle != next.ForceLegsWhenSingle
}
