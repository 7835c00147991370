package spider

import "math"

// Record is the computed placement of one marker.
type Record struct {
	// Index is the marker's position among the current markers (0-based, contiguous).
	Index int `json:"index" bson:"index"`

	// Angle is the direction from the anchor in radians.
	Angle float64 `json:"angle" bson:"angle"`

	// LegLength is the radial distance from the anchor minus AnchorOffsetX.
	// X and Y have the offsets added instead, so LegLength+AnchorOffsetX is
	// the true radius. Both fields are kept as-is for compatibility.
	LegLength float64 `json:"leg_length" bson:"leg_length"`

	// X and Y are the planar offsets relative to the anchor.
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`

	// TransitionDelay is the entrance stagger in seconds.
	TransitionDelay float64 `json:"transition_delay" bson:"transition_delay"`

	ShouldRenderLeg bool    `json:"should_render_leg" bson:"should_render_leg"`
	Animate         bool    `json:"animate" bson:"animate"`
	AnimationSpeed  float64 `json:"animation_speed" bson:"animation_speed"`

	// StackOrder is set only in spiral mode. Higher values render above lower ones.
	StackOrder *int `json:"stack_order,omitempty" bson:"stack_order,omitempty"`
}

// Layout is the full result of [Compute].
type Layout struct {
	Mode    Mode       `json:"mode" bson:"mode"`
	Count   int        `json:"count" bson:"count"`
	Params  Parameters `json:"params" bson:"params"`
	Records []Record   `json:"records,omitempty" bson:"records,omitempty"`
}

// Empty reports whether the layout holds no records.
func (l Layout) Empty() bool { return len(l.Records) == 0 }

// Radius returns the largest true radial distance among the records, with
// the anchor offset added back to LegLength. It is 0 for an empty layout.
func (l Layout) Radius() float64 {
	var r float64
	for _, rec := range l.Records {
		r = math.Max(r, rec.LegLength+l.Params.AnchorOffsetX)
	}
	return r
}

// Finite reports whether every numeric field of every record is finite.
func (l Layout) Finite() bool {
	for _, r := range l.Records {
		for _, v := range [...]float64{r.Angle, r.LegLength, r.X, r.Y, r.TransitionDelay} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Compute lays out count markers around a shared anchor.
//
// A count of zero (or less) yields an empty Layout with no records. Otherwise
// the generator is picked by [SelectMode] and the result holds exactly count
// records in index order. Compute is pure: identical inputs give bit-identical
// output and it is safe for concurrent use.
func Compute(count int, p Parameters) Layout {
	if count <= 0 {
		return Layout{Params: p}
	}

	mode := SelectMode(count, p.CircleSpiralSwitchover)

	var records []Record
	switch mode {
	case ModeSpiral:
		records = Spiral(count, p)
	default:
		records = Circle(count, p)
	}

	return Layout{
		Mode:    mode,
		Count:   count,
		Params:  p,
		Records: assemble(records, p),
	}
}

// assemble attaches the fields shared by every record.
func assemble(records []Record, p Parameters) []Record {
	shouldRenderLeg := len(records) > 1 || p.ForceLegsWhenSingle
	for i := range records {
		records[i].Animate = p.Animate
		records[i].AnimationSpeed = p.AnimationSpeed
		records[i].ShouldRenderLeg = shouldRenderLeg
	}
	return records
}
