package spider

import (
	"fmt"
	"math"
)

// Default parameter values. Front-ends rely on these exact numbers.
const (
	DefaultCircleSpiralSwitchover = 9
	DefaultCircleFootSeparation   = 90.0
	DefaultSpiralFootSeparation   = 80.0
	DefaultSpiralLengthStart      = 60.0
	DefaultSpiralLengthFactor     = 5.0
	DefaultAnimate                = true
	DefaultAnimationSpeed         = 500.0
)

// AlwaysCircle is a switchover no marker count can reach.
const AlwaysCircle = math.MaxInt

// Parameters controls the shape, spacing and animation of a layout.
// A Parameters value is treated as immutable for the duration of a computation.
type Parameters struct {
	// CircleFootSeparation is the arc length between neighbouring markers on the circle.
	CircleFootSeparation float64 `json:"circle_foot_separation" toml:"circle_foot_separation" bson:"circle_foot_separation"`

	// CircleSpiralSwitchover is the marker count at or above which the spiral is used.
	CircleSpiralSwitchover int `json:"circle_spiral_switchover" toml:"circle_spiral_switchover" bson:"circle_spiral_switchover"`

	// Spiral shape: separation along the curve, starting radius and growth rate.
	SpiralFootSeparation float64 `json:"spiral_foot_separation" toml:"spiral_foot_separation" bson:"spiral_foot_separation"`
	SpiralLengthStart    float64 `json:"spiral_length_start" toml:"spiral_length_start" bson:"spiral_length_start"`
	SpiralLengthFactor   float64 `json:"spiral_length_factor" toml:"spiral_length_factor" bson:"spiral_length_factor"`

	Animate bool `json:"animate" toml:"animate" bson:"animate"`

	// AnimationSpeed is the total stagger window in milliseconds.
	AnimationSpeed float64 `json:"animation_speed" toml:"animation_speed" bson:"animation_speed"`

	// AnchorOffsetX and AnchorOffsetY shift the anchor in the plane.
	AnchorOffsetX float64 `json:"anchor_offset_x" toml:"anchor_offset_x" bson:"anchor_offset_x"`
	AnchorOffsetY float64 `json:"anchor_offset_y" toml:"anchor_offset_y" bson:"anchor_offset_y"`

	// ForceLegsWhenSingle draws a leg even when only one marker is present.
	ForceLegsWhenSingle bool `json:"force_legs_when_single" toml:"force_legs_when_single" bson:"force_legs_when_single"`
}

// DefaultParameters returns the stock parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		CircleFootSeparation:   DefaultCircleFootSeparation,
		CircleSpiralSwitchover: DefaultCircleSpiralSwitchover,
		SpiralFootSeparation:   DefaultSpiralFootSeparation,
		SpiralLengthStart:      DefaultSpiralLengthStart,
		SpiralLengthFactor:     DefaultSpiralLengthFactor,
		Animate:                DefaultAnimate,
		AnimationSpeed:         DefaultAnimationSpeed,
	}
}

// Validate reports the first parameter that would make [Compute] produce
// non-finite or degenerate output. Compute itself never calls Validate.
func (p Parameters) Validate() error {
	floats := []struct {
		name  string
		value float64
		sign  int // -1: any sign, 0: non-negative, 1: positive
	}{
		{"circle_foot_separation", p.CircleFootSeparation, 0},
		{"spiral_foot_separation", p.SpiralFootSeparation, 1},
		{"spiral_length_start", p.SpiralLengthStart, 1},
		{"spiral_length_factor", p.SpiralLengthFactor, 0},
		{"animation_speed", p.AnimationSpeed, 0},
		{"anchor_offset_x", p.AnchorOffsetX, -1},
		{"anchor_offset_y", p.AnchorOffsetY, -1},
	}
	for _, f := range floats {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			return fmt.Errorf("%s must be finite, got %v", f.name, f.value)
		case f.sign == 1 && f.value <= 0:
			return fmt.Errorf("%s must be positive, got %v", f.name, f.value)
		case f.sign == 0 && f.value < 0:
			return fmt.Errorf("%s must not be negative, got %v", f.name, f.value)
		}
	}
	if p.CircleSpiralSwitchover < 0 {
		return fmt.Errorf("circle_spiral_switchover must not be negative, got %d", p.CircleSpiralSwitchover)
	}
	return nil
}
