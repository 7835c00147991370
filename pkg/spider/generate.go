package spider

import "math"

const twoPi = 2 * math.Pi

// CirclePadding is added to the marker count when sizing the ring so that
// small groups are not crowded together.
const CirclePadding = 2

// SpiralAngleNudge is added per index to the spiral angle increment. It keeps
// markers from overlapping at moderate counts.
const SpiralAngleNudge = 0.0005

// Circle places count markers evenly around a ring. The circumference is
// CircleFootSeparation*(count+CirclePadding), so spacing stays roughly
// constant as the count grows. All records share the same radius and carry
// no StackOrder.
func Circle(count int, p Parameters) []Record {
	if count <= 0 {
		return nil
	}

	circumference := p.CircleFootSeparation * float64(count+CirclePadding)
	legLength := circumference / twoPi
	angleStep := twoPi / float64(count)

	records := make([]Record, count)
	for i := range records {
		angle := float64(i) * angleStep
		records[i] = resolvePosition(p, legLength, angle)
		records[i].Index = i
		records[i].TransitionDelay = TransitionDelay(i, count, p.AnimationSpeed)
	}
	return records
}

// Spiral places count markers along an outward spiral starting at
// SpiralLengthStart. The angle grows by SpiralFootSeparation/legLength plus
// index*SpiralAngleNudge per step, then the leg grows by
// 2π*SpiralLengthFactor/angle. The angle is always incremented before it is
// used as a divisor.
//
// StackOrder is count-index, so earlier (inner) markers render above later ones.
func Spiral(count int, p Parameters) []Record {
	if count <= 0 {
		return nil
	}

	angle := 0.0
	legLength := p.SpiralLengthStart

	records := make([]Record, count)
	for i := range records {
		angle += p.SpiralFootSeparation/legLength + float64(i)*SpiralAngleNudge
		legLength += twoPi * p.SpiralLengthFactor / angle

		stack := count - i
		records[i] = resolvePosition(p, legLength, angle)
		records[i].Index = i
		records[i].TransitionDelay = TransitionDelay(i, count, p.AnimationSpeed)
		records[i].StackOrder = &stack
	}
	return records
}

// resolvePosition converts polar coordinates into a record. X carries
// AnchorOffsetX while LegLength has it subtracted.
func resolvePosition(p Parameters, legLength, angle float64) Record {
	return Record{
		Angle:     angle,
		LegLength: legLength - p.AnchorOffsetX,
		X:         legLength*math.Cos(angle) + p.AnchorOffsetX,
		Y:         legLength*math.Sin(angle) + p.AnchorOffsetY,
	}
}

// TransitionDelay returns the entrance stagger in seconds for the marker at
// index. Delays are spread evenly over speedMS milliseconds: the first marker
// starts at 0 and the last one just before speedMS/1000. count must be positive.
func TransitionDelay(index, count int, speedMS float64) float64 {
	return speedMS / 1000 / float64(count) * float64(index)
}
