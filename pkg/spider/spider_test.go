package spider

import (
	"math"
	"reflect"
	"testing"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	want := Parameters{
		CircleFootSeparation:   90,
		CircleSpiralSwitchover: 9,
		SpiralFootSeparation:   80,
		SpiralLengthStart:      60,
		SpiralLengthFactor:     5,
		Animate:                true,
		AnimationSpeed:         500,
		AnchorOffsetX:          0,
		AnchorOffsetY:          0,
		ForceLegsWhenSingle:    false,
	}
	if p != want {
		t.Errorf("DefaultParameters() = %+v, want %+v", p, want)
	}
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		switchover int
		want       Mode
	}{
		{"below switchover", 8, 9, ModeCircle},
		{"at switchover", 9, 9, ModeSpiral},
		{"above switchover", 50, 9, ModeSpiral},
		{"zero switchover always spiral", 1, 0, ModeSpiral},
		{"unreachable switchover always circle", 1_000_000, AlwaysCircle, ModeCircle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectMode(tt.count, tt.switchover); got != tt.want {
				t.Errorf("SelectMode(%d, %d) = %v, want %v", tt.count, tt.switchover, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeCircle, ModeSpiral} {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m.String(), err)
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if _, err := ParseMode("helix"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestComputeEmpty(t *testing.T) {
	for _, count := range []int{0, -3} {
		l := Compute(count, DefaultParameters())
		if !l.Empty() {
			t.Errorf("Compute(%d) returned %d records, want none", count, len(l.Records))
		}
		if l.Radius() != 0 {
			t.Errorf("Compute(%d).Radius() = %v, want 0", count, l.Radius())
		}
	}
}

func TestComputeIndices(t *testing.T) {
	p := DefaultParameters()
	for _, count := range []int{1, 2, 5, 8, 9, 10, 57, 300} {
		l := Compute(count, p)
		if len(l.Records) != count {
			t.Fatalf("count %d: got %d records", count, len(l.Records))
		}
		if l.Count != count {
			t.Errorf("count %d: Layout.Count = %d", count, l.Count)
		}
		for i, r := range l.Records {
			if r.Index != i {
				t.Errorf("count %d: record %d has index %d", count, i, r.Index)
			}
		}
		if !l.Finite() {
			t.Errorf("count %d: layout has non-finite values", count)
		}
	}
}

func TestComputeSingleMarker(t *testing.T) {
	l := Compute(1, DefaultParameters())
	if l.Mode != ModeCircle {
		t.Fatalf("Mode = %v, want circle", l.Mode)
	}
	r := l.Records[0]
	wantLeg := 90.0 * 3 / (2 * math.Pi)
	if r.Angle != 0 {
		t.Errorf("Angle = %v, want 0", r.Angle)
	}
	if !approx(r.LegLength, wantLeg) {
		t.Errorf("LegLength = %v, want %v", r.LegLength, wantLeg)
	}
	if !approx(r.X, wantLeg) || r.Y != 0 {
		t.Errorf("position = (%v, %v), want (%v, 0)", r.X, r.Y, wantLeg)
	}
	if r.ShouldRenderLeg {
		t.Error("single marker should not render a leg by default")
	}
	if r.TransitionDelay != 0 {
		t.Errorf("TransitionDelay = %v, want 0", r.TransitionDelay)
	}
	if r.StackOrder != nil {
		t.Error("circle records must not carry a stack order")
	}
}

func TestShouldRenderLeg(t *testing.T) {
	tests := []struct {
		name  string
		count int
		force bool
		want  bool
	}{
		{"single", 1, false, false},
		{"single forced", 1, true, true},
		{"pair", 2, false, true},
		{"spiral", 20, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			p.ForceLegsWhenSingle = tt.force
			for _, r := range Compute(tt.count, p).Records {
				if r.ShouldRenderLeg != tt.want {
					t.Fatalf("record %d: ShouldRenderLeg = %v, want %v", r.Index, r.ShouldRenderLeg, tt.want)
				}
			}
		})
	}
}

func TestCircleGeometry(t *testing.T) {
	p := DefaultParameters()
	p.AnchorOffsetX = 12
	p.AnchorOffsetY = -4

	for _, count := range []int{2, 3, 7, 8} {
		l := Compute(count, p)
		if l.Mode != ModeCircle {
			t.Fatalf("count %d: mode = %v, want circle", count, l.Mode)
		}
		radius := p.CircleFootSeparation * float64(count+2) / (2 * math.Pi)
		step := 2 * math.Pi / float64(count)
		for i, r := range l.Records {
			if !approx(r.LegLength+p.AnchorOffsetX, radius) {
				t.Errorf("count %d, record %d: radius %v, want %v", count, i, r.LegLength+p.AnchorOffsetX, radius)
			}
			if i > 0 && !approx(r.Angle-l.Records[i-1].Angle, step) {
				t.Errorf("count %d, record %d: angle step %v, want %v", count, i, r.Angle-l.Records[i-1].Angle, step)
			}
			wantX := radius*math.Cos(r.Angle) + p.AnchorOffsetX
			wantY := radius*math.Sin(r.Angle) + p.AnchorOffsetY
			if !approx(r.X, wantX) || !approx(r.Y, wantY) {
				t.Errorf("count %d, record %d: (%v, %v), want (%v, %v)", count, i, r.X, r.Y, wantX, wantY)
			}
		}
		if !approx(l.Radius(), radius) {
			t.Errorf("count %d: Radius() = %v, want %v", count, l.Radius(), radius)
		}
	}
}

func TestSpiralGeometry(t *testing.T) {
	p := DefaultParameters()
	for _, count := range []int{9, 10, 40, 250} {
		l := Compute(count, p)
		if l.Mode != ModeSpiral {
			t.Fatalf("count %d: mode = %v, want spiral", count, l.Mode)
		}
		for i, r := range l.Records {
			if r.StackOrder == nil {
				t.Fatalf("count %d, record %d: missing stack order", count, i)
			}
			if *r.StackOrder != count-i {
				t.Errorf("count %d, record %d: StackOrder = %d, want %d", count, i, *r.StackOrder, count-i)
			}
			if i == 0 {
				continue
			}
			prev := l.Records[i-1]
			if r.Angle <= prev.Angle {
				t.Errorf("count %d, record %d: angle %v not greater than %v", count, i, r.Angle, prev.Angle)
			}
			if r.LegLength < prev.LegLength {
				t.Errorf("count %d, record %d: leg %v shorter than %v", count, i, r.LegLength, prev.LegLength)
			}
		}
	}
}

func TestSpiralFirstStep(t *testing.T) {
	p := DefaultParameters()
	r := Spiral(1, p)[0]
	wantAngle := p.SpiralFootSeparation / p.SpiralLengthStart
	wantLeg := p.SpiralLengthStart + 2*math.Pi*p.SpiralLengthFactor/wantAngle
	if !approx(r.Angle, wantAngle) {
		t.Errorf("Angle = %v, want %v", r.Angle, wantAngle)
	}
	if !approx(r.LegLength, wantLeg) {
		t.Errorf("LegLength = %v, want %v", r.LegLength, wantLeg)
	}
}

func TestSpiralNineDefaults(t *testing.T) {
	l := Compute(9, DefaultParameters())
	minStack, minIdx := math.MaxInt, -1
	for _, r := range l.Records {
		if *r.StackOrder < minStack {
			minStack, minIdx = *r.StackOrder, r.Index
		}
	}
	if minStack != 1 || minIdx != 8 {
		t.Errorf("smallest stack order %d at index %d, want 1 at index 8", minStack, minIdx)
	}
}

func TestAnchorOffsetAsymmetry(t *testing.T) {
	base := DefaultParameters()
	shifted := base
	shifted.AnchorOffsetX = 30

	a := Compute(3, base).Records
	b := Compute(3, shifted).Records
	for i := range a {
		if !approx(b[i].LegLength, a[i].LegLength-30) {
			t.Errorf("record %d: LegLength %v, want %v", i, b[i].LegLength, a[i].LegLength-30)
		}
		if !approx(b[i].X, a[i].X+30) {
			t.Errorf("record %d: X %v, want %v", i, b[i].X, a[i].X+30)
		}
	}
}

func TestTransitionDelay(t *testing.T) {
	tests := []struct {
		index, count int
		speed        float64
		want         float64
	}{
		{0, 1, 500, 0},
		{0, 10, 500, 0},
		{5, 10, 500, 0.25},
		{9, 10, 500, 0.45},
		{3, 4, 1000, 0.75},
	}
	for _, tt := range tests {
		if got := TransitionDelay(tt.index, tt.count, tt.speed); !approx(got, tt.want) {
			t.Errorf("TransitionDelay(%d, %d, %v) = %v, want %v", tt.index, tt.count, tt.speed, got, tt.want)
		}
	}

	records := Compute(25, DefaultParameters()).Records
	for i := 1; i < len(records); i++ {
		if records[i].TransitionDelay <= records[i-1].TransitionDelay {
			t.Fatalf("delay not increasing at %d", i)
		}
	}
	if last := records[len(records)-1].TransitionDelay; last >= 0.5 {
		t.Errorf("last delay %v should stay below 0.5s", last)
	}
}

func TestUniformFields(t *testing.T) {
	p := DefaultParameters()
	p.Animate = false
	p.AnimationSpeed = 250
	for _, r := range Compute(12, p).Records {
		if r.Animate || r.AnimationSpeed != 250 {
			t.Fatalf("record %d: animate=%v speed=%v", r.Index, r.Animate, r.AnimationSpeed)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	p := DefaultParameters()
	for _, count := range []int{1, 8, 9, 100} {
		a := Compute(count, p)
		b := Compute(count, p)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("count %d: repeated Compute differs", count)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Parameters)
		wantErr bool
	}{
		{"defaults", func(*Parameters) {}, false},
		{"negative offsets allowed", func(p *Parameters) { p.AnchorOffsetX = -20; p.AnchorOffsetY = -3 }, false},
		{"zero switchover", func(p *Parameters) { p.CircleSpiralSwitchover = 0 }, false},
		{"NaN separation", func(p *Parameters) { p.CircleFootSeparation = math.NaN() }, true},
		{"infinite offset", func(p *Parameters) { p.AnchorOffsetY = math.Inf(1) }, true},
		{"zero spiral start", func(p *Parameters) { p.SpiralLengthStart = 0 }, true},
		{"zero spiral separation", func(p *Parameters) { p.SpiralFootSeparation = 0 }, true},
		{"zero circle separation", func(p *Parameters) { p.CircleFootSeparation = 0 }, false},
		{"negative speed", func(p *Parameters) { p.AnimationSpeed = -1 }, true},
		{"negative switchover", func(p *Parameters) { p.CircleSpiralSwitchover = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGuardsFiniteOutput(t *testing.T) {
	p := DefaultParameters()
	p.SpiralFootSeparation = 0
	if Compute(9, p).Finite() {
		t.Fatal("zero spiral separation should produce non-finite records")
	}
	if p.Validate() == nil {
		t.Error("Validate() accepted parameters that make Compute non-finite")
	}

	p = DefaultParameters()
	p.CircleFootSeparation = 0
	if !Compute(5, p).Finite() || p.Validate() != nil {
		t.Error("zero circle separation should be finite and valid")
	}
}

func TestFiniteDetectsNaN(t *testing.T) {
	p := DefaultParameters()
	p.CircleFootSeparation = math.NaN()
	if Compute(3, p).Finite() {
		t.Error("Finite() should report NaN coordinates")
	}
}

func TestNeedsRelayout(t *testing.T) {
	base := DefaultParameters()
	tests := []struct {
		name   string
		count  int
		mutate func(*Parameters)
		want   bool
	}{
		{"unchanged", 5, func(*Parameters) {}, false},
		{"count changed", 6, func(*Parameters) {}, true},
		{"circle separation", 5, func(p *Parameters) { p.CircleFootSeparation = 100 }, true},
		{"switchover", 5, func(p *Parameters) { p.CircleSpiralSwitchover = 4 }, true},
		{"spiral separation", 5, func(p *Parameters) { p.SpiralFootSeparation = 70 }, true},
		{"spiral start", 5, func(p *Parameters) { p.SpiralLengthStart = 50 }, true},
		{"spiral factor", 5, func(p *Parameters) { p.SpiralLengthFactor = 4 }, true},
		{"offset x", 5, func(p *Parameters) { p.AnchorOffsetX = 1 }, true},
		{"force legs", 5, func(p *Parameters) { p.ForceLegsWhenSingle = true }, true},
		{"offset y ignored", 5, func(p *Parameters) { p.AnchorOffsetY = 8 }, false},
		{"animate ignored", 5, func(p *Parameters) { p.Animate = false }, false},
		{"speed ignored", 5, func(p *Parameters) { p.AnimationSpeed = 900 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			tt.mutate(&next)
			if got := NeedsRelayout(5, base, tt.count, next); got != tt.want {
				t.Errorf("NeedsRelayout() = %v, want %v", got, tt.want)
			}
		})
	}

	if len(RelayoutFields) != 7 {
		t.Errorf("RelayoutFields has %d entries, want 7", len(RelayoutFields))
	}
}
