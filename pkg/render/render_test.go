package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

func testDoc(count int, markers []document.Marker) document.Document {
	return document.FromLayout(spider.Compute(count, spider.DefaultParameters()), document.Anchor{}, markers)
}

func TestFrameFor(t *testing.T) {
	doc := testDoc(1, nil)
	o := NewOptions()
	f := FrameFor(doc, o)

	m := DefaultMarkerRadius + DefaultPadding
	if f.MinX != -m {
		t.Errorf("MinX = %v, want %v", f.MinX, -m)
	}
	wantW := doc.Bounds.Width() + 2*m
	if math.Abs(f.Width-wantW) > 1e-9 {
		t.Errorf("Width = %v, want %v", f.Width, wantW)
	}
	if f.Height != 2*m {
		t.Errorf("Height = %v, want %v", f.Height, 2*m)
	}
}

func TestNewOptions(t *testing.T) {
	o := NewOptions(WithPadding(5), WithLegWidth(4), WithThemeValue(DarkTheme))
	if o.Padding != 5 || o.LegWidth != 4 || o.Theme.Name != "dark" {
		t.Errorf("NewOptions() = %+v", o)
	}

	f := FrameFor(testDoc(1, nil), o)
	if want := 2 * (DefaultMarkerRadius + 5); f.Height != want {
		t.Errorf("Height with padding 5 = %v, want %v", f.Height, want)
	}
}

func TestOutputSize(t *testing.T) {
	f := Frame{Width: 200, Height: 100}
	tests := []struct {
		name  string
		opts  []Option
		wantW float64
		wantH float64
	}{
		{"default", nil, 200, 100},
		{"scale", []Option{WithScale(2)}, 400, 200},
		{"width only", []Option{WithSize(100, 0)}, 100, 50},
		{"height only", []Option{WithSize(0, 300)}, 600, 300},
		{"both", []Option{WithSize(64, 64)}, 64, 64},
		{"non-positive scale", []Option{WithScale(-1)}, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := OutputSize(f, NewOptions(tt.opts...))
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("OutputSize() = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThemeByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "light", false},
		{"light", "light", false},
		{"dark", "dark", false},
		{"neon", "", true},
	}
	for _, tt := range tests {
		got, err := ThemeByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ThemeByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("ThemeByName(%q) = %q, want %q", tt.name, got.Name, tt.want)
		}
	}

	if o := NewOptions(WithTheme("neon")); o.Theme.Name != "light" {
		t.Errorf("unknown theme changed options to %q", o.Theme.Name)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testDoc(3, nil)))

	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("RenderSVG() missing svg root: %.40q", svg)
	}
	if got := strings.Count(svg, `class="leg"`); got != 3 {
		t.Errorf("legs = %d, want 3", got)
	}
	if got := strings.Count(svg, `class="marker"`); got != 3 {
		t.Errorf("markers = %d, want 3", got)
	}
	if !strings.Contains(svg, `class="spider animated"`) {
		t.Error("animated layout not marked as animated")
	}
	if !strings.Contains(svg, "--delay: 0.167s") {
		t.Error("missing transition delay for index 1")
	}
}

func TestRenderSVGSingleMarkerHasNoLeg(t *testing.T) {
	svg := string(RenderSVG(testDoc(1, nil)))
	if strings.Contains(svg, `class="leg"`) {
		t.Error("single marker should not render a leg")
	}

	p := spider.DefaultParameters()
	p.ForceLegsWhenSingle = true
	doc := document.FromLayout(spider.Compute(1, p), document.Anchor{}, nil)
	if !strings.Contains(string(RenderSVG(doc)), `class="leg"`) {
		t.Error("forced leg not rendered")
	}
}

func TestLegsReachMarkersWithOffsets(t *testing.T) {
	p := spider.DefaultParameters()
	p.AnchorOffsetX = 12
	p.AnchorOffsetY = -7
	doc := document.FromLayout(spider.Compute(4, p), document.Anchor{}, nil)

	svg := string(RenderSVG(doc))
	for i, r := range doc.Records {
		x1, y1, x2, y2 := legSegment(doc, i)
		if x1 != 12 || y1 != -7 || x2 != r.X || y2 != r.Y {
			t.Errorf("legSegment(%d) = (%v,%v)-(%v,%v), want (12,-7)-(%v,%v)", i, x1, y1, x2, y2, r.X, r.Y)
		}
		want := fmt.Sprintf(`x1="12.00" y1="-7.00" x2="%.2f" y2="%.2f"`, r.X, r.Y)
		if !strings.Contains(svg, want) {
			t.Errorf("leg %d not drawn to its marker, want %s", i, want)
		}
	}

	f := FrameFor(doc, NewOptions())
	if f.MinY > -7 || f.MinX+f.Width < 12 {
		t.Errorf("frame %+v does not enclose the leg origin", f)
	}
}

func TestRenderSVGStatic(t *testing.T) {
	p := spider.DefaultParameters()
	p.Animate = false
	notAnimated := document.FromLayout(spider.Compute(3, p), document.Anchor{}, nil)

	tests := []struct {
		name string
		svg  []byte
	}{
		{"static option", RenderSVG(testDoc(3, nil), WithStatic())},
		{"animate off", RenderSVG(notAnimated)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(tt.svg)
			for _, s := range []string{"animated", "--delay", "--speed", "@keyframes", "<style>"} {
				if strings.Contains(svg, s) {
					t.Errorf("static render contains %q", s)
				}
			}
			if got := strings.Count(svg, `class="marker"`); got != 3 {
				t.Errorf("markers = %d, want 3", got)
			}
		})
	}

	if svg := string(RenderSVG(testDoc(3, nil))); !strings.Contains(svg, "@keyframes") {
		t.Error("animated render is missing its entrance rules")
	}
}

func TestRenderSVGMarkers(t *testing.T) {
	markers := []document.Marker{
		{ID: "a", Label: "Fish & Chips", Color: "#ff0000", LegColor: "#00ff00"},
		{ID: "b"},
	}
	svg := string(RenderSVG(testDoc(2, markers), WithLabels()))

	for _, want := range []string{
		`id="marker-a"`,
		`fill="#ff0000"`,
		`stroke="#00ff00"`,
		"Fish &amp; Chips",
		`class="label"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
}

func TestRenderSVGSpiralStacking(t *testing.T) {
	svg := string(RenderSVG(testDoc(9, nil)))

	// Lowest StackOrder (last index) is drawn first.
	first := strings.Index(svg, `class="marker" data-index="8"`)
	last := strings.Index(svg, `class="marker" data-index="0"`)
	if first < 0 || last < 0 || first > last {
		t.Errorf("spiral markers not drawn in stack order (first=%d, last=%d)", first, last)
	}
}

func TestRenderJSON(t *testing.T) {
	doc := testDoc(4, nil)
	data, err := RenderJSON(doc)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	got, err := document.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Count != 4 || len(got.Records) != 4 {
		t.Errorf("round trip count = %d/%d, want 4", got.Count, len(got.Records))
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDoc(2, []document.Marker{{ID: "a", Label: "A"}}), WithLabels())

	for _, want := range []string{
		"graph spiderfy",
		"layout=neato",
		`anchor [shape=point`,
		`pos="0,0!"`,
		"anchor -- m0;",
		"anchor -- m1;",
		`label="A"`,
		`id="marker-a"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
	if strings.Contains(dot, "-0.00") {
		t.Error("ToDOT() emitted negative zero")
	}
}

func TestToDOTNoLegForSingle(t *testing.T) {
	dot := ToDOT(testDoc(1, nil))
	if strings.Contains(dot, "--") {
		t.Error("single marker should have no edge")
	}
}

func TestRenderDOTSVG(t *testing.T) {
	svg, err := RenderDOTSVG(context.Background(), testDoc(5, nil))
	if err != nil {
		t.Fatalf("RenderDOTSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderDOTSVG() output is not SVG")
	}
}

func TestRenderRaster(t *testing.T) {
	doc := testDoc(3, nil)
	img, err := RenderRaster(doc, WithScale(2))
	if err != nil {
		t.Fatalf("RenderRaster() error: %v", err)
	}

	f := FrameFor(doc, NewOptions())
	wantW := int(math.Ceil(f.Width * 2))
	if img.Bounds().Dx() != wantW {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), wantW)
	}

	corner := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if corner.R < 250 || corner.G < 250 || corner.B < 250 {
		t.Errorf("corner pixel = %v, want background white", corner)
	}

	// Anchor sits at the layout origin.
	ax := int((0 - f.MinX) * 2)
	ay := int((0 - f.MinY) * 2)
	anchor := color.RGBAModel.Convert(img.At(ax, ay)).(color.RGBA)
	if anchor.R > 60 || anchor.G > 60 || anchor.B > 60 {
		t.Errorf("anchor pixel = %v, want dark", anchor)
	}
}

func TestRenderRasterRejectsOversize(t *testing.T) {
	if _, err := RenderRaster(testDoc(3, nil), WithSize(MaxRasterSide+1, 10)); err == nil {
		t.Error("RenderRaster() accepted oversize output")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testDoc(12, nil), WithSize(128, 128))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Errorf("bounds = %v, want 128x128", img.Bounds())
	}
}

func TestRenderWebP(t *testing.T) {
	data, err := RenderWebP(testDoc(4, nil))
	if err != nil {
		t.Fatalf("RenderWebP() error: %v", err)
	}
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("RenderWebP() output is not a WebP container: % x", data[:min(len(data), 12)])
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"#f00", color.NRGBA{R: 255, A: 255}, false},
		{"00ff00", color.NRGBA{G: 255, A: 255}, false},
		{"#12345", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
