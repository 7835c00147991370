package render

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/spiderfy/pkg/document"
)

// Default rendering values.
const (
	DefaultMarkerRadius = 10.0
	DefaultPadding      = 20.0
	DefaultScale        = 1.0
	DefaultLegWidth     = 2.0
)

// Options controls every sink. Use [Option] functions to build one.
type Options struct {
	// Width and Height fix the output size in pixels. When only one is set
	// the other follows the frame's aspect ratio. Zero means frame size*Scale.
	Width  float64
	Height float64
	Scale  float64

	Theme        Theme
	MarkerRadius float64
	Padding      float64
	LegWidth     float64

	// Labels draws marker labels next to markers (SVG and DOT only).
	Labels bool

	// Static disables the entrance animation even if the layout requests it.
	Static bool
}

// Option configures rendering.
type Option func(*Options)

func WithSize(w, h float64) Option      { return func(o *Options) { o.Width, o.Height = w, h } }
func WithScale(s float64) Option        { return func(o *Options) { o.Scale = s } }
func WithMarkerRadius(r float64) Option { return func(o *Options) { o.MarkerRadius = r } }
func WithPadding(p float64) Option      { return func(o *Options) { o.Padding = p } }
func WithLegWidth(w float64) Option     { return func(o *Options) { o.LegWidth = w } }
func WithLabels() Option                { return func(o *Options) { o.Labels = true } }
func WithStatic() Option                { return func(o *Options) { o.Static = true } }
func WithThemeValue(t Theme) Option     { return func(o *Options) { o.Theme = t } }

// WithTheme selects a built-in theme by name. Unknown names keep the
// current theme; use [ThemeByName] to validate names up front.
func WithTheme(name string) Option {
	return func(o *Options) {
		if t, err := ThemeByName(name); err == nil {
			o.Theme = t
		}
	}
}

// NewOptions applies opts on top of the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		Scale:        DefaultScale,
		Theme:        LightTheme,
		MarkerRadius: DefaultMarkerRadius,
		Padding:      DefaultPadding,
		LegWidth:     DefaultLegWidth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return o
}

// Frame is the visible region in layout coordinates.
type Frame struct {
	MinX, MinY    float64
	Width, Height float64
}

// FrameFor returns the region enclosing the anchor, the leg origin and all markers of doc
// plus a margin of MarkerRadius+Padding on every side.
func FrameFor(doc document.Document, o Options) Frame {
	b := doc.Bounds
	if len(doc.Records) > 0 {
		b.MinX = math.Min(b.MinX, doc.Params.AnchorOffsetX)
		b.MaxX = math.Max(b.MaxX, doc.Params.AnchorOffsetX)
		b.MinY = math.Min(b.MinY, doc.Params.AnchorOffsetY)
		b.MaxY = math.Max(b.MaxY, doc.Params.AnchorOffsetY)
	}
	m := o.MarkerRadius + o.Padding
	return Frame{
		MinX:   b.MinX - m,
		MinY:   b.MinY - m,
		Width:  b.Width() + 2*m,
		Height: b.Height() + 2*m,
	}
}

// OutputSize returns the artifact size in pixels for frame f.
func OutputSize(f Frame, o Options) (w, h float64) {
	switch {
	case o.Width > 0 && o.Height > 0:
		return o.Width, o.Height
	case o.Width > 0:
		return o.Width, f.Height * o.Width / f.Width
	case o.Height > 0:
		return f.Width * o.Height / f.Height, o.Height
	default:
		return f.Width * o.Scale, f.Height * o.Scale
	}
}

// Theme is a named color set. Colors are CSS hex strings.
type Theme struct {
	Name         string
	Background   string
	Leg          string
	Marker       string
	MarkerStroke string
	Anchor       string
	Label        string
}

var (
	LightTheme = Theme{
		Name:         "light",
		Background:   "#ffffff",
		Leg:          "#5a6270",
		Marker:       "#3b82f6",
		MarkerStroke: "#1e3a8a",
		Anchor:       "#111827",
		Label:        "#111827",
	}
	DarkTheme = Theme{
		Name:         "dark",
		Background:   "#111827",
		Leg:          "#9ca3af",
		Marker:       "#f59e0b",
		MarkerStroke: "#fde68a",
		Anchor:       "#f9fafb",
		Label:        "#f9fafb",
	}
)

var themes = map[string]Theme{
	LightTheme.Name: LightTheme,
	DarkTheme.Name:  DarkTheme,
}

// ThemeByName looks up a built-in theme. The empty name selects light.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		return LightTheme, nil
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme: %q (must be one of %v)", name, ThemeNames())
	}
	return t, nil
}

// ThemeNames lists the built-in theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// drawOrder returns record positions sorted by ascending StackOrder. Records
// without a StackOrder keep their index order.
func drawOrder(doc document.Document) []int {
	order := make([]int, len(doc.Records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return stackOf(doc, a) - stackOf(doc, b)
	})
	return order
}

func stackOf(doc document.Document, i int) int {
	if s := doc.Records[i].StackOrder; s != nil {
		return *s
	}
	return 0
}

// legSegment returns the leg of record i. Legs run from the offset anchor
// point to the marker position, so they stay attached to their markers even
// though LegLength excludes the vertical offset.
func legSegment(doc document.Document, i int) (x1, y1, x2, y2 float64) {
	r := doc.Records[i]
	return doc.Params.AnchorOffsetX, doc.Params.AnchorOffsetY, r.X, r.Y
}
