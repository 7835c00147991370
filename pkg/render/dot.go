package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spiderfy/pkg/document"
)

// ToDOT converts doc to an undirected Graphviz graph. The anchor and every
// marker are pinned to their layout positions (Y flipped, since Graphviz Y
// grows upwards) so the neato engine draws the layout as computed. Legs
// become edges from the anchor when the record asks for one.
func ToDOT(doc document.Document, opts ...Option) string {
	o := NewOptions(opts...)

	var buf bytes.Buffer
	buf.WriteString("graph spiderfy {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", o.Theme.Background)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, width=%.3f, color=%q, fillcolor=%q, fontsize=10, fontcolor=%q];\n",
		2*o.MarkerRadius/72, o.Theme.MarkerStroke, o.Theme.Marker, o.Theme.Label)
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=%.2f];\n", o.Theme.Leg, o.LegWidth)
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  anchor [shape=point, width=%.3f, color=%q, fillcolor=%q, pos=\"0,0!\"];\n",
		o.MarkerRadius/72, o.Theme.Anchor, o.Theme.Anchor)

	for _, i := range drawOrder(doc) {
		r := doc.Records[i]
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(r.Index), strings.Join(dotAttrs(doc, i, o), ", "))
	}

	buf.WriteString("\n")
	for _, r := range doc.Records {
		if r.ShouldRenderLeg {
			fmt.Fprintf(&buf, "  anchor -- %s;\n", nodeName(r.Index))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(index int) string {
	return fmt.Sprintf("m%d", index)
}

func dotAttrs(doc document.Document, i int, o Options) []string {
	r := doc.Records[i]
	m := doc.MarkerAt(i)

	label := ""
	if o.Labels {
		label = m.Label
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", r.X, flipY(r.Y)),
	}
	if m.ID != "" {
		attrs = append(attrs, fmt.Sprintf("id=%q", "marker-"+m.ID))
	}
	if m.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", m.Color))
	}
	return attrs
}

// flipY negates y, snapping values that would print as -0.00 to zero.
func flipY(y float64) float64 {
	if math.Abs(y) < 0.005 {
		return 0
	}
	return -y
}

// RenderDOTSVG renders doc through Graphviz as SVG.
func RenderDOTSVG(ctx context.Context, doc document.Document, opts ...Option) ([]byte, error) {
	return renderDOT(ctx, ToDOT(doc, opts...), graphviz.SVG)
}

// RenderDOTPNG renders doc through Graphviz as PNG.
func RenderDOTPNG(ctx context.Context, doc document.Document, opts ...Option) ([]byte, error) {
	return renderDOT(ctx, ToDOT(doc, opts...), graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
