package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/spiderfy/pkg/document"
)

const entranceCSS = `
    .leg { stroke-linecap: round; }
    .marker { transform-box: fill-box; transform-origin: center; }
    .animated .leg { opacity: 0; animation: spiderfy-leg var(--speed) ease-out forwards; animation-delay: var(--delay); }
    .animated .marker { opacity: 0; animation: spiderfy-marker var(--speed) ease-out forwards; animation-delay: var(--delay); }
    @keyframes spiderfy-leg { from { opacity: 0; } to { opacity: 1; } }
    @keyframes spiderfy-marker { from { opacity: 0; transform: scale(0.2); } to { opacity: 1; transform: scale(1); } }`

// RenderSVG renders doc as a standalone SVG document. When the layout is
// animated each leg and marker fades in after its record's transition delay.
func RenderSVG(doc document.Document, opts ...Option) []byte {
	o := NewOptions(opts...)
	f := FrameFor(doc, o)
	w, h := OutputSize(f, o)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		f.MinX, f.MinY, f.Width, f.Height, w, h)
	animated := doc.Params.Animate && !o.Static
	if animated {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", entranceCSS)
	}
	fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		f.MinX, f.MinY, f.Width, f.Height, o.Theme.Background)

	if animated {
		buf.WriteString(`  <g class="spider animated">` + "\n")
	} else {
		buf.WriteString(`  <g class="spider">` + "\n")
	}

	renderLegs(&buf, doc, o, animated)
	fmt.Fprintf(&buf, `    <circle class="anchor" cx="0" cy="0" r="%.2f" fill="%s"/>`+"\n", o.MarkerRadius/3, o.Theme.Anchor)
	renderMarkers(&buf, doc, o, animated)

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderLegs(buf *bytes.Buffer, doc document.Document, o Options, animated bool) {
	for i, r := range doc.Records {
		if !r.ShouldRenderLeg {
			continue
		}
		x1, y1, x2, y2 := legSegment(doc, i)
		color := o.Theme.Leg
		if m := doc.MarkerAt(i); m.LegColor != "" {
			color = m.LegColor
		}
		fmt.Fprintf(buf, `    <line class="leg" data-index="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
			r.Index, x1, y1, x2, y2, html.EscapeString(color), o.LegWidth, animationStyle(r.TransitionDelay, r.AnimationSpeed, animated))
	}
}

func renderMarkers(buf *bytes.Buffer, doc document.Document, o Options, animated bool) {
	for _, i := range drawOrder(doc) {
		r := doc.Records[i]
		m := doc.MarkerAt(i)
		fill := o.Theme.Marker
		if m.Color != "" {
			fill = m.Color
		}

		fmt.Fprintf(buf, `    <circle class="marker" data-index="%d"`, r.Index)
		if m.ID != "" {
			fmt.Fprintf(buf, ` id="marker-%s"`, html.EscapeString(m.ID))
		}
		fmt.Fprintf(buf, ` cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1.5"%s>`,
			r.X, r.Y, o.MarkerRadius, html.EscapeString(fill), o.Theme.MarkerStroke,
			animationStyle(r.TransitionDelay, r.AnimationSpeed, animated))
		if m.Label != "" {
			fmt.Fprintf(buf, "<title>%s</title>", html.EscapeString(m.Label))
		}
		buf.WriteString("</circle>\n")

		if o.Labels && m.Label != "" {
			fmt.Fprintf(buf, `    <text class="label" x="%.2f" y="%.2f" fill="%s" font-family="sans-serif" font-size="%.1f" dominant-baseline="middle">%s</text>`+"\n",
				r.X+o.MarkerRadius+4, r.Y, o.Theme.Label, o.MarkerRadius*1.2, html.EscapeString(m.Label))
		}
	}
}

func animationStyle(delay, speedMS float64, animated bool) string {
	if !animated {
		return ""
	}
	return fmt.Sprintf(` style="--delay: %.3fs; --speed: %.3fs"`, delay, speedMS/1000)
}
