package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/matzehuels/spiderfy/pkg/document"
)

// MaxRasterSide bounds raster output in pixels on either axis.
const MaxRasterSide = 8192

// supersample is the factor shapes are rasterized at before downscaling.
const supersample = 2

// bezierCircle is the control point distance for a quarter circle.
const bezierCircle = 0.5522847498

// RenderRaster draws doc into an RGBA image without any external tools.
// Labels are not drawn.
func RenderRaster(doc document.Document, opts ...Option) (*image.RGBA, error) {
	o := NewOptions(opts...)
	f := FrameFor(doc, o)
	w, h := OutputSize(f, o)
	if math.IsNaN(w) || math.IsNaN(h) || w < 1 || h < 1 || w > MaxRasterSide || h > MaxRasterSide {
		return nil, fmt.Errorf("raster size %.0fx%.0f out of range (1..%d)", w, h, MaxRasterSide)
	}

	pw, ph := int(math.Ceil(w)), int(math.Ceil(h))
	c := newCanvas(pw*supersample, ph*supersample, f)

	bg, err := parseHexColor(o.Theme.Background)
	if err != nil {
		return nil, fmt.Errorf("theme background: %w", err)
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	legColor := colorOr(o.Theme.Leg, color.NRGBA{A: 255})
	for i, r := range doc.Records {
		if !r.ShouldRenderLeg {
			continue
		}
		x1, y1, x2, y2 := legSegment(doc, i)
		lc := legColor
		if m := doc.MarkerAt(i); m.LegColor != "" {
			lc = colorOr(m.LegColor, legColor)
		}
		c.line(x1, y1, x2, y2, o.LegWidth, lc)
	}

	c.circle(0, 0, o.MarkerRadius/3, colorOr(o.Theme.Anchor, color.NRGBA{A: 255}))

	markerColor := colorOr(o.Theme.Marker, color.NRGBA{A: 255})
	strokeColor := colorOr(o.Theme.MarkerStroke, markerColor)
	for _, i := range drawOrder(doc) {
		r := doc.Records[i]
		fill := markerColor
		if m := doc.MarkerAt(i); m.Color != "" {
			fill = colorOr(m.Color, markerColor)
		}
		c.circle(r.X, r.Y, o.MarkerRadius, strokeColor)
		c.circle(r.X, r.Y, o.MarkerRadius-1.5, fill)
	}

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.CatmullRom.Scale(dst, dst.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return dst, nil
}

// RenderPNG renders doc with [RenderRaster] and encodes it as PNG.
func RenderPNG(doc document.Document, opts ...Option) ([]byte, error) {
	return renderEncoded(doc, EncodePNG, opts)
}

// RenderWebP renders doc with [RenderRaster] and encodes it as lossless WebP.
func RenderWebP(doc document.Document, opts ...Option) ([]byte, error) {
	return renderEncoded(doc, EncodeWebP, opts)
}

func renderEncoded(doc document.Document, encode func(io.Writer, image.Image) error, opts []Option) ([]byte, error) {
	img, err := RenderRaster(doc, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("PNG encode: %w", err)
	}
	return nil
}

// EncodeWebP writes img as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return nil
}

// canvas maps layout coordinates onto a supersampled image.
type canvas struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	frame  Frame
	sx, sy float64
}

func newCanvas(w, h int, f Frame) *canvas {
	return &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		z:     vector.NewRasterizer(w, h),
		frame: f,
		sx:    float64(w) / f.Width,
		sy:    float64(h) / f.Height,
	}
}

func (c *canvas) pt(x, y float64) (float32, float32) {
	return float32((x - c.frame.MinX) * c.sx), float32((y - c.frame.MinY) * c.sy)
}

func (c *canvas) fill(col color.Color) {
	b := c.img.Bounds()
	c.z.DrawOp = draw.Over
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
	c.z.Reset(b.Dx(), b.Dy())
}

// line draws a segment of the given width in layout units as a quad.
func (c *canvas) line(x0, y0, x1, y1, width float64, col color.Color) {
	dx, dy := x1-x0, y1-y0
	n := math.Hypot(dx, dy)
	if n == 0 || width <= 0 {
		return
	}
	hw := width / 2
	px, py := -dy/n*hw, dx/n*hw

	c.z.MoveTo(c.pt(x0+px, y0+py))
	c.z.LineTo(c.pt(x1+px, y1+py))
	c.z.LineTo(c.pt(x1-px, y1-py))
	c.z.LineTo(c.pt(x0-px, y0-py))
	c.z.ClosePath()
	c.fill(col)
}

// circle draws a filled circle from four cubic arcs.
func (c *canvas) circle(cx, cy, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	k := r * bezierCircle
	c.z.MoveTo(c.pt(cx+r, cy))
	c.cubic(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	c.cubic(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	c.cubic(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	c.cubic(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	c.z.ClosePath()
	c.fill(col)
}

func (c *canvas) cubic(x1, y1, x2, y2, x3, y3 float64) {
	ax, ay := c.pt(x1, y1)
	bx, by := c.pt(x2, y2)
	ex, ey := c.pt(x3, y3)
	c.z.CubeTo(ax, ay, bx, by, ex, ey)
}

// parseHexColor parses "#rgb" or "#rrggbb".
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func colorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := parseHexColor(s)
	if err != nil {
		return fallback
	}
	return c
}
