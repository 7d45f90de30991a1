package sink

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/render/markers"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	size       float64
	padding    float64
	background string
	showText   bool
}

// WithSize sets the pixel width of the output image. Height follows from the
// aspect ratio of the projected scene. Default 800.
func WithSize(px float64) SVGOption { return func(r *svgRenderer) { r.size = px } }

// WithPadding sets the world-space margin added around the scene bounds
// before projection. Default 1.
func WithPadding(units float64) SVGOption { return func(r *svgRenderer) { r.padding = units } }

// WithBackground fills the canvas with the given CSS color before drawing.
// Without this the background is transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithoutText suppresses text markers. Dense label layers tend to overwhelm
// the top-down view.
func WithoutText() SVGOption { return func(r *svgRenderer) { r.showText = false } }

// RenderSVG projects the marker array onto the XY plane and draws it as an
// SVG document. The projection is orthographic and top-down: world X maps to
// image X, world Y to image Y with the axis flipped so +Y points up.
//
// Sphere and cube markers become circles and squares sized by their scale,
// line lists become stroked segments colored per segment, and text markers
// become labels. Delete markers and Z extents are ignored. Markers are drawn
// in array order, so later markers occlude earlier ones.
func RenderSVG(arr markers.MarkerArray, opts ...SVGOption) []byte {
	r := svgRenderer{size: 800, padding: 1, showText: true}
	for _, opt := range opts {
		opt(&r)
	}

	bounds := sceneBounds(arr)
	bounds.grow(r.padding)
	proj := newProjection(bounds, r.size)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		proj.width, proj.height, proj.width, proj.height)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill=%q/>`+"\n", r.background)
	}

	for _, m := range arr.Markers {
		switch m.Kind {
		case markers.KindLineList:
			renderLineList(&buf, proj, m)
		case markers.KindSphereList, markers.KindSphere:
			renderSpheres(&buf, proj, m)
		case markers.KindCubeList, markers.KindCube:
			renderCubes(&buf, proj, m)
		case markers.KindText:
			if r.showText {
				renderText(&buf, proj, m)
			}
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type bbox2 struct {
	minX, minY float64
	maxX, maxY float64
	valid      bool
}

func (b *bbox2) add(p r3.Vec) {
	if !b.valid {
		b.minX, b.maxX = p.X, p.X
		b.minY, b.maxY = p.Y, p.Y
		b.valid = true
		return
	}
	b.minX = math.Min(b.minX, p.X)
	b.maxX = math.Max(b.maxX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxY = math.Max(b.maxY, p.Y)
}

func (b *bbox2) grow(margin float64) {
	if !b.valid {
		b.minX, b.minY = -margin, -margin
		b.maxX, b.maxY = margin, margin
		b.valid = true
		return
	}
	b.minX -= margin
	b.minY -= margin
	b.maxX += margin
	b.maxY += margin
}

// sceneBounds collects the XY extent of every drawable marker. List kinds
// carry world coordinates in their points with an identity pose; solid kinds
// place their pose position directly.
func sceneBounds(arr markers.MarkerArray) bbox2 {
	var b bbox2
	for _, m := range arr.Markers {
		switch m.Kind {
		case markers.KindDelete:
			continue
		case markers.KindCube, markers.KindSphere, markers.KindText:
			b.add(m.Pose.Position)
		default:
			off := m.Pose.Position
			for _, p := range m.Points {
				b.add(r3.Add(off, p))
			}
		}
	}
	return b
}

type projection struct {
	origin r3.Vec
	scale  float64
	width  float64
	height float64
}

func newProjection(b bbox2, size float64) projection {
	w := b.maxX - b.minX
	h := b.maxY - b.minY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return projection{
		origin: r3.Vec{X: b.minX, Y: b.minY},
		scale:  size / w,
		width:  size,
		height: h * (size / w),
	}
}

// point maps a world position to image coordinates, flipping Y so that +Y in
// the world points towards the top of the image.
func (p projection) point(v r3.Vec) (x, y float64) {
	return (v.X - p.origin.X) * p.scale, p.height - (v.Y-p.origin.Y)*p.scale
}

// length maps a world-space distance to pixels, with a one-pixel floor so
// thin geometry stays visible.
func (p projection) length(d float64) float64 {
	return math.Max(d*p.scale, 1)
}

func renderLineList(buf *bytes.Buffer, proj projection, m markers.Marker) {
	width := proj.length(m.Scale.X)
	off := m.Pose.Position
	for i := 0; i+1 < len(m.Points); i += 2 {
		x1, y1 := proj.point(r3.Add(off, m.Points[i]))
		x2, y2 := proj.point(r3.Add(off, m.Points[i+1]))
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke=%q stroke-width="%.1f"/>`+"\n",
			x1, y1, x2, y2, segmentColor(m, i), width)
	}
}

func renderSpheres(buf *bytes.Buffer, proj projection, m markers.Marker) {
	radius := proj.length(m.Scale.X / 2)
	for i, p := range positionsOf(m) {
		x, y := proj.point(p)
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill=%q/>`+"\n",
			x, y, radius, pointColor(m, i))
	}
}

func renderCubes(buf *bytes.Buffer, proj projection, m markers.Marker) {
	side := proj.length(m.Scale.X)
	for i, p := range positionsOf(m) {
		x, y := proj.point(p)
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill=%q/>`+"\n",
			x-side/2, y-side/2, side, side, pointColor(m, i))
	}
}

func renderText(buf *bytes.Buffer, proj projection, m markers.Marker) {
	x, y := proj.point(m.Pose.Position)
	size := proj.length(m.Scale.Z)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" fill=%q>%s</text>`+"\n",
		x, y, size, cssColor(m.Color), escapeText(m.Text))
}

// positionsOf yields the world positions a solid or list marker occupies.
func positionsOf(m markers.Marker) []r3.Vec {
	switch m.Kind {
	case markers.KindCube, markers.KindSphere:
		return []r3.Vec{m.Pose.Position}
	}
	if m.Pose.Position == (r3.Vec{}) {
		return m.Points
	}
	out := make([]r3.Vec, len(m.Points))
	for i, p := range m.Points {
		out[i] = r3.Add(m.Pose.Position, p)
	}
	return out
}

func pointColor(m markers.Marker, i int) string {
	if i < len(m.Colors) {
		return cssColor(m.Colors[i])
	}
	return cssColor(m.Color)
}

// segmentColor picks the source-end color for the segment starting at point
// index i. The far end's color is dropped rather than blended.
func segmentColor(m markers.Marker, i int) string {
	if i < len(m.Colors) {
		return cssColor(m.Colors[i])
	}
	return cssColor(m.Color)
}

func cssColor(c markers.RGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)",
		channel(c.R), channel(c.G), channel(c.B), clamp01(c.A))
}

func channel(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
