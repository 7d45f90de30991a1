package markers

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// ellipseSamples is the number of boundary-ellipse samples per node; each
// consecutive sample pair contributes one line segment, closing the loop.
const ellipseSamples = 20

func centroidKind(useSphere bool) Kind {
	if useSphere {
		return KindSphereList
	}
	return KindCubeList
}

// CentroidMarker builds one point per node passing the filter, colored by
// colorFn and displaced to the layer's stratum.
func CentroidMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn ColorFunc, filter FilterFunc) Marker {
	m := Marker{
		Kind:      centroidKind(cfg.UseSphereMarker),
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.MarkerScale, Y: cfg.MarkerScale, Z: cfg.MarkerScale},
	}

	offset := cfg.ZOffset(vis)
	for _, n := range layer.Nodes() {
		if filter != nil && !filter(n) {
			continue
		}
		m.Points = append(m.Points, withZ(n.Position(), offset))
		m.Colors = append(m.Colors, makeColor(colorFn(n), cfg.MarkerAlpha))
	}
	return m
}

// PlaceCentroidMarker is the CentroidMarker variant restricted to real place
// nodes; virtual/frontier places contribute nothing.
func PlaceCentroidMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn ColorFunc) Marker {
	return CentroidMarker(cfg, layer, vis, ns, colorFn, func(n *scenegraph.Node) bool {
		attrs, ok := n.Place()
		return ok && attrs.RealPlace
	})
}

// FrontierMarkers builds one ellipsoid per virtual (non-real) place node,
// scaled by the node's frontier scale and oriented by its stored rotation.
// Marker ids increment from 0 in iteration order.
func FrontierMarkers(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn ColorFunc) []Marker {
	var out []Marker
	offset := cfg.ZOffset(vis)
	id := uint64(0)
	for _, n := range layer.Nodes() {
		attrs, ok := n.Place()
		if !ok || attrs.RealPlace {
			continue
		}
		out = append(out, Marker{
			Kind:      KindSphere,
			ID:        id,
			Namespace: ns,
			Pose: Pose{
				Position: withZ(attrs.Position, offset),
				Rotation: scenegraph.EffectiveRotation(attrs.Rotation),
			},
			Scale: attrs.FrontierScale,
			Color: makeColor(colorFn(n), cfg.MarkerAlpha),
		})
		id++
	}
	return out
}

// BoundingBoxMarker builds one solid oriented box for a single node. The
// marker id is the node id so repeated calls replace that node's box.
// Returns false when the node carries no semantic attributes.
func BoundingBoxMarker(cfg LayerConfig, node *scenegraph.Node, vis VisualizerConfig, ns string, colorFn ColorFunc) (Marker, bool) {
	attrs, ok := node.Semantic()
	if !ok || attrs.BoundingBox.IsZero() {
		return Marker{}, false
	}
	bbox := attrs.BoundingBox

	offset := cfg.ZOffset(vis)
	if cfg.CollapseBoundingBox {
		offset = 0
	}
	return Marker{
		Kind:      KindCube,
		ID:        uint64(node.ID),
		Namespace: ns,
		Pose: Pose{
			Position: withZ(bbox.Center, offset),
			Rotation: scenegraph.EffectiveRotation(bbox.Rotation),
		},
		Scale: bbox.Dimensions,
		Color: makeColor(colorFn(node), cfg.BoundingBoxAlpha),
	}, true
}

// WireframeBoxMarker builds the 12 cuboid edges of every surviving node's
// bounding box as one line list. Nodes without semantic attributes are
// skipped.
func WireframeBoxMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn ColorFunc, filter FilterFunc) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.BBoxWireframeScale},
	}
	if !cfg.CollapseBoundingBox {
		m.Pose.Position.Z += cfg.ZOffset(vis)
	}

	for _, n := range layer.Nodes() {
		if filter != nil && !filter(n) {
			continue
		}
		attrs, ok := n.Semantic()
		if !ok || attrs.BoundingBox.IsZero() {
			continue
		}
		color := makeColor(colorFn(n), cfg.BoundingBoxAlpha)
		wireframeSegments(&m, cornersOf(attrs.BoundingBox), color)
	}
	return m
}

// BoxStrutMarker anchors each floating box to its owning node: a line from
// the stratum-displaced centroid down to a break point (a configured
// fraction of the offset), then four lines from the break point to the box's
// top-face corners.
func BoxStrutMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn ColorFunc, filter FilterFunc) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.BBoxWireframeEdgeScale},
	}

	offset := cfg.ZOffset(vis)
	for _, n := range layer.Nodes() {
		if filter != nil && !filter(n) {
			continue
		}
		attrs, ok := n.Semantic()
		if !ok || attrs.BoundingBox.IsZero() {
			continue
		}
		color := makeColor(colorFn(n), cfg.BoundingBoxAlpha)
		corners := cornersOf(attrs.BoundingBox)

		centroid := withZ(attrs.Position, offset)
		breakPoint := withZ(attrs.Position, vis.MeshEdgeBreakRatio*offset)

		m.Points = append(m.Points, centroid, breakPoint)
		m.Colors = append(m.Colors, color, color)
		strutSegments(&m, corners, breakPoint, color)
	}
	return m
}

// EllipseBoundaryMarker draws each 2D place's fitted boundary ellipse as a
// closed loop of line segments. Nodes whose boundary has one point or fewer
// are skipped; a missing expansion matrix degenerates to the centroid and is
// skipped the same way.
func EllipseBoundaryMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.BoundaryWireframeScale},
	}
	if !cfg.CollapseBoundary {
		m.Pose.Position.Z += cfg.ZOffset(vis)
	}

	for _, n := range layer.Nodes() {
		attrs, ok := n.Place2D()
		if !ok || len(attrs.Boundary) <= 1 || attrs.EllipseExpand == nil {
			continue
		}
		color := makeColor(attrs.Color, cfg.BoundaryEllipseAlpha)
		z := attrs.Position.Z

		last := ellipsePoint(attrs.EllipseExpand, attrs.EllipseCentroid, 0, z)
		for i := 1; i <= ellipseSamples; i++ {
			m.Points = append(m.Points, last)
			m.Colors = append(m.Colors, color)

			t := float64(i) * 2 * math.Pi / ellipseSamples
			last = ellipsePoint(attrs.EllipseExpand, attrs.EllipseCentroid, t, z)
			m.Points = append(m.Points, last)
			m.Colors = append(m.Colors, color)
		}
	}
	return m
}

// PolygonFanMarker draws a line from every stored boundary vertex to the
// node's stratum-displaced centroid: a fan, not a loop.
func PolygonFanMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.BoundaryWireframeScale},
	}

	offset := cfg.ZOffset(vis)
	for _, n := range layer.Nodes() {
		attrs, ok := n.Place2D()
		if !ok || len(attrs.Boundary) <= 1 {
			continue
		}
		color := makeColor(attrs.Color, cfg.BoundaryAlpha)
		center := withZ(attrs.Position, offset)

		for _, b := range attrs.Boundary {
			m.Points = append(m.Points, r3.Vec{X: b.X, Y: b.Y, Z: attrs.Position.Z}, center)
			m.Colors = append(m.Colors, color, color)
		}
	}
	return m
}

// PolygonBoundaryMarker draws each 2D place's stored boundary polygon as a
// closed perimeter, colored by the node's color or a uniform default per
// config.
func PolygonBoundaryMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.BoundaryWireframeScale},
	}
	if !cfg.CollapseBoundary {
		m.Pose.Position.Z += cfg.ZOffset(vis)
	}

	for _, n := range layer.Nodes() {
		attrs, ok := n.Place2D()
		if !ok || len(attrs.Boundary) <= 1 {
			continue
		}

		var color RGBA
		if cfg.BoundaryUseNodeColor {
			color = makeColor(attrs.Color, cfg.BoundaryAlpha)
		} else {
			color = defaultColor(cfg.BoundaryAlpha)
		}

		z := attrs.Position.Z
		last := attrs.Boundary[len(attrs.Boundary)-1]
		last.Z = z
		for _, b := range attrs.Boundary {
			m.Points = append(m.Points, last)
			m.Colors = append(m.Colors, color)

			last = r3.Vec{X: b.X, Y: b.Y, Z: z}
			m.Points = append(m.Points, last)
			m.Colors = append(m.Colors, color)
		}
	}
	return m
}

// TextOption configures label construction.
type TextOption func(*textOptions)

type textOptions struct {
	rand *rand.Rand
}

// WithJitterRand injects a seeded random source for label jitter, replacing
// the shared process-lifetime source. Callers needing reproducible output
// (tests, deterministic exports) use this.
func WithJitterRand(r *rand.Rand) TextOption {
	return func(o *textOptions) { o.rand = r }
}

// TextMarker builds one billboard label for a node. The text is the node's
// stored name when present, otherwise its symbol rendering. When jitter is
// enabled the label is perturbed along Z by a uniform draw from
// [-jitterScale, jitterScale]; two calls generally differ unless a seeded
// source is injected.
func TextMarker(cfg LayerConfig, node *scenegraph.Node, vis VisualizerConfig, ns string, opts ...TextOption) Marker {
	var o textOptions
	for _, opt := range opts {
		opt(&o)
	}

	text := ""
	if attrs, ok := node.Semantic(); ok {
		text = attrs.Name
	}
	if text == "" {
		text = node.ID.Symbol()
	}

	m := Marker{
		Kind:      KindText,
		ID:        uint64(node.ID),
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{Z: cfg.LabelScale},
		Color:     defaultColor(1),
		Text:      text,
	}
	m.Pose.Position = withZ(node.Position(), cfg.ZOffset(vis)+cfg.LabelHeight)

	if cfg.AddLabelJitter {
		m.Pose.Position.Z += cfg.LabelJitterScale * uniformJitter(o.rand)
	}
	return m
}

// uniformJitter draws from [-1, 1], using the shared source when r is nil.
func uniformJitter(r *rand.Rand) float64 {
	if r != nil {
		return 2*r.Float64() - 1
	}
	return 2*rand.Float64() - 1
}

func ellipsePoint(expand *mat.Dense, centroid r3.Vec, t, z float64) r3.Vec {
	cos, sin := math.Cos(t), math.Sin(t)
	return r3.Vec{
		X: expand.At(0, 0)*cos + expand.At(0, 1)*sin + centroid.X,
		Y: expand.At(1, 0)*cos + expand.At(1, 1)*sin + centroid.Y,
		Z: z,
	}
}
