package markers

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

func testLayer(t *testing.T, id scenegraph.LayerID) (*scenegraph.Graph, *scenegraph.Layer) {
	t.Helper()
	g := scenegraph.New()
	layer, err := g.AddLayer(id)
	if err != nil {
		t.Fatalf("AddLayer(%d): %v", id, err)
	}
	return g, layer
}

func addSemanticNode(t *testing.T, g *scenegraph.Graph, layer scenegraph.LayerID, id scenegraph.NodeID, attrs *scenegraph.SemanticAttributes) *scenegraph.Node {
	t.Helper()
	n, err := g.AddNode(layer, id, attrs)
	if err != nil {
		t.Fatalf("AddNode(%d): %v", id, err)
	}
	return n
}

func TestCentroidMarker(t *testing.T) {
	g, layer := testLayer(t, 3)
	addSemanticNode(t, g, 3, 1, &scenegraph.SemanticAttributes{
		Attributes: scenegraph.Attributes{Position: r3.Vec{X: 1, Y: 2, Z: 3}},
		Color:      scenegraph.Color{R: 255},
	})
	addSemanticNode(t, g, 3, 2, &scenegraph.SemanticAttributes{
		Attributes: scenegraph.Attributes{Position: r3.Vec{X: 4, Z: 1}},
	})

	cfg := LayerConfig{
		Visualize:       true,
		ZOffsetScale:    2,
		MarkerScale:     0.3,
		MarkerAlpha:     0.8,
		UseSphereMarker: true,
	}
	vis := VisualizerConfig{LayerZStep: 5}

	m := CentroidMarker(cfg, layer, vis, "nodes", SemanticColor(), nil)

	if m.Kind != KindSphereList {
		t.Errorf("kind = %q, want sphere list", m.Kind)
	}
	if m.Scale != (r3.Vec{X: 0.3, Y: 0.3, Z: 0.3}) {
		t.Errorf("scale = %+v", m.Scale)
	}
	if len(m.Points) != 2 || len(m.Colors) != 2 {
		t.Fatalf("got %d points / %d colors, want 2 / 2", len(m.Points), len(m.Colors))
	}
	if m.Points[0].Z != 13 { // 3 + 2*5
		t.Errorf("first point Z = %v, want 13", m.Points[0].Z)
	}
	if m.Colors[0].R != 1 || m.Colors[0].A != 0.8 {
		t.Errorf("first color = %+v", m.Colors[0])
	}

	// Collapsing disables the stratum offset without touching stored geometry.
	collapsed := CentroidMarker(cfg, layer, VisualizerConfig{CollapseLayers: true, LayerZStep: 5}, "nodes", SemanticColor(), nil)
	if collapsed.Points[0].Z != 3 {
		t.Errorf("collapsed Z = %v, want 3", collapsed.Points[0].Z)
	}
}

func TestCentroidMarkerFilter(t *testing.T) {
	g, layer := testLayer(t, 2)
	addSemanticNode(t, g, 2, 1, &scenegraph.SemanticAttributes{})
	addSemanticNode(t, g, 2, 2, &scenegraph.SemanticAttributes{})

	only2 := func(n *scenegraph.Node) bool { return n.ID == 2 }
	m := CentroidMarker(LayerConfig{}, layer, VisualizerConfig{}, "nodes", SemanticColor(), only2)
	if len(m.Points) != 1 {
		t.Errorf("filter admitted %d points, want 1", len(m.Points))
	}
}

func TestPlaceCentroidMarkerSkipsFrontiers(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, &scenegraph.PlaceAttributes{RealPlace: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(4, 2, &scenegraph.PlaceAttributes{RealPlace: false}); err != nil {
		t.Fatal(err)
	}
	addSemanticNode(t, g, 4, 3, &scenegraph.SemanticAttributes{})

	m := PlaceCentroidMarker(LayerConfig{}, layer, VisualizerConfig{}, "nodes", SemanticColor())
	if len(m.Points) != 1 {
		t.Errorf("got %d points, want only the real place", len(m.Points))
	}
}

func TestFrontierMarkers(t *testing.T) {
	g, layer := testLayer(t, 4)
	for i := uint64(0); i < 3; i++ {
		attrs := &scenegraph.PlaceAttributes{
			RealPlace:     i == 1,
			FrontierScale: r3.Vec{X: 1, Y: 2, Z: 3},
		}
		attrs.Position = r3.Vec{X: float64(i)}
		if _, err := g.AddNode(4, scenegraph.NodeID(i), attrs); err != nil {
			t.Fatal(err)
		}
	}

	ms := FrontierMarkers(LayerConfig{MarkerAlpha: 1}, layer, VisualizerConfig{}, "frontiers", SemanticColor())
	if len(ms) != 2 {
		t.Fatalf("got %d frontier markers, want 2", len(ms))
	}
	for i, m := range ms {
		if m.ID != uint64(i) {
			t.Errorf("marker %d has id %d, want ids incrementing from 0", i, m.ID)
		}
		if m.Kind != KindSphere {
			t.Errorf("marker %d kind = %q", i, m.Kind)
		}
		if m.Scale != (r3.Vec{X: 1, Y: 2, Z: 3}) {
			t.Errorf("marker %d scale = %+v", i, m.Scale)
		}
	}
}

func TestBoundingBoxMarker(t *testing.T) {
	box := scenegraph.BoundingBox{
		Center:     r3.Vec{X: 1, Y: 1, Z: 1},
		Dimensions: r3.Vec{X: 2, Y: 3, Z: 4},
	}
	node := &scenegraph.Node{ID: 7, Layer: 5, Attrs: &scenegraph.SemanticAttributes{BoundingBox: box}}

	cfg := LayerConfig{ZOffsetScale: 1, BoundingBoxAlpha: 0.5}
	vis := VisualizerConfig{LayerZStep: 10}

	m, ok := BoundingBoxMarker(cfg, node, vis, "boxes", SemanticColor())
	if !ok {
		t.Fatal("expected a marker")
	}
	if m.ID != 7 {
		t.Errorf("id = %d, want the node id", m.ID)
	}
	if m.Pose.Position.Z != 11 {
		t.Errorf("pose Z = %v, want center + offset", m.Pose.Position.Z)
	}
	if m.Scale != box.Dimensions {
		t.Errorf("scale = %+v, want the box dimensions", m.Scale)
	}

	cfg.CollapseBoundingBox = true
	m, _ = BoundingBoxMarker(cfg, node, vis, "boxes", SemanticColor())
	if m.Pose.Position.Z != 1 {
		t.Errorf("collapsed pose Z = %v, want the stored center", m.Pose.Position.Z)
	}

	bare := &scenegraph.Node{ID: 8, Attrs: &scenegraph.Attributes{}}
	if _, ok := BoundingBoxMarker(cfg, bare, vis, "boxes", SemanticColor()); ok {
		t.Error("node without semantic attributes should be skipped")
	}

	empty := &scenegraph.Node{ID: 9, Attrs: &scenegraph.SemanticAttributes{}}
	if _, ok := BoundingBoxMarker(cfg, empty, vis, "boxes", SemanticColor()); ok {
		t.Error("zero bounding box should be skipped")
	}
}

func TestWireframeBoxMarkerSkipsNodesWithoutBoxes(t *testing.T) {
	g, layer := testLayer(t, 5)
	box := scenegraph.BoundingBox{Center: r3.Vec{Z: 1}, Dimensions: r3.Vec{X: 2, Y: 2, Z: 2}}
	addSemanticNode(t, g, 5, 1, &scenegraph.SemanticAttributes{BoundingBox: box})
	addSemanticNode(t, g, 5, 2, &scenegraph.SemanticAttributes{BoundingBox: box})
	if _, err := g.AddNode(5, 3, &scenegraph.Attributes{}); err != nil {
		t.Fatal(err)
	}

	cfg := LayerConfig{ZOffsetScale: 1, BoundingBoxAlpha: 1, BBoxWireframeScale: 0.05}
	m := WireframeBoxMarker(cfg, layer, VisualizerConfig{LayerZStep: 2}, "wireframes", SemanticColor(), nil)

	if m.Kind != KindLineList {
		t.Errorf("kind = %q, want line list", m.Kind)
	}
	// Two boxed nodes survive, 12 cuboid edges each, two endpoints per edge.
	if len(m.Points) != 48 || len(m.Colors) != 48 {
		t.Fatalf("got %d points / %d colors, want 48 / 48", len(m.Points), len(m.Colors))
	}
	if m.Pose.Position.Z != 2 {
		t.Errorf("pose Z = %v, want the layer offset", m.Pose.Position.Z)
	}

	cfg.CollapseBoundingBox = true
	if m := WireframeBoxMarker(cfg, layer, VisualizerConfig{LayerZStep: 2}, "wireframes", SemanticColor(), nil); m.Pose.Position.Z != 0 {
		t.Errorf("collapsed pose Z = %v, want 0", m.Pose.Position.Z)
	}
}

func TestBoxStrutMarker(t *testing.T) {
	g, layer := testLayer(t, 5)
	attrs := &scenegraph.SemanticAttributes{
		BoundingBox: scenegraph.BoundingBox{
			Center:     r3.Vec{X: 1, Y: 2, Z: 3},
			Dimensions: r3.Vec{X: 2, Y: 2, Z: 2},
		},
	}
	attrs.Position = r3.Vec{X: 1, Y: 2, Z: 3}
	addSemanticNode(t, g, 5, 1, attrs)
	addSemanticNode(t, g, 5, 2, &scenegraph.SemanticAttributes{})

	cfg := LayerConfig{ZOffsetScale: 1, BoundingBoxAlpha: 1, BBoxWireframeEdgeScale: 0.02}
	vis := VisualizerConfig{LayerZStep: 10, MeshEdgeBreakRatio: 0.5}
	m := BoxStrutMarker(cfg, layer, vis, "struts", SemanticColor(), nil)

	// One anchor segment plus four struts, from the one node with a box.
	if len(m.Points) != 10 || len(m.Colors) != 10 {
		t.Fatalf("got %d points / %d colors, want 10 / 10", len(m.Points), len(m.Colors))
	}
	if m.Points[0] != (r3.Vec{X: 1, Y: 2, Z: 13}) {
		t.Errorf("anchor starts at %+v, want the lifted centroid", m.Points[0])
	}
	breakPoint := r3.Vec{X: 1, Y: 2, Z: 8} // position + break ratio * offset
	if m.Points[1] != breakPoint {
		t.Errorf("anchor ends at %+v, want the break point", m.Points[1])
	}
	for i := 2; i < len(m.Points); i += 2 {
		if m.Points[i] != breakPoint {
			t.Errorf("strut %d starts at %+v, want the break point", (i-2)/2, m.Points[i])
		}
		if m.Points[i+1].Z != 4 {
			t.Errorf("strut %d ends at Z = %v, want the box top face", (i-2)/2, m.Points[i+1].Z)
		}
	}
	if m.Scale.X != 0.02 {
		t.Errorf("scale = %+v, want the strut edge scale", m.Scale)
	}
}

func place2DNode(boundary []r3.Vec) *scenegraph.Place2DAttributes {
	attrs := &scenegraph.Place2DAttributes{
		Boundary:      boundary,
		EllipseExpand: mat.NewDense(2, 2, []float64{2, 0, 0, 1}),
	}
	attrs.Position = r3.Vec{X: 5, Y: 5, Z: 2}
	attrs.EllipseCentroid = r3.Vec{X: 5, Y: 5}
	return attrs
}

func triangle() []r3.Vec {
	return []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
}

func TestEllipseBoundaryMarker(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, place2DNode(triangle())); err != nil {
		t.Fatal(err)
	}

	cfg := LayerConfig{ZOffsetScale: 1, BoundaryEllipseAlpha: 1, BoundaryWireframeScale: 0.1}
	vis := VisualizerConfig{LayerZStep: 3}

	m := EllipseBoundaryMarker(cfg, layer, vis, "ellipses")

	if len(m.Points) != 2*ellipseSamples {
		t.Fatalf("got %d points, want %d", len(m.Points), 2*ellipseSamples)
	}
	start := m.Points[0]
	if math.Abs(start.X-7) > 1e-9 || math.Abs(start.Y-5) > 1e-9 {
		t.Errorf("loop starts at %+v, want the t=0 sample (7, 5)", start)
	}
	end := m.Points[len(m.Points)-1]
	if math.Abs(end.X-start.X) > 1e-9 || math.Abs(end.Y-start.Y) > 1e-9 {
		t.Errorf("loop is not closed: start %+v, end %+v", start, end)
	}
	for i, p := range m.Points {
		if p.Z != 2 {
			t.Errorf("point %d Z = %v, want the node height", i, p.Z)
		}
	}
	// The stratum displacement lives on the pose, not the points.
	if m.Pose.Position.Z != 3 {
		t.Errorf("pose Z = %v, want the layer offset", m.Pose.Position.Z)
	}

	cfg.CollapseBoundary = true
	if m := EllipseBoundaryMarker(cfg, layer, vis, "ellipses"); m.Pose.Position.Z != 0 {
		t.Errorf("collapsed pose Z = %v, want 0", m.Pose.Position.Z)
	}
}

func TestEllipseBoundaryMarkerSkips(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, place2DNode(triangle()[:1])); err != nil {
		t.Fatal(err)
	}
	noExpand := place2DNode(triangle())
	noExpand.EllipseExpand = nil
	if _, err := g.AddNode(4, 2, noExpand); err != nil {
		t.Fatal(err)
	}
	addSemanticNode(t, g, 4, 3, &scenegraph.SemanticAttributes{})

	m := EllipseBoundaryMarker(LayerConfig{}, layer, VisualizerConfig{}, "ellipses")
	if len(m.Points) != 0 {
		t.Errorf("degenerate nodes should contribute nothing, got %d points", len(m.Points))
	}
}

func TestPolygonBoundaryMarker(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, place2DNode(triangle())); err != nil {
		t.Fatal(err)
	}

	cfg := LayerConfig{BoundaryAlpha: 0.4, BoundaryUseNodeColor: false}
	m := PolygonBoundaryMarker(cfg, layer, VisualizerConfig{}, "boundaries")

	if len(m.Points) != 6 {
		t.Fatalf("triangle perimeter should have 6 points, got %d", len(m.Points))
	}
	// Closed loop: starts from the last boundary vertex.
	if m.Points[0].X != 0 || m.Points[0].Y != 1 {
		t.Errorf("loop starts at %+v, want the last boundary vertex", m.Points[0])
	}
	if m.Points[len(m.Points)-1] != m.Points[0] {
		t.Errorf("perimeter is not closed")
	}
	for i, p := range m.Points {
		if p.Z != 2 {
			t.Errorf("point %d Z = %v, want the node height", i, p.Z)
		}
	}
	if m.Colors[0] != defaultColor(0.4) {
		t.Errorf("color = %+v, want the uniform default", m.Colors[0])
	}

	cfg.BoundaryUseNodeColor = true
	withColor := place2DNode(triangle())
	withColor.Color = scenegraph.Color{G: 255}
	g2, layer2 := testLayer(t, 4)
	if _, err := g2.AddNode(4, 2, withColor); err != nil {
		t.Fatal(err)
	}
	m = PolygonBoundaryMarker(cfg, layer2, VisualizerConfig{}, "boundaries")
	if m.Colors[0].G != 1 {
		t.Errorf("color = %+v, want the node color", m.Colors[0])
	}
}

func TestPolygonBoundaryMarkerSkipsEmptyBoundary(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, place2DNode(nil)); err != nil {
		t.Fatal(err)
	}
	square := []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if _, err := g.AddNode(4, 2, place2DNode(square)); err != nil {
		t.Fatal(err)
	}

	m := PolygonBoundaryMarker(LayerConfig{BoundaryAlpha: 1}, layer, VisualizerConfig{}, "boundaries")

	// Only the square contributes: 4 segments, two endpoints each.
	if len(m.Points) != 8 {
		t.Fatalf("got %d points, want 8", len(m.Points))
	}
}

func TestPolygonFanMarker(t *testing.T) {
	g, layer := testLayer(t, 4)
	if _, err := g.AddNode(4, 1, place2DNode(triangle())); err != nil {
		t.Fatal(err)
	}

	cfg := LayerConfig{ZOffsetScale: 1, BoundaryAlpha: 1}
	vis := VisualizerConfig{LayerZStep: 4}
	m := PolygonFanMarker(cfg, layer, vis, "fans")

	if len(m.Points) != 6 {
		t.Fatalf("3 fan segments should have 6 points, got %d", len(m.Points))
	}
	for i := 0; i < len(m.Points); i += 2 {
		if m.Points[i].Z != 2 {
			t.Errorf("fan vertex %d Z = %v, want the node height", i/2, m.Points[i].Z)
		}
		if m.Points[i+1] != (r3.Vec{X: 5, Y: 5, Z: 6}) {
			t.Errorf("fan segment %d does not end at the lifted centroid: %+v", i/2, m.Points[i+1])
		}
	}
}

func TestTextMarker(t *testing.T) {
	vis := VisualizerConfig{LayerZStep: 10}
	cfg := LayerConfig{ZOffsetScale: 1, LabelHeight: 2, LabelScale: 0.5}

	named := &scenegraph.Node{
		ID: scenegraph.NewNodeID('R', 3),
		Attrs: &scenegraph.SemanticAttributes{
			Attributes: scenegraph.Attributes{Position: r3.Vec{Z: 1}},
			Name:       "kitchen",
		},
	}
	m := TextMarker(cfg, named, vis, "labels")
	if m.Text != "kitchen" {
		t.Errorf("text = %q, want the stored name", m.Text)
	}
	if m.Pose.Position.Z != 13 { // 1 + 10 + 2
		t.Errorf("label Z = %v, want 13", m.Pose.Position.Z)
	}
	if m.Scale != (r3.Vec{Z: 0.5}) {
		t.Errorf("scale = %+v, want only Z set", m.Scale)
	}

	unnamed := &scenegraph.Node{ID: scenegraph.NewNodeID('R', 3), Attrs: &scenegraph.SemanticAttributes{}}
	if m := TextMarker(cfg, unnamed, vis, "labels"); m.Text != "R(3)" {
		t.Errorf("text = %q, want the symbol fallback", m.Text)
	}
}

func TestTextMarkerJitterDeterministic(t *testing.T) {
	cfg := LayerConfig{AddLabelJitter: true, LabelJitterScale: 0.5, LabelScale: 1}
	node := &scenegraph.Node{ID: 1, Attrs: &scenegraph.SemanticAttributes{Name: "n"}}

	a := TextMarker(cfg, node, VisualizerConfig{}, "labels", WithJitterRand(rand.New(rand.NewSource(42))))
	b := TextMarker(cfg, node, VisualizerConfig{}, "labels", WithJitterRand(rand.New(rand.NewSource(42))))
	if a.Pose.Position.Z != b.Pose.Position.Z {
		t.Errorf("same seed should give the same jitter: %v vs %v", a.Pose.Position.Z, b.Pose.Position.Z)
	}
	if d := math.Abs(a.Pose.Position.Z); d > 0.5 {
		t.Errorf("jitter %v exceeds the configured scale", d)
	}
}
