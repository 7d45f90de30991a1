package markers

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

func TestLayerEdgeMarker(t *testing.T) {
	g := scenegraph.New()
	if _, err := g.AddLayer(2); err != nil {
		t.Fatal(err)
	}
	colors := []scenegraph.Color{{R: 10}, {R: 20}, {R: 30}, {R: 40}, {R: 50}}
	for i, c := range colors {
		attrs := &scenegraph.SemanticAttributes{Color: c}
		attrs.Position = r3.Vec{X: float64(i), Z: 1}
		if _, err := g.AddNode(2, scenegraph.NodeID(i), attrs); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 4; i++ {
		if err := g.AddEdge(2, scenegraph.NodeID(i), scenegraph.NodeID(i+1), 0); err != nil {
			t.Fatal(err)
		}
	}
	layer, _ := g.Layer(2)

	cfg := LayerConfig{
		ZOffsetScale:        1,
		IntralayerEdgeScale: 0.05,
		IntralayerEdgeAlpha: 0.7,
	}
	vis := VisualizerConfig{LayerZStep: 2}

	m := LayerEdgeMarker(cfg, layer, vis, "edges", EndpointColor(SemanticColor()), nil)

	if m.Kind != KindLineList {
		t.Fatalf("kind = %q", m.Kind)
	}
	if len(m.Points) != 8 || len(m.Colors) != 8 {
		t.Fatalf("got %d points / %d colors, want 8 / 8", len(m.Points), len(m.Colors))
	}
	// Both endpoints lifted to the stratum.
	for i, p := range m.Points {
		if p.Z != 3 {
			t.Errorf("point %d Z = %v, want 3", i, p.Z)
		}
	}
	// Endpoint colors resolved independently.
	if m.Colors[0].R*255 != 10 || m.Colors[1].R*255 != 20 {
		t.Errorf("first segment colors = %+v, %+v", m.Colors[0], m.Colors[1])
	}
	if m.Colors[0].A != 0.7 {
		t.Errorf("alpha = %v, want 0.7", m.Colors[0].A)
	}
}

func TestLayerEdgeMarkerInsertionSkip(t *testing.T) {
	tests := []struct {
		name     string
		edges    int
		skip     int
		segments int
	}{
		{name: "no skip", edges: 5, skip: 0, segments: 5},
		{name: "skip one", edges: 5, skip: 1, segments: 3},
		{name: "skip two", edges: 6, skip: 2, segments: 2},
		{name: "skip beyond end", edges: 3, skip: 10, segments: 1},
		{name: "single edge", edges: 1, skip: 4, segments: 1},
		{name: "empty", edges: 0, skip: 0, segments: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scenegraph.New()
			if _, err := g.AddLayer(2); err != nil {
				t.Fatal(err)
			}
			for i := 0; i <= tt.edges; i++ {
				if _, err := g.AddNode(2, scenegraph.NodeID(i), &scenegraph.SemanticAttributes{}); err != nil {
					t.Fatal(err)
				}
			}
			for i := 0; i < tt.edges; i++ {
				if err := g.AddEdge(2, scenegraph.NodeID(i), scenegraph.NodeID(i+1), 0); err != nil {
					t.Fatal(err)
				}
			}
			layer, _ := g.Layer(2)

			cfg := LayerConfig{IntralayerEdgeInsertionSkip: tt.skip}
			m := LayerEdgeMarker(cfg, layer, VisualizerConfig{}, "edges", UniformEdgeColor(scenegraph.Color{}), nil)
			if len(m.Points) != 2*tt.segments {
				t.Errorf("got %d segments, want %d", len(m.Points)/2, tt.segments)
			}
		})
	}
}

func TestLayerEdgeMarkerFilterKeepsStride(t *testing.T) {
	// A rejected edge consumes its stride position instead of stalling.
	g := scenegraph.New()
	if _, err := g.AddLayer(2); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 7; i++ {
		if _, err := g.AddNode(2, scenegraph.NodeID(i), &scenegraph.SemanticAttributes{}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 6; i++ {
		if err := g.AddEdge(2, scenegraph.NodeID(i), scenegraph.NodeID(i+1), 0); err != nil {
			t.Fatal(err)
		}
	}
	layer, _ := g.Layer(2)

	reject0 := func(n *scenegraph.Node) bool { return n.ID != 0 }
	cfg := LayerConfig{IntralayerEdgeInsertionSkip: 1}
	m := LayerEdgeMarker(cfg, layer, VisualizerConfig{}, "edges", UniformEdgeColor(scenegraph.Color{}), reject0)

	// Positions 0, 2, 4 are visited; position 0 is rejected.
	if len(m.Points) != 4 {
		t.Errorf("got %d segments, want 2", len(m.Points)/2)
	}
}

type fataler interface {
	Helper()
	Fatal(args ...any)
}

// interlayerGraph builds two layers with k edges from layer 3 down to
// layer 2.
func interlayerGraph(t fataler, k int) *scenegraph.Graph {
	t.Helper()
	g := scenegraph.New()
	for _, id := range []scenegraph.LayerID{2, 3} {
		if _, err := g.AddLayer(id); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < k; i++ {
		lo := scenegraph.NewNodeID('p', uint64(i))
		hi := scenegraph.NewNodeID('r', uint64(i))
		if _, err := g.AddNode(2, lo, &scenegraph.SemanticAttributes{Color: scenegraph.Color{B: 255}}); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddNode(3, hi, &scenegraph.SemanticAttributes{Color: scenegraph.Color{R: 255}}); err != nil {
			t.Fatal(err)
		}
		if err := g.AddInterlayerEdge(hi, lo, 0); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func visibleConfigs(skip int) map[scenegraph.LayerID]LayerConfig {
	return map[scenegraph.LayerID]LayerConfig{
		2: {Visualize: true, ZOffsetScale: 1},
		3: {Visualize: true, ZOffsetScale: 2, InterlayerEdgeInsertionSkip: skip, InterlayerEdgeAlpha: 1},
	}
}

func TestGraphEdgeMarkersGrouping(t *testing.T) {
	g := interlayerGraph(t, 3)
	out := GraphEdgeMarkers(g, visibleConfigs(0), VisualizerConfig{LayerZStep: 1}, "interlayer_edges_", nil)

	if len(out.Markers) != 1 {
		t.Fatalf("got %d markers, want one group for layer 3", len(out.Markers))
	}
	m := out.Markers[0]
	if m.Namespace != "interlayer_edges_3_2" {
		t.Errorf("namespace = %q", m.Namespace)
	}
	if len(m.Points) != 6 {
		t.Fatalf("got %d points, want 6", len(m.Points))
	}
	// Each endpoint lifted to its own layer's stratum.
	if m.Points[0].Z != 2 || m.Points[1].Z != 1 {
		t.Errorf("endpoint offsets = %v, %v, want 2, 1", m.Points[0].Z, m.Points[1].Z)
	}
}

func TestGraphEdgeMarkersThrottle(t *testing.T) {
	tests := []struct {
		name string
		k    int
		skip int
		want int // emitted segments: ceil(k / (skip+1))
	}{
		{name: "no throttle", k: 5, skip: 0, want: 5},
		{name: "every other", k: 5, skip: 1, want: 3},
		{name: "exact multiple", k: 6, skip: 2, want: 2},
		{name: "first always emits", k: 1, skip: 100, want: 1},
		{name: "threshold three", k: 4, skip: 3, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := interlayerGraph(t, tt.k)
			out := GraphEdgeMarkers(g, visibleConfigs(tt.skip), VisualizerConfig{}, "il_", nil)
			got := 0
			for _, m := range out.Markers {
				got += len(m.Points) / 2
			}
			if got != tt.want {
				t.Errorf("emitted %d segments, want %d", got, tt.want)
			}
		})
	}
}

func TestGraphEdgeMarkersThrottleCeiling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 40).Draw(t, "edges")
		skip := rapid.IntRange(0, 10).Draw(t, "skip")

		g := interlayerGraph(t, k)
		out := GraphEdgeMarkers(g, visibleConfigs(skip), VisualizerConfig{}, "il_", nil)

		got := 0
		for _, m := range out.Markers {
			got += len(m.Points) / 2
		}
		want := 0
		if k > 0 {
			want = (k + skip) / (skip + 1)
		}
		if got != want {
			t.Fatalf("k=%d skip=%d emitted %d, want %d", k, skip, got, want)
		}
	})
}

func TestGraphEdgeMarkersHiddenLayer(t *testing.T) {
	g := interlayerGraph(t, 3)

	configs := visibleConfigs(0)
	cfg := configs[2]
	cfg.Visualize = false
	configs[2] = cfg

	out := GraphEdgeMarkers(g, configs, VisualizerConfig{}, "il_", nil)
	if len(out.Markers) != 0 {
		t.Errorf("edges into a hidden layer should be skipped, got %d markers", len(out.Markers))
	}

	// Missing config behaves like hidden.
	delete(configs, 2)
	out = GraphEdgeMarkers(g, configs, VisualizerConfig{}, "il_", nil)
	if len(out.Markers) != 0 {
		t.Errorf("edges into an unconfigured layer should be skipped, got %d markers", len(out.Markers))
	}
}

func TestGraphEdgeMarkersColorPolicy(t *testing.T) {
	tests := []struct {
		name      string
		useColor  bool
		useSource bool
		wantR     float64
		wantB     float64
	}{
		{name: "uniform default", useColor: false, useSource: false, wantR: 0, wantB: 0},
		{name: "target color", useColor: true, useSource: false, wantR: 0, wantB: 1},
		{name: "source color", useColor: true, useSource: true, wantR: 1, wantB: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := interlayerGraph(t, 1)
			configs := visibleConfigs(0)
			cfg := configs[3]
			cfg.InterlayerEdgeUseColor = tt.useColor
			cfg.InterlayerEdgeUseSource = tt.useSource
			configs[3] = cfg

			out := GraphEdgeMarkers(g, configs, VisualizerConfig{}, "il_", nil)
			if len(out.Markers) != 1 {
				t.Fatalf("got %d markers", len(out.Markers))
			}
			c := out.Markers[0].Colors[0]
			if c.R != tt.wantR || c.B != tt.wantB {
				t.Errorf("color = %+v, want R=%v B=%v", c, tt.wantR, tt.wantB)
			}
			// Both entries of a segment share the policy color.
			if out.Markers[0].Colors[1] != c {
				t.Errorf("segment colors differ: %+v vs %+v", c, out.Markers[0].Colors[1])
			}
		})
	}
}

func TestDynamicGraphEdgeMarkers(t *testing.T) {
	g := scenegraph.New()
	if _, err := g.AddLayer(3); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddDynamicLayer(2, 'a'); err != nil {
		t.Fatal(err)
	}

	static := scenegraph.NewNodeID('O', 0)
	if _, err := g.AddNode(3, static, &scenegraph.SemanticAttributes{}); err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 3; i++ {
		attrs := &scenegraph.Attributes{Position: r3.Vec{X: float64(i)}}
		if _, err := g.AddDynamicNode(2, scenegraph.NewNodeID('a', i), attrs); err != nil {
			t.Fatal(err)
		}
		if err := g.AddDynamicInterlayerEdge(static, scenegraph.NewNodeID('a', i), 0); err != nil {
			t.Fatal(err)
		}
	}

	configs := map[scenegraph.LayerID]LayerConfig{
		3: {Visualize: true, ZOffsetScale: 2, InterlayerEdgeScale: 0.1},
		2: {Visualize: true, ZOffsetScale: 1},
	}
	dynConfigs := map[scenegraph.LayerID]DynamicLayerConfig{
		2: {Visualize: true, VisualizeInterlayerEdges: true, EdgeAlpha: 0.6},
	}

	out := DynamicGraphEdgeMarkers(g, configs, dynConfigs, VisualizerConfig{LayerZStep: 1}, "dyn_il_")
	if len(out.Markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(out.Markers))
	}
	m := out.Markers[0]
	if m.Namespace != "dyn_il_3_2" {
		t.Errorf("namespace = %q", m.Namespace)
	}
	if len(m.Points) != 6 {
		t.Errorf("got %d points, want 6", len(m.Points))
	}
	if len(m.Colors) != 0 {
		t.Errorf("dynamic edges use a uniform color, got %d per-point colors", len(m.Colors))
	}
	if m.Color.A != 0.6 {
		t.Errorf("alpha = %v, want the dynamic edge alpha", m.Color.A)
	}
	if m.Points[0].Z != 2 || m.Points[1].Z != 1 {
		t.Errorf("offsets = %v, %v, want per-layer strata", m.Points[0].Z, m.Points[1].Z)
	}

	// Disabling interlayer edges on the dynamic side hides everything.
	dynConfigs[2] = DynamicLayerConfig{Visualize: true, VisualizeInterlayerEdges: false}
	out = DynamicGraphEdgeMarkers(g, configs, dynConfigs, VisualizerConfig{}, "dyn_il_")
	if len(out.Markers) != 0 {
		t.Errorf("got %d markers, want none", len(out.Markers))
	}
}

func TestGraphWireframeMarkers(t *testing.T) {
	g := scenegraph.New()
	if _, err := g.AddLayer(2); err != nil {
		t.Fatal(err)
	}
	layer, _ := g.Layer(2)

	cfg := LayerConfig{IntralayerEdgeScale: 0.02, MarkerAlpha: 1}
	colorFn := UniformColor(scenegraph.Color{R: 255})

	if out := GraphWireframeMarkers(cfg, layer, "gvd", colorFn, 0); len(out.Markers) != 0 {
		t.Errorf("empty layer should produce no markers, got %d", len(out.Markers))
	}

	for i := 0; i < 3; i++ {
		attrs := &scenegraph.PlaceAttributes{}
		attrs.Position = r3.Vec{X: float64(i), Z: 5}
		if _, err := g.AddNode(2, scenegraph.NodeID(i), attrs); err != nil {
			t.Fatal(err)
		}
	}
	out := GraphWireframeMarkers(cfg, layer, "gvd", colorFn, 0)
	if len(out.Markers) != 1 {
		t.Fatalf("layer without edges should produce only the node marker, got %d", len(out.Markers))
	}
	if out.Markers[0].Kind != KindSphereList {
		t.Errorf("node marker kind = %q", out.Markers[0].Kind)
	}
	// Raw positions, no stratum offset.
	if out.Markers[0].Points[0].Z != 5 {
		t.Errorf("node Z = %v, want the stored height", out.Markers[0].Points[0].Z)
	}

	if err := g.AddEdge(2, 0, 1, 0); err != nil {
		t.Fatal(err)
	}
	out = GraphWireframeMarkers(cfg, layer, "gvd", colorFn, 0)
	if len(out.Markers) != 2 {
		t.Fatalf("got %d markers, want nodes + edges", len(out.Markers))
	}
	edges := out.Markers[1]
	if edges.Kind != KindLineList || edges.Namespace != "gvd_edges" {
		t.Errorf("edge marker = %q %q", edges.Kind, edges.Namespace)
	}
	if len(edges.Points) != 2 {
		t.Errorf("got %d edge points, want 2", len(edges.Points))
	}
}

func TestCollectGroupsDeterministic(t *testing.T) {
	groups := map[scenegraph.LayerID]*Marker{}
	for _, id := range []scenegraph.LayerID{5, 2, 9} {
		groups[id] = &Marker{
			Kind:      KindLineList,
			Namespace: fmt.Sprintf("g%d", id),
			Points:    []r3.Vec{{}, {}},
		}
	}
	out := collectGroups(groups)
	want := []string{"g2", "g5", "g9"}
	for i, m := range out.Markers {
		if m.Namespace != want[i] {
			t.Errorf("marker %d namespace = %q, want %q", i, m.Namespace, want[i])
		}
	}
}
