package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

func sampleGraph(t *testing.T) *scenegraph.Graph {
	t.Helper()
	g := scenegraph.New()
	for _, id := range []scenegraph.LayerID{2, 3} {
		if _, err := g.AddLayer(id); err != nil {
			t.Fatal(err)
		}
	}

	place := &scenegraph.PlaceAttributes{RealPlace: true, Distance: 1.5}
	place.Position = r3.Vec{X: 1, Y: 2, Z: 0.5}
	if _, err := g.AddNode(2, scenegraph.NewNodeID('p', 0), place); err != nil {
		t.Fatal(err)
	}

	room := &scenegraph.Place2DAttributes{
		Boundary:        []r3.Vec{{X: 0}, {X: 1}, {Y: 1}},
		EllipseExpand:   mat.NewDense(2, 2, []float64{2, 0, 0, 1}),
		EllipseCentroid: r3.Vec{X: 0.5, Y: 0.5},
		MeshConnections: []int{0, 3},
	}
	room.Name = "lounge"
	room.Color = scenegraph.Color{G: 200}
	if _, err := g.AddNode(2, scenegraph.NewNodeID('q', 0), room); err != nil {
		t.Fatal(err)
	}

	object := &scenegraph.SemanticAttributes{
		Color: scenegraph.Color{R: 40},
		BoundingBox: scenegraph.BoundingBox{
			Center:     r3.Vec{X: 1},
			Dimensions: r3.Vec{X: 1, Y: 2, Z: 3},
		},
	}
	if _, err := g.AddNode(3, scenegraph.NewNodeID('O', 0), object); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(2, scenegraph.NewNodeID('p', 0), scenegraph.NewNodeID('q', 0), 2.5); err != nil {
		t.Fatal(err)
	}
	if err := g.AddInterlayerEdge(scenegraph.NewNodeID('O', 0), scenegraph.NewNodeID('p', 0), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := g.AddDynamicLayer(1, 'a'); err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 2; i++ {
		attrs := &scenegraph.Attributes{Position: r3.Vec{X: float64(i)}}
		if _, err := g.AddDynamicNode(1, scenegraph.NewNodeID('a', i), attrs); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddDynamicEdge(1, scenegraph.NewNodeID('a', 0), scenegraph.NewNodeID('a', 1), 0); err != nil {
		t.Fatal(err)
	}
	if err := g.AddDynamicInterlayerEdge(scenegraph.NewNodeID('O', 0), scenegraph.NewNodeID('a', 1), 0); err != nil {
		t.Fatal(err)
	}

	g.SetMesh(scenegraph.NewMesh([]r3.Vec{{X: 0}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}))
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.NumNodes() != g.NumNodes() {
		t.Errorf("node count = %d, want %d", got.NumNodes(), g.NumNodes())
	}

	place, ok := got.Node(scenegraph.NewNodeID('p', 0))
	if !ok {
		t.Fatal("place node missing after round trip")
	}
	attrs, ok := place.Place()
	if !ok || !attrs.RealPlace || attrs.Distance != 1.5 {
		t.Errorf("place attributes = %+v", attrs)
	}

	room, ok := got.Node(scenegraph.NewNodeID('q', 0))
	if !ok {
		t.Fatal("room node missing after round trip")
	}
	p2d, _ := room.Place2D()
	if p2d.Name != "lounge" || len(p2d.Boundary) != 3 {
		t.Errorf("room attributes = %+v", p2d)
	}
	if p2d.EllipseExpand == nil || p2d.EllipseExpand.At(0, 0) != 2 {
		t.Error("ellipse expansion not preserved")
	}

	object, _ := got.Node(scenegraph.NewNodeID('O', 0))
	sem, _ := object.Semantic()
	if sem.BoundingBox.Dimensions != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("bounding box = %+v", sem.BoundingBox)
	}

	if len(got.InterlayerEdges()) != 1 || len(got.DynamicInterlayerEdges()) != 1 {
		t.Error("cross-layer edges not preserved")
	}
	dyn, ok := got.DynamicLayer(1)
	if !ok || dyn.Prefix() != 'a' || dyn.NumNodes() != 2 {
		t.Error("dynamic layer not preserved")
	}
	if got.Mesh() == nil || got.Mesh().NumVertices() != 4 {
		t.Error("mesh not preserved")
	}
}

func TestRoundTripSkipsRetired(t *testing.T) {
	g := sampleGraph(t)
	dyn, _ := g.DynamicLayer(1)
	dyn.Retire(scenegraph.NewNodeID('a', 1))

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := got.Node(scenegraph.NewNodeID('a', 1)); ok {
		t.Error("retired node should not survive export")
	}
	reDyn, _ := got.DynamicLayer(1)
	if len(reDyn.Edges()) != 0 {
		t.Error("edges touching retired nodes should be dropped")
	}
	if len(got.DynamicInterlayerEdges()) != 0 {
		t.Error("interlayer edges touching retired nodes should be dropped")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "malformed",
			input: "{",
		},
		{
			name:  "unknown node type",
			input: `{"layers":[{"id":2,"nodes":[{"id":1,"type":"widget","position":[0,0,0]}],"edges":[]}]}`,
		},
		{
			name: "duplicate node",
			input: `{"layers":[{"id":2,"nodes":[
				{"id":1,"type":"attributes","position":[0,0,0]},
				{"id":1,"type":"attributes","position":[0,0,0]}],"edges":[]}]}`,
			wantErr: scenegraph.ErrDuplicateNodeID,
		},
		{
			name: "edge to unknown node",
			input: `{"layers":[{"id":2,"nodes":[{"id":1,"type":"attributes","position":[0,0,0]}],
				"edges":[{"source":1,"target":99}]}]}`,
			wantErr: scenegraph.ErrUnknownTargetNode,
		},
		{
			name: "upward interlayer edge",
			input: `{"layers":[
				{"id":2,"nodes":[{"id":1,"type":"attributes","position":[0,0,0]}],"edges":[]},
				{"id":3,"nodes":[{"id":2,"type":"attributes","position":[0,0,0]}],"edges":[]}],
				"interlayer_edges":[{"source":1,"target":2}]}`,
			wantErr: scenegraph.ErrNotInterlayer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
