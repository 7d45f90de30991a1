package nodelink

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

func overviewGraph(t *testing.T) *scenegraph.Graph {
	t.Helper()
	g := scenegraph.New()
	if _, err := g.AddLayer(2); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddLayer(4); err != nil {
		t.Fatal(err)
	}

	p0 := scenegraph.NewNodeID('p', 0)
	p1 := scenegraph.NewNodeID('p', 1)
	for i, id := range []scenegraph.NodeID{p0, p1} {
		attrs := &scenegraph.SemanticAttributes{
			Attributes: scenegraph.Attributes{Position: r3.Vec{X: float64(i)}},
		}
		if _, err := g.AddNode(2, id, attrs); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(2, p0, p1, 1); err != nil {
		t.Fatal(err)
	}

	room := scenegraph.NewNodeID('R', 0)
	if _, err := g.AddNode(4, room, &scenegraph.SemanticAttributes{
		Name:  "kitchen",
		Color: scenegraph.Color{R: 0x10, G: 0x20, B: 0x30},
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddInterlayerEdge(room, p0, 1); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(overviewGraph(t), Options{})

	for _, want := range []string{
		"digraph scene {",
		"subgraph cluster_2 {",
		"subgraph cluster_4 {",
		`label="layer 2";`,
		`"p(0)" -> "p(1)" [dir=none];`,
		`"R(0)" -> "p(0)";`,
		`fillcolor="#102030"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "kitchen") {
		t.Error("plain labels should not include semantic names")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(overviewGraph(t), Options{Detailed: true})
	if !strings.Contains(dot, "kitchen") {
		t.Errorf("detailed labels should include semantic names:\n%s", dot)
	}
}

func TestToDOTDynamicLayers(t *testing.T) {
	g := overviewGraph(t)
	if _, err := g.AddDynamicLayer(1, 'a'); err != nil {
		t.Fatal(err)
	}
	a0 := scenegraph.NewNodeID('a', 0)
	a1 := scenegraph.NewNodeID('a', 1)
	for _, id := range []scenegraph.NodeID{a0, a1} {
		if _, err := g.AddDynamicNode(1, id, &scenegraph.Attributes{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddDynamicEdge(1, a0, a1, 1); err != nil {
		t.Fatal(err)
	}

	if dot := ToDOT(g, Options{}); strings.Contains(dot, "cluster_dyn_1") {
		t.Error("dynamic cluster emitted without DynamicLayers option")
	}

	dot := ToDOT(g, Options{DynamicLayers: true})
	for _, want := range []string{
		"subgraph cluster_dyn_1 {",
		`"a(0)" -> "a(1)" [dir=none];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}
}
