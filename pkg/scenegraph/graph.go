package scenegraph

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateLayer is returned by [Graph.AddLayer] and
	// [Graph.AddDynamicLayer] when the layer id is already in use.
	ErrDuplicateLayer = errors.New("duplicate layer ID")

	// ErrUnknownLayer is returned when an operation references a layer that
	// has not been added to the graph.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs are unique across the whole graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned when an edge's source node does not
	// exist in the expected layer.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge's target node does not
	// exist in the expected layer.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned when an edge between the same ordered
	// endpoint pair already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrNotInterlayer is returned by [Graph.AddInterlayerEdge] when both
	// endpoints live in the same layer, or when the source is not in the
	// higher layer. The source of an interlayer edge is invariantly the
	// parent-side node.
	ErrNotInterlayer = errors.New("interlayer edge source must be in the higher layer")
)

// Graph is a layered scene graph: ordered static layers, dynamic trajectory
// layers, interlayer edges between them, and an optional mesh.
//
// The zero value is not usable; use New.
type Graph struct {
	layers  map[LayerID]*Layer
	dynamic map[LayerID]*DynamicLayer

	byID      map[NodeID]*Node
	dynamicID map[NodeID]bool

	interlayer        map[EdgeKey]*Edge
	interlayerOrder   []EdgeKey
	dynInterlayer     map[EdgeKey]*Edge
	dynInterlayerList []EdgeKey

	mesh *Mesh
}

// New creates an empty scene graph.
func New() *Graph {
	return &Graph{
		layers:        make(map[LayerID]*Layer),
		dynamic:       make(map[LayerID]*DynamicLayer),
		byID:          make(map[NodeID]*Node),
		dynamicID:     make(map[NodeID]bool),
		interlayer:    make(map[EdgeKey]*Edge),
		dynInterlayer: make(map[EdgeKey]*Edge),
	}
}

// AddLayer creates an empty static layer with the given id.
func (g *Graph) AddLayer(id LayerID) (*Layer, error) {
	if _, ok := g.layers[id]; ok {
		return nil, ErrDuplicateLayer
	}
	l := newLayer(id)
	g.layers[id] = l
	return l, nil
}

// AddDynamicLayer creates an empty dynamic layer with the given id and
// trajectory prefix. A dynamic layer may share an id with a static layer;
// the two node populations stay disjoint.
func (g *Graph) AddDynamicLayer(id LayerID, prefix rune) (*DynamicLayer, error) {
	if _, ok := g.dynamic[id]; ok {
		return nil, ErrDuplicateLayer
	}
	l := newDynamicLayer(id, prefix)
	g.dynamic[id] = l
	return l, nil
}

// Layer returns the static layer with the given id.
func (g *Graph) Layer(id LayerID) (*Layer, bool) {
	l, ok := g.layers[id]
	return l, ok
}

// DynamicLayer returns the dynamic layer with the given id.
func (g *Graph) DynamicLayer(id LayerID) (*DynamicLayer, bool) {
	l, ok := g.dynamic[id]
	return l, ok
}

// Layers returns the static layers ordered by ascending layer id.
func (g *Graph) Layers() []*Layer {
	ids := make([]LayerID, 0, len(g.layers))
	for id := range g.layers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Layer, len(ids))
	for i, id := range ids {
		out[i] = g.layers[id]
	}
	return out
}

// DynamicLayers returns the dynamic layers ordered by ascending layer id.
func (g *Graph) DynamicLayers() []*DynamicLayer {
	ids := make([]LayerID, 0, len(g.dynamic))
	for id := range g.dynamic {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*DynamicLayer, len(ids))
	for i, id := range ids {
		out[i] = g.dynamic[id]
	}
	return out
}

// AddNode adds a node to the static layer named by layer. The node's
// attribute payload determines which primitives it can contribute to.
func (g *Graph) AddNode(layer LayerID, id NodeID, attrs AttributeSet) (*Node, error) {
	l, ok := g.layers[layer]
	if !ok {
		return nil, ErrUnknownLayer
	}
	if _, exists := g.byID[id]; exists {
		return nil, ErrDuplicateNodeID
	}
	n := &Node{ID: id, Layer: layer, Attrs: attrs}
	if err := l.addNode(n); err != nil {
		return nil, err
	}
	g.byID[id] = n
	return n, nil
}

// AddDynamicNode appends a node to a dynamic layer's trajectory.
func (g *Graph) AddDynamicNode(layer LayerID, id NodeID, attrs AttributeSet) (*Node, error) {
	l, ok := g.dynamic[layer]
	if !ok {
		return nil, ErrUnknownLayer
	}
	if _, exists := g.byID[id]; exists {
		return nil, ErrDuplicateNodeID
	}
	n := &Node{ID: id, Layer: layer, Attrs: attrs}
	if err := l.addNode(n); err != nil {
		return nil, err
	}
	g.byID[id] = n
	g.dynamicID[id] = true
	return n, nil
}

// Node looks up a node by id across static and dynamic layers.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	if g.dynamicID[id] {
		// retired dynamic slots disappear from lookups
		l := g.dynamic[n.Layer]
		if l == nil {
			return nil, false
		}
		if _, live := l.Node(id); !live {
			return nil, false
		}
	}
	return n, true
}

// IsDynamic reports whether the node id belongs to a dynamic layer.
func (g *Graph) IsDynamic(id NodeID) bool { return g.dynamicID[id] }

// AddEdge adds an intra-layer edge. Both endpoints must already exist in the
// layer.
func (g *Graph) AddEdge(layer LayerID, source, target NodeID, weight float64) error {
	l, ok := g.layers[layer]
	if !ok {
		return ErrUnknownLayer
	}
	return l.addEdge(&Edge{Source: source, Target: target, Weight: weight})
}

// AddDynamicEdge adds an edge between two nodes of a dynamic layer.
func (g *Graph) AddDynamicEdge(layer LayerID, source, target NodeID, weight float64) error {
	l, ok := g.dynamic[layer]
	if !ok {
		return ErrUnknownLayer
	}
	return l.addEdge(&Edge{Source: source, Target: target, Weight: weight})
}

// AddInterlayerEdge adds an edge between two static layers. The source must
// be the node in the higher layer.
func (g *Graph) AddInterlayerEdge(source, target NodeID, weight float64) error {
	src, ok := g.byID[source]
	if !ok {
		return ErrUnknownSourceNode
	}
	tgt, ok := g.byID[target]
	if !ok {
		return ErrUnknownTargetNode
	}
	if src.Layer <= tgt.Layer {
		return ErrNotInterlayer
	}
	k := EdgeKey{Source: source, Target: target}
	if _, ok := g.interlayer[k]; ok {
		return ErrDuplicateEdge
	}
	g.interlayer[k] = &Edge{Source: source, Target: target, Weight: weight}
	g.interlayerOrder = append(g.interlayerOrder, k)
	return nil
}

// AddDynamicInterlayerEdge adds an edge between a dynamic-layer node and a
// static-layer node. Either endpoint may be the dynamic one.
func (g *Graph) AddDynamicInterlayerEdge(source, target NodeID, weight float64) error {
	if _, ok := g.byID[source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.byID[target]; !ok {
		return ErrUnknownTargetNode
	}
	if !g.dynamicID[source] && !g.dynamicID[target] {
		return ErrNotInterlayer
	}
	k := EdgeKey{Source: source, Target: target}
	if _, ok := g.dynInterlayer[k]; ok {
		return ErrDuplicateEdge
	}
	g.dynInterlayer[k] = &Edge{Source: source, Target: target, Weight: weight}
	g.dynInterlayerList = append(g.dynInterlayerList, k)
	return nil
}

// InterlayerEdges returns the static interlayer edges in insertion order.
func (g *Graph) InterlayerEdges() []*Edge {
	out := make([]*Edge, 0, len(g.interlayerOrder))
	for _, k := range g.interlayerOrder {
		out = append(out, g.interlayer[k])
	}
	return out
}

// DynamicInterlayerEdges returns the dynamic interlayer edges in insertion
// order.
func (g *Graph) DynamicInterlayerEdges() []*Edge {
	out := make([]*Edge, 0, len(g.dynInterlayerList))
	for _, k := range g.dynInterlayerList {
		out = append(out, g.dynInterlayer[k])
	}
	return out
}

// SetMesh attaches a surface mesh to the graph. Passing nil detaches.
func (g *Graph) SetMesh(m *Mesh) { g.mesh = m }

// Mesh returns the attached mesh, or nil if none is attached.
func (g *Graph) Mesh() *Mesh { return g.mesh }

// NumNodes returns the total node count across static and dynamic layers.
func (g *Graph) NumNodes() int { return len(g.byID) }
