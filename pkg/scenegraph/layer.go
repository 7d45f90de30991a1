package scenegraph

// Layer is one ordered partition of a graph's nodes, with its own intra-layer
// edges. Node and edge iteration follows insertion order so repeated render
// passes over an unchanged graph produce identical output.
type Layer struct {
	id        LayerID
	nodeOrder []NodeID
	nodes     map[NodeID]*Node
	edgeOrder []EdgeKey
	edges     map[EdgeKey]*Edge
}

func newLayer(id LayerID) *Layer {
	return &Layer{
		id:    id,
		nodes: make(map[NodeID]*Node),
		edges: make(map[EdgeKey]*Edge),
	}
}

// ID returns the layer identifier.
func (l *Layer) ID() LayerID { return l.id }

// NumNodes returns the number of nodes in the layer.
func (l *Layer) NumNodes() int { return len(l.nodes) }

// NumEdges returns the number of intra-layer edges.
func (l *Layer) NumEdges() int { return len(l.edges) }

// Node returns the node with the given id, if present in this layer.
func (l *Layer) Node(id NodeID) (*Node, bool) {
	n, ok := l.nodes[id]
	return n, ok
}

// Nodes returns the layer's nodes in insertion order.
func (l *Layer) Nodes() []*Node {
	out := make([]*Node, 0, len(l.nodeOrder))
	for _, id := range l.nodeOrder {
		out = append(out, l.nodes[id])
	}
	return out
}

// Edges returns the layer's intra-layer edges in insertion order.
func (l *Layer) Edges() []*Edge {
	out := make([]*Edge, 0, len(l.edgeOrder))
	for _, k := range l.edgeOrder {
		out = append(out, l.edges[k])
	}
	return out
}

func (l *Layer) addNode(n *Node) error {
	if _, ok := l.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	l.nodes[n.ID] = n
	l.nodeOrder = append(l.nodeOrder, n.ID)
	return nil
}

func (l *Layer) addEdge(e *Edge) error {
	if _, ok := l.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := l.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	k := EdgeKey{Source: e.Source, Target: e.Target}
	if _, ok := l.edges[k]; ok {
		return ErrDuplicateEdge
	}
	l.edges[k] = e
	l.edgeOrder = append(l.edgeOrder, k)
	return nil
}
