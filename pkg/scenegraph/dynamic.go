package scenegraph

import "gonum.org/v1/gonum/spatial/r3"

// DynamicLayer holds a temporally-ordered node sequence representing a
// trajectory (e.g. agent poses over time). Unlike a static Layer, nodes are
// indexed by insertion time, and retired slots remain as nil entries so
// indices stay stable.
type DynamicLayer struct {
	id        LayerID
	prefix    rune
	nodes     []*Node
	byID      map[NodeID]int
	edgeOrder []EdgeKey
	edges     map[EdgeKey]*Edge
}

func newDynamicLayer(id LayerID, prefix rune) *DynamicLayer {
	return &DynamicLayer{
		id:     id,
		prefix: prefix,
		byID:   make(map[NodeID]int),
		edges:  make(map[EdgeKey]*Edge),
	}
}

// ID returns the layer identifier.
func (l *DynamicLayer) ID() LayerID { return l.id }

// Prefix returns the category character assigned to this trajectory.
func (l *DynamicLayer) Prefix() rune { return l.prefix }

// NumNodes returns the number of slots in the trajectory, including retired
// (nil) ones.
func (l *DynamicLayer) NumNodes() int { return len(l.nodes) }

// Nodes returns the trajectory slots in temporal order. Entries may be nil
// where a node has been retired; callers iterate defensively.
func (l *DynamicLayer) Nodes() []*Node { return l.nodes }

// Node returns the trajectory node with the given id.
func (l *DynamicLayer) Node(id NodeID) (*Node, bool) {
	i, ok := l.byID[id]
	if !ok || l.nodes[i] == nil {
		return nil, false
	}
	return l.nodes[i], true
}

// PositionByIndex returns the position of the slot at index i.
// Returns false for out-of-range indices and retired slots.
func (l *DynamicLayer) PositionByIndex(i int) (r3.Vec, bool) {
	if i < 0 || i >= len(l.nodes) || l.nodes[i] == nil {
		return r3.Vec{}, false
	}
	return l.nodes[i].Position(), true
}

// Position returns the position of the trajectory node with the given id.
func (l *DynamicLayer) Position(id NodeID) (r3.Vec, bool) {
	n, ok := l.Node(id)
	if !ok {
		return r3.Vec{}, false
	}
	return n.Position(), true
}

// LatestPosition returns the position of the most recently added live node.
func (l *DynamicLayer) LatestPosition() (r3.Vec, bool) {
	for i := len(l.nodes) - 1; i >= 0; i-- {
		if l.nodes[i] != nil {
			return l.nodes[i].Position(), true
		}
	}
	return r3.Vec{}, false
}

// Edges returns the trajectory's edges in insertion order. Edges connect
// consecutive-by-storage trajectory nodes.
func (l *DynamicLayer) Edges() []*Edge {
	out := make([]*Edge, 0, len(l.edgeOrder))
	for _, k := range l.edgeOrder {
		out = append(out, l.edges[k])
	}
	return out
}

func (l *DynamicLayer) addNode(n *Node) error {
	if _, ok := l.byID[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	l.byID[n.ID] = len(l.nodes)
	l.nodes = append(l.nodes, n)
	return nil
}

func (l *DynamicLayer) addEdge(e *Edge) error {
	if _, ok := l.byID[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := l.byID[e.Target]; !ok {
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

// Retire clears the slot holding the given node id, keeping later indices
// stable. Edges referencing the node are left in place; consumers resolving
// positions through the layer observe the missing endpoint and skip.
func (l *DynamicLayer) Retire(id NodeID) bool {
	i, ok := l.byID[id]
	if !ok || l.nodes[i] == nil {
		return false
	}
	l.nodes[i] = nil
	return true
}
