package scenegraph

import (
	"fmt"
	"unicode"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeID uniquely identifies a node across all layers of a graph. The top
// byte may encode a category character (see NodeSymbol); the remaining bits
// are a per-category index.
type NodeID uint64

// LayerID identifies a layer. Higher values denote higher (more abstract)
// layers; interlayer edges always run from a higher layer to a lower one.
type LayerID int

// NewNodeID packs a category character and index into a NodeID.
// NewNodeID('O', 5) produces the node labeled "O(5)".
func NewNodeID(category rune, index uint64) NodeID {
	return NodeID(uint64(category)<<56 | index&indexMask)
}

const indexMask = (uint64(1) << 56) - 1

// Category returns the category character packed into the top byte,
// or 0 if the top byte is not a printable letter.
func (id NodeID) Category() rune {
	c := rune(id >> 56)
	if !unicode.IsLetter(c) {
		return 0
	}
	return c
}

// Index returns the per-category index portion of the id.
func (id NodeID) Index() uint64 { return uint64(id) & indexMask }

// Symbol renders the id as a human-readable label, e.g. "O(5)" for a node in
// category 'O'. Ids without a category character render as the bare decimal
// value; the result is deterministic either way.
func (id NodeID) Symbol() string {
	if c := id.Category(); c != 0 {
		return fmt.Sprintf("%c(%d)", c, id.Index())
	}
	return fmt.Sprintf("%d", uint64(id))
}

// Color is a node's stored RGB color. Alpha is a render-time concern and
// applied by the markers package.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// AttributeSet is the closed set of node attribute payloads. Exactly four
// concrete types implement it: *Attributes, *SemanticAttributes,
// *PlaceAttributes and *Place2DAttributes.
type AttributeSet interface {
	// Base returns the position/orientation fields shared by every kind.
	Base() *Attributes
}

// Attributes is the payload every node carries: a world position and an
// orientation.
type Attributes struct {
	Position r3.Vec
	Rotation r3.Rotation
}

// Base implements AttributeSet.
func (a *Attributes) Base() *Attributes { return a }

// SemanticAttributes extends Attributes with display color, human-readable
// name, a semantic label id and an oriented bounding box.
type SemanticAttributes struct {
	Attributes
	Color         Color
	Name          string
	SemanticLabel uint32
	BoundingBox   BoundingBox
}

// PlaceAttributes extends SemanticAttributes for 3D place nodes: whether the
// place is real (versus a virtual frontier), its distance to the nearest
// obstacle, and the ellipsoid scale used to draw frontier nodes.
type PlaceAttributes struct {
	SemanticAttributes
	RealPlace     bool
	Distance      float64
	FrontierScale r3.Vec
}

// Place2DAttributes extends SemanticAttributes for 2D place nodes: an
// explicit boundary polygon, a fitted boundary ellipse (2x2 expansion matrix
// plus centroid), and the mesh vertex indices the place corresponds to.
type Place2DAttributes struct {
	SemanticAttributes
	Boundary        []r3.Vec
	EllipseExpand   *mat.Dense // 2x2, maps unit circle to boundary ellipse
	EllipseCentroid r3.Vec     // z ignored; boundary lives at Position.Z
	MeshConnections []int
}

// Node is a vertex in one layer of a scene graph.
type Node struct {
	ID    NodeID
	Layer LayerID
	Attrs AttributeSet
}

// Position returns the node's world position. Every attribute kind carries
// one, so this never fails.
func (n *Node) Position() r3.Vec { return n.Attrs.Base().Position }

// Semantic returns the node's semantic attribute view. Place and 2D-place
// payloads embed the semantic fields and therefore also satisfy this query.
func (n *Node) Semantic() (*SemanticAttributes, bool) {
	switch a := n.Attrs.(type) {
	case *SemanticAttributes:
		return a, true
	case *PlaceAttributes:
		return &a.SemanticAttributes, true
	case *Place2DAttributes:
		return &a.SemanticAttributes, true
	default:
		return nil, false
	}
}

// Place returns the node's place attribute view.
func (n *Node) Place() (*PlaceAttributes, bool) {
	a, ok := n.Attrs.(*PlaceAttributes)
	return a, ok
}

// Place2D returns the node's 2D-place attribute view.
func (n *Node) Place2D() (*Place2DAttributes, bool) {
	a, ok := n.Attrs.(*Place2DAttributes)
	return a, ok
}

// Edge is a weighted connection between two nodes. For interlayer edges the
// source is invariantly the node in the higher layer; Graph.AddInterlayerEdge
// enforces this.
type Edge struct {
	Source NodeID
	Target NodeID
	Weight float64
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	Source NodeID
	Target NodeID
}
