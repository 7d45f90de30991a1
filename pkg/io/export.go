package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// Attribute payload kind tags used in the wire format.
const (
	typeAttributes = "attributes"
	typeSemantic   = "semantic"
	typePlace      = "place"
	typePlace2D    = "place2d"
)

type graphDTO struct {
	Layers                 []layerDTO        `json:"layers"`
	DynamicLayers          []dynamicLayerDTO `json:"dynamic_layers,omitempty"`
	InterlayerEdges        []edgeDTO         `json:"interlayer_edges,omitempty"`
	DynamicInterlayerEdges []edgeDTO         `json:"dynamic_interlayer_edges,omitempty"`
	Mesh                   *meshDTO          `json:"mesh,omitempty"`
}

type layerDTO struct {
	ID    int       `json:"id"`
	Nodes []nodeDTO `json:"nodes"`
	Edges []edgeDTO `json:"edges"`
}

type dynamicLayerDTO struct {
	ID     int       `json:"id"`
	Prefix string    `json:"prefix,omitempty"`
	Nodes  []nodeDTO `json:"nodes"`
	Edges  []edgeDTO `json:"edges"`
}

type nodeDTO struct {
	ID       uint64      `json:"id"`
	Type     string      `json:"type"`
	Position [3]float64  `json:"position"`
	Rotation *[4]float64 `json:"rotation,omitempty"`

	// Semantic fields.
	Color       *scenegraph.Color `json:"color,omitempty"`
	Name        string            `json:"name,omitempty"`
	Label       uint32            `json:"label,omitempty"`
	BoundingBox *bboxDTO          `json:"bounding_box,omitempty"`

	// Place fields.
	RealPlace     bool        `json:"real_place,omitempty"`
	Distance      float64     `json:"distance,omitempty"`
	FrontierScale *[3]float64 `json:"frontier_scale,omitempty"`

	// 2D place fields.
	Boundary        [][3]float64 `json:"boundary,omitempty"`
	EllipseExpand   *[4]float64  `json:"ellipse_expand,omitempty"`
	EllipseCentroid *[3]float64  `json:"ellipse_centroid,omitempty"`
	MeshConnections []int        `json:"mesh_connections,omitempty"`
}

type bboxDTO struct {
	Center     [3]float64  `json:"center"`
	Rotation   *[4]float64 `json:"rotation,omitempty"`
	Dimensions [3]float64  `json:"dimensions"`
}

type edgeDTO struct {
	Source uint64  `json:"source"`
	Target uint64  `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

type meshDTO struct {
	Vertices [][3]float64 `json:"vertices"`
}

func vecDTO(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func rotDTO(r r3.Rotation) *[4]float64 {
	if r == (r3.Rotation{}) || r == scenegraph.IdentityRotation() {
		return nil
	}
	q := quat.Number(r)
	return &[4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

func nodeToDTO(n *scenegraph.Node) nodeDTO {
	base := n.Attrs.Base()
	dto := nodeDTO{
		ID:       uint64(n.ID),
		Type:     typeAttributes,
		Position: vecDTO(base.Position),
		Rotation: rotDTO(base.Rotation),
	}

	sem, ok := n.Semantic()
	if !ok {
		return dto
	}
	dto.Type = typeSemantic
	if sem.Color != (scenegraph.Color{}) {
		c := sem.Color
		dto.Color = &c
	}
	dto.Name = sem.Name
	dto.Label = sem.SemanticLabel
	if !sem.BoundingBox.IsZero() {
		dto.BoundingBox = &bboxDTO{
			Center:     vecDTO(sem.BoundingBox.Center),
			Rotation:   rotDTO(sem.BoundingBox.Rotation),
			Dimensions: vecDTO(sem.BoundingBox.Dimensions),
		}
	}

	if place, ok := n.Place(); ok {
		dto.Type = typePlace
		dto.RealPlace = place.RealPlace
		dto.Distance = place.Distance
		if place.FrontierScale != (r3.Vec{}) {
			fs := vecDTO(place.FrontierScale)
			dto.FrontierScale = &fs
		}
	}

	if p2d, ok := n.Place2D(); ok {
		dto.Type = typePlace2D
		for _, b := range p2d.Boundary {
			dto.Boundary = append(dto.Boundary, vecDTO(b))
		}
		if p2d.EllipseExpand != nil {
			e := [4]float64{
				p2d.EllipseExpand.At(0, 0), p2d.EllipseExpand.At(0, 1),
				p2d.EllipseExpand.At(1, 0), p2d.EllipseExpand.At(1, 1),
			}
			dto.EllipseExpand = &e
		}
		if p2d.EllipseCentroid != (r3.Vec{}) {
			ec := vecDTO(p2d.EllipseCentroid)
			dto.EllipseCentroid = &ec
		}
		dto.MeshConnections = p2d.MeshConnections
	}

	return dto
}

func edgeToDTO(e *scenegraph.Edge) edgeDTO {
	return edgeDTO{Source: uint64(e.Source), Target: uint64(e.Target), Weight: e.Weight}
}

// WriteJSON encodes a scene graph as JSON and writes it to w. The output
// can be re-imported with [ReadJSON] for round-trip processing. Retired
// dynamic nodes are not exported; edges referencing them are dropped.
func WriteJSON(g *scenegraph.Graph, w io.Writer) error {
	out := graphDTO{Layers: make([]layerDTO, 0, len(g.Layers()))}

	for _, layer := range g.Layers() {
		l := layerDTO{
			ID:    int(layer.ID()),
			Nodes: make([]nodeDTO, 0, layer.NumNodes()),
			Edges: make([]edgeDTO, 0, layer.NumEdges()),
		}
		for _, n := range layer.Nodes() {
			l.Nodes = append(l.Nodes, nodeToDTO(n))
		}
		for _, e := range layer.Edges() {
			l.Edges = append(l.Edges, edgeToDTO(e))
		}
		out.Layers = append(out.Layers, l)
	}

	for _, dyn := range g.DynamicLayers() {
		l := dynamicLayerDTO{ID: int(dyn.ID())}
		if p := dyn.Prefix(); p != 0 {
			l.Prefix = string(p)
		}
		live := make(map[scenegraph.NodeID]bool)
		for _, n := range dyn.Nodes() {
			if n == nil {
				continue
			}
			live[n.ID] = true
			l.Nodes = append(l.Nodes, nodeToDTO(n))
		}
		for _, e := range dyn.Edges() {
			if !live[e.Source] || !live[e.Target] {
				continue
			}
			l.Edges = append(l.Edges, edgeToDTO(e))
		}
		out.DynamicLayers = append(out.DynamicLayers, l)
	}

	for _, e := range g.InterlayerEdges() {
		out.InterlayerEdges = append(out.InterlayerEdges, edgeToDTO(e))
	}
	for _, e := range g.DynamicInterlayerEdges() {
		if _, ok := g.Node(e.Source); !ok {
			continue
		}
		if _, ok := g.Node(e.Target); !ok {
			continue
		}
		out.DynamicInterlayerEdges = append(out.DynamicInterlayerEdges, edgeToDTO(e))
	}

	if mesh := g.Mesh(); mesh != nil {
		m := &meshDTO{Vertices: make([][3]float64, 0, mesh.NumVertices())}
		for _, v := range mesh.Vertices() {
			m.Vertices = append(m.Vertices, vecDTO(v))
		}
		out.Mesh = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a scene graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *scenegraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// matFromDTO rebuilds the 2x2 ellipse expansion matrix.
func matFromDTO(e *[4]float64) *mat.Dense {
	if e == nil {
		return nil
	}
	return mat.NewDense(2, 2, []float64{e[0], e[1], e[2], e[3]})
}
