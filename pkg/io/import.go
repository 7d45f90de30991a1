package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

func vecFromDTO(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func rotFromDTO(r *[4]float64) r3.Rotation {
	if r == nil {
		return scenegraph.IdentityRotation()
	}
	return r3.Rotation(quat.Number{Real: r[0], Imag: r[1], Jmag: r[2], Kmag: r[3]})
}

func attrsFromDTO(dto nodeDTO) (scenegraph.AttributeSet, error) {
	base := scenegraph.Attributes{
		Position: vecFromDTO(dto.Position),
		Rotation: rotFromDTO(dto.Rotation),
	}

	semantic := scenegraph.SemanticAttributes{
		Attributes:    base,
		Name:          dto.Name,
		SemanticLabel: dto.Label,
	}
	if dto.Color != nil {
		semantic.Color = *dto.Color
	}
	if dto.BoundingBox != nil {
		semantic.BoundingBox = scenegraph.BoundingBox{
			Center:     vecFromDTO(dto.BoundingBox.Center),
			Rotation:   rotFromDTO(dto.BoundingBox.Rotation),
			Dimensions: vecFromDTO(dto.BoundingBox.Dimensions),
		}
	}

	switch dto.Type {
	case typeAttributes:
		return &base, nil
	case typeSemantic:
		return &semantic, nil
	case typePlace:
		place := &scenegraph.PlaceAttributes{
			SemanticAttributes: semantic,
			RealPlace:          dto.RealPlace,
			Distance:           dto.Distance,
		}
		if dto.FrontierScale != nil {
			place.FrontierScale = vecFromDTO(*dto.FrontierScale)
		}
		return place, nil
	case typePlace2D:
		p2d := &scenegraph.Place2DAttributes{
			SemanticAttributes: semantic,
			EllipseExpand:      matFromDTO(dto.EllipseExpand),
			MeshConnections:    dto.MeshConnections,
		}
		for _, b := range dto.Boundary {
			p2d.Boundary = append(p2d.Boundary, vecFromDTO(b))
		}
		if dto.EllipseCentroid != nil {
			p2d.EllipseCentroid = vecFromDTO(*dto.EllipseCentroid)
		}
		return p2d, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", dto.Type)
	}
}

// ReadJSON decodes a JSON scene graph from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - A node carries an unknown type tag or a duplicate id
//   - An edge references an unknown node id
//   - An interlayer edge runs upward (source below target)
//
// Errors are wrapped with context describing which layer, node or edge
// caused the problem. Use errors.Is to check for specific scenegraph
// errors.
//
// The returned graph is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*scenegraph.Graph, error) {
	var data graphDTO
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := scenegraph.New()

	for _, l := range data.Layers {
		id := scenegraph.LayerID(l.ID)
		if _, err := g.AddLayer(id); err != nil {
			return nil, fmt.Errorf("layer %d: %w", l.ID, err)
		}
		for _, n := range l.Nodes {
			attrs, err := attrsFromDTO(n)
			if err != nil {
				return nil, fmt.Errorf("layer %d node %d: %w", l.ID, n.ID, err)
			}
			if _, err := g.AddNode(id, scenegraph.NodeID(n.ID), attrs); err != nil {
				return nil, fmt.Errorf("layer %d node %d: %w", l.ID, n.ID, err)
			}
		}
		for _, e := range l.Edges {
			if err := g.AddEdge(id, scenegraph.NodeID(e.Source), scenegraph.NodeID(e.Target), e.Weight); err != nil {
				return nil, fmt.Errorf("layer %d edge %d->%d: %w", l.ID, e.Source, e.Target, err)
			}
		}
	}

	for _, l := range data.DynamicLayers {
		id := scenegraph.LayerID(l.ID)
		prefix, _ := utf8.DecodeRuneInString(l.Prefix)
		if prefix == utf8.RuneError {
			prefix = 0
		}
		if _, err := g.AddDynamicLayer(id, prefix); err != nil {
			return nil, fmt.Errorf("dynamic layer %d: %w", l.ID, err)
		}
		for _, n := range l.Nodes {
			attrs, err := attrsFromDTO(n)
			if err != nil {
				return nil, fmt.Errorf("dynamic layer %d node %d: %w", l.ID, n.ID, err)
			}
			if _, err := g.AddDynamicNode(id, scenegraph.NodeID(n.ID), attrs); err != nil {
				return nil, fmt.Errorf("dynamic layer %d node %d: %w", l.ID, n.ID, err)
			}
		}
		for _, e := range l.Edges {
			if err := g.AddDynamicEdge(id, scenegraph.NodeID(e.Source), scenegraph.NodeID(e.Target), e.Weight); err != nil {
				return nil, fmt.Errorf("dynamic layer %d edge %d->%d: %w", l.ID, e.Source, e.Target, err)
			}
		}
	}

	for _, e := range data.InterlayerEdges {
		if err := g.AddInterlayerEdge(scenegraph.NodeID(e.Source), scenegraph.NodeID(e.Target), e.Weight); err != nil {
			return nil, fmt.Errorf("interlayer edge %d->%d: %w", e.Source, e.Target, err)
		}
	}
	for _, e := range data.DynamicInterlayerEdges {
		if err := g.AddDynamicInterlayerEdge(scenegraph.NodeID(e.Source), scenegraph.NodeID(e.Target), e.Weight); err != nil {
			return nil, fmt.Errorf("dynamic interlayer edge %d->%d: %w", e.Source, e.Target, err)
		}
	}

	if data.Mesh != nil {
		vertices := make([]r3.Vec, 0, len(data.Mesh.Vertices))
		for _, v := range data.Mesh.Vertices {
			vertices = append(vertices, vecFromDTO(v))
		}
		g.SetMesh(scenegraph.NewMesh(vertices))
	}

	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded scene graph.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*scenegraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
