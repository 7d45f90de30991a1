package markers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// MeshEdgesMarker builds one line list connecting each layer node to the
// surface-mesh vertices it references. Every node with connections gets a
// lead-in segment from its lifted centroid down to a break point partway
// along the stratum offset, then one segment from the break point to each
// retained vertex. Connection indices are thinned with the inter-layer
// insertion skip; indices past the mesh bounds are skipped. The marker is
// empty when the graph carries no mesh.
func MeshEdgesMarker(cfg LayerConfig, vis VisualizerConfig, g *scenegraph.Graph, layer *scenegraph.Layer, ns string) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.InterlayerEdgeScale},
	}

	mesh := g.Mesh()
	if mesh == nil {
		return m
	}

	offset := cfg.ZOffset(vis)
	for _, node := range layer.Nodes() {
		attrs, ok := node.Place2D()
		if !ok || len(attrs.MeshConnections) == 0 {
			continue
		}

		color := scenegraph.Color{}
		if cfg.InterlayerEdgeUseColor {
			color = attrs.Color
		}
		c := makeColor(color, cfg.InterlayerEdgeAlpha)

		breakPoint := withZ(node.Position(), vis.MeshEdgeBreakRatio*offset)
		centroid := withZ(node.Position(), offset)

		m.Points = append(m.Points, centroid, breakPoint)
		m.Colors = append(m.Colors, c, c)

		for i, midx := range attrs.MeshConnections {
			if i%(cfg.InterlayerEdgeInsertionSkip+1) != 0 {
				continue
			}
			if midx < 0 || midx >= mesh.NumVertices() {
				continue
			}

			vertex := mesh.Pos(midx)
			if !vis.CollapseLayers {
				vertex.Z += vis.MeshLayerOffset
			}

			m.Points = append(m.Points, breakPoint, vertex)
			m.Colors = append(m.Colors, c, c)
		}
	}
	return m
}
