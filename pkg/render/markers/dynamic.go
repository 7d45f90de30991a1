package markers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// DynamicCentroidMarker renders a dynamic layer's live nodes as one point
// list, lifted by the layer's own offset scale and painted with color.
// Retired slots are skipped.
func DynamicCentroidMarker(cfg DynamicLayerConfig, layer *scenegraph.DynamicLayer, vis VisualizerConfig, color scenegraph.Color, ns string, markerID uint64) Marker {
	return DynamicCentroidMarkerAt(cfg, layer, cfg.ZOffsetScale, vis, ns,
		func(*scenegraph.Node) scenegraph.Color { return color }, markerID)
}

// DynamicCentroidMarkerAt is DynamicCentroidMarker with an explicit offset
// scale and per-node color resolution, for callers stacking a dynamic layer
// at another stratum's height.
func DynamicCentroidMarkerAt(cfg DynamicLayerConfig, layer *scenegraph.DynamicLayer, offsetScale float64, vis VisualizerConfig, ns string, colorFn ColorFunc, markerID uint64) Marker {
	kind := KindCubeList
	if cfg.NodeUseSphere {
		kind = KindSphereList
	}
	m := Marker{
		Kind:      kind,
		ID:        markerID,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.NodeScale, Y: cfg.NodeScale, Z: cfg.NodeScale},
	}

	offset := ZOffset(offsetScale, vis)
	for _, node := range layer.Nodes() {
		if node == nil {
			continue
		}
		m.Points = append(m.Points, withZ(node.Position(), offset))
		m.Colors = append(m.Colors, makeColor(colorFn(node), cfg.NodeAlpha))
	}
	return m
}

// DynamicEdgeMarker renders a dynamic layer's trajectory edges as one line
// list with a single uniform color. Edges whose endpoints have been retired
// are skipped.
func DynamicEdgeMarker(cfg DynamicLayerConfig, layer *scenegraph.DynamicLayer, vis VisualizerConfig, color scenegraph.Color, ns string, markerID uint64) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        markerID,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.EdgeScale},
		Color:     makeColor(color, cfg.EdgeAlpha),
	}

	offset := ZOffset(cfg.ZOffsetScale, vis)
	for _, e := range layer.Edges() {
		source, okS := layer.Position(e.Source)
		target, okT := layer.Position(e.Target)
		if !okS || !okT {
			continue
		}
		m.Points = append(m.Points,
			withZ(source, offset),
			withZ(target, offset))
	}
	return m
}

// DynamicLabelMarker renders one trailing text label above the most recent
// live node of a dynamic layer. The label text is the layer's prefix, with
// "agent" as fallback for unnamed layers. Returns false when the layer has
// no live nodes.
func DynamicLabelMarker(cfg DynamicLayerConfig, layer *scenegraph.DynamicLayer, vis VisualizerConfig, ns string, markerID uint64) (Marker, bool) {
	latest, ok := layer.LatestPosition()
	if !ok {
		return Marker{}, false
	}

	text := "agent"
	if prefix := layer.Prefix(); prefix != 0 {
		text = string(prefix)
	}

	pose := identityPose()
	pose.Position = latest
	pose.Position.Z += ZOffset(cfg.ZOffsetScale, vis) + cfg.LabelHeight

	return Marker{
		Kind:      KindText,
		ID:        markerID,
		Namespace: ns,
		Pose:      pose,
		Scale:     r3.Vec{Z: cfg.LabelScale},
		Color:     defaultColor(1),
		Text:      text,
	}, true
}
