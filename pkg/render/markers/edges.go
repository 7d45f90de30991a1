package markers

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// LayerEdgeMarker builds one line list from a layer's intra-layer edges.
// Each retained edge contributes two points and two independently resolved
// endpoint colors, enabling gradient segments. The insertion skip thins
// dense edge sets deterministically: after visiting one position the
// iterator advances by skip+1, so exactly every (skip+1)-th edge in
// iteration order is considered, starting from the first.
func LayerEdgeMarker(cfg LayerConfig, layer *scenegraph.Layer, vis VisualizerConfig, ns string, colorFn EdgeColorFunc, filter FilterFunc) Marker {
	m := Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: ns,
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.IntralayerEdgeScale},
	}

	offset := cfg.ZOffset(vis)
	edges := layer.Edges()
	for i := 0; i < len(edges); i += cfg.IntralayerEdgeInsertionSkip + 1 {
		e := edges[i]
		source, okS := layer.Node(e.Source)
		target, okT := layer.Node(e.Target)
		if !okS || !okT {
			continue
		}
		if filter != nil && (!filter(source) || !filter(target)) {
			continue
		}

		m.Points = append(m.Points,
			withZ(source.Position(), offset),
			withZ(target.Position(), offset))
		m.Colors = append(m.Colors,
			makeColor(colorFn(source, target, e, true), cfg.IntralayerEdgeAlpha),
			makeColor(colorFn(source, target, e, false), cfg.IntralayerEdgeAlpha))
	}
	return m
}

// GraphWireframeMarkers renders a whole layer as a node sphere list plus an
// unthinned edge line list, both colored through colorFn (typically a
// distance colormap). Used for dense freespace graphs where centroid and
// edge markers share one scale. An empty layer yields no markers; a layer
// without edges yields only the node marker.
func GraphWireframeMarkers(cfg LayerConfig, layer *scenegraph.Layer, ns string, colorFn ColorFunc, markerID uint64) MarkerArray {
	var out MarkerArray
	if layer.NumNodes() == 0 {
		return out
	}

	scale := r3.Vec{X: cfg.IntralayerEdgeScale, Y: cfg.IntralayerEdgeScale, Z: cfg.IntralayerEdgeScale}
	nodes := Marker{
		Kind:      KindSphereList,
		ID:        markerID,
		Namespace: ns + "_nodes",
		Pose:      identityPose(),
		Scale:     scale,
	}
	for _, n := range layer.Nodes() {
		nodes.Points = append(nodes.Points, n.Position())
		nodes.Colors = append(nodes.Colors, makeColor(colorFn(n), cfg.MarkerAlpha))
	}
	out.Append(nodes)

	if layer.NumEdges() == 0 {
		return out
	}
	edges := Marker{
		Kind:      KindLineList,
		ID:        markerID,
		Namespace: ns + "_edges",
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.IntralayerEdgeScale},
	}
	for _, e := range layer.Edges() {
		source, okS := layer.Node(e.Source)
		target, okT := layer.Node(e.Target)
		if !okS || !okT {
			continue
		}
		edges.Points = append(edges.Points, source.Position(), target.Position())
		edges.Colors = append(edges.Colors,
			makeColor(colorFn(source), cfg.MarkerAlpha),
			makeColor(colorFn(target), cfg.MarkerAlpha))
	}
	out.Append(edges)
	return out
}

// interlayerNS names the accumulating marker for one layer-pair group.
func interlayerNS(prefix string, source, target scenegraph.LayerID) string {
	return fmt.Sprintf("%s%d_%d", prefix, source, target)
}

// newInterlayerMarker starts the accumulating line list for a layer-pair
// group.
func newInterlayerMarker(cfg LayerConfig, nsPrefix string, source, target scenegraph.LayerID) Marker {
	return Marker{
		Kind:      KindLineList,
		ID:        0,
		Namespace: interlayerNS(nsPrefix, source, target),
		Pose:      identityPose(),
		Scale:     r3.Vec{X: cfg.InterlayerEdgeScale},
	}
}

// GraphEdgeMarkers builds the static inter-layer edge markers, one
// accumulating line list per source layer. Edges touching a hidden or
// unconfigured layer are skipped before any throttling accounting.
//
// Throttling: each group's counter starts at the configured skip threshold,
// so the first qualifying edge always draws; an edge then draws only when
// the counter has climbed back to the threshold, resetting it to zero.
// A group of k candidates with threshold s therefore emits ceil(k/(s+1))
// edges.
func GraphEdgeMarkers(g *scenegraph.Graph, configs map[scenegraph.LayerID]LayerConfig, vis VisualizerConfig, nsPrefix string, filter FilterFunc) MarkerArray {
	groups := make(map[scenegraph.LayerID]*Marker)
	sinceLast := make(map[scenegraph.LayerID]int)

	for _, e := range g.InterlayerEdges() {
		source, okS := g.Node(e.Source)
		target, okT := g.Node(e.Target)
		if !okS || !okT {
			continue
		}
		if filter != nil && (!filter(source) || !filter(target)) {
			continue
		}

		srcCfg, okS := configs[source.Layer]
		tgtCfg, okT := configs[target.Layer]
		if !okS || !okT || !srcCfg.Visualize || !tgtCfg.Visualize {
			continue
		}

		threshold := srcCfg.InterlayerEdgeInsertionSkip
		if _, ok := groups[source.Layer]; !ok {
			m := newInterlayerMarker(srcCfg, nsPrefix, source.Layer, target.Layer)
			groups[source.Layer] = &m
			// seed so the first edge of every group always draws
			sinceLast[source.Layer] = threshold
		}

		if sinceLast[source.Layer] >= threshold {
			sinceLast[source.Layer] = 0
		} else {
			sinceLast[source.Layer]++
			continue
		}

		m := groups[source.Layer]
		m.Points = append(m.Points,
			withZ(source.Position(), srcCfg.ZOffset(vis)),
			withZ(target.Position(), tgtCfg.ZOffset(vis)))

		var color scenegraph.Color
		if srcCfg.InterlayerEdgeUseColor {
			endpoint := target
			if srcCfg.InterlayerEdgeUseSource {
				endpoint = source
			}
			if attrs, ok := endpoint.Semantic(); ok {
				color = attrs.Color
			}
		}
		c := makeColor(color, srcCfg.InterlayerEdgeAlpha)
		m.Colors = append(m.Colors, c, c)
	}

	return collectGroups(groups)
}

// DynamicGraphEdgeMarkers builds the inter-layer edge markers for edges with
// a dynamic endpoint. Grouping and throttling follow GraphEdgeMarkers, with
// the skip threshold and alpha drawn from the dynamic config of the
// configurational layer (the dynamic endpoint's side) and the stratum
// offsets from the static layer configs.
func DynamicGraphEdgeMarkers(g *scenegraph.Graph, configs map[scenegraph.LayerID]LayerConfig, dynConfigs map[scenegraph.LayerID]DynamicLayerConfig, vis VisualizerConfig, nsPrefix string) MarkerArray {
	groups := make(map[scenegraph.LayerID]*Marker)
	sinceLast := make(map[scenegraph.LayerID]int)

	for _, e := range g.DynamicInterlayerEdges() {
		source, okS := g.Node(e.Source)
		target, okT := g.Node(e.Target)
		if !okS || !okT {
			continue
		}
		if !shouldVisualize(g, source, configs, dynConfigs) {
			continue
		}
		if !shouldVisualize(g, target, configs, dynConfigs) {
			continue
		}

		cfg := dynConfigs[configLayer(g, source, target)]
		threshold := cfg.InterlayerEdgeInsertionSkip

		if _, ok := groups[source.Layer]; !ok {
			m := newInterlayerMarker(configs[source.Layer], nsPrefix, source.Layer, target.Layer)
			m.Color = defaultColor(cfg.EdgeAlpha)
			groups[source.Layer] = &m
			sinceLast[source.Layer] = threshold
		}

		if sinceLast[source.Layer] >= threshold {
			sinceLast[source.Layer] = 0
		} else {
			sinceLast[source.Layer]++
			continue
		}

		m := groups[source.Layer]
		m.Points = append(m.Points,
			withZ(source.Position(), configs[source.Layer].ZOffset(vis)),
			withZ(target.Position(), configs[target.Layer].ZOffset(vis)))
	}

	return collectGroups(groups)
}

// shouldVisualize reports whether a node's layer is enabled for interlayer
// edge drawing, consulting the dynamic config set for dynamic nodes and the
// static set otherwise.
func shouldVisualize(g *scenegraph.Graph, n *scenegraph.Node, configs map[scenegraph.LayerID]LayerConfig, dynConfigs map[scenegraph.LayerID]DynamicLayerConfig) bool {
	if g.IsDynamic(n.ID) {
		cfg, ok := dynConfigs[n.Layer]
		return ok && cfg.Visualize && cfg.VisualizeInterlayerEdges
	}
	cfg, ok := configs[n.Layer]
	return ok && cfg.Visualize
}

// configLayer names the configurational side of a dynamic interlayer edge:
// the dynamic endpoint's layer.
func configLayer(g *scenegraph.Graph, source, target *scenegraph.Node) scenegraph.LayerID {
	if g.IsDynamic(source.ID) {
		return source.Layer
	}
	return target.Layer
}

// collectGroups flattens the per-layer accumulators in ascending layer
// order for deterministic output.
func collectGroups(groups map[scenegraph.LayerID]*Marker) MarkerArray {
	ids := make([]scenegraph.LayerID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out MarkerArray
	for _, id := range ids {
		out.Append(*groups[id])
	}
	return out
}
