package markers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/stratumviz/stratum/pkg/observability"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// Builder assembles a full marker set for a scene graph from per-layer
// styling. It is a thin orchestration layer over the per-call constructors
// in this package; all skip-and-continue behavior lives in those
// constructors, so a Builder never fails, it only omits.
type Builder struct {
	vis      VisualizerConfig
	layers   map[scenegraph.LayerID]LayerConfig
	dynamic  map[scenegraph.LayerID]DynamicLayerConfig
	colormap ColormapConfig

	layerColors   map[scenegraph.LayerID]ColorFunc
	dynamicColors map[scenegraph.LayerID]scenegraph.Color
	jitter        *rand.Rand
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithLayerColor overrides the node color policy for one static layer.
func WithLayerColor(layer scenegraph.LayerID, fn ColorFunc) BuilderOption {
	return func(b *Builder) {
		b.layerColors[layer] = fn
	}
}

// WithDynamicColor sets the trajectory color for one dynamic layer.
func WithDynamicColor(layer scenegraph.LayerID, c scenegraph.Color) BuilderOption {
	return func(b *Builder) {
		b.dynamicColors[layer] = c
	}
}

// WithLabelJitterSeed makes label jitter deterministic across builds.
func WithLabelJitterSeed(seed int64) BuilderOption {
	return func(b *Builder) {
		b.jitter = rand.New(rand.NewSource(seed))
	}
}

// NewBuilder constructs a Builder over the given styling. Layers absent
// from the config maps are not drawn.
func NewBuilder(vis VisualizerConfig, layers map[scenegraph.LayerID]LayerConfig, dynamic map[scenegraph.LayerID]DynamicLayerConfig, cmap ColormapConfig, opts ...BuilderOption) *Builder {
	b := &Builder{
		vis:           vis,
		layers:        layers,
		dynamic:       dynamic,
		colormap:      cmap,
		layerColors:   make(map[scenegraph.LayerID]ColorFunc),
		dynamicColors: make(map[scenegraph.LayerID]scenegraph.Color),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// trajectoryPalette colors dynamic layers without an explicit override,
// cycled by layer id.
var trajectoryPalette = []scenegraph.Color{
	{R: 230, G: 25, B: 75},
	{R: 60, G: 180, B: 75},
	{R: 0, G: 130, B: 200},
	{R: 245, G: 130, B: 48},
	{R: 145, G: 30, B: 180},
	{R: 70, G: 240, B: 240},
}

func (b *Builder) nodeColor(id scenegraph.LayerID, layer *scenegraph.Layer) ColorFunc {
	if fn, ok := b.layerColors[id]; ok {
		return fn
	}
	if layerHasPlaces(layer) && b.vis.ColormapMaxDistance > b.vis.ColormapMinDistance {
		return PlaceDistanceColor(b.vis, b.colormap)
	}
	return SemanticColor()
}

func (b *Builder) trajectoryColor(id scenegraph.LayerID) scenegraph.Color {
	if c, ok := b.dynamicColors[id]; ok {
		return c
	}
	i := int(id) % len(trajectoryPalette)
	if i < 0 {
		i += len(trajectoryPalette)
	}
	return trajectoryPalette[i]
}

func layerHasPlaces(layer *scenegraph.Layer) bool {
	for _, n := range layer.Nodes() {
		if _, ok := n.Place(); ok {
			return true
		}
	}
	return false
}

func layerHasPlaces2D(layer *scenegraph.Layer) bool {
	for _, n := range layer.Nodes() {
		if _, ok := n.Place2D(); ok {
			return true
		}
	}
	return false
}

// BuildAll renders every configured layer of the graph into one marker
// array: centroids, labels, bounding boxes, boundaries, intra- and
// inter-layer edges, mesh attachments, and dynamic trajectories. Output
// order is deterministic: static layers ascending, then inter-layer edges,
// then dynamic layers ascending, then dynamic inter-layer edges.
func (b *Builder) BuildAll(ctx context.Context, g *scenegraph.Graph) MarkerArray {
	hooks := observability.Builder()
	start := time.Now()
	hooks.OnBuildStart(ctx, len(g.Layers())+len(g.DynamicLayers()))

	var out MarkerArray
	for _, layer := range g.Layers() {
		cfg, ok := b.layers[layer.ID()]
		if !ok || !cfg.Visualize {
			continue
		}
		layerStart := time.Now()
		hooks.OnLayerStart(ctx, int(layer.ID()), layer.NumNodes())
		before := len(out.Markers)

		b.buildLayer(&out, g, layer, cfg)

		hooks.OnLayerComplete(ctx, int(layer.ID()), len(out.Markers)-before, time.Since(layerStart))
	}

	out.Append(GraphEdgeMarkers(g, b.layers, b.vis, "interlayer_edges_", nil).Markers...)

	for _, dyn := range g.DynamicLayers() {
		cfg, ok := b.dynamic[dyn.ID()]
		if !ok || !cfg.Visualize {
			continue
		}
		b.buildDynamicLayer(&out, dyn, cfg)
	}

	out.Append(DynamicGraphEdgeMarkers(g, b.layers, b.dynamic, b.vis, "dynamic_interlayer_edges_").Markers...)

	hooks.OnBuildComplete(ctx, len(out.Markers), time.Since(start))
	return out
}

func (b *Builder) buildLayer(out *MarkerArray, g *scenegraph.Graph, layer *scenegraph.Layer, cfg LayerConfig) {
	id := layer.ID()
	colorFn := b.nodeColor(id, layer)
	places := layerHasPlaces(layer)

	nodeNS := fmt.Sprintf("layer_%d_nodes", id)
	if places {
		out.Append(PlaceCentroidMarker(cfg, layer, b.vis, nodeNS, colorFn))
		out.Append(FrontierMarkers(cfg, layer, b.vis, fmt.Sprintf("layer_%d_frontiers", id), colorFn)...)
	} else {
		out.Append(CentroidMarker(cfg, layer, b.vis, nodeNS, colorFn, nil))
	}

	if cfg.LabelScale > 0 {
		labelNS := fmt.Sprintf("layer_%d_labels", id)
		var opts []TextOption
		if b.jitter != nil {
			opts = append(opts, WithJitterRand(b.jitter))
		}
		for _, n := range layer.Nodes() {
			out.Append(TextMarker(cfg, n, b.vis, labelNS, opts...))
		}
	}

	if cfg.BoundingBoxAlpha > 0 {
		bboxNS := fmt.Sprintf("layer_%d_bounding_boxes", id)
		for _, n := range layer.Nodes() {
			if m, ok := BoundingBoxMarker(cfg, n, b.vis, bboxNS, colorFn); ok {
				out.Append(m)
			}
		}
	}
	if cfg.BBoxWireframeScale > 0 {
		out.Append(WireframeBoxMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_bbox_wireframes", id), colorFn, nil))
		out.Append(BoxStrutMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_bbox_struts", id), colorFn, nil))
	}

	if layerHasPlaces2D(layer) {
		if cfg.BoundaryWireframeScale > 0 {
			out.Append(PolygonBoundaryMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_boundaries", id)))
		}
		if cfg.BoundaryEllipseAlpha > 0 {
			out.Append(EllipseBoundaryMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_ellipses", id)))
		}
		if cfg.BoundaryAlpha > 0 {
			out.Append(PolygonFanMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_boundary_fans", id)))
		}
		if g.Mesh() != nil {
			out.Append(MeshEdgesMarker(cfg, b.vis, g, layer, fmt.Sprintf("layer_%d_mesh_edges", id)))
		}
	}

	out.Append(LayerEdgeMarker(cfg, layer, b.vis, fmt.Sprintf("layer_%d_edges", id), EndpointColor(colorFn), nil))
}

func (b *Builder) buildDynamicLayer(out *MarkerArray, dyn *scenegraph.DynamicLayer, cfg DynamicLayerConfig) {
	id := dyn.ID()
	color := b.trajectoryColor(id)

	out.Append(DynamicCentroidMarker(cfg, dyn, b.vis, color, fmt.Sprintf("dynamic_layer_%d_nodes", id), 0))
	out.Append(DynamicEdgeMarker(cfg, dyn, b.vis, color, fmt.Sprintf("dynamic_layer_%d_edges", id), 0))
	if cfg.LabelScale > 0 {
		if m, ok := DynamicLabelMarker(cfg, dyn, b.vis, fmt.Sprintf("dynamic_layer_%d_label", id), 0); ok {
			out.Append(m)
		}
	}
}
