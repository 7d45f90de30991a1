package markers

import "github.com/stratumviz/stratum/pkg/scenegraph"

// LayerConfig styles one static layer. All alpha values are in [0, 1].
type LayerConfig struct {
	// Visualize gates the whole layer: edges touching a hidden layer are
	// skipped before any throttling accounting.
	Visualize bool

	// ZOffsetScale multiplies the visualizer's layer z-step to place this
	// layer's stratum.
	ZOffsetScale float64

	// Centroid markers.
	MarkerScale     float64
	MarkerAlpha     float64
	UseSphereMarker bool

	// Text labels.
	LabelHeight      float64
	LabelScale       float64
	AddLabelJitter   bool
	LabelJitterScale float64

	// Bounding boxes.
	BoundingBoxAlpha       float64
	BBoxWireframeScale     float64
	BBoxWireframeEdgeScale float64
	CollapseBoundingBox    bool

	// 2D place boundaries.
	BoundaryWireframeScale float64
	BoundaryAlpha          float64
	BoundaryEllipseAlpha   float64
	BoundaryUseNodeColor   bool
	CollapseBoundary       bool

	// Intra-layer edges.
	IntralayerEdgeScale         float64
	IntralayerEdgeAlpha         float64
	IntralayerEdgeInsertionSkip int

	// Inter-layer edges sourced from this layer.
	InterlayerEdgeScale         float64
	InterlayerEdgeAlpha         float64
	InterlayerEdgeUseColor      bool
	InterlayerEdgeUseSource     bool
	InterlayerEdgeInsertionSkip int
}

// DynamicLayerConfig styles one dynamic (trajectory) layer.
type DynamicLayerConfig struct {
	Visualize                bool
	VisualizeInterlayerEdges bool

	ZOffsetScale float64

	NodeScale     float64
	NodeAlpha     float64
	NodeUseSphere bool

	EdgeScale float64
	EdgeAlpha float64

	LabelHeight float64
	LabelScale  float64

	InterlayerEdgeInsertionSkip int
}

// VisualizerConfig holds global rendering behavior shared across layers.
type VisualizerConfig struct {
	// CollapseLayers disables all stratum offsets, drawing every layer at
	// its stored height.
	CollapseLayers bool

	// LayerZStep is the vertical distance of one stratum unit; a layer's
	// offset is ZOffsetScale * LayerZStep.
	LayerZStep float64

	// MeshEdgeBreakRatio positions the strut break point as a fraction of
	// the layer offset above the node centroid.
	MeshEdgeBreakRatio float64

	// MeshLayerOffset displaces mesh vertices when layers are not collapsed.
	MeshLayerOffset float64

	// Colormap domain for distance-based coloring. A domain with
	// Max <= Min is treated as unconfigured and resolves to the default
	// color.
	ColormapMinDistance float64
	ColormapMaxDistance float64
}

// ColormapConfig is a color ramp sampled by normalized ratio.
type ColormapConfig struct {
	Ramp []scenegraph.Color
}

// ZOffset computes the stratum displacement for a given offset scale.
// Collapsed visualizers always return 0; collapsing is a per-call override,
// never baked into stored geometry.
func ZOffset(scale float64, vis VisualizerConfig) float64 {
	if vis.CollapseLayers {
		return 0
	}
	return scale * vis.LayerZStep
}

// ZOffset computes the stratum displacement for this layer.
func (c LayerConfig) ZOffset(vis VisualizerConfig) float64 {
	return ZOffset(c.ZOffsetScale, vis)
}

// ZOffset computes the stratum displacement for this dynamic layer.
func (c DynamicLayerConfig) ZOffset(vis VisualizerConfig) float64 {
	return ZOffset(c.ZOffsetScale, vis)
}
