// Package config loads visualizer configuration from TOML files.
//
// A config file styles the whole rendering pass: global visualizer
// behavior, one section per static layer, one per dynamic layer, and the
// distance colormap. Layer sections are keyed by the numeric layer id:
//
//	[visualizer]
//	layer_z_step = 5.0
//
//	[layers.2]
//	visualize = true
//	z_offset_scale = 1.0
//	marker_scale = 0.1
//
//	[dynamic_layers.1]
//	visualize = true
//
//	[colormap]
//	ramp = ["#00004c", "#ffffff", "#7f0000"]
//
// [Load] reads and validates a file; [Default] provides a usable baseline
// for scenes without a config.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/stratumviz/stratum/pkg/errors"
	"github.com/stratumviz/stratum/pkg/render/markers"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// Config is the decoded form of a visualizer TOML file.
type Config struct {
	Visualizer    VisualizerSection              `toml:"visualizer"`
	Colormap      ColormapSection                `toml:"colormap"`
	Layers        map[string]LayerSection        `toml:"layers"`
	DynamicLayers map[string]DynamicLayerSection `toml:"dynamic_layers"`
}

// VisualizerSection mirrors markers.VisualizerConfig.
type VisualizerSection struct {
	CollapseLayers      bool    `toml:"collapse_layers"`
	LayerZStep          float64 `toml:"layer_z_step"`
	MeshEdgeBreakRatio  float64 `toml:"mesh_edge_break_ratio"`
	MeshLayerOffset     float64 `toml:"mesh_layer_offset"`
	ColormapMinDistance float64 `toml:"colormap_min_distance"`
	ColormapMaxDistance float64 `toml:"colormap_max_distance"`
}

// ColormapSection holds the distance color ramp as hex strings.
type ColormapSection struct {
	Ramp []string `toml:"ramp"`
}

// LayerSection mirrors markers.LayerConfig.
type LayerSection struct {
	Visualize    bool    `toml:"visualize"`
	ZOffsetScale float64 `toml:"z_offset_scale"`

	MarkerScale     float64 `toml:"marker_scale"`
	MarkerAlpha     float64 `toml:"marker_alpha"`
	UseSphereMarker bool    `toml:"use_sphere_marker"`

	LabelHeight      float64 `toml:"label_height"`
	LabelScale       float64 `toml:"label_scale"`
	AddLabelJitter   bool    `toml:"add_label_jitter"`
	LabelJitterScale float64 `toml:"label_jitter_scale"`

	BoundingBoxAlpha       float64 `toml:"bounding_box_alpha"`
	BBoxWireframeScale     float64 `toml:"bbox_wireframe_scale"`
	BBoxWireframeEdgeScale float64 `toml:"bbox_wireframe_edge_scale"`
	CollapseBoundingBox    bool    `toml:"collapse_bounding_box"`

	BoundaryWireframeScale float64 `toml:"boundary_wireframe_scale"`
	BoundaryAlpha          float64 `toml:"boundary_alpha"`
	BoundaryEllipseAlpha   float64 `toml:"boundary_ellipse_alpha"`
	BoundaryUseNodeColor   bool    `toml:"boundary_use_node_color"`
	CollapseBoundary       bool    `toml:"collapse_boundary"`

	IntralayerEdgeScale         float64 `toml:"intralayer_edge_scale"`
	IntralayerEdgeAlpha         float64 `toml:"intralayer_edge_alpha"`
	IntralayerEdgeInsertionSkip int     `toml:"intralayer_edge_insertion_skip"`

	InterlayerEdgeScale         float64 `toml:"interlayer_edge_scale"`
	InterlayerEdgeAlpha         float64 `toml:"interlayer_edge_alpha"`
	InterlayerEdgeUseColor      bool    `toml:"interlayer_edge_use_color"`
	InterlayerEdgeUseSource     bool    `toml:"interlayer_edge_use_source"`
	InterlayerEdgeInsertionSkip int     `toml:"interlayer_edge_insertion_skip"`
}

// DynamicLayerSection mirrors markers.DynamicLayerConfig.
type DynamicLayerSection struct {
	Visualize                bool    `toml:"visualize"`
	VisualizeInterlayerEdges bool    `toml:"visualize_interlayer_edges"`
	ZOffsetScale             float64 `toml:"z_offset_scale"`

	NodeScale     float64 `toml:"node_scale"`
	NodeAlpha     float64 `toml:"node_alpha"`
	NodeUseSphere bool    `toml:"node_use_sphere"`

	EdgeScale float64 `toml:"edge_scale"`
	EdgeAlpha float64 `toml:"edge_alpha"`

	LabelHeight float64 `toml:"label_height"`
	LabelScale  float64 `toml:"label_scale"`

	InterlayerEdgeInsertionSkip int `toml:"interlayer_edge_insertion_skip"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates TOML config bytes.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns a baseline config: one visible layer style applied to any
// layer id the caller asks for, no dynamic layers, blue-to-red colormap.
func Default() *Config {
	return &Config{
		Visualizer: VisualizerSection{
			LayerZStep:          5.0,
			MeshEdgeBreakRatio:  0.5,
			ColormapMinDistance: 0,
			ColormapMaxDistance: 4,
		},
		Colormap: ColormapSection{
			Ramp: []string{"#00004c", "#ffffff", "#7f0000"},
		},
	}
}

// DefaultLayer returns the baseline style for a static layer.
func DefaultLayer() LayerSection {
	return LayerSection{
		Visualize:              true,
		ZOffsetScale:           1,
		MarkerScale:            0.1,
		MarkerAlpha:            1,
		UseSphereMarker:        true,
		LabelHeight:            1,
		LabelScale:             0.5,
		BoundingBoxAlpha:       0.5,
		BBoxWireframeScale:     0.1,
		BBoxWireframeEdgeScale: 0.01,
		BoundaryWireframeScale: 0.05,
		BoundaryEllipseAlpha:   0.5,
		IntralayerEdgeScale:    0.03,
		IntralayerEdgeAlpha:    1,
		InterlayerEdgeScale:    0.03,
		InterlayerEdgeAlpha:    1,
	}
}

// DefaultDynamicLayer returns the baseline style for a dynamic layer.
func DefaultDynamicLayer() DynamicLayerSection {
	return DynamicLayerSection{
		Visualize:                true,
		VisualizeInterlayerEdges: true,
		ZOffsetScale:             0.5,
		NodeScale:                0.1,
		NodeAlpha:                1,
		NodeUseSphere:            true,
		EdgeScale:                0.05,
		EdgeAlpha:                0.8,
		LabelHeight:              1,
		LabelScale:               0.5,
	}
}

// Validate checks value ranges and layer id keys.
func (c *Config) Validate() error {
	if c.Visualizer.LayerZStep < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layer_z_step must be non-negative")
	}
	if r := c.Visualizer.MeshEdgeBreakRatio; r < 0 || r > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "mesh_edge_break_ratio must be in [0, 1]")
	}
	for _, hex := range c.Colormap.Ramp {
		if _, err := parseHexColor(hex); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "colormap ramp")
		}
	}
	for key, l := range c.Layers {
		if _, err := parseLayerID(key); err != nil {
			return err
		}
		if err := validateAlphas(key,
			l.MarkerAlpha, l.BoundingBoxAlpha, l.BoundaryAlpha, l.BoundaryEllipseAlpha,
			l.IntralayerEdgeAlpha, l.InterlayerEdgeAlpha); err != nil {
			return err
		}
		if l.IntralayerEdgeInsertionSkip < 0 || l.InterlayerEdgeInsertionSkip < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %s: insertion skip must be non-negative", key)
		}
	}
	for key, l := range c.DynamicLayers {
		if _, err := parseLayerID(key); err != nil {
			return err
		}
		if err := validateAlphas(key, l.NodeAlpha, l.EdgeAlpha); err != nil {
			return err
		}
		if l.InterlayerEdgeInsertionSkip < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "dynamic layer %s: insertion skip must be non-negative", key)
		}
	}
	return nil
}

// Hash returns a stable content hash of the config, for cache keys.
func (c *Config) Hash() string {
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VisualizerConfig converts the visualizer section.
func (c *Config) VisualizerConfig() markers.VisualizerConfig {
	return markers.VisualizerConfig{
		CollapseLayers:      c.Visualizer.CollapseLayers,
		LayerZStep:          c.Visualizer.LayerZStep,
		MeshEdgeBreakRatio:  c.Visualizer.MeshEdgeBreakRatio,
		MeshLayerOffset:     c.Visualizer.MeshLayerOffset,
		ColormapMinDistance: c.Visualizer.ColormapMinDistance,
		ColormapMaxDistance: c.Visualizer.ColormapMaxDistance,
	}
}

// ColormapConfig converts the colormap ramp. Validate catches malformed hex
// strings, so conversion after a successful Parse cannot fail.
func (c *Config) ColormapConfig() markers.ColormapConfig {
	ramp := make([]scenegraph.Color, 0, len(c.Colormap.Ramp))
	for _, h := range c.Colormap.Ramp {
		col, err := parseHexColor(h)
		if err != nil {
			continue
		}
		ramp = append(ramp, col)
	}
	return markers.ColormapConfig{Ramp: ramp}
}

// LayerConfigs converts the per-layer sections, keyed by layer id.
func (c *Config) LayerConfigs() map[scenegraph.LayerID]markers.LayerConfig {
	out := make(map[scenegraph.LayerID]markers.LayerConfig, len(c.Layers))
	for key, l := range c.Layers {
		id, err := parseLayerID(key)
		if err != nil {
			continue
		}
		out[id] = markers.LayerConfig{
			Visualize:                   l.Visualize,
			ZOffsetScale:                l.ZOffsetScale,
			MarkerScale:                 l.MarkerScale,
			MarkerAlpha:                 l.MarkerAlpha,
			UseSphereMarker:             l.UseSphereMarker,
			LabelHeight:                 l.LabelHeight,
			LabelScale:                  l.LabelScale,
			AddLabelJitter:              l.AddLabelJitter,
			LabelJitterScale:            l.LabelJitterScale,
			BoundingBoxAlpha:            l.BoundingBoxAlpha,
			BBoxWireframeScale:          l.BBoxWireframeScale,
			BBoxWireframeEdgeScale:      l.BBoxWireframeEdgeScale,
			CollapseBoundingBox:         l.CollapseBoundingBox,
			BoundaryWireframeScale:      l.BoundaryWireframeScale,
			BoundaryAlpha:               l.BoundaryAlpha,
			BoundaryEllipseAlpha:        l.BoundaryEllipseAlpha,
			BoundaryUseNodeColor:        l.BoundaryUseNodeColor,
			CollapseBoundary:            l.CollapseBoundary,
			IntralayerEdgeScale:         l.IntralayerEdgeScale,
			IntralayerEdgeAlpha:         l.IntralayerEdgeAlpha,
			IntralayerEdgeInsertionSkip: l.IntralayerEdgeInsertionSkip,
			InterlayerEdgeScale:         l.InterlayerEdgeScale,
			InterlayerEdgeAlpha:         l.InterlayerEdgeAlpha,
			InterlayerEdgeUseColor:      l.InterlayerEdgeUseColor,
			InterlayerEdgeUseSource:     l.InterlayerEdgeUseSource,
			InterlayerEdgeInsertionSkip: l.InterlayerEdgeInsertionSkip,
		}
	}
	return out
}

// DynamicLayerConfigs converts the dynamic layer sections, keyed by layer id.
func (c *Config) DynamicLayerConfigs() map[scenegraph.LayerID]markers.DynamicLayerConfig {
	out := make(map[scenegraph.LayerID]markers.DynamicLayerConfig, len(c.DynamicLayers))
	for key, l := range c.DynamicLayers {
		id, err := parseLayerID(key)
		if err != nil {
			continue
		}
		out[id] = markers.DynamicLayerConfig{
			Visualize:                   l.Visualize,
			VisualizeInterlayerEdges:    l.VisualizeInterlayerEdges,
			ZOffsetScale:                l.ZOffsetScale,
			NodeScale:                   l.NodeScale,
			NodeAlpha:                   l.NodeAlpha,
			NodeUseSphere:               l.NodeUseSphere,
			EdgeScale:                   l.EdgeScale,
			EdgeAlpha:                   l.EdgeAlpha,
			LabelHeight:                 l.LabelHeight,
			LabelScale:                  l.LabelScale,
			InterlayerEdgeInsertionSkip: l.InterlayerEdgeInsertionSkip,
		}
	}
	return out
}

// EnsureLayers fills in default sections for any scene layer ids that the
// file does not mention, so a partial config still renders the whole scene.
func (c *Config) EnsureLayers(static, dynamic []scenegraph.LayerID) {
	if c.Layers == nil {
		c.Layers = make(map[string]LayerSection)
	}
	for _, id := range static {
		key := strconv.Itoa(int(id))
		if _, ok := c.Layers[key]; !ok {
			l := DefaultLayer()
			l.ZOffsetScale = float64(id)
			c.Layers[key] = l
		}
	}
	if c.DynamicLayers == nil {
		c.DynamicLayers = make(map[string]DynamicLayerSection)
	}
	for _, id := range dynamic {
		key := strconv.Itoa(int(id))
		if _, ok := c.DynamicLayers[key]; !ok {
			l := DefaultDynamicLayer()
			l.ZOffsetScale = float64(id)
			c.DynamicLayers[key] = l
		}
	}
}

func parseLayerID(key string) (scenegraph.LayerID, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "layer key %q is not a layer id", key)
	}
	return scenegraph.LayerID(id), nil
}

func validateAlphas(layer string, alphas ...float64) error {
	for _, a := range alphas {
		if a < 0 || a > 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %s: alpha %v out of [0, 1]", layer, a)
		}
	}
	return nil
}

func parseHexColor(s string) (scenegraph.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return scenegraph.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return scenegraph.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	return scenegraph.Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}
