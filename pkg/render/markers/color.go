package markers

import (
	"math"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// makeColor converts a stored node color to render space with the given
// alpha.
func makeColor(c scenegraph.Color, alpha float64) RGBA {
	return RGBA{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
		A: alpha,
	}
}

// defaultColor is the color used where no policy applies: opaque black
// modulated by alpha.
func defaultColor(alpha float64) RGBA {
	return makeColor(scenegraph.Color{}, alpha)
}

// clampRatio normalizes value into [min, max], replacing non-finite results
// (zero-width domains) with 0 and clamping to [0, 1].
func clampRatio(min, max, value float64) float64 {
	ratio := (value - min) / (max - min)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// Interpolate samples the ramp at ratio in [0, 1] with piecewise-linear
// blending between adjacent entries. An empty ramp yields the zero color.
func (c ColormapConfig) Interpolate(ratio float64) scenegraph.Color {
	n := len(c.Ramp)
	switch n {
	case 0:
		return scenegraph.Color{}
	case 1:
		return c.Ramp[0]
	}
	if ratio <= 0 {
		return c.Ramp[0]
	}
	if ratio >= 1 {
		return c.Ramp[n-1]
	}
	pos := ratio * float64(n-1)
	i := int(pos)
	frac := pos - float64(i)
	lo, hi := c.Ramp[i], c.Ramp[i+1]
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + frac*(float64(b)-float64(a))))
	}
	return scenegraph.Color{R: lerp(lo.R, hi.R), G: lerp(lo.G, hi.G), B: lerp(lo.B, hi.B)}
}

// DistanceColor maps a scalar through the visualizer's colormap domain and
// the ramp. A degenerate domain (Max <= Min) returns the zero color rather
// than failing; the caller sees default-colored geometry, not an error.
func DistanceColor(vis VisualizerConfig, cmap ColormapConfig, value float64) scenegraph.Color {
	if vis.ColormapMaxDistance <= vis.ColormapMinDistance {
		return scenegraph.Color{}
	}
	ratio := clampRatio(vis.ColormapMinDistance, vis.ColormapMaxDistance, value)
	return cmap.Interpolate(ratio)
}

// UniformColor returns a ColorFunc yielding the same color for every node.
func UniformColor(c scenegraph.Color) ColorFunc {
	return func(*scenegraph.Node) scenegraph.Color { return c }
}

// SemanticColor returns a ColorFunc reading the node's stored color. Nodes
// without semantic attributes resolve to the zero color.
func SemanticColor() ColorFunc {
	return func(n *scenegraph.Node) scenegraph.Color {
		if attrs, ok := n.Semantic(); ok {
			return attrs.Color
		}
		return scenegraph.Color{}
	}
}

// PlaceDistanceColor returns a ColorFunc mapping a place node's
// distance-to-obstacle through the colormap. Non-place nodes resolve to the
// zero color.
func PlaceDistanceColor(vis VisualizerConfig, cmap ColormapConfig) ColorFunc {
	return func(n *scenegraph.Node) scenegraph.Color {
		if attrs, ok := n.Place(); ok {
			return DistanceColor(vis, cmap, attrs.Distance)
		}
		return scenegraph.Color{}
	}
}

// UniformEdgeColor returns an EdgeColorFunc yielding the same color for both
// endpoints of every edge.
func UniformEdgeColor(c scenegraph.Color) EdgeColorFunc {
	return func(_, _ *scenegraph.Node, _ *scenegraph.Edge, _ bool) scenegraph.Color {
		return c
	}
}

// EndpointColor returns an EdgeColorFunc inheriting each segment color from
// the node at that endpoint.
func EndpointColor(nodeColor ColorFunc) EdgeColorFunc {
	return func(source, target *scenegraph.Node, _ *scenegraph.Edge, atSource bool) scenegraph.Color {
		if atSource {
			return nodeColor(source)
		}
		return nodeColor(target)
	}
}

// WeightDistanceColor returns an EdgeColorFunc mapping the edge weight
// through the colormap; both endpoints get the same color.
func WeightDistanceColor(vis VisualizerConfig, cmap ColormapConfig) EdgeColorFunc {
	return func(_, _ *scenegraph.Node, e *scenegraph.Edge, _ bool) scenegraph.Color {
		return DistanceColor(vis, cmap, e.Weight)
	}
}
