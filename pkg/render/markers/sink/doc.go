// Package sink provides output format renderers for marker arrays.
//
// # Overview
//
// A "sink" transforms a built [markers.MarkerArray] into a final output
// format. This package provides renderers for:
//
//   - JSON: marker data export for external visualization tools
//   - SVG: a top-down orthographic projection for quick inspection
//
// # JSON Output
//
// [RenderJSON] exports the complete marker array, enabling:
//
//   - Integration with external 3D viewers that consume marker streams
//   - Caching of build results keyed by graph content
//   - Diffing two builds of the same scene
//
// Basic usage:
//
//	data, err := sink.RenderJSON(arr, sink.WithIndent())
//
// # SVG Output
//
// [RenderSVG] projects markers onto the XY plane, dropping height. It is a
// debugging aid, not a faithful 3D rendering: spheres and cubes become
// circles and squares, line lists become stroked segments, and text markers
// become labels. Z information survives only through per-layer colors.
//
//	svg := sink.RenderSVG(arr, sink.WithSize(800))
//
// [markers.MarkerArray]: github.com/stratumviz/stratum/pkg/render/markers.MarkerArray
package sink
