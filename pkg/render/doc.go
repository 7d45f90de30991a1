// Package render provides visualization rendering for scene graphs.
//
// # Overview
//
// This package contains the rendering pipeline that transforms layered
// scene graphs into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Marker primitives (in [markers] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both
// marker and node-link renderers.
//
//	svg := sink.RenderSVG(arr, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Marker Primitives
//
// The [markers] subpackage translates every layer of a scene graph into
// renderable primitives: node spheres and cubes, edge line lists, text
// labels, bounding boxes and boundary polygons. This is the primary
// rendering path.
//
// Key marker subpackages:
//   - [markers]: Builder, per-layer configuration, colormaps
//   - [markers/sink]: Output formats (SVG, JSON)
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the layer structure as a directed
// graph diagram using Graphviz, one cluster per layer. It shows graph
// topology rather than geometry.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [markers]: github.com/stratumviz/stratum/pkg/render/markers
// [markers/sink]: github.com/stratumviz/stratum/pkg/render/markers/sink
// [nodelink]: github.com/stratumviz/stratum/pkg/render/nodelink
package render
