// Package pkg provides the core libraries for Stratum scene graph visualization.
//
// # Overview
//
// Stratum turns layered 3D scene graphs into renderable marker primitives:
// spheres and cubes for nodes, line lists for edges, text labels, bounding
// boxes and boundary polygons. The pkg directory is organized into five
// main areas:
//
//  1. [scenegraph] - Domain model (layers, nodes, edges, meshes)
//  2. [io] - Scene serialization (JSON import/export)
//  3. [render] - Marker building and output formats
//  4. [cache] - Content-addressed caching of built marker arrays
//  5. [config] - Visualizer configuration (TOML)
//
// # Architecture
//
// The typical data flow through Stratum:
//
//	Scene file (JSON)
//	         ↓
//	    [io] package (parse into a scene graph)
//	         ↓
//	    [scenegraph] package (layers, nodes, edges)
//	         ↓
//	    [render/markers] package (build marker primitives)
//	         ↓
//	    JSON/SVG/PDF/PNG output
//
// # Quick Start
//
// Load a scene and render it as markers:
//
//	import (
//	    "context"
//	    "github.com/stratumviz/stratum/pkg/config"
//	    "github.com/stratumviz/stratum/pkg/io"
//	    "github.com/stratumviz/stratum/pkg/render/markers"
//	    "github.com/stratumviz/stratum/pkg/render/markers/sink"
//	)
//
//	// 1. Load the scene
//	g, _ := io.ImportJSON("scene.json")
//
//	// 2. Resolve configuration
//	cfg := config.Default()
//
//	// 3. Build markers
//	b := markers.NewBuilder(cfg.VisualizerConfig(), cfg.LayerConfigs(),
//	    cfg.DynamicLayerConfigs(), cfg.ColormapConfig())
//	arr := b.BuildAll(context.Background(), g)
//
//	// 4. Render to SVG
//	svg := sink.RenderSVG(arr)
//
// # Main Packages
//
// ## Domain Model
//
// [scenegraph] - Layered scene graphs. Static layers hold persistent nodes;
// dynamic layers hold timestamped nodes addressed by insertion order.
// Interlayer edges always run from a higher layer to a lower one.
//
// [io] - JSON serialization of scene graphs, round-trip safe for every
// attribute kind.
//
// ## Rendering
//
// [render/markers] - Marker primitive construction. The builder walks every
// visible layer and emits node markers, edge line lists, labels, bounding
// boxes and boundaries, with per-layer configuration and distance colormaps.
//
//   - [render/markers/sink]: Output formats (SVG, JSON)
//
// [render/nodelink] - Layer structure diagrams using Graphviz.
//
// [render] - Top-level utilities for format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of built marker arrays and rendered
// artifacts. File and Redis backends, plus a null cache for --no-cache.
//
// [config] - TOML visualizer configuration with per-layer sections and
// validated defaults.
//
// [errors] - Coded errors and input validation shared across the CLI and
// HTTP API.
//
// [observability] - Build, cache, and HTTP hook points for progress
// reporting and metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/render/markers/...  # Specific package
//	go test -run Example              # Examples only
//
// [scenegraph]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/scenegraph
// [io]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/io
// [render]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/render
// [render/markers]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/render/markers
// [render/markers/sink]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/render/markers/sink
// [render/nodelink]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/cache
// [config]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/config
// [errors]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/errors
// [observability]: https://pkg.go.dev/github.com/stratumviz/stratum/pkg/observability
package pkg
