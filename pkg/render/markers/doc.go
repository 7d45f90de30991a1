// Package markers converts a layered scene graph into renderable geometric
// primitives: point clouds, line lists, solid boxes, wireframes and text
// labels, described in a renderer-neutral form.
//
// # Overview
//
// Every builder in this package performs one pass over the relevant node or
// edge collection of a read-only graph snapshot and returns a fully
// materialized [Marker] (or [MarkerArray]) with no retained state. Calls are
// pure and re-entrant: concurrent invocation against the same snapshot is
// safe as long as the graph itself is not mutated underneath. The only
// non-determinism is optional label jitter, drawn from a shared source unless
// the caller injects a seeded one via [WithJitterRand].
//
// Color selection is expressed with first-class function values:
// a [ColorFunc] maps a node to its display color, an [EdgeColorFunc] colors
// each endpoint of an edge independently (enabling two-color gradient
// segments), and constructors like [UniformColor], [SemanticColor] and
// [DistanceColor] cover the standard policies.
//
// Failure handling is uniformly "skip and continue": nodes missing an
// attribute kind, degenerate boundaries, out-of-range mesh indices and
// misconfigured colormap domains all result in absent or default-colored
// geometry, never an error. Partially-populated graphs render whatever is
// drawable.
//
// Per-layer appearance ([LayerConfig], [DynamicLayerConfig]) and global
// behavior ([VisualizerConfig], [ColormapConfig]) are plain structs treated
// as immutable for the duration of a call; the config package loads them
// from TOML.
package markers
