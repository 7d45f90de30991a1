// Package scenegraph implements a layered, spatially-annotated scene graph.
//
// # Overview
//
// A scene graph partitions nodes into ordered layers (e.g. objects, places,
// rooms, buildings), each holding intra-layer edges, and connects layers with
// interlayer edges whose source is always the node in the higher layer. A
// parallel set of dynamic layers stores temporally-ordered trajectories
// (e.g. agent poses), and an optional surface mesh can be attached for
// place-to-mesh correspondence.
//
// Nodes carry a polymorphic attribute payload: every node has a position and
// orientation, and depending on its semantic kind may additionally expose a
// color, name and bounding box (semantic nodes), a real-place flag, obstacle
// distance and frontier scale (place nodes), or a boundary polygon, fitted
// ellipse and mesh correspondences (2D place nodes). Capability queries
// ([Node.Semantic], [Node.Place], [Node.Place2D]) return (view, ok) pairs so
// callers can skip nodes lacking an attribute kind instead of failing.
//
// The graph is a plain in-memory structure with no locking; callers that
// mutate it concurrently with readers must synchronize externally. Render
// passes in [github.com/stratumviz/stratum/pkg/render/markers] treat a graph
// as a read-only snapshot.
package scenegraph
