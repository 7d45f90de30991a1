// Package io provides JSON import and export for layered scene graphs.
//
// # Overview
//
// This package enables serialization of scene graphs to and from a JSON
// format. The format is designed for:
//
//   - Offline rendering of graphs captured by a mapping system
//   - Integration with external tools that produce or consume scene graphs
//   - Caching of built graphs for faster re-rendering
//   - Round-trip preservation: import, render, export, and re-import identically
//
// # JSON Format
//
// The top-level object holds layers, dynamic layers, cross-layer edges and
// an optional mesh:
//
//	{
//	  "layers": [
//	    {
//	      "id": 3,
//	      "nodes": [{"id": 216172782113783808, "type": "semantic", "position": [1, 2, 0]}],
//	      "edges": []
//	    }
//	  ],
//	  "dynamic_layers": [
//	    {"id": 1, "prefix": "a", "nodes": [...], "edges": [...]}
//	  ],
//	  "interlayer_edges": [{"source": 216172782113783808, "target": 108086391056891904}],
//	  "dynamic_interlayer_edges": [],
//	  "mesh": {"vertices": [[0, 0, 0], [1, 0, 0]]}
//	}
//
// # Node Fields
//
// Required:
//   - id: the packed node identifier
//   - type: attribute payload kind ("attributes", "semantic", "place", "place2d")
//   - position: [x, y, z]
//
// Optional, depending on type:
//   - rotation: [w, x, y, z] quaternion (identity if omitted)
//   - color, name, label, bounding_box: semantic fields
//   - real_place, distance, frontier_scale: place fields
//   - boundary, ellipse_expand, ellipse_centroid, mesh_connections: 2D place fields
//
// Unknown type strings are rejected so a renamed payload kind fails loudly
// at import instead of silently degrading to bare attributes.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := io.ImportJSON("scene.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Import rebuilds the graph through the scenegraph package's constructors,
// so structural constraints (unique ids, known endpoints, edge direction)
// are enforced the same way as for programmatically built graphs.
package io
