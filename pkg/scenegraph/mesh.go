package scenegraph

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is a surface mesh addressable by vertex index. Only the vertex
// positions matter for visualization; faces are not stored here.
type Mesh struct {
	vertices []r3.Vec
}

// NewMesh creates a mesh from vertex positions. The slice is retained.
func NewMesh(vertices []r3.Vec) *Mesh {
	return &Mesh{vertices: vertices}
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.vertices) }

// Pos returns the position of vertex i. Callers must bounds-check with
// NumVertices; render code skips out-of-range correspondence indices.
func (m *Mesh) Pos(i int) r3.Vec { return m.vertices[i] }

// Vertices returns the underlying vertex slice.
func (m *Mesh) Vertices() []r3.Vec { return m.vertices }
