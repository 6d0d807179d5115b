// Package kernel holds the render-ready output produced by sampling
// primitives: triangle meshes for surfaces and polylines for curves.
package kernel

import "github.com/chazu/geotrait/pkg/euclid"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design graph surface this came from
	// DegenerateNormals counts vertices whose normal is undefined. Their
	// normals are stored exactly as the surface reported them.
	DegenerateNormals int `json:"degenerateNormals"`
}

// NewMesh returns a mesh with n zeroed vertices and no triangles. Vertices
// are filled in with SetVertex, which may be called concurrently for
// distinct indices.
func NewMesh(n int) *Mesh {
	return &Mesh{
		Vertices: make([]float32, n*3),
		Normals:  make([]float32, n*3),
	}
}

// SetVertex stores position p and normal n at vertex index i.
func (m *Mesh) SetVertex(i int, p euclid.Point3, n euclid.Vector3) {
	copy(m.Vertices[i*3:], flat(p.ToVec()))
	copy(m.Normals[i*3:], flat(n))
}

// AddTriangle appends the triangle (a, b, c).
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Polyline is an ordered sequence of curve samples with their tangents.
type Polyline struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, ...]
	Tangents []float32 `json:"tangents"` // first derivatives, not normalized
	PartName string    `json:"partName"`
}

// Append adds a sample at position p with derivative d.
func (l *Polyline) Append(p euclid.Point3, d euclid.Vector3) {
	l.Vertices = append(l.Vertices, flat(p.ToVec())...)
	l.Tangents = append(l.Tangents, flat(d)...)
}

// VertexCount returns the number of samples.
func (l *Polyline) VertexCount() int {
	return len(l.Vertices) / 3
}

// SegmentCount returns the number of line segments between samples.
func (l *Polyline) SegmentCount() int {
	if n := l.VertexCount(); n > 1 {
		return n - 1
	}
	return 0
}

func flat(v euclid.Vector3) []float32 {
	return []float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
