package kernel

import "math"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene object this came from
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
	return m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Bounds returns the axis-aligned bounds of the vertex buffer.
// An empty mesh reports zero bounds.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[v+i])
			min[i] = math.Min(min[i], c)
			max[i] = math.Max(max[i], c)
		}
	}
	return min, max
}

// Translated returns a copy of the mesh with every vertex shifted by d.
// Normals and indices are shared with the receiver.
func (m *Mesh) Translated(d [3]float64) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  m.Normals,
		Indices:  m.Indices,
		PartName: m.PartName,
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		out.Vertices[v] = m.Vertices[v] + float32(d[0])
		out.Vertices[v+1] = m.Vertices[v+1] + float32(d[1])
		out.Vertices[v+2] = m.Vertices[v+2] + float32(d[2])
	}
	return out
}
