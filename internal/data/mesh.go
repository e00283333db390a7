package data

import (
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// Triangle holds three vertex indices
type Triangle [3]int

// Mesh is a triangle mesh. Colors is either nil or as long as Vertices.
type Mesh struct {
	Vertices  []r3.Vector
	Colors    []colorful.Color
	Triangles []Triangle
}

func (m *Mesh) HasVertices() bool {
	return m != nil && len(m.Vertices) > 0
}

func (m *Mesh) HasColors() bool {
	return m != nil && len(m.Colors) > 0 && len(m.Colors) == len(m.Vertices)
}

func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles)
}

// TriangleArea returns the area of the i-th triangle.
func (m *Mesh) TriangleArea(i int) float64 {
	t := m.Triangles[i]
	a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}

func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for i := range m.Triangles {
		area += m.TriangleArea(i)
	}
	return area
}

func (m *Mesh) Bounds() (BoundingBox, bool) {
	return boundsOf(m.Vertices)
}

// MeshFromPointCloud keeps only the positions of the cloud, as vertices of a
// mesh without faces.
func MeshFromPointCloud(pc *PointCloud) *Mesh {
	return &Mesh{Vertices: append([]r3.Vector(nil), pc.Points...)}
}
