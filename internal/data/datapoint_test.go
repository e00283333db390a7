package data

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCloud(t *testing.T) {
	var pc *PointCloud
	assert.Zero(t, pc.Size())
	assert.False(t, pc.HasColors())
	assert.False(t, pc.HasNormals())
	assert.Nil(t, pc.Clone())
	assert.Error(t, pc.Validate())
}

func TestValidate(t *testing.T) {
	pc := NewPointCloud([]r3.Vector{{}, {X: 1}})
	assert.NoError(t, pc.Validate())

	pc.Colors = []colorful.Color{{R: 1}}
	assert.Error(t, pc.Validate())

	pc.Colors = nil
	pc.Normals = []r3.Vector{{Z: 1}, {Z: 1}, {Z: 1}}
	assert.Error(t, pc.Validate())
}

func TestPaintUniformLeavesReceiver(t *testing.T) {
	gold := colorful.Color{R: 1, G: 0.706, B: 0}
	pc := &PointCloud{
		Points:  []r3.Vector{{X: 1}, {Y: 2}},
		Normals: []r3.Vector{{Z: 1}, {Z: -1}},
	}

	painted := pc.PaintUniform(gold)
	require.Equal(t, 2, painted.Size())
	assert.Equal(t, []colorful.Color{gold, gold}, painted.Colors)
	assert.Equal(t, pc.Normals, painted.Normals)
	assert.False(t, pc.HasColors())

	painted.Points[0].X = 42
	assert.Equal(t, 1.0, pc.Points[0].X)
}

func TestAt(t *testing.T) {
	pc := &PointCloud{Points: []r3.Vector{{X: 1}}, Colors: []colorful.Color{{G: 1}}}
	p := pc.At(0)
	assert.Equal(t, r3.Vector{X: 1}, p.Position)
	require.NotNil(t, p.Color)
	assert.Equal(t, 1.0, p.Color.G)
	assert.Nil(t, p.Normal)
}

func TestBounds(t *testing.T) {
	_, ok := NewPointCloud(nil).Bounds()
	assert.False(t, ok)

	box, ok := NewPointCloud([]r3.Vector{{X: -1, Y: 2, Z: 0}, {X: 1, Y: -2, Z: 4}}).Bounds()
	require.True(t, ok)
	assert.Equal(t, r3.Vector{X: -1, Y: -2, Z: 0}, box.Min)
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 4}, box.Max)
	assert.Equal(t, r3.Vector{X: 0, Y: 0, Z: 2}, box.Center())
	assert.InDelta(t, 6.0, box.Diagonal(), 1e-12)
}

func TestMeshArea(t *testing.T) {
	mesh := &Mesh{
		Vertices:  []r3.Vector{{}, {X: 2}, {Y: 2}, {X: 2, Y: 2}},
		Triangles: []Triangle{{0, 1, 2}, {1, 3, 2}},
	}
	assert.InDelta(t, 2.0, mesh.TriangleArea(0), 1e-12)
	assert.InDelta(t, 4.0, mesh.SurfaceArea(), 1e-12)
	assert.False(t, mesh.HasColors())

	vertexOnly := MeshFromPointCloud(NewPointCloud(mesh.Vertices))
	assert.True(t, vertexOnly.HasVertices())
	assert.Zero(t, vertexOnly.TriangleCount())
	assert.Zero(t, vertexOnly.SurfaceArea())
}
