package io

import (
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

func toVector3(v r3.Vector) vector3.Float64 {
	return vector3.New(v.X, v.Y, v.Z)
}

func fromVector3(v vector3.Float64) r3.Vector {
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func colorToVector3(c colorful.Color) vector3.Float64 {
	c = c.Clamped()
	return vector3.New(c.R, c.G, c.B)
}

func colorFromVector3(v vector3.Float64) colorful.Color {
	return colorful.Color{R: v.X(), G: v.Y(), B: v.Z()}
}

// cloudFromAttributes builds a cloud out of decoded vertex attributes, normals
// and colors are kept only when there is one per position
func cloudFromAttributes(positions, normals, colors []vector3.Float64) (*data.PointCloud, error) {
	cloud := &data.PointCloud{
		Points: lo.Map(positions, func(v vector3.Float64, _ int) r3.Vector { return fromVector3(v) }),
	}
	if len(normals) == len(positions) && len(normals) > 0 {
		cloud.Normals = lo.Map(normals, func(v vector3.Float64, _ int) r3.Vector { return fromVector3(v) })
	}
	if len(colors) == len(positions) && len(colors) > 0 {
		cloud.Colors = lo.Map(colors, func(v vector3.Float64, _ int) colorful.Color { return colorFromVector3(v) })
	}
	if err := cloud.Validate(); err != nil {
		return nil, decodeErrorf("%v", err)
	}
	return cloud, nil
}

// pointMesh converts the cloud to a mesh of point topology
func pointMesh(cloud *data.PointCloud) modeling.Mesh {
	mesh := modeling.NewMesh(modeling.PointTopology, lo.Range(cloud.Size())).
		SetFloat3Attribute(modeling.PositionAttribute, lo.Map(cloud.Points, func(v r3.Vector, _ int) vector3.Float64 { return toVector3(v) }))
	if cloud.HasNormals() {
		mesh = mesh.SetFloat3Attribute(modeling.NormalAttribute, lo.Map(cloud.Normals, func(v r3.Vector, _ int) vector3.Float64 { return toVector3(v) }))
	}
	if cloud.HasColors() {
		mesh = mesh.SetFloat3Attribute(modeling.ColorAttribute, lo.Map(cloud.Colors, func(c colorful.Color, _ int) vector3.Float64 { return colorToVector3(c) }))
	}
	return mesh
}

// triangleMesh converts a mesh to polyform, a mesh without triangles keeps
// its vertices only
func triangleMesh(mesh *data.Mesh) modeling.Mesh {
	indices := make([]int, 0, 3*mesh.TriangleCount())
	for _, t := range mesh.Triangles {
		indices = append(indices, t[0], t[1], t[2])
	}
	out := modeling.NewTriangleMesh(indices).
		SetFloat3Attribute(modeling.PositionAttribute, lo.Map(mesh.Vertices, func(v r3.Vector, _ int) vector3.Float64 { return toVector3(v) }))
	if mesh.HasColors() {
		out = out.SetFloat3Attribute(modeling.ColorAttribute, lo.Map(mesh.Colors, func(c colorful.Color, _ int) vector3.Float64 { return colorToVector3(c) }))
	}
	return out
}

// meshFromPolyform reads positions, colors and triangles back
func meshFromPolyform(mesh modeling.Mesh) (*data.Mesh, error) {
	view := mesh.View()
	out := &data.Mesh{
		Vertices: lo.Map(view.Float3Data[modeling.PositionAttribute], func(v vector3.Float64, _ int) r3.Vector { return fromVector3(v) }),
	}
	if colors := view.Float3Data[modeling.ColorAttribute]; len(colors) == len(out.Vertices) && len(colors) > 0 {
		out.Colors = lo.Map(colors, func(v vector3.Float64, _ int) colorful.Color { return colorFromVector3(v) })
	}
	if mesh.Topology() != modeling.TriangleTopology {
		return out, nil
	}
	if len(view.Indices)%3 != 0 {
		return nil, decodeErrorf("%d indices do not form triangles", len(view.Indices))
	}
	for i := 0; i < len(view.Indices); i += 3 {
		t := data.Triangle{view.Indices[i], view.Indices[i+1], view.Indices[i+2]}
		for _, idx := range t {
			if idx < 0 || idx >= len(out.Vertices) {
				return nil, decodeErrorf("face references vertex %d of %d", idx+1, len(out.Vertices))
			}
		}
		out.Triangles = append(out.Triangles, t)
	}
	return out, nil
}
