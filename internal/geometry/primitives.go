package geometry

import (
	"math"
	"strings"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/golang/geo/r3"
)

type Shape string

const (
	ShapeSphere Shape = "SPHERE"
	ShapeCube   Shape = "CUBE"
)

// tessellation of the sample sphere: latitude rings and longitude segments
const sphereResolution = 20

func ParseShape(value string) Shape {
	normalizedValue := strings.TrimSpace(strings.ToUpper(value))
	if normalizedValue == string(ShapeSphere) {
		return ShapeSphere
	} else if normalizedValue == string(ShapeCube) {
		return ShapeCube
	}
	return ""
}

// Mesh builds the triangle mesh of the shape: a unit radius sphere centered
// on the origin, or a unit cube spanning [0,1] on every axis.
func (s Shape) Mesh() *data.Mesh {
	if s == ShapeCube {
		return cubeMesh()
	}
	return sphereMesh(1, sphereResolution)
}

func sphereMesh(radius float64, resolution int) *data.Mesh {
	mesh := &data.Mesh{}
	mesh.Vertices = append(mesh.Vertices, r3.Vector{Z: radius})
	for ring := 1; ring < resolution; ring++ {
		theta := math.Pi * float64(ring) / float64(resolution)
		for seg := 0; seg < 2*resolution; seg++ {
			phi := math.Pi * float64(seg) / float64(resolution)
			mesh.Vertices = append(mesh.Vertices, r3.Vector{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			})
		}
	}
	south := len(mesh.Vertices)
	mesh.Vertices = append(mesh.Vertices, r3.Vector{Z: -radius})

	segments := 2 * resolution
	ringStart := func(ring int) int { return 1 + (ring-1)*segments }
	for seg := 0; seg < segments; seg++ {
		next := (seg + 1) % segments
		mesh.Triangles = append(mesh.Triangles, data.Triangle{0, ringStart(1) + seg, ringStart(1) + next})
		last := ringStart(resolution - 1)
		mesh.Triangles = append(mesh.Triangles, data.Triangle{south, last + next, last + seg})
	}
	for ring := 1; ring < resolution-1; ring++ {
		top, bottom := ringStart(ring), ringStart(ring+1)
		for seg := 0; seg < segments; seg++ {
			next := (seg + 1) % segments
			mesh.Triangles = append(mesh.Triangles,
				data.Triangle{top + seg, bottom + seg, bottom + next},
				data.Triangle{top + seg, bottom + next, top + next})
		}
	}
	return mesh
}

func cubeMesh() *data.Mesh {
	return &data.Mesh{
		Vertices: []r3.Vector{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
		},
		Triangles: []data.Triangle{
			{0, 2, 1}, {1, 2, 3}, // bottom
			{4, 5, 6}, {5, 7, 6}, // top
			{0, 1, 4}, {1, 5, 4}, // front
			{2, 6, 3}, {3, 6, 7}, // back
			{0, 4, 2}, {2, 4, 6}, // left
			{1, 3, 5}, {3, 7, 5}, // right
		},
	}
}
