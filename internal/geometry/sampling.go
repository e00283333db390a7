package geometry

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// SampleUniform draws exactly n points uniformly distributed over the surface
// of the mesh: triangles are picked with probability proportional to their
// area, then a point is drawn uniformly inside the triangle. Vertex colors are
// interpolated. A mesh without triangles (or with zero area) is sampled by
// picking vertices uniformly.
func SampleUniform(mesh *data.Mesh, n int, rng *rand.Rand) (*data.PointCloud, error) {
	if !mesh.HasVertices() {
		return nil, errors.WithStack(failure.ErrEmptyMesh)
	}
	if n <= 0 {
		return nil, errors.Wrapf(failure.ErrInvalidArgument, "cannot sample %d points", n)
	}
	for i, t := range mesh.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= mesh.VertexCount() {
				return nil, errors.Wrapf(failure.ErrInvalidArgument, "triangle %d references vertex %d of %d", i, idx, mesh.VertexCount())
			}
		}
	}

	out := &data.PointCloud{Points: make([]r3.Vector, n)}
	if mesh.HasColors() {
		out.Colors = make([]colorful.Color, n)
	}

	cumulative := cumulativeAreas(mesh)
	if cumulative == nil {
		for i := range out.Points {
			v := rng.IntN(mesh.VertexCount())
			out.Points[i] = mesh.Vertices[v]
			if out.Colors != nil {
				out.Colors[i] = mesh.Colors[v]
			}
		}
		return out, nil
	}

	total := cumulative[len(cumulative)-1]
	for i := range out.Points {
		u := rng.Float64() * total
		t := sort.Search(len(cumulative), func(j int) bool { return cumulative[j] > u })
		if t == len(cumulative) {
			t--
		}
		wa, wb, wc := barycentric(rng)
		tri := mesh.Triangles[t]
		a, b, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
		out.Points[i] = a.Mul(wa).Add(b.Mul(wb)).Add(c.Mul(wc))
		if out.Colors != nil {
			ca, cb, cc := mesh.Colors[tri[0]], mesh.Colors[tri[1]], mesh.Colors[tri[2]]
			out.Colors[i] = colorful.Color{
				R: wa*ca.R + wb*cb.R + wc*cc.R,
				G: wa*ca.G + wb*cb.G + wc*cc.G,
				B: wa*ca.B + wb*cb.B + wc*cc.B,
			}
		}
	}
	return out, nil
}

// returns the running sum of the triangle areas, or nil when the mesh has no
// surface to sample
func cumulativeAreas(mesh *data.Mesh) []float64 {
	if mesh.TriangleCount() == 0 {
		return nil
	}
	areas := make([]float64, mesh.TriangleCount())
	for i := range areas {
		areas[i] = mesh.TriangleArea(i)
	}
	cumulative := floats.CumSum(make([]float64, len(areas)), areas)
	total := cumulative[len(cumulative)-1]
	if !(total > 0) || math.IsInf(total, 0) {
		return nil
	}
	return cumulative
}

// barycentric draws uniformly distributed barycentric weights
func barycentric(rng *rand.Rand) (float64, float64, float64) {
	s := math.Sqrt(rng.Float64())
	r := rng.Float64()
	return 1 - s, s * (1 - r), s * r
}
