package geometry

import (
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultNeighbours is the neighbourhood size used for normal estimation
const DefaultNeighbours = 30

// normal assigned to points whose neighbourhood does not define a plane
var defaultNormal = r3.Vector{X: 0, Y: 0, Z: 1}

// EstimateNormals fits a plane through the k nearest neighbours of every point
// and returns a copy of the cloud whose normals are the plane normals. When the
// cloud already has normals the new ones are flipped to agree with them,
// otherwise they are oriented towards +Z.
func EstimateNormals(cloud *data.PointCloud, k int) (*data.PointCloud, error) {
	if cloud == nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, "nil point cloud")
	}
	if k < 3 {
		return nil, errors.Wrapf(failure.ErrInvalidArgument, "at least 3 neighbours are needed, got %d", k)
	}
	if err := cloud.Validate(); err != nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, err.Error())
	}
	for i, p := range cloud.Points {
		if !isFinite(p) {
			return nil, errors.Wrapf(failure.ErrInvalidArgument, "point %d is not finite", i)
		}
	}

	out := cloud.Clone()
	out.Normals = make([]r3.Vector, cloud.Size())
	if cloud.Size() == 0 {
		return out, nil
	}

	tree := newPointTree(cloud.Points)
	var eigen mat.EigenSym
	var vectors mat.Dense
	covariance := mat.NewSymDense(3, nil)
	degenerate := 0
	for i, p := range cloud.Points {
		neighbours := nearestIndices(tree, p, k)
		normal, ok := planeNormal(cloud.Points, neighbours, covariance, &eigen, &vectors)
		if !ok {
			degenerate++
			normal = defaultNormal
		}
		reference := defaultNormal
		if cloud.HasNormals() {
			reference = cloud.Normals[i]
		}
		if normal.Dot(reference) < 0 {
			normal = normal.Mul(-1)
		}
		out.Normals[i] = normal
	}
	if degenerate > 0 {
		glog.V(2).Infof("%d of %d points had too few neighbours for a normal", degenerate, cloud.Size())
	}
	return out, nil
}

// planeNormal returns the eigenvector of the smallest eigenvalue of the
// covariance of the given neighbourhood
func planeNormal(points []r3.Vector, neighbours []int, covariance *mat.SymDense, eigen *mat.EigenSym, vectors *mat.Dense) (r3.Vector, bool) {
	if len(neighbours) < 3 {
		return r3.Vector{}, false
	}
	var centroid r3.Vector
	for _, idx := range neighbours {
		centroid = centroid.Add(points[idx])
	}
	centroid = centroid.Mul(1 / float64(len(neighbours)))

	var xx, xy, xz, yy, yz, zz float64
	for _, idx := range neighbours {
		d := points[idx].Sub(centroid)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	n := float64(len(neighbours))
	covariance.SetSym(0, 0, xx/n)
	covariance.SetSym(0, 1, xy/n)
	covariance.SetSym(0, 2, xz/n)
	covariance.SetSym(1, 1, yy/n)
	covariance.SetSym(1, 2, yz/n)
	covariance.SetSym(2, 2, zz/n)

	if !eigen.Factorize(covariance, true) {
		return r3.Vector{}, false
	}
	vectors.Reset()
	eigen.VectorsTo(vectors)
	// eigenvalues are returned in ascending order
	normal := r3.Vector{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)}
	if normal.Norm() == 0 {
		return r3.Vector{}, false
	}
	return normal.Normalize(), true
}
