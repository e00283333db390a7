package geometry

import (
	"math"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// cell coordinates beyond this cannot be told apart once converted from float64
const maxGridIndex = 1 << 52

type gridIndex struct {
	x int
	y int
	z int
}

// accumulates the attributes of all the points falling in a voxel
type gridCell struct {
	count    int
	position r3.Vector
	color    colorful.Color
	normal   r3.Vector
}

func getDimensionIndex(value float64, cellSize float64) int {
	return int(math.Floor(value / cellSize))
}

// VoxelDownsample replaces all the points falling in the same cubic voxel of
// edge voxelSize with their centroid. Colors and normals, when present, are
// averaged the same way (normals are then renormalized). Output points follow
// the order in which their voxels are first encountered.
func VoxelDownsample(cloud *data.PointCloud, voxelSize float64) (*data.PointCloud, error) {
	if cloud == nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, "nil point cloud")
	}
	if !(voxelSize > 0) || math.IsInf(voxelSize, 1) {
		return nil, errors.Wrapf(failure.ErrInvalidArgument, "voxel size %v must be positive", voxelSize)
	}
	if err := cloud.Validate(); err != nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, err.Error())
	}

	cells := make(map[gridIndex]*gridCell)
	order := make([]*gridCell, 0)
	for i, p := range cloud.Points {
		if !isFinite(p) {
			return nil, errors.Wrapf(failure.ErrInvalidArgument, "point %d is not finite", i)
		}
		if math.Abs(p.X/voxelSize) > maxGridIndex || math.Abs(p.Y/voxelSize) > maxGridIndex || math.Abs(p.Z/voxelSize) > maxGridIndex {
			return nil, errors.Wrapf(failure.ErrInvalidArgument, "voxel size %v is too small for point %d", voxelSize, i)
		}
		index := gridIndex{
			getDimensionIndex(p.X, voxelSize),
			getDimensionIndex(p.Y, voxelSize),
			getDimensionIndex(p.Z, voxelSize),
		}
		cell := cells[index]
		if cell == nil {
			cell = &gridCell{}
			cells[index] = cell
			order = append(order, cell)
		}
		cell.count++
		cell.position = cell.position.Add(p)
		if cloud.HasColors() {
			c := cloud.Colors[i]
			cell.color = colorful.Color{R: cell.color.R + c.R, G: cell.color.G + c.G, B: cell.color.B + c.B}
		}
		if cloud.HasNormals() {
			cell.normal = cell.normal.Add(cloud.Normals[i])
		}
	}

	out := &data.PointCloud{Points: make([]r3.Vector, len(order))}
	if cloud.HasColors() {
		out.Colors = make([]colorful.Color, len(order))
	}
	if cloud.HasNormals() {
		out.Normals = make([]r3.Vector, len(order))
	}
	for i, cell := range order {
		n := float64(cell.count)
		out.Points[i] = cell.position.Mul(1 / n)
		if out.Colors != nil {
			out.Colors[i] = colorful.Color{R: cell.color.R / n, G: cell.color.G / n, B: cell.color.B / n}
		}
		if out.Normals != nil {
			out.Normals[i] = normalizeOr(cell.normal, cell.normal)
		}
	}
	return out, nil
}

func isFinite(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// normalizeOr returns v with unit length, or fallback when v has no direction
func normalizeOr(v r3.Vector, fallback r3.Vector) r3.Vector {
	norm := v.Norm()
	if norm == 0 || math.IsNaN(norm) {
		return fallback
	}
	return v.Mul(1 / norm)
}
