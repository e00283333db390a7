package data

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// Contains data of a single cloud point, namely its position and,
// when the owning cloud carries them, its color and normal
type Point struct {
	Position r3.Vector
	Color    *colorful.Color
	Normal   *r3.Vector
}

// PointCloud stores positions with optional parallel colors and normals.
// Colors and Normals are either nil or exactly as long as Points.
type PointCloud struct {
	Points  []r3.Vector
	Colors  []colorful.Color
	Normals []r3.Vector
}

// Builds a new PointCloud from the given positions, without colors or normals
func NewPointCloud(points []r3.Vector) *PointCloud {
	return &PointCloud{Points: points}
}

func (pc *PointCloud) Size() int {
	if pc == nil {
		return 0
	}
	return len(pc.Points)
}

func (pc *PointCloud) HasColors() bool {
	return pc != nil && len(pc.Colors) > 0
}

func (pc *PointCloud) HasNormals() bool {
	return pc != nil && len(pc.Normals) > 0
}

// Validate checks the parallel attribute invariant.
func (pc *PointCloud) Validate() error {
	if pc == nil {
		return fmt.Errorf("nil point cloud")
	}
	if pc.Colors != nil && len(pc.Colors) != len(pc.Points) {
		return fmt.Errorf("color count %d does not match point count %d", len(pc.Colors), len(pc.Points))
	}
	if pc.Normals != nil && len(pc.Normals) != len(pc.Points) {
		return fmt.Errorf("normal count %d does not match point count %d", len(pc.Normals), len(pc.Points))
	}
	return nil
}

// At returns the i-th point with its attributes.
func (pc *PointCloud) At(i int) Point {
	p := Point{Position: pc.Points[i]}
	if pc.HasColors() {
		c := pc.Colors[i]
		p.Color = &c
	}
	if pc.HasNormals() {
		n := pc.Normals[i]
		p.Normal = &n
	}
	return p
}

// Clone returns a deep copy, so that callers can build a new value without
// touching the receiver.
func (pc *PointCloud) Clone() *PointCloud {
	if pc == nil {
		return nil
	}
	out := &PointCloud{Points: append([]r3.Vector(nil), pc.Points...)}
	if pc.Colors != nil {
		out.Colors = append([]colorful.Color(nil), pc.Colors...)
	}
	if pc.Normals != nil {
		out.Normals = append([]r3.Vector(nil), pc.Normals...)
	}
	return out
}

// PaintUniform returns a copy of the cloud where every point has color c.
// Previous colors are discarded.
func (pc *PointCloud) PaintUniform(c colorful.Color) *PointCloud {
	out := pc.Clone()
	out.Colors = make([]colorful.Color, len(out.Points))
	for i := range out.Colors {
		out.Colors[i] = c
	}
	return out
}

// BoundingBox is an axis aligned box around a set of points
type BoundingBox struct {
	Min r3.Vector
	Max r3.Vector
}

func (b BoundingBox) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b BoundingBox) Diagonal() float64 {
	return b.Max.Sub(b.Min).Norm()
}

// Bounds computes the bounding box of the cloud. The second return is false
// for an empty cloud.
func (pc *PointCloud) Bounds() (BoundingBox, bool) {
	return boundsOf(pc.Points)
}

func boundsOf(points []r3.Vector) (BoundingBox, bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}
	box := BoundingBox{
		Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range points {
		box.Min = r3.Vector{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vector{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}
	return box, true
}
