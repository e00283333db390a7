package geometry

import (
	"math"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Picker snaps arbitrary coordinates to the closest point of a cloud
type Picker struct {
	tree *kdtree.Tree
	size int
}

// Instantiates a Picker over the positions of the cloud
func NewPicker(cloud *data.PointCloud) *Picker {
	picker := &Picker{size: cloud.Size()}
	if picker.size > 0 {
		picker.tree = newPointTree(cloud.Points)
	}
	return picker
}

// Nearest returns the index of the point closest to q and its distance.
// The last return is false if the cloud is empty.
func (p *Picker) Nearest(q r3.Vector) (int, float64, bool) {
	if p.tree == nil {
		return -1, 0, false
	}
	found, dist := p.tree.Nearest(cloudPoint{Vector: q, index: -1})
	if found == nil {
		return -1, 0, false
	}
	return found.(cloudPoint).index, math.Sqrt(dist), true
}

func (p *Picker) Size() int {
	return p.size
}
