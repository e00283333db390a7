package geometry

import (
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// cloudPoint is a kd-tree entry remembering the position of the point in
// the cloud it was taken from. Queries use index -1.
type cloudPoint struct {
	r3.Vector
	index int
}

func coordinate(v r3.Vector, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("geometry: illegal dimension")
}

func (p cloudPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(cloudPoint)
	return coordinate(p.Vector, d) - coordinate(q.Vector, d)
}

func (p cloudPoint) Dims() int { return 3 }

// Distance is the squared euclidean distance, as the kdtree package expects
func (p cloudPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(cloudPoint)
	return p.Sub(q.Vector).Norm2()
}

type cloudPoints []cloudPoint

func (p cloudPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p cloudPoints) Len() int                              { return len(p) }
func (p cloudPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p cloudPoints) Pivot(d kdtree.Dim) int {
	sort.Slice(p, func(i, j int) bool {
		return coordinate(p[i].Vector, d) < coordinate(p[j].Vector, d)
	})
	return len(p) / 2
}

// builds a kd-tree over a copy of the positions, the input slice is left untouched
func newPointTree(points []r3.Vector) *kdtree.Tree {
	entries := make(cloudPoints, len(points))
	for i, p := range points {
		entries[i] = cloudPoint{Vector: p, index: i}
	}
	return kdtree.New(entries, false)
}

// nearestIndices returns the indices of the k points closest to q, closest first
func nearestIndices(tree *kdtree.Tree, q r3.Vector, k int) []int {
	keeper := kdtree.NewNKeeper(k)
	tree.NearestSet(keeper, cloudPoint{Vector: q, index: -1})

	// the keeper is a max-heap that may still hold its nil sentinel
	found := make([]kdtree.ComparableDist, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		if cd.Comparable != nil {
			found = append(found, cd)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Dist < found[j].Dist })
	indices := make([]int, len(found))
	for i, cd := range found {
		indices[i] = cd.Comparable.(cloudPoint).index
	}
	return indices
}
