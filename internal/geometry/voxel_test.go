package geometry

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestVoxelDownsampleAveragesCells(t *testing.T) {
	cloud := &data.PointCloud{
		Points: []r3.Vector{
			{X: 0.01, Y: 0.01, Z: 0},
			{X: 0.5, Y: 0.5, Z: 0.5},
			{X: 0.03, Y: 0.05, Z: 0.02},
		},
		Colors: []colorful.Color{
			{R: 1, G: 0, B: 0},
			{R: 0, G: 1, B: 0},
			{R: 0, G: 0, B: 1},
		},
		Normals: []r3.Vector{
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 1, Z: 0},
		},
	}
	before := cloud.Clone()

	got, err := VoxelDownsample(cloud, 0.1)
	require.NoError(t, err)

	want := &data.PointCloud{
		Points:  []r3.Vector{{X: 0.02, Y: 0.03, Z: 0.01}, {X: 0.5, Y: 0.5, Z: 0.5}},
		Colors:  []colorful.Color{{R: 0.5, G: 0, B: 0.5}, {R: 0, G: 1, B: 0}},
		Normals: []r3.Vector{{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2, Z: 0}, {X: 0, Y: 0, Z: 1}},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("VoxelDownsample() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, before, cloud)
}

func TestVoxelDownsampleSplitsAtZero(t *testing.T) {
	cloud := data.NewPointCloud([]r3.Vector{{X: -0.05}, {X: 0.05}})
	got, err := VoxelDownsample(cloud, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Size())
	assert.False(t, got.HasColors())
	assert.False(t, got.HasNormals())
}

func TestVoxelDownsampleNeverGrows(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	points := make([]r3.Vector, 2000)
	for i := range points {
		points[i] = r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	}
	cloud := data.NewPointCloud(points)
	for _, size := range []float64{1e-6, 0.01, 0.1, 0.5, 1, 10} {
		got, err := VoxelDownsample(cloud, size)
		require.NoError(t, err)
		assert.LessOrEqual(t, got.Size(), cloud.Size(), "voxel %v", size)
		assert.Positive(t, got.Size())
	}

	got, err := VoxelDownsample(cloud, 1000)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Size(), 8)
}

func TestVoxelDownsampleRejects(t *testing.T) {
	cloud := data.NewPointCloud([]r3.Vector{{X: 1}})
	for _, size := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := VoxelDownsample(cloud, size)
		assert.ErrorIs(t, err, failure.ErrInvalidArgument, "size %v", size)
	}

	_, err := VoxelDownsample(nil, 0.1)
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)

	_, err = VoxelDownsample(data.NewPointCloud([]r3.Vector{{X: math.NaN()}}), 0.1)
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)

	got, err := VoxelDownsample(data.NewPointCloud(nil), 0.1)
	require.NoError(t, err)
	assert.Zero(t, got.Size())
}
