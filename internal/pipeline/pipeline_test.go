package pipeline

import (
	"testing"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingService rejects every processing call
type failingService struct {
	geometry.Service
}

func (failingService) VoxelDownsample(*data.PointCloud, float64) (*data.PointCloud, error) {
	return nil, errors.New("voxel grid failed")
}

func (failingService) EstimateNormals(*data.PointCloud) (*data.PointCloud, error) {
	return nil, errors.New("no neighbours")
}

func newPipeline() *Pipeline {
	return New(geometry.NewStandardService(io.Options{}, nil, 3))
}

func gridCloud() *data.PointCloud {
	var points []r3.Vector
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			points = append(points, r3.Vector{X: float64(i) * 0.01, Y: float64(j) * 0.01})
		}
	}
	cloud := data.NewPointCloud(points)
	return cloud.PaintUniform(colorful.Color{R: 0.3, G: 0.3, B: 0.3})
}

func TestRecolor(t *testing.T) {
	p := newPipeline()
	cloud := gridCloud()
	for name, want := range map[string]colorful.Color{
		"Gold":  {R: 1, G: 0.706, B: 0},
		"Red":   {R: 1, G: 0, B: 0},
		"Green": {R: 0, G: 1, B: 0},
		"Blue":  {R: 0, G: 0, B: 1},
		"White": {R: 1, G: 1, B: 1},
	} {
		got, err := p.Recolor(cloud, name)
		require.NoError(t, err)
		require.Len(t, got.Colors, cloud.Size())
		for _, c := range got.Colors {
			assert.Equal(t, want, c, name)
		}
	}
	assert.Equal(t, 0.3, cloud.Colors[0].R)

	got, err := p.Recolor(cloud, "Purple")
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)
	assert.Same(t, cloud, got)
}

func TestDownsample(t *testing.T) {
	p := newPipeline()
	cloud := gridCloud()

	got, err := p.Downsample(cloud, 0.05)
	require.NoError(t, err)
	assert.Less(t, got.Size(), cloud.Size())

	for _, size := range []float64{0, -1} {
		got, err = p.Downsample(cloud, size)
		assert.ErrorIs(t, err, failure.ErrProcessing)
		assert.Same(t, cloud, got)
	}

	got, err = New(failingService{}).Downsample(cloud, 0.1)
	assert.ErrorIs(t, err, failure.ErrProcessing)
	assert.Contains(t, err.Error(), "voxel grid failed")
	assert.Same(t, cloud, got)
}

func TestEstimateNormalsWarns(t *testing.T) {
	cloud := gridCloud()
	got, err := New(failingService{}).EstimateNormals(cloud)
	assert.True(t, failure.IsWarning(err))
	assert.ErrorIs(t, err, failure.ErrProcessing)
	assert.Same(t, cloud, got)

	got, err = newPipeline().EstimateNormals(cloud)
	require.NoError(t, err)
	assert.True(t, got.HasNormals())
	assert.False(t, cloud.HasNormals())
}

func TestMeshToPointCloud(t *testing.T) {
	p := newPipeline()
	cloud, err := p.MeshToPointCloud(geometry.ShapeCube.Mesh(), 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, cloud.Size())
	assert.True(t, cloud.HasNormals())

	_, err = p.MeshToPointCloud(&data.Mesh{}, 1000)
	assert.ErrorIs(t, err, failure.ErrEmptyMesh)

	for _, n := range []int{999, 1_000_001} {
		_, err = p.MeshToPointCloud(geometry.ShapeCube.Mesh(), n)
		assert.ErrorIs(t, err, failure.ErrInvalidArgument)
	}
}

func TestProcess(t *testing.T) {
	p := newPipeline()
	cloud := gridCloud()

	got, warnings, err := p.Process(cloud, 0.05, "Blue")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.LessOrEqual(t, got.Size(), cloud.Size())
	assert.True(t, got.HasNormals())
	for _, c := range got.Colors {
		assert.Equal(t, colorful.Color{R: 0, G: 0, B: 1}, c)
	}

	got, _, err = p.Process(cloud, 0.05, "Purple")
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)
	assert.Same(t, cloud, got)

	got, _, err = New(failingService{}).Process(cloud, 0.05, "Blue")
	assert.ErrorIs(t, err, failure.ErrProcessing)
	assert.Same(t, cloud, got)

	_, _, err = p.Process(nil, 0.05, "Blue")
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)
}

// normals failing does not stop processing
type normalsFailService struct {
	geometry.Service
}

func (normalsFailService) EstimateNormals(*data.PointCloud) (*data.PointCloud, error) {
	return nil, errors.New("no neighbours")
}

func TestProcessKeepsGoingAfterNormalsWarning(t *testing.T) {
	service := normalsFailService{geometry.NewStandardService(io.Options{}, nil, 3)}
	got, warnings, err := New(service).Process(gridCloud(), 0.05, "Red")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.True(t, failure.IsWarning(warnings[0]))
	assert.False(t, got.HasNormals())
	assert.Equal(t, colorful.Color{R: 1, G: 0, B: 0}, got.Colors[0])
}
