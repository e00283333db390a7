// Package geometry implements the point cloud algorithms of the viewer and
// exposes them, together with the file codecs and the render surface, as a
// single Service.
package geometry

import (
	"math/rand/v2"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/ecopia-map/cloudview/internal/render"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Service is the boundary between the application and the geometry
// processing library: file parsing and writing, normal estimation, voxel
// downsampling, mesh sampling, rendering and point picking.
type Service interface {
	DecodePointCloud(path string) (*data.PointCloud, error)
	DecodeMesh(path string) (*data.Mesh, error)
	EncodePointCloud(cloud *data.PointCloud, path string) error
	EncodeMesh(mesh *data.Mesh, path string) error
	VoxelDownsample(cloud *data.PointCloud, voxelSize float64) (*data.PointCloud, error)
	EstimateNormals(cloud *data.PointCloud) (*data.PointCloud, error)
	SampleUniform(mesh *data.Mesh, n int) (*data.PointCloud, error)
	RenderInteractive(cloud *data.PointCloud, pointSize float64, background colorful.Color) error
	RenderWithPicking(cloud *data.PointCloud) ([]int, error)
}

type StandardService struct {
	ioOptions  io.Options
	surface    render.Surface
	rng        *rand.Rand
	neighbours int
}

// Instantiates the Service backed by the codecs of the io package and the
// algorithms of this package. surface may be nil when nothing is rendered.
func NewStandardService(ioOptions io.Options, surface render.Surface, seed uint64) Service {
	return &StandardService{
		ioOptions:  ioOptions,
		surface:    surface,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		neighbours: DefaultNeighbours,
	}
}

func (s *StandardService) DecodePointCloud(path string) (*data.PointCloud, error) {
	return io.ReadPointCloudFile(path, s.ioOptions)
}

func (s *StandardService) DecodeMesh(path string) (*data.Mesh, error) {
	return io.ReadMeshFile(path, s.ioOptions)
}

func (s *StandardService) EncodePointCloud(cloud *data.PointCloud, path string) error {
	return io.WritePointCloudFile(path, cloud, s.ioOptions)
}

func (s *StandardService) EncodeMesh(mesh *data.Mesh, path string) error {
	return io.WriteMeshFile(path, mesh)
}

func (s *StandardService) VoxelDownsample(cloud *data.PointCloud, voxelSize float64) (*data.PointCloud, error) {
	return VoxelDownsample(cloud, voxelSize)
}

func (s *StandardService) EstimateNormals(cloud *data.PointCloud) (*data.PointCloud, error) {
	return EstimateNormals(cloud, s.neighbours)
}

func (s *StandardService) SampleUniform(mesh *data.Mesh, n int) (*data.PointCloud, error) {
	return SampleUniform(mesh, n, s.rng)
}

func (s *StandardService) RenderInteractive(cloud *data.PointCloud, pointSize float64, background colorful.Color) error {
	if s.surface == nil {
		return errors.Wrap(failure.ErrInvalidArgument, "no render surface")
	}
	return s.surface.Show(render.Frame{
		Cloud:      cloud,
		PointSize:  pointSize,
		Background: background,
		Camera:     render.DefaultCamera(),
	})
}

func (s *StandardService) RenderWithPicking(cloud *data.PointCloud) ([]int, error) {
	if s.surface == nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, "no render surface")
	}
	return s.surface.Pick(cloud)
}
