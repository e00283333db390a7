// Package pipeline chains the geometry operations applied to a loaded cloud.
// Every step returns a new cloud, and hands back its input unchanged when it
// fails.
package pipeline

import (
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

type Pipeline struct {
	service geometry.Service
}

func New(service geometry.Service) *Pipeline {
	return &Pipeline{service: service}
}

// Downsample reduces the cloud on a voxel grid of edge voxelSize.
func (p *Pipeline) Downsample(cloud *data.PointCloud, voxelSize float64) (*data.PointCloud, error) {
	if !(voxelSize > 0) {
		return cloud, errors.Wrapf(failure.ErrProcessing, "voxel size %v must be positive", voxelSize)
	}
	reduced, err := p.service.VoxelDownsample(cloud, voxelSize)
	if err != nil {
		return cloud, failure.Mark(errors.WithMessage(err, "downsampling"), failure.ErrProcessing)
	}
	glog.V(2).Infof("downsampled %d points to %d with voxel %v", cloud.Size(), reduced.Size(), voxelSize)
	return reduced, nil
}

// EstimateNormals recomputes the normals of the cloud. A failure is reported
// as a warning.
func (p *Pipeline) EstimateNormals(cloud *data.PointCloud) (*data.PointCloud, error) {
	withNormals, err := p.service.EstimateNormals(cloud)
	if err != nil {
		glog.Warningf("normal estimation failed: %v", err)
		return cloud, failure.NewWarning(failure.Mark(errors.WithMessage(err, "estimating normals"), failure.ErrProcessing))
	}
	return withNormals, nil
}

// Recolor paints the whole cloud with the named color, previous colors are
// discarded.
func (p *Pipeline) Recolor(cloud *data.PointCloud, colorName string) (*data.PointCloud, error) {
	rgb, ok := viewer.ParseColor(colorName).RGB()
	if !ok {
		return cloud, errors.Wrapf(failure.ErrInvalidArgument, "unknown color %q", colorName)
	}
	if cloud == nil {
		return cloud, errors.Wrap(failure.ErrInvalidArgument, "nothing to recolor")
	}
	return cloud.PaintUniform(rgb), nil
}

// MeshToPointCloud samples numPoints points over the surface of the mesh and
// estimates their normals. A normal estimation failure is returned as a
// warning together with the sampled cloud.
func (p *Pipeline) MeshToPointCloud(mesh *data.Mesh, numPoints int) (*data.PointCloud, error) {
	if !mesh.HasVertices() {
		return nil, errors.WithStack(failure.ErrEmptyMesh)
	}
	if err := viewer.ValidateSampleCount(numPoints); err != nil {
		return nil, err
	}
	sampled, err := p.service.SampleUniform(mesh, numPoints)
	if err != nil {
		return nil, errors.WithMessage(err, "sampling mesh")
	}
	return p.EstimateNormals(sampled)
}

// Process downsamples the cloud, then estimates normals on the reduced cloud,
// then recolors it. Non fatal problems are returned as warnings, on a fatal
// error the input cloud is returned.
func (p *Pipeline) Process(cloud *data.PointCloud, voxelSize float64, colorName string) (*data.PointCloud, []error, error) {
	if cloud == nil {
		return nil, nil, errors.Wrap(failure.ErrInvalidArgument, "nothing to process")
	}
	var warnings []error
	reduced, err := p.Downsample(cloud, voxelSize)
	if err != nil {
		return cloud, nil, err
	}
	withNormals, err := p.EstimateNormals(reduced)
	if err != nil {
		warnings = append(warnings, err)
	}
	colored, err := p.Recolor(withNormals, colorName)
	if err != nil {
		return cloud, warnings, err
	}
	return colored, warnings, nil
}
