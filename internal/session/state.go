// Package session holds the state of a viewer session: the loaded cloud,
// the display and processing controls and the measurement selection.
package session

import (
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MeasurementPicks is the number of points a distance measurement needs
const MeasurementPicks = 2

type State struct {
	cloud     *data.PointCloud
	pointSize int
	color     viewer.Color
	voxelSize int
	measuring bool
	selection []int
}

// Instantiates a State with nothing loaded and the default controls
func New() *State {
	return &State{
		pointSize: viewer.DefaultPointSize,
		color:     viewer.ColorGold,
		voxelSize: viewer.DefaultVoxelSize,
	}
}

// NewFromOptions takes the initial controls from opts, falling back to the
// defaults for out of range values
func NewFromOptions(opts *viewer.Options) *State {
	s := New()
	_ = s.SetPointSize(opts.PointSize)
	_ = s.SetColor(opts.Color)
	_ = s.SetVoxelSize(opts.VoxelSize)
	return s
}

func (s *State) IsLoaded() bool {
	return s.cloud != nil
}

// ControlsEnabled tells whether the commands acting on a cloud can run
func (s *State) ControlsEnabled() bool {
	return s.IsLoaded()
}

func (s *State) PointCount() int {
	return s.cloud.Size()
}

func (s *State) Cloud() *data.PointCloud {
	return s.cloud
}

// SetCloud replaces the loaded cloud. A new cloud invalidates any ongoing
// measurement.
func (s *State) SetCloud(cloud *data.PointCloud) {
	s.cloud = cloud
	s.EndMeasurement()
}

func (s *State) PointSize() int {
	return s.pointSize
}

func (s *State) SetPointSize(n int) error {
	if n < viewer.MinPointSize || n > viewer.MaxPointSize {
		return errors.Wrapf(failure.ErrInvalidArgument, "point size %d outside [%d, %d]", n, viewer.MinPointSize, viewer.MaxPointSize)
	}
	s.pointSize = n
	return nil
}

func (s *State) Color() viewer.Color {
	return s.color
}

func (s *State) SetColor(c viewer.Color) error {
	if _, ok := c.RGB(); !ok {
		return errors.Wrapf(failure.ErrInvalidArgument, "unknown color %q", c)
	}
	s.color = c
	return nil
}

// VoxelSize returns the voxel control, in hundredths of a length unit
func (s *State) VoxelSize() int {
	return s.voxelSize
}

func (s *State) SetVoxelSize(n int) error {
	if n < viewer.MinVoxelSize || n > viewer.MaxVoxelSize {
		return errors.Wrapf(failure.ErrInvalidArgument, "voxel size %d outside [%d, %d]", n, viewer.MinVoxelSize, viewer.MaxVoxelSize)
	}
	s.voxelSize = n
	return nil
}

// VoxelLength converts the voxel control to a length
func (s *State) VoxelLength() float64 {
	length, _ := decimal.New(int64(s.voxelSize), -2).Float64()
	return length
}

func (s *State) Measuring() bool {
	return s.measuring
}

// BeginMeasurement enters measurement mode with an empty selection
func (s *State) BeginMeasurement() {
	s.measuring = true
	s.selection = nil
}

// Pick appends a point index to the measurement selection
func (s *State) Pick(index int) error {
	if !s.measuring {
		return errors.Wrap(failure.ErrInvalidArgument, "not measuring")
	}
	if index < 0 || index >= s.PointCount() {
		return errors.Wrapf(failure.ErrInvalidArgument, "point %d outside [0, %d)", index, s.PointCount())
	}
	if len(s.selection) >= MeasurementPicks {
		return errors.Wrapf(failure.ErrInvalidArgument, "at most %d points can be picked", MeasurementPicks)
	}
	s.selection = append(s.selection, index)
	return nil
}

// Selection returns a copy of the picked indices, in pick order
func (s *State) Selection() []int {
	return append([]int(nil), s.selection...)
}

// EndMeasurement leaves measurement mode and discards the selection
func (s *State) EndMeasurement() {
	s.measuring = false
	s.selection = nil
}
