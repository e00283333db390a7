package session

import (
	"testing"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	s := New()
	assert.False(t, s.IsLoaded())
	assert.False(t, s.ControlsEnabled())
	assert.Zero(t, s.PointCount())
	assert.Nil(t, s.Cloud())
	assert.Equal(t, 2, s.PointSize())
	assert.Equal(t, viewer.ColorGold, s.Color())
	assert.Equal(t, 10, s.VoxelSize())
	assert.Equal(t, 0.1, s.VoxelLength())
	assert.False(t, s.Measuring())
}

func TestNewFromOptions(t *testing.T) {
	opts := viewer.DefaultOptions()
	opts.PointSize = 5
	opts.Color = viewer.ColorBlue
	opts.VoxelSize = 500
	s := NewFromOptions(opts)
	assert.Equal(t, 5, s.PointSize())
	assert.Equal(t, viewer.ColorBlue, s.Color())
	assert.Equal(t, viewer.DefaultVoxelSize, s.VoxelSize())
}

func TestSetCloud(t *testing.T) {
	s := New()
	s.SetCloud(data.NewPointCloud([]r3.Vector{{}, {X: 1}, {X: 2}}))
	assert.True(t, s.IsLoaded())
	assert.True(t, s.ControlsEnabled())
	assert.Equal(t, 3, s.PointCount())
}

func TestControlRanges(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.SetPointSize(0), failure.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetPointSize(11), failure.ErrInvalidArgument)
	require.NoError(t, s.SetPointSize(10))
	assert.Equal(t, 10, s.PointSize())

	assert.ErrorIs(t, s.SetVoxelSize(101), failure.ErrInvalidArgument)
	require.NoError(t, s.SetVoxelSize(1))
	assert.Equal(t, 0.01, s.VoxelLength())
	require.NoError(t, s.SetVoxelSize(100))
	assert.Equal(t, 1.0, s.VoxelLength())

	assert.ErrorIs(t, s.SetColor("Purple"), failure.ErrInvalidArgument)
	assert.Equal(t, viewer.ColorGold, s.Color())
	require.NoError(t, s.SetColor(viewer.ColorRed))
	assert.Equal(t, viewer.ColorRed, s.Color())
}

func TestMeasurementSelection(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Pick(0), failure.ErrInvalidArgument)

	s.SetCloud(data.NewPointCloud([]r3.Vector{{}, {X: 1}, {X: 2}}))
	s.BeginMeasurement()
	assert.True(t, s.Measuring())
	assert.ErrorIs(t, s.Pick(3), failure.ErrInvalidArgument)
	assert.ErrorIs(t, s.Pick(-1), failure.ErrInvalidArgument)
	require.NoError(t, s.Pick(2))
	require.NoError(t, s.Pick(0))
	assert.ErrorIs(t, s.Pick(1), failure.ErrInvalidArgument)
	assert.Equal(t, []int{2, 0}, s.Selection())

	s.EndMeasurement()
	assert.False(t, s.Measuring())
	assert.Empty(t, s.Selection())
}

func TestNewCloudEndsMeasurement(t *testing.T) {
	s := New()
	s.SetCloud(data.NewPointCloud([]r3.Vector{{}, {X: 1}}))
	s.BeginMeasurement()
	require.NoError(t, s.Pick(1))
	s.SetCloud(data.NewPointCloud([]r3.Vector{{}}))
	assert.False(t, s.Measuring())
	assert.Empty(t, s.Selection())
}
