package viewer

import (
	"strings"

	"github.com/docker/go-units"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

type Color string

const (
	ColorGold  Color = "Gold"
	ColorRed   Color = "Red"
	ColorGreen Color = "Green"
	ColorBlue  Color = "Blue"
	ColorWhite Color = "White"
)

var colorValues = map[Color]colorful.Color{
	ColorGold:  {R: 1, G: 0.706, B: 0},
	ColorRed:   {R: 1, G: 0, B: 0},
	ColorGreen: {R: 0, G: 1, B: 0},
	ColorBlue:  {R: 0, G: 0, B: 1},
	ColorWhite: {R: 1, G: 1, B: 1},
}

// Colors lists the selectable colors in menu order
func Colors() []Color {
	return []Color{ColorGold, ColorRed, ColorGreen, ColorBlue, ColorWhite}
}

func (c Color) String() string {
	return string(c)
}

// RGB returns the fixed triple of the color, false for an unknown color
func (c Color) RGB() (colorful.Color, bool) {
	value, ok := colorValues[c]
	return value, ok
}

func ParseColor(value string) Color {
	normalizedValue := strings.TrimSpace(strings.ToLower(value))
	for _, c := range Colors() {
		if strings.ToLower(string(c)) == normalizedValue {
			return c
		}
	}
	return ""
}

// Background of every render surface
var Background = colorful.Color{R: 0.1, G: 0.1, B: 0.1}

const (
	MinPointSize     = 1
	MaxPointSize     = 10
	DefaultPointSize = 2

	// voxel sizes are expressed in hundredths of a length unit
	MinVoxelSize     = 1
	MaxVoxelSize     = 100
	DefaultVoxelSize = 10

	MinSampleCount     = 1000
	MaxSampleCount     = 1_000_000
	SampleCountStep    = 1000
	DefaultSampleCount = 100_000

	DefaultLargeFileThreshold = 100 * units.MB
	DefaultRenderDir          = "renders"
)

// Contains the options of a viewer session
type Options struct {
	StartDir           string      // Directory the open dialog starts from
	RenderDir          string      // Directory receiving rendered frames
	LargeFileThreshold int64       // Files above this size need a confirmation before loading
	Seed               uint64      // Seed of the mesh sampling generator
	Encoding           io.Encoding // Encoding of written PLY files
	MaxPoints          int         // Largest point count a file may declare
	PointSize          int         // Initial point size
	Color              Color       // Initial color
	VoxelSize          int         // Initial voxel size, in hundredths
	SampleCount        int         // Default number of points sampled from meshes
}

func DefaultOptions() *Options {
	return &Options{
		StartDir:           ".",
		RenderDir:          DefaultRenderDir,
		LargeFileThreshold: DefaultLargeFileThreshold,
		Encoding:           io.EncodingBinary,
		MaxPoints:          io.DefaultMaxPoints,
		PointSize:          DefaultPointSize,
		Color:              ColorGold,
		VoxelSize:          DefaultVoxelSize,
		SampleCount:        DefaultSampleCount,
	}
}

// IOOptions returns the options for the file readers and writers
func (opt *Options) IOOptions() io.Options {
	return io.Options{Encoding: opt.Encoding, MaxPoints: opt.MaxPoints}
}

func (opt *Options) Validate() error {
	if opt.PointSize < MinPointSize || opt.PointSize > MaxPointSize {
		return errors.Wrapf(failure.ErrInvalidArgument, "point size %d outside [%d, %d]", opt.PointSize, MinPointSize, MaxPointSize)
	}
	if opt.VoxelSize < MinVoxelSize || opt.VoxelSize > MaxVoxelSize {
		return errors.Wrapf(failure.ErrInvalidArgument, "voxel size %d outside [%d, %d]", opt.VoxelSize, MinVoxelSize, MaxVoxelSize)
	}
	if err := ValidateSampleCount(opt.SampleCount); err != nil {
		return err
	}
	if _, ok := opt.Color.RGB(); !ok {
		return errors.Wrapf(failure.ErrInvalidArgument, "unknown color %q", opt.Color)
	}
	if opt.LargeFileThreshold <= 0 {
		return errors.Wrapf(failure.ErrInvalidArgument, "large file threshold must be positive")
	}
	if opt.Encoding != io.EncodingBinary && opt.Encoding != io.EncodingASCII {
		return errors.Wrapf(failure.ErrInvalidArgument, "unknown encoding %q", opt.Encoding)
	}
	return nil
}

func ValidateSampleCount(n int) error {
	if n < MinSampleCount || n > MaxSampleCount {
		return errors.Wrapf(failure.ErrInvalidArgument, "sample count %d outside [%d, %d]", n, MinSampleCount, MaxSampleCount)
	}
	return nil
}
