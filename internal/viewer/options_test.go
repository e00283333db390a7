package viewer

import (
	"testing"

	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorTriples(t *testing.T) {
	want := map[Color]colorful.Color{
		ColorGold:  {R: 1, G: 0.706, B: 0},
		ColorRed:   {R: 1, G: 0, B: 0},
		ColorGreen: {R: 0, G: 1, B: 0},
		ColorBlue:  {R: 0, G: 0, B: 1},
		ColorWhite: {R: 1, G: 1, B: 1},
	}
	require.Len(t, Colors(), len(want))
	for _, c := range Colors() {
		got, ok := c.RGB()
		require.True(t, ok)
		assert.Equal(t, want[c], got, c.String())
	}
	_, ok := Color("Purple").RGB()
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, ColorRed, ParseColor("Red"))
	assert.Equal(t, ColorGold, ParseColor("  gold "))
	assert.Equal(t, ColorWhite, ParseColor("WHITE"))
	assert.Equal(t, Color(""), ParseColor("purple"))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, 2, opts.PointSize)
	assert.Equal(t, ColorGold, opts.Color)
	assert.Equal(t, 10, opts.VoxelSize)
	assert.Equal(t, 100000, opts.SampleCount)
	assert.EqualValues(t, 100_000_000, opts.LargeFileThreshold)
}

func TestValidateOptions(t *testing.T) {
	for name, mutate := range map[string]func(*Options){
		"point size": func(o *Options) { o.PointSize = 11 },
		"voxel size": func(o *Options) { o.VoxelSize = 0 },
		"samples":    func(o *Options) { o.SampleCount = 999 },
		"color":      func(o *Options) { o.Color = "Purple" },
		"threshold":  func(o *Options) { o.LargeFileThreshold = 0 },
		"encoding":   func(o *Options) { o.Encoding = "" },
	} {
		opts := DefaultOptions()
		mutate(opts)
		assert.ErrorIs(t, opts.Validate(), failure.ErrInvalidArgument, name)
	}
	assert.NoError(t, ValidateSampleCount(MaxSampleCount))
}
