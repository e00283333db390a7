package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var background = colorful.Color{R: 0.1, G: 0.1, B: 0.1}

func rgb8(t *testing.T, f Frame, x, y int) (uint32, uint32, uint32) {
	t.Helper()
	img, err := Rasterize(f)
	require.NoError(t, err)
	r, g, b, _ := img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestRasterizeSinglePoint(t *testing.T) {
	cloud := &data.PointCloud{
		Points: []r3.Vector{{X: 5, Y: -2, Z: 7}},
		Colors: []colorful.Color{{R: 1, G: 0, B: 0}},
	}
	frame := Frame{Cloud: cloud, PointSize: 4, Background: background, Camera: DefaultCamera(), Width: 64, Height: 48}

	r, g, b := rgb8(t, frame, 32, 24)
	assert.Equal(t, []uint32{255, 0, 0}, []uint32{r, g, b})

	r, g, b = rgb8(t, frame, 2, 2)
	assert.InDelta(t, 25, r, 1)
	assert.InDelta(t, 25, g, 1)
	assert.InDelta(t, 25, b, 1)
}

func TestRasterizeUncoloredIsWhite(t *testing.T) {
	frame := Frame{Cloud: data.NewPointCloud([]r3.Vector{{}}), PointSize: 4, Width: 10, Height: 10}
	r, g, b := rgb8(t, frame, 5, 5)
	assert.Equal(t, []uint32{255, 255, 255}, []uint32{r, g, b})
}

func TestRasterizeRejectsNil(t *testing.T) {
	_, err := Rasterize(Frame{})
	assert.ErrorIs(t, err, failure.ErrInvalidArgument)
}

func TestProjectionFitsCloud(t *testing.T) {
	cloud := data.NewPointCloud([]r3.Vector{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}})
	for _, camera := range []Camera{DefaultCamera(), {Yaw: 90}, DefaultCamera().Orbit(45, -60)} {
		p := NewProjection(Frame{Cloud: cloud, Camera: camera, Width: 200, Height: 100})
		x, y, _ := p.Project(r3.Vector{})
		assert.InDelta(t, 100, x, 1e-9)
		assert.InDelta(t, 50, y, 1e-9)
		for _, v := range cloud.Points {
			x, y, _ := p.Project(v)
			assert.True(t, x >= 0 && x <= 200 && y >= 0 && y <= 100, "%v projects outside: %v %v", v, x, y)
		}
	}
}

func TestProjectionDepth(t *testing.T) {
	cloud := data.NewPointCloud([]r3.Vector{{Y: -1}, {Y: 1}})
	p := NewProjection(Frame{Cloud: cloud, Camera: Camera{Zoom: 1}})
	_, _, near := p.Project(r3.Vector{Y: -1})
	_, _, far := p.Project(r3.Vector{Y: 1})
	assert.Greater(t, near, far)
}

func TestCamera(t *testing.T) {
	c := DefaultCamera().Orbit(350, 100)
	assert.InDelta(t, 20, c.Yaw, 1e-9)
	assert.Equal(t, 90.0, c.Pitch)
	assert.Equal(t, 2.0, c.Scaled(2).Zoom)
	assert.Equal(t, 1.0, c.Scaled(-3).Zoom)
}

func TestSavePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	frame := Frame{Cloud: data.NewPointCloud([]r3.Vector{{}, {X: 1}}), PointSize: 2, Width: 32, Height: 32}

	first, err := SavePNG(frame, dir)
	require.NoError(t, err)
	second, err := SavePNG(frame, dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".png"))
	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
