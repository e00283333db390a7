package io

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCDRoundTripKeepsPositions(t *testing.T) {
	cloud := sampleCloud()
	var buf bytes.Buffer
	require.NoError(t, WritePCD(&buf, cloud, Options{}))
	assert.Contains(t, buf.String(), "DATA binary")

	got, err := ReadPCD(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, cloud.Points, got.Points)
	assert.Equal(t, cloud.Normals, got.Normals)
	assert.Equal(t, cloud.Colors, got.Colors)
}

func TestPCDPositionsOnly(t *testing.T) {
	cloud := data.NewPointCloud([]r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0.5, Z: 8}})
	var buf bytes.Buffer
	require.NoError(t, WritePCD(&buf, cloud, Options{}))

	got, err := ReadPCD(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, cloud.Points, got.Points)
	assert.False(t, got.HasColors())
	assert.False(t, got.HasNormals())
}

func TestReadPCDFloatPackedColor(t *testing.T) {
	packed := strconv.FormatFloat(float64(math.Float32frombits(0x00FF0000)), 'g', -1, 32)
	src := fmt.Sprintf(`# .PCD v.7 - Point Cloud Data file format
VERSION .7
FIELDS x y z rgb
SIZE 4 4 4 4
TYPE F F F F
COUNT 1 1 1 1
WIDTH 2
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 2
DATA ascii
0.5 1.5 2.5 %s
1 2 3 %s
`, packed, packed)

	cloud, err := ReadPCD(strings.NewReader(src), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, cloud.Size())
	assert.Equal(t, r3.Vector{X: 0.5, Y: 1.5, Z: 2.5}, cloud.Points[0])
	assert.Equal(t, colorful.Color{R: 1, G: 0, B: 0}, cloud.Colors[1])
}

func TestReadPCDSkipsOtherFields(t *testing.T) {
	src := `VERSION 0.7
FIELDS x intensity y z
SIZE 4 4 4 4
TYPE F F F F
COUNT 1 1 1 1
WIDTH 1
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 1
DATA ascii
1 9 2 3
`
	cloud, err := ReadPCD(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, []r3.Vector{{X: 1, Y: 2, Z: 3}}, cloud.Points)
	assert.False(t, cloud.HasColors())
}

func TestReadPCDErrors(t *testing.T) {
	header := "VERSION 0.7\nFIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nCOUNT 1 1 1\nWIDTH %d\nHEIGHT %d\nPOINTS %d\nDATA %s\n"
	tests := []struct {
		name string
		src  string
		opts Options
		kind error
	}{
		{"unknown data", fmt.Sprintf(header, 1, 1, 1, "binary_lz4"), Options{}, failure.ErrUnsupportedFormat},
		{"points mismatch", fmt.Sprintf(header, 2, 1, 3, "ascii"), Options{}, failure.ErrDecode},
		{"truncated binary", fmt.Sprintf(header, 2, 1, 2, "binary") + "abcd", Options{}, failure.ErrDecode},
		{"budget", fmt.Sprintf(header, 100, 1, 100, "ascii"), Options{MaxPoints: 10}, failure.ErrOutOfMemory},
		{"wrapping dimensions", fmt.Sprintf(header, 1<<32, 1<<32, 0, "ascii"), Options{}, failure.ErrOutOfMemory},
		{"wrapping dimensions without budget", fmt.Sprintf(header, 1<<32, 1<<32, 0, "ascii"), Options{MaxPoints: math.MaxInt}, failure.ErrOutOfMemory},
		{"version", "VERSION 0.6\nDATA ascii\n", Options{}, failure.ErrUnsupportedFormat},
		{"no z", "VERSION 0.7\nFIELDS x y\nSIZE 4 4\nTYPE F F\nCOUNT 1 1\nWIDTH 0\nHEIGHT 1\nPOINTS 0\nDATA ascii\n", Options{}, failure.ErrDecode},
		{"double positions", "VERSION 0.7\nFIELDS x y z\nSIZE 8 8 8\nTYPE F F F\nCOUNT 1 1 1\nWIDTH 0\nHEIGHT 1\nPOINTS 0\nDATA ascii\n", Options{}, failure.ErrUnsupportedFormat},
		{"mismatched lengths", "VERSION 0.7\nFIELDS x y z\nSIZE 4 4\nTYPE F F F\nWIDTH 0\nHEIGHT 1\nDATA ascii\n", Options{}, failure.ErrDecode},
		{"no data line", "VERSION 0.7\nFIELDS x y z\n", Options{}, failure.ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPCD(strings.NewReader(tt.src), tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
