package main

import (
	"flag"
	goio "io"
	"testing"

	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/ecopia-map/cloudview/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestFlags(t *testing.T, args ...string) *tools.Flags {
	t.Helper()
	flagSet := flag.NewFlagSet("cloudview", flag.ContinueOnError)
	flagSet.SetOutput(goio.Discard)
	flags, err := tools.ParseFlagsFrom(flagSet, args)
	require.NoError(t, err)
	return &flags
}

func TestOptionsFromFlags(t *testing.T) {
	dir := t.TempDir()
	opts, shape, err := optionsFromFlags(parseTestFlags(t, "-d", dir, "-e", "ascii", "-sample", "cube", "-l", "1KB"))
	require.NoError(t, err)
	assert.Equal(t, dir, opts.StartDir)
	assert.Equal(t, io.EncodingASCII, opts.Encoding)
	assert.Equal(t, geometry.ShapeCube, shape)
	assert.Equal(t, int64(1000), opts.LargeFileThreshold)

	opts, shape, err = optionsFromFlags(parseTestFlags(t, "-d", dir))
	require.NoError(t, err)
	assert.Equal(t, io.EncodingBinary, opts.Encoding)
	assert.Equal(t, geometry.Shape(""), shape)
}

func TestOptionsFromFlagsErrors(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"-d", dir, "-sample", "torus"},
		{"-d", dir, "-e", "lz4"},
		{"-d", dir, "-l", "lots"},
		{"-d", dir + "/missing"},
	} {
		_, _, err := optionsFromFlags(parseTestFlags(t, args...))
		assert.Error(t, err, "%v", args)
	}
}
