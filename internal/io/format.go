package io

import (
	"bufio"
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type Format string

const (
	FormatPLY Format = "PLY"
	FormatPCD Format = "PCD"
	FormatOBJ Format = "OBJ"
)

// Encoding selects how PLY and PCD payloads are written
type Encoding string

const (
	EncodingBinary Encoding = "BINARY"
	EncodingASCII  Encoding = "ASCII"
)

// Upper bound on the number of points a single file may declare, a
// declaration above it is reported as out of memory instead of being allocated
const DefaultMaxPoints = 50_000_000

var extensions = map[string]Format{
	".ply": FormatPLY,
	".pcd": FormatPCD,
	".obj": FormatOBJ,
}

// Contains the options used by readers and writers
type Options struct {
	Encoding  Encoding
	MaxPoints int
}

func (o Options) maxPoints() int {
	if o.MaxPoints <= 0 {
		return DefaultMaxPoints
	}
	return o.MaxPoints
}

func (o Options) encoding() Encoding {
	if o.Encoding == "" {
		return EncodingBinary
	}
	return o.Encoding
}

func ParseEncoding(value string) Encoding {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ASCII":
		return EncodingASCII
	case "BINARY":
		return EncodingBinary
	}
	return ""
}

// FormatFromPath detects the file format from the (case insensitive) extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensions[ext]
	if !ok {
		return "", errors.Wrapf(failure.ErrUnsupportedFormat, "extension %q", ext)
	}
	return format, nil
}

// IsDirectFormat reports whether the format stores a point cloud, as opposed
// to a mesh that has to be sampled.
func (f Format) IsDirectFormat() bool {
	return f == FormatPLY || f == FormatPCD
}

// ReadPointCloudFile decodes a PLY or PCD file.
func ReadPointCloudFile(path string, opts Options) (*data.PointCloud, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	var read func(goio.Reader, Options) (*data.PointCloud, error)
	switch format {
	case FormatPLY:
		read = ReadPLY
	case FormatPCD:
		read = ReadPCD
	default:
		return nil, errors.Wrapf(failure.ErrUnsupportedFormat, "%s is not a point cloud format", format)
	}

	var cloud *data.PointCloud
	err = withFile(path, func(r goio.Reader) (err error) {
		defer recoverDecode(&err)
		cloud, err = read(r, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("read %d points from %s", cloud.Size(), path)
	return cloud, nil
}

// ReadMeshFile decodes an OBJ file.
func ReadMeshFile(path string, opts Options) (*data.Mesh, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format != FormatOBJ {
		return nil, errors.Wrapf(failure.ErrUnsupportedFormat, "%s is not a mesh format", format)
	}

	var mesh *data.Mesh
	err = withFile(path, func(r goio.Reader) (err error) {
		defer recoverDecode(&err)
		mesh, err = ReadOBJ(r, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("read mesh with %d vertices and %d triangles from %s", mesh.VertexCount(), mesh.TriangleCount(), path)
	return mesh, nil
}

// WritePointCloudFile encodes the cloud according to the file extension.
// OBJ receives the positions only, as a mesh without faces.
func WritePointCloudFile(path string, cloud *data.PointCloud, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := cloud.Validate(); err != nil {
		return errors.Wrap(failure.ErrEncode, err.Error())
	}
	switch format {
	case FormatPLY:
		return createFile(path, func(w goio.Writer) error { return WritePLY(w, cloud, opts) })
	case FormatPCD:
		return createFile(path, func(w goio.Writer) error { return WritePCD(w, cloud, opts) })
	case FormatOBJ:
		return WriteMeshFile(path, data.MeshFromPointCloud(cloud))
	}
	return errors.Wrapf(failure.ErrUnsupportedFormat, "cannot write %s", format)
}

// WriteMeshFile encodes a mesh as OBJ.
func WriteMeshFile(path string, mesh *data.Mesh) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format != FormatOBJ {
		return errors.Wrapf(failure.ErrUnsupportedFormat, "cannot write a mesh as %s", format)
	}
	return createFile(path, func(w goio.Writer) error { return WriteOBJ(w, mesh) })
}

func withFile(path string, fn func(goio.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return failure.Mark(err, failure.ErrDecode)
	}
	defer f.Close()
	return fn(bufio.NewReaderSize(f, 1<<16))
}

func createFile(path string, fn func(goio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return failure.Mark(err, failure.ErrEncode)
	}
	defer func() {
		err = multierr.Combine(err, failure.Mark(f.Close(), failure.ErrEncode))
	}()

	w := bufio.NewWriterSize(f, 1<<16)
	if err = fn(w); err != nil {
		return err
	}
	return failure.Mark(w.Flush(), failure.ErrEncode)
}

// Malformed input can make slice indexing or allocation panic deep in a
// decoder, surface it as a decode error instead.
func recoverDecode(err *error) {
	if r := recover(); r != nil {
		glog.Warningf("recovered decoder panic: %v", r)
		*err = errors.Wrapf(failure.ErrDecode, "malformed file: %v", r)
	}
}

func decodeErrorf(format string, args ...interface{}) error {
	return errors.Wrap(failure.ErrDecode, fmt.Sprintf(format, args...))
}

func checkPointBudget(count int, opts Options) error {
	if count < 0 {
		return decodeErrorf("negative element count %d", count)
	}
	if count > opts.maxPoints() {
		return errors.Wrapf(failure.ErrOutOfMemory, "file declares %d points, limit is %d", count, opts.maxPoints())
	}
	return nil
}
