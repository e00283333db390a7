package io

import (
	goio "io"
	"strconv"
	"strings"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var plyFormats = []string{"ascii", "binary_little_endian", "binary_big_endian"}

// checkPLYHeader validates the magic number and the format line, and the
// vertex count against the point budget
func checkPLYHeader(lines []string, opts Options) error {
	if lines[0] != "ply" {
		return decodeErrorf("missing ply magic number")
	}
	vertices := -1
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		switch {
		case fields[0] == "format":
			if len(fields) < 2 || !lo.Contains(plyFormats, fields[1]) {
				return errors.Wrapf(failure.ErrUnsupportedFormat, "ply %q", line)
			}
		case fields[0] == "element" && len(fields) == 3 && fields[1] == "vertex":
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return decodeErrorf("vertex count %q", fields[2])
			}
			if err := checkPointBudget(count, opts); err != nil {
				return err
			}
			vertices = count
		}
	}
	if vertices < 0 {
		return decodeErrorf("no vertex element")
	}
	return nil
}

// ReadPLY reads the vertices of a PLY stream as a point cloud. Faces, when
// present, are ignored.
func ReadPLY(r goio.Reader, opts Options) (*data.PointCloud, error) {
	lines, stream, err := readHeader(r, func(line string) bool { return line == "end_header" })
	if err != nil {
		return nil, err
	}
	if err := checkPLYHeader(lines, opts); err != nil {
		return nil, err
	}

	mesh, err := ply.ReadMesh(stream)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrDecode)
	}
	view := mesh.View()
	positions, ok := view.Float3Data[modeling.PositionAttribute]
	if !ok {
		return nil, decodeErrorf("vertices have no x, y and z properties")
	}
	return cloudFromAttributes(positions, view.Float3Data[modeling.NormalAttribute], view.Float3Data[modeling.ColorAttribute])
}

// WritePLY writes positions, and normals and colors when the cloud has them.
// Colors are stored as 8-bit channels.
func WritePLY(w goio.Writer, cloud *data.PointCloud, opts Options) error {
	mesh := pointMesh(cloud)
	var err error
	if opts.encoding() == EncodingASCII {
		err = ply.WriteASCII(w, mesh)
	} else {
		err = ply.WriteBinary(w, mesh)
	}
	return failure.Mark(err, failure.ErrEncode)
}
