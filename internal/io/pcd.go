package io

import (
	goio "io"
	"math"
	"strconv"
	"strings"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/seqsense/pcgol/pc"
)

var (
	pcdVersions  = []string{".7", "0.7"}
	pcdEncodings = []string{"ascii", "binary", "binary_compressed"}
	pcdNormals   = []string{"normal_x", "normal_y", "normal_z"}
	pcdColors    = []string{"rgb", "rgba"}
)

type pcdHeader struct {
	fields []string
	sizes  []int
	types  []string
	counts []int
	points int
}

func (h *pcdHeader) field(name string) (int, bool) {
	i := lo.IndexOf(h.fields, name)
	return i, i >= 0
}

// isFloat32 tells whether name is a single 32-bit float field
func (h *pcdHeader) isFloat32(name string) bool {
	i, ok := h.field(name)
	return ok && h.types[i] == "F" && h.sizes[i] == 4 && h.counts[i] == 1
}

func parseHeaderInts(key string, values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, decodeErrorf("%s value %q", key, v)
		}
		out[i] = n
	}
	return out, nil
}

// parsePCDHeader validates the header ahead of decoding: supported version
// and data encoding, float x, y and z, and a point count within the budget
func parsePCDHeader(lines []string, opts Options) (*pcdHeader, error) {
	h := &pcdHeader{points: -1}
	width, height := -1, -1
	for _, line := range lines {
		if line[0] == '#' {
			continue
		}
		tokens := strings.Fields(line)
		key, values := strings.ToUpper(tokens[0]), tokens[1:]
		var err error
		switch key {
		case "VERSION":
			if len(values) != 1 || !lo.Contains(pcdVersions, values[0]) {
				return nil, errors.Wrapf(failure.ErrUnsupportedFormat, "pcd %q", line)
			}
		case "FIELDS":
			h.fields = values
		case "SIZE":
			h.sizes, err = parseHeaderInts(key, values)
		case "TYPE":
			h.types = values
		case "COUNT":
			h.counts, err = parseHeaderInts(key, values)
		case "WIDTH", "HEIGHT", "POINTS":
			var n []int
			n, err = parseHeaderInts(key, values)
			if err == nil && len(n) != 1 {
				err = decodeErrorf("%s needs one value", key)
			}
			if err == nil {
				err = checkPointBudget(n[0], opts)
			}
			if err != nil {
				return nil, err
			}
			switch key {
			case "WIDTH":
				width = n[0]
			case "HEIGHT":
				height = n[0]
			default:
				h.points = n[0]
			}
		case "DATA":
			if len(values) != 1 || !lo.Contains(pcdEncodings, values[0]) {
				return nil, errors.Wrapf(failure.ErrUnsupportedFormat, "pcd %q", line)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if h.counts == nil {
		h.counts = lo.Map(h.fields, func(string, int) int { return 1 })
	}
	if len(h.sizes) != len(h.fields) || len(h.types) != len(h.fields) || len(h.counts) != len(h.fields) {
		return nil, decodeErrorf("FIELDS, SIZE, TYPE and COUNT lengths differ")
	}
	for _, name := range []string{"x", "y", "z"} {
		if _, ok := h.field(name); !ok {
			return nil, decodeErrorf("missing field %s", name)
		}
		if !h.isFloat32(name) {
			return nil, errors.Wrapf(failure.ErrUnsupportedFormat, "field %s is not a 32-bit float", name)
		}
	}
	if width < 0 || height < 0 {
		return nil, decodeErrorf("missing WIDTH or HEIGHT")
	}
	if width > 0 && height > math.MaxInt/width {
		return nil, errors.Wrapf(failure.ErrOutOfMemory, "WIDTH %d x HEIGHT %d overflows", width, height)
	}
	if err := checkPointBudget(width*height, opts); err != nil {
		return nil, err
	}
	if h.points < 0 {
		h.points = width * height
	}
	if h.points != width*height {
		return nil, decodeErrorf("POINTS %d does not match WIDTH x HEIGHT %d", h.points, width*height)
	}
	return h, nil
}

func readFloat32s(pp *pc.PointCloud, name string) ([]float32, error) {
	it, err := pp.Float32Iterator(name)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrDecode)
	}
	out := make([]float32, 0, pp.Points)
	for ; it.IsValid(); it.Incr() {
		out = append(out, it.Float32())
	}
	if len(out) != pp.Points {
		return nil, decodeErrorf("field %s has %d of %d values", name, len(out), pp.Points)
	}
	return out, nil
}

func readVectors(pp *pc.PointCloud, names []string) ([]r3.Vector, error) {
	var axes [3][]float32
	for i, name := range names {
		values, err := readFloat32s(pp, name)
		if err != nil {
			return nil, err
		}
		axes[i] = values
	}
	out := make([]r3.Vector, pp.Points)
	for i := range out {
		out[i] = r3.Vector{X: float64(axes[0][i]), Y: float64(axes[1][i]), Z: float64(axes[2][i])}
	}
	return out, nil
}

// packed colors are read as raw bits, whether the field is typed U or F
func readColors(pp *pc.PointCloud, name string) ([]colorful.Color, error) {
	it, err := pp.Uint32Iterator(name)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrDecode)
	}
	out := make([]colorful.Color, 0, pp.Points)
	for ; it.IsValid(); it.Incr() {
		out = append(out, unpackRGB(it.Uint32()))
	}
	return out, nil
}

// ReadPCD reads a PCD v0.7 stream in ascii, binary or binary_compressed
// form. Positions must be 32-bit floats, normal_x/y/z and a packed rgb field
// are read when present, other fields are skipped.
func ReadPCD(r goio.Reader, opts Options) (*data.PointCloud, error) {
	lines, stream, err := readHeader(r, func(line string) bool {
		return strings.HasPrefix(strings.ToUpper(line), "DATA")
	})
	if err != nil {
		return nil, err
	}
	header, err := parsePCDHeader(lines, opts)
	if err != nil {
		return nil, err
	}

	pp, err := pc.Unmarshal(stream)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrDecode)
	}
	if pp.Points != header.points {
		return nil, decodeErrorf("decoded %d of %d points", pp.Points, header.points)
	}

	cloud := &data.PointCloud{}
	if cloud.Points, err = readVectors(pp, []string{"x", "y", "z"}); err != nil {
		return nil, err
	}
	if lo.EveryBy(pcdNormals, header.isFloat32) {
		if cloud.Normals, err = readVectors(pp, pcdNormals); err != nil {
			return nil, err
		}
	}
	for _, name := range pcdColors {
		if i, ok := header.field(name); ok && header.sizes[i] == 4 && header.counts[i] == 1 {
			if cloud.Colors, err = readColors(pp, name); err != nil {
				return nil, err
			}
			break
		}
	}
	if err := cloud.Validate(); err != nil {
		return nil, decodeErrorf("%v", err)
	}
	return cloud, nil
}

func writeFloat32s(pp *pc.PointCloud, name string, values func(i int) float64) error {
	it, err := pp.Float32Iterator(name)
	if err != nil {
		return failure.Mark(err, failure.ErrEncode)
	}
	for i := 0; it.IsValid(); i++ {
		it.SetFloat32(float32(values(i)))
		it.Incr()
	}
	return nil
}

func writeVectors(pp *pc.PointCloud, names []string, vectors []r3.Vector) error {
	components := []func(r3.Vector) float64{
		func(v r3.Vector) float64 { return v.X },
		func(v r3.Vector) float64 { return v.Y },
		func(v r3.Vector) float64 { return v.Z },
	}
	for axis, name := range names {
		component := components[axis]
		if err := writeFloat32s(pp, name, func(i int) float64 { return component(vectors[i]) }); err != nil {
			return err
		}
	}
	return nil
}

// WritePCD writes a binary PCD v0.7 stream with 32-bit float positions, and
// normals and a float-packed rgb field when the cloud has them. The encoding
// option only applies to PLY.
func WritePCD(w goio.Writer, cloud *data.PointCloud, opts Options) error {
	fields := []string{"x", "y", "z"}
	if cloud.HasNormals() {
		fields = append(fields, pcdNormals...)
	}
	if cloud.HasColors() {
		fields = append(fields, "rgb")
	}
	n := cloud.Size()
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    fields,
			Size:      lo.Map(fields, func(string, int) int { return 4 }),
			Type:      lo.Map(fields, func(string, int) string { return "F" }),
			Count:     lo.Map(fields, func(string, int) int { return 1 }),
			Width:     n,
			Height:    1,
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
		},
		Points: n,
	}
	pp.Data = make([]byte, n*pp.Stride())

	if err := writeVectors(pp, fields[:3], cloud.Points); err != nil {
		return err
	}
	if cloud.HasNormals() {
		if err := writeVectors(pp, pcdNormals, cloud.Normals); err != nil {
			return err
		}
	}
	if cloud.HasColors() {
		it, err := pp.Uint32Iterator("rgb")
		if err != nil {
			return failure.Mark(err, failure.ErrEncode)
		}
		for _, c := range cloud.Colors {
			it.SetUint32(packRGB(c))
			it.Incr()
		}
	}
	return failure.Mark(pc.Marshal(pp, w), failure.ErrEncode)
}
