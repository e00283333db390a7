package io

import (
	"bufio"
	"bytes"
	goio "io"
	"strings"

	"github.com/ecopia-map/cloudview/internal/failure"
)

// Upper bound on the size of a PLY or PCD header
const maxHeaderBytes = 1 << 20

// readHeader consumes the text header of r up to and including the line for
// which last returns true. It returns the trimmed header lines and a reader
// that replays the whole stream, header included, for the decoder.
func readHeader(r goio.Reader, last func(line string) bool) ([]string, goio.Reader, error) {
	in, ok := r.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(r)
	}
	var raw bytes.Buffer
	var lines []string
	for {
		line, err := in.ReadString('\n')
		raw.WriteString(line)
		if raw.Len() > maxHeaderBytes {
			return nil, nil, decodeErrorf("header longer than %d bytes", maxHeaderBytes)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
			if last(trimmed) {
				return lines, goio.MultiReader(&raw, in), nil
			}
		}
		if err == goio.EOF {
			return nil, nil, decodeErrorf("unexpected end of file in header")
		}
		if err != nil {
			return nil, nil, failure.Mark(err, failure.ErrDecode)
		}
	}
}
