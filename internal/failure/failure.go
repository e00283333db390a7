// Package failure holds the error kinds shared by the codecs, the processing
// pipeline and the controller.
package failure

import (
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDecode            = errors.New("decode error")
	ErrEncode            = errors.New("encode error")
	ErrEmptyMesh         = errors.New("no vertices found in mesh")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrProcessing        = errors.New("processing error")
	ErrOutOfMemory       = errors.New("not enough memory")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnsupportedFormat, "UnsupportedFormat"},
	{ErrDecode, "DecodeError"},
	{ErrEncode, "EncodeError"},
	{ErrEmptyMesh, "EmptyMeshError"},
	{ErrInvalidArgument, "InvalidArgument"},
	{ErrProcessing, "ProcessingError"},
	{ErrOutOfMemory, "OutOfMemory"},
}

// Kind names the taxonomy entry err belongs to, or "Unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// Warning marks a failure that did not stop the operation producing it.
type Warning struct {
	Err error
}

func (w *Warning) Error() string {
	return "warning: " + w.Err.Error()
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// NewWarning wraps err as a Warning, nil stays nil.
func NewWarning(err error) error {
	if err == nil {
		return nil
	}
	return &Warning{Err: err}
}

// IsWarning reports whether err is, or wraps, a Warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

// Mark attaches kind to err so that errors.Is(result, kind) holds while the
// message of err is kept.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &marked{err: err, kind: kind}
}

type marked struct {
	err  error
	kind error
}

func (m *marked) Error() string {
	return m.kind.Error() + ": " + m.err.Error()
}

func (m *marked) Unwrap() error {
	return m.err
}

func (m *marked) Is(target error) bool {
	return target == m.kind
}
