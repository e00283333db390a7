package io

import (
	goio "io"

	"github.com/EliCDavis/polyform/formats/obj"
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
)

// ReadOBJ reads the vertices and faces of an OBJ stream. Material libraries
// are not loaded.
func ReadOBJ(r goio.Reader, opts Options) (*data.Mesh, error) {
	mesh, _, err := obj.ReadMesh(r)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrDecode)
	}
	out, err := meshFromPolyform(*mesh)
	if err != nil {
		return nil, err
	}
	if err := checkPointBudget(out.VertexCount(), opts); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteOBJ writes the vertices of the mesh, and its faces when it has any.
func WriteOBJ(w goio.Writer, mesh *data.Mesh) error {
	return failure.Mark(obj.WriteMesh(triangleMesh(mesh), "", w), failure.ErrEncode)
}
