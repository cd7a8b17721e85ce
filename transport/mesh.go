package transport

import (
	"encoding/binary"
	"io"

	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
)

// Binary mesh record format, little-endian:
//
//	magic   uint32  0x4d455348 ("MESH")
//	version uint16
//	_       uint16  reserved
//	nVerts  uint32
//	nFaces  uint32
//	verts   [nVerts * 3]float32
//	faces   [nFaces * 3]uint32
const (
	meshMagic   uint32 = 0x4d455348
	meshVersion uint16 = 1

	// maxMeshElements bounds declared table sizes so a corrupt header
	// cannot drive a multi-gigabyte allocation
	maxMeshElements = 1 << 22
)

type meshHeader struct {
	Magic    uint32
	Version  uint16
	Reserved uint16
	NumVerts uint32
	NumFaces uint32
}

// DecodeMesh reads a binary mesh record into vertex and face tables
func DecodeMesh(r io.Reader) (*graph.Mesh, error) {
	var hdr meshHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "mesh header")
	}

	if hdr.Magic != meshMagic {
		return nil, errors.Newf("bad mesh magic %#x", hdr.Magic)
	}
	if hdr.Version != meshVersion {
		return nil, errors.Newf("unsupported mesh version %d", hdr.Version)
	}
	if hdr.NumVerts > maxMeshElements || hdr.NumFaces > maxMeshElements {
		return nil, errors.Newf("mesh tables too large: %d vertices, %d faces", hdr.NumVerts, hdr.NumFaces)
	}

	vertices := make([]float32, 3*hdr.NumVerts)
	if err := binary.Read(r, binary.LittleEndian, vertices); err != nil {
		return nil, errors.Wrap(err, "mesh vertex table")
	}

	faces := make([]uint32, 3*hdr.NumFaces)
	if err := binary.Read(r, binary.LittleEndian, faces); err != nil {
		return nil, errors.Wrap(err, "mesh face table")
	}

	// Face indices must address the vertex table
	for i, idx := range faces {
		if idx >= hdr.NumVerts {
			return nil, errors.Newf("face index %d out of range at offset %d", idx, i)
		}
	}

	return &graph.Mesh{Vertices: vertices, Faces: faces}, nil
}

// EncodeMesh writes a mesh as a binary record. Used by tooling and tests;
// the viewer itself only decodes.
func EncodeMesh(w io.Writer, m *graph.Mesh) error {
	hdr := meshHeader{
		Magic:    meshMagic,
		Version:  meshVersion,
		NumVerts: uint32(len(m.Vertices) / 3),
		NumFaces: uint32(len(m.Faces) / 3),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return errors.Wrap(err, "mesh header")
	}
	if err := binary.Write(w, binary.LittleEndian, m.Vertices); err != nil {
		return errors.Wrap(err, "mesh vertex table")
	}
	if err := binary.Write(w, binary.LittleEndian, m.Faces); err != nil {
		return errors.Wrap(err, "mesh face table")
	}
	return nil
}
