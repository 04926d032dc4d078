// Package mesh provides an indexed triangle mesh with per-vertex attributes,
// precomputed triangle duals and ray picking.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshview/pkg/geom"
)

// Mesh contract errors.
var (
	ErrEmptyMesh        = errors.New("operation on empty mesh")
	ErrBadLength        = errors.New("array length is not a positive multiple of 3")
	ErrMissingArray     = errors.New("coordinates and triangles must both be set or both be empty")
	ErrIndexOutOfRange  = errors.New("triangle index out of range")
	ErrAttributeLength  = errors.New("attribute length does not match vertex count")
	ErrUnsupportedIndex = errors.New("unsupported index buffer kind")
)

// Mesh is an indexed triangle mesh. It owns all of its buffers: inputs are copied
// on construction and slices returned by accessors must not be modified.
//
// A mesh with zero vertices is the empty mesh. It is valid, and every
// per-triangle operation on it is a no-op except IntersectRay, which fails.
type Mesh struct {
	numVerts int
	numTris  int

	coords    []float32
	triangles []uint32

	colors    []float32
	normals   []float32
	texCoords []float32

	bbox geom.BBox

	normalsComputed bool
	duals           []float64
}

// New builds a mesh from flat xyz coordinates and triangle indices.
// Passing two empty slices yields the empty mesh.
func New(coords []float32, triangles []uint32) (*Mesh, error) {
	return NewFromIndices(coords, Uint32Indices(triangles))
}

// NewFromIndices builds a mesh from flat xyz coordinates and an index buffer of any supported kind.
func NewFromIndices(coords []float32, triangles Indices) (*Mesh, error) {
	if len(coords) == 0 && triangles.Len() == 0 {
		return &Mesh{}, nil
	}
	if len(coords) == 0 || triangles.Len() == 0 {
		return nil, fmt.Errorf("%w: %d coords, %d indices", ErrMissingArray, len(coords), triangles.Len())
	}
	if triangles.Kind() != KindUint16 && triangles.Kind() != KindUint32 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIndex, triangles.Kind())
	}
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("%w: coords length %d", ErrBadLength, len(coords))
	}
	if triangles.Len()%3 != 0 {
		return nil, fmt.Errorf("%w: triangles length %d", ErrBadLength, triangles.Len())
	}

	m := &Mesh{
		numVerts:  len(coords) / 3,
		numTris:   triangles.Len() / 3,
		coords:    append([]float32(nil), coords...),
		triangles: triangles.widen(),
	}

	for i, idx := range m.triangles {
		if int(idx) >= m.numVerts {
			return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d",
				ErrIndexOutOfRange, i/3, idx, m.numVerts)
		}
	}

	bbox, err := geom.ComputeBBox(m.coords)
	if err != nil {
		return nil, err
	}
	m.bbox = bbox

	return m, nil
}

// IsEmpty reports whether the mesh is the empty mesh.
func (m *Mesh) IsEmpty() bool {
	return m.numVerts == 0
}

// NumVerts returns the vertex count.
func (m *Mesh) NumVerts() int {
	return m.numVerts
}

// NumTris returns the triangle count.
func (m *Mesh) NumTris() int {
	return m.numTris
}

// Coords returns the flat xyz coordinate buffer.
func (m *Mesh) Coords() []float32 {
	return m.coords
}

// Triangles returns the flat triangle index buffer.
func (m *Mesh) Triangles() []uint32 {
	return m.triangles
}

// Colors returns the per-vertex rgb buffer, or nil.
func (m *Mesh) Colors() []float32 {
	return m.colors
}

// Normals returns the per-vertex normal buffer, or nil.
func (m *Mesh) Normals() []float32 {
	return m.normals
}

// TexCoords returns the per-vertex uv buffer, or nil.
func (m *Mesh) TexCoords() []float32 {
	return m.texCoords
}

// BBox returns the bounding box of the vertex coordinates.
func (m *Mesh) BBox() geom.BBox {
	return m.bbox
}

// Vertex returns the coordinates of vertex i.
func (m *Mesh) Vertex(i int) [3]float32 {
	return [3]float32{m.coords[3*i], m.coords[3*i+1], m.coords[3*i+2]}
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.triangles[3*i], m.triangles[3*i+1], m.triangles[3*i+2]}
}

// SetColors replaces the per-vertex rgb buffer. nil clears it.
func (m *Mesh) SetColors(data []float32) error {
	return m.setAttribute(AttrColor, data)
}

// SetNormals replaces the per-vertex normal buffer. nil clears it.
func (m *Mesh) SetNormals(data []float32) error {
	return m.setAttribute(AttrNormal, data)
}

// SetTexCoords replaces the per-vertex uv buffer. nil clears it.
func (m *Mesh) SetTexCoords(data []float32) error {
	return m.setAttribute(AttrTexCoord, data)
}

// Attribute returns the buffer stored in slot a, or nil.
func (m *Mesh) Attribute(a Attribute) []float32 {
	switch a {
	case AttrColor:
		return m.colors
	case AttrNormal:
		return m.normals
	case AttrTexCoord:
		return m.texCoords
	default:
		return nil
	}
}

// setAttribute validates and replaces one attribute slot wholesale.
func (m *Mesh) setAttribute(a Attribute, data []float32) error {
	var buf []float32
	if data != nil {
		if want := a.VecLen() * m.numVerts; len(data) != want {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrAttributeLength, a, len(data), want)
		}
		buf = append([]float32(nil), data...)
	}

	switch a {
	case AttrColor:
		m.colors = buf
	case AttrNormal:
		m.normals = buf
		m.normalsComputed = false
	case AttrTexCoord:
		m.texCoords = buf
	default:
		return fmt.Errorf("unknown attribute %s", a)
	}
	return nil
}
