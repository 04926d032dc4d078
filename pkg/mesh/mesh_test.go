package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetrahedron returns a regular tetrahedron with outward winding.
func tetrahedron(t *testing.T) *Mesh {
	t.Helper()
	m, err := New(
		[]float32{
			1, 1, 1,
			1, -1, -1,
			-1, 1, -1,
			-1, -1, 1,
		},
		[]uint32{
			0, 1, 2,
			0, 3, 1,
			0, 2, 3,
			1, 3, 2,
		},
	)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	m := tetrahedron(t)

	if m.NumVerts() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.NumVerts())
	}
	if m.NumTris() != 4 {
		t.Errorf("expected 4 triangles, got %d", m.NumTris())
	}
	if m.IsEmpty() {
		t.Error("expected non-empty mesh")
	}
	want := [6]float32{-1, -1, -1, 1, 1, 1}
	if [6]float32(m.BBox()) != want {
		t.Errorf("BBox() = %v, want %v", m.BBox(), want)
	}
	if got := m.Triangle(3); got != [3]uint32{1, 3, 2} {
		t.Errorf("Triangle(3) = %v", got)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		coords  []float32
		tris    []uint32
		wantErr error
	}{
		{"coords not multiple of 3", []float32{0, 0, 0, 1}, []uint32{0, 0, 0}, ErrBadLength},
		{"triangles not multiple of 3", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1}, ErrBadLength},
		{"index out of range", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 3}, ErrIndexOutOfRange},
		{"missing triangles", []float32{0, 0, 0}, nil, ErrMissingArray},
		{"missing coords", nil, []uint32{0, 0, 0}, ErrMissingArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.coords, tt.tris)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyMesh(t *testing.T) {
	m, err := New(nil, nil)
	require.NoError(t, err)

	if m.NumVerts() != 0 || !m.IsEmpty() {
		t.Fatalf("expected empty mesh, got %d vertices", m.NumVerts())
	}

	m.ComputeVertexNormals()
	m.ComputeTriangleDuals()
	if m.Normals() != nil || m.HasDuals() {
		t.Error("per-triangle operations should be no-ops on the empty mesh")
	}

	_, err = m.IntersectRay(Ray{Dir: r3.Vec{Z: 1}})
	if !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}
}

func TestUint16Indices(t *testing.T) {
	m, err := NewFromIndices(
		[]float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Uint16Indices([]uint16{0, 1, 2}),
	)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, m.Triangles())

	_, err = NewFromIndices([]float32{0, 0, 0}, Indices{})
	assert.Error(t, err)
}

func TestSetAttributes(t *testing.T) {
	m := tetrahedron(t)

	require.NoError(t, m.SetColors(make([]float32, 12)))
	require.NoError(t, m.SetTexCoords(make([]float32, 8)))

	if err := m.SetNormals(make([]float32, 11)); !errors.Is(err, ErrAttributeLength) {
		t.Errorf("expected ErrAttributeLength for short normals, got %v", err)
	}
	if err := m.SetTexCoords(make([]float32, 12)); !errors.Is(err, ErrAttributeLength) {
		t.Errorf("expected ErrAttributeLength for 3-wide texcoords, got %v", err)
	}
	// Failed set leaves previous data in place
	if len(m.TexCoords()) != 8 {
		t.Errorf("texcoords replaced by failed set: len %d", len(m.TexCoords()))
	}

	require.NoError(t, m.SetColors(nil))
	if m.Colors() != nil {
		t.Error("SetColors(nil) should clear colors")
	}
}

func TestMeshOwnsBuffers(t *testing.T) {
	coords := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	colors := []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	m, err := New(coords, []uint32{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, m.SetColors(colors))

	coords[0] = 42
	colors[0] = 42
	if m.Coords()[0] != 0 || m.Colors()[0] != 1 {
		t.Error("mesh buffers alias caller slices")
	}
}

func TestComputeVertexNormals_Tetrahedron(t *testing.T) {
	m := tetrahedron(t)
	m.ComputeVertexNormals()

	n := m.Normals()
	require.Len(t, n, 12)
	for i := 0; i < 4; i++ {
		l := math.Sqrt(float64(n[3*i]*n[3*i] + n[3*i+1]*n[3*i+1] + n[3*i+2]*n[3*i+2]))
		assert.InDelta(t, 1.0, l, 1e-6, "vertex %d normal length", i)
	}

	// Vertex 0 sits at (1,1,1) on a centered regular tetrahedron
	s := float32(1 / math.Sqrt(3))
	assert.InDelta(t, s, n[0], 1e-6)
	assert.InDelta(t, s, n[1], 1e-6)
	assert.InDelta(t, s, n[2], 1e-6)
}

func TestComputeVertexNormals_Degenerate(t *testing.T) {
	m, err := New([]float32{0, 0, 0, 1, 1, 1, 2, 2, 2}, []uint32{0, 1, 2})
	require.NoError(t, err)
	m.ComputeVertexNormals()

	for i, v := range m.Normals() {
		if v != 0 {
			t.Errorf("normal component %d = %v, want 0", i, v)
		}
	}
}

func TestComputeVertexNormals_IsolatedVertex(t *testing.T) {
	m, err := New(
		[]float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5},
		[]uint32{0, 1, 2},
	)
	require.NoError(t, err)
	m.ComputeVertexNormals()

	n := m.Normals()
	assert.Equal(t, []float32{0, 0, 0}, n[9:12], "unreferenced vertex keeps zero normal")
	assert.InDelta(t, 1.0, n[2], 1e-6)
}

func TestComputeTriangleDuals(t *testing.T) {
	v0 := r3.Vec{X: 0.3, Y: -1, Z: 2}
	v1 := r3.Vec{X: 2, Y: 0.5, Z: 1}
	v2 := r3.Vec{X: -1, Y: 1, Z: 0.5}
	d := ComputeDual(v0, v1, v2)
	require.True(t, d.Valid)

	e1 := r3.Sub(v1, v0)
	e2 := r3.Sub(v2, v0)
	assert.InDelta(t, 1, r3.Dot(d.E1, e1), 1e-9)
	assert.InDelta(t, 0, r3.Dot(d.E1, e2), 1e-9)
	assert.InDelta(t, 0, r3.Dot(d.E2, e1), 1e-9)
	assert.InDelta(t, 1, r3.Dot(d.E2, e2), 1e-9)
	assert.InDelta(t, 1, r3.Norm(d.N), 1e-9)
	assert.InDelta(t, 0, r3.Dot(d.N, e1), 1e-9)
	assert.InDelta(t, r3.Dot(v0, d.N), d.K.Z, 1e-12)
}

func TestComputeTriangleDuals_Degenerate(t *testing.T) {
	m, err := New(
		[]float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0, // regular
			0, 0, 0, 1, 1, 1, 2, 2, 2, // collinear
		},
		[]uint32{0, 1, 2, 3, 4, 5},
	)
	require.NoError(t, err)
	m.ComputeTriangleDuals()

	require.Len(t, m.TriangleDuals(), 2*DualStride)
	assert.True(t, m.DualAt(0).Valid)
	assert.False(t, m.DualAt(1).Valid)
	assert.Equal(t, 0.0, m.TriangleDuals()[DualStride+12])
}

func TestBarycentricAndInterpolate(t *testing.T) {
	m, err := New([]float32{0, 0, 0, 2, 0, 0, 0, 2, 0}, []uint32{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, m.SetColors([]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}))

	p := r3.Vec{X: 0.5, Y: 1}
	for _, withDuals := range []bool{false, true} {
		if withDuals {
			m.ComputeTriangleDuals()
		}
		w := m.Barycentric(0, p)
		assert.InDelta(t, 0.25, w[0], 1e-12)
		assert.InDelta(t, 0.25, w[1], 1e-12)
		assert.InDelta(t, 0.5, w[2], 1e-12)

		c := m.Interpolate(AttrColor, 0, w)
		assert.InDeltaSlice(t, []float32{0.25, 0.25, 0.5}, c, 1e-6)
	}

	assert.Nil(t, m.Interpolate(AttrTexCoord, 0, [3]float64{1, 0, 0}))
}
