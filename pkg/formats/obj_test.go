package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

const twoGroupOBJ = `# quad over a triangle
mtllib scene.mtl
g top
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
usemtl red
f 1/1 2/2 3/3/1 4//1
g bottom
v 0 0 2
v 1 0 2
v 0 1 2
s off
f -3 -2 -1
`

func parseOBJText(text string) (*Model, error) {
	return ParseOBJ(SplitLines([]byte(text)))
}

func TestParseOBJ_Groups(t *testing.T) {
	model, err := parseOBJText(twoGroupOBJ)
	require.NoError(t, err)
	require.Len(t, model.Groups, 2)

	top, bottom := model.Groups[0], model.Groups[1]
	assert.Equal(t, "top", top.Name)
	assert.Equal(t, "bottom", bottom.Name)

	assert.Equal(t, Counts{Verts: 4, Tris: 2, TexCoords: 3}, top.Counts)
	assert.Equal(t, Counts{Verts: 3, Tris: 1}, bottom.Counts)

	// Quad is fan-triangulated
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, top.Raw.Triangles)
	assert.Equal(t, []uint32{0, 1, 2}, bottom.Raw.Triangles)

	assert.Equal(t, []float32{0, 0, 1, 0, 1, 1, 0, 0}, top.Raw.TexCoords)
	assert.Nil(t, bottom.Raw.TexCoords)

	// Source-space union box
	assert.Equal(t, geom.BBox{0, 0, 0, 1, 1, 2}, model.BBox)

	// Both groups normalized with the union: center (0.5, 0.5, 1), scale 1
	assert.Equal(t, []float32{-0.5, -0.5, -1}, top.Raw.Coords[0:3])
	assert.Equal(t, []float32{-0.5, -0.5, 1}, bottom.Raw.Coords[0:3])
}

func TestParseOBJ_MultiMeshPick(t *testing.T) {
	model, err := parseOBJText(twoGroupOBJ)
	require.NoError(t, err)

	mm, err := model.MultiMesh()
	require.NoError(t, err)
	require.Equal(t, 2, mm.Len())
	assert.Equal(t, 7, mm.NumVerts())
	assert.Equal(t, 3, mm.NumTris())
	assert.Equal(t, geom.BBox{-0.5, -0.5, -1, 0.5, 0.5, 1}, mm.BBox())

	mm.ComputeTriangleDuals()
	h, err := mm.IntersectRay(mesh.Ray{Origin: r3.Vec{X: -0.25, Y: -0.25, Z: 5}, Dir: r3.Vec{Z: -1}})
	require.NoError(t, err)
	require.True(t, h.OK)
	assert.Equal(t, 1, h.Mesh)
	assert.Equal(t, 0, h.Triangle)
	assert.InDelta(t, 4.0, h.T, 1e-9)

	h, err = mm.IntersectRay(mesh.Ray{Origin: r3.Vec{X: 0.25, Y: 0.25, Z: 5}, Dir: r3.Vec{Z: -1}})
	require.NoError(t, err)
	require.True(t, h.OK)
	assert.Equal(t, 0, h.Mesh)
	assert.InDelta(t, 6.0, h.T, 1e-9)
}

func TestParseOBJ_DefaultGroup(t *testing.T) {
	model, err := parseOBJText("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	require.NoError(t, err)
	require.Len(t, model.Groups, 1)
	assert.Equal(t, "default", model.Groups[0].Name)
	assert.Equal(t, Counts{Verts: 3, Tris: 1}, model.Groups[0].Counts)
}

func TestParseOBJ_ReopenAndEmptyGroups(t *testing.T) {
	text := `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
o a
f 1 2 3
g empty
o b c
f 1 2 4
o a
f 1 3 4
`
	model, err := parseOBJText(text)
	require.NoError(t, err)

	// The default group holds only vertices and "empty" has no faces; both are dropped
	var names []string
	for _, g := range model.Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"a", "b/c"}, names)
	assert.Equal(t, 2, model.Groups[0].Counts.Tris)
	assert.Equal(t, 4, model.Groups[0].Raw.NumVerts)
	assert.Equal(t, 3, model.Groups[1].Raw.NumVerts)
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
	}{
		{"missing group name", "v 0 0 0\ng\n", 2},
		{"short vertex", "v 0 0\n", 1},
		{"bad coordinate", "v 0 a 0\n", 1},
		{"infinite coordinate", "v 0 0 0\nv inf 0 0\n", 2},
		{"nan coordinate", "v 0 0 0\nv 0 NaN 0\n", 2},
		{"infinite texture coordinate", "v 0 0 0\nvt 0 -Inf\n", 2},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4},
		{"negative out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 1 2\n", 4},
		{"bad texture index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/2 2 3\n", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := parseOBJText(tt.text)
			assert.Nil(t, model)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
			assert.Equal(t, tt.wantLine, pe.LineNo)
		})
	}

	_, err := parseOBJText("v 0 0 0\ng\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "missing group name", pe.Msg)
}

func TestParseOBJ_NoFaces(t *testing.T) {
	_, err := parseOBJText("# nothing\nv 0 0 0\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "no faces found", pe.Msg)
}

func TestParseOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(twoGroupOBJ), 0o644))

	model, err := ParseOBJFile(path)
	require.NoError(t, err)
	assert.Len(t, model.Groups, 2)

	_, err = ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func TestParsePLYFile_CRLF(t *testing.T) {
	text := "ply\r\nformat ascii 1.0\r\nelement vertex 3\r\nproperty float x\r\nproperty float y\r\nproperty float z\r\n" +
		"element face 1\r\nproperty list uchar int vertex_index\r\nend_header\r\n0 0 0\r\n1 0 0\r\n0 1 0\r\n3 0 1 2\r\n"
	path := filepath.Join(t.TempDir(), "tri.ply")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	raw, err := ParsePLYFile(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, raw.Triangles)
}

func TestParse3MFFile_Invalid(t *testing.T) {
	_, err := Parse3MFFile(filepath.Join(t.TempDir(), "missing.3mf"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bogus.3mf")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))
	_, err = Parse3MFFile(path)
	assert.Error(t, err)
}

func TestModel_MultiMeshEmpty(t *testing.T) {
	_, err := (&Model{}).MultiMesh()
	assert.ErrorIs(t, err, ErrNoGroups)
}
