package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/pkg/formats"
)

const trianglePLY = `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_index
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`

const twoQuadOBJ = `g a
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
g b
v 0 0 1
v 1 0 1
v 0 1 1
f 5 6 7
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"bunny.ply", FormatPLY},
		{"BUNNY.PLY", FormatPLY},
		{"dir/scene.obj", FormatOBJ},
		{"part.3mf", Format3MF},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if err != nil {
			t.Errorf("DetectFormat(%q) error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	_, err := DetectFormat("model.stl")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFilePLY(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tri.ply", trianglePLY)

	mm, err := LoadFile(path, Options{ComputeNormals: true})
	require.NoError(t, err)
	require.Equal(t, 1, mm.Len())
	assert.Equal(t, "tri", mm.Group(0).Name)
	assert.Equal(t, 3, mm.NumVerts())

	// The triangle lies in the y=0 plane after the axis remap
	normals := mm.Group(0).Mesh.Normals()
	require.Len(t, normals, 9)
	assert.InDelta(t, 1, normals[1], 1e-6)
}

func TestLoadFileOBJ(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quads.obj", twoQuadOBJ)

	mm, err := LoadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, mm.Len())
	assert.Equal(t, 3, mm.NumTris())
	assert.Nil(t, mm.Group(0).Mesh.Normals())
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(writeFile(t, dir, "broken.ply", "ply\nformat ascii 1.0\n"), Options{})
	var pe *formats.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "end of header not found", pe.Msg)

	_, err = LoadFile(filepath.Join(dir, "missing.obj"), Options{})
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, dir, "model.stl", "solid"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadAllContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.ply", trianglePLY),
		writeFile(t, dir, "b.ply", "not a ply file"),
		writeFile(t, dir, "c.obj", twoQuadOBJ),
	}

	results := LoadAll(context.Background(), paths, Options{})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, FormatPLY, results[0].Format)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Model)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 2, results[2].Model.Len())
}

func TestLoadAllCancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.ply", trianglePLY)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := LoadAll(ctx, []string{path, path}, Options{})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Loader
	assert.Equal(t, Options{ComputeNormals: cfg.ComputeNormals}, OptionsFromConfig(cfg))
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.obj", twoQuadOBJ)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, Options{}, func(r Result) { results <- r })
	}()

	// Give the watcher time to register before touching the file
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "other.obj", twoQuadOBJ)
	writeFile(t, dir, "live.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	select {
	case r := <-results:
		require.NoError(t, r.Err)
		assert.Equal(t, 1, r.Model.NumTris())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchUnsupported(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "x.stl"), time.Millisecond, Options{}, func(Result) {})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
