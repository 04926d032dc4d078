package formats

import (
	"errors"
	"fmt"

	"github.com/hpinc/go3mf"
)

// ErrNo3MFMesh is returned when no build item of a 3MF package references a mesh object.
var ErrNo3MFMesh = errors.New("3MF package has no mesh objects")

// Parse3MFFile reads the mesh objects referenced by the build items of a 3MF
// package. Each item becomes one group; groups share one normalization box.
// Item transforms are not applied.
func Parse3MFFile(path string) (*Model, error) {
	r, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening 3MF file: %w", err)
	}
	defer r.Close()

	var model go3mf.Model
	if err := r.Decode(&model); err != nil {
		return nil, fmt.Errorf("decoding 3MF file: %w", err)
	}

	out := &Model{}
	for i, item := range model.Build.Items {
		obj, ok := model.FindObject(item.ObjectPath(), item.ObjectID)
		if !ok || obj.Mesh == nil {
			continue
		}

		verts := obj.Mesh.Vertices.Vertex
		tris := obj.Mesh.Triangles.Triangle
		if len(verts) == 0 || len(tris) == 0 {
			continue
		}

		raw := &RawMesh{
			NumVerts:  len(verts),
			NumTris:   len(tris),
			Coords:    make([]float32, 0, 3*len(verts)),
			Triangles: make([]uint32, 0, 3*len(tris)),
		}
		for _, v := range verts {
			raw.Coords = append(raw.Coords, v.X(), v.Y(), v.Z())
		}
		for _, t := range tris {
			raw.Triangles = append(raw.Triangles, uint32(t.V1), uint32(t.V2), uint32(t.V3))
		}

		name := obj.Name
		if name == "" {
			name = fmt.Sprintf("item%d", i)
		}
		out.Groups = append(out.Groups, Group{
			Name:   name,
			Counts: Counts{Verts: raw.NumVerts, Tris: raw.NumTris},
			Raw:    raw,
		})
	}

	if len(out.Groups) == 0 {
		return nil, ErrNo3MFMesh
	}
	if err := out.normalizeGroups(); err != nil {
		return nil, err
	}
	return out, nil
}
