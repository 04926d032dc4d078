package formats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// ErrNoGroups is returned when a model has no group with triangles.
var ErrNoGroups = errors.New("model has no triangles")

// ParseError is a structural error in a text mesh file. Line holds the offending
// line's text and LineNo its 1-based number when known.
type ParseError struct {
	Msg    string
	Line   string
	LineNo int
}

func (e *ParseError) Error() string {
	switch {
	case e.LineNo > 0 && e.Line != "":
		return fmt.Sprintf("line %d: %s: %q", e.LineNo, e.Msg, e.Line)
	case e.LineNo > 0:
		return fmt.Sprintf("line %d: %s", e.LineNo, e.Msg)
	default:
		return e.Msg
	}
}

// lineError builds a ParseError for the 0-based line index i.
func lineError(lines []string, i int, format string, args ...any) *ParseError {
	e := &ParseError{Msg: fmt.Sprintf(format, args...)}
	if i >= 0 && i < len(lines) {
		e.Line = lines[i]
		e.LineNo = i + 1
	}
	return e
}

// SplitLines splits file content into lines, dropping carriage returns.
func SplitLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// RawMesh holds the flat arrays a parser produces for one mesh.
type RawMesh struct {
	NumVerts  int
	NumTris   int
	Coords    []float32 // 3 per vertex
	Triangles []uint32  // 3 per triangle
	Colors    []float32 // 3 per vertex, or nil
	TexCoords []float32 // 2 per vertex, or nil
}

// Mesh builds a validated mesh from the raw arrays.
func (r *RawMesh) Mesh() (*mesh.Mesh, error) {
	m, err := mesh.New(r.Coords, r.Triangles)
	if err != nil {
		return nil, err
	}
	if r.Colors != nil {
		if err := m.SetColors(r.Colors); err != nil {
			return nil, err
		}
	}
	if r.TexCoords != nil {
		if err := m.SetTexCoords(r.TexCoords); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Counts tallies the elements seen while a group was open.
type Counts struct {
	Verts     int
	Tris      int
	TexCoords int
}

// Group is a named mesh within a multi-group model.
type Group struct {
	Name   string
	Counts Counts
	Raw    *RawMesh
}

// Model is a multi-group file whose groups share one normalization box.
// BBox is that box in file coordinates, before normalization.
type Model struct {
	Groups []Group
	BBox   geom.BBox
}

// MultiMesh builds validated meshes for every group. The result's box is the
// union of the normalized group boxes.
func (m *Model) MultiMesh() (*mesh.MultiMesh, error) {
	if len(m.Groups) == 0 {
		return nil, ErrNoGroups
	}

	groups := make([]mesh.Group, 0, len(m.Groups))
	var union geom.BBox
	for i, g := range m.Groups {
		gm, err := g.Raw.Mesh()
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		if i == 0 {
			union = gm.BBox()
		} else {
			union = geom.MergeBBoxes(union, gm.BBox())
		}
		groups = append(groups, mesh.Group{Name: g.Name, Mesh: gm})
	}
	return mesh.NewMultiMesh(groups, union), nil
}

// normalizeGroups merges the per-group boxes and rescales every group with the
// union, storing the pre-normalization union in the model.
func (m *Model) normalizeGroups() error {
	if len(m.Groups) == 0 {
		return ErrNoGroups
	}

	var union geom.BBox
	for i, g := range m.Groups {
		b, err := geom.ComputeBBox(g.Raw.Coords)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
		if i == 0 {
			union = b
		} else {
			union = geom.MergeBBoxes(union, b)
		}
	}

	for _, g := range m.Groups {
		if err := geom.NormalizeCoords(union, g.Raw.Coords); err != nil {
			return err
		}
	}
	m.BBox = union
	return nil
}
