package formats

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshview/pkg/geom"
)

// PLYLayout identifies which body shape a PLY file uses.
type PLYLayout int

// Supported PLY layouts.
const (
	// PLYPlain has xyz vertices and triangle faces.
	PLYPlain PLYLayout = iota
	// PLYVertexColor has xyz + rgb or rgba (0-255) vertices.
	PLYVertexColor
	// PLYFaceTexCoord has per-face texture coordinates: 3 a b c 6 u0 v0 u1 v1 u2 v2.
	PLYFaceTexCoord
)

// String returns the layout name.
func (l PLYLayout) String() string {
	switch l {
	case PLYPlain:
		return "plain"
	case PLYVertexColor:
		return "vertex-color"
	case PLYFaceTexCoord:
		return "face-texcoord"
	default:
		return fmt.Sprintf("PLYLayout(%d)", int(l))
	}
}

// Token counts per face line for the fixed layouts.
const (
	plyFaceTokens         = 4  // 3 a b c
	plyFaceTexCoordTokens = 11 // 3 a b c 6 u0 v0 u1 v1 u2 v2
)

var (
	plyRGB  = []string{"x", "y", "z", "red", "green", "blue"}
	plyRGBA = []string{"x", "y", "z", "red", "green", "blue", "alpha"}
)

// PLYProperty is one property declaration of a PLY element.
type PLYProperty struct {
	Name      string
	Type      string
	List      bool
	CountType string // list length type, only for list properties
}

// PLYElement is one element declaration with the 0-based range of body lines it occupies.
type PLYElement struct {
	Name       string
	NumLines   int
	Properties []PLYProperty
	FirstLine  int
	LastLine   int

	declLine int
}

// PropertyIndex returns the position of the named property, or -1.
func (e *PLYElement) PropertyIndex(name string) int {
	for i, p := range e.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// PLYHeader is a parsed PLY header.
type PLYHeader struct {
	Elements  []PLYElement // in declaration order
	EndHeader int          // 0-based index of the end_header line
	Layout    PLYLayout
}

// Element returns the named element, or nil.
func (h *PLYHeader) Element(name string) *PLYElement {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i]
		}
	}
	return nil
}

// normalizeListName maps the vertex index list synonyms to vertex_index.
func normalizeListName(name string) string {
	switch name {
	case "vertex_indices", "vertex_indexes":
		return "vertex_index"
	}
	return name
}

// ParsePLYHeader parses and validates the header of an ASCII PLY file.
func ParsePLYHeader(lines []string) (*PLYHeader, error) {
	end := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == "end_header" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, &ParseError{Msg: "end of header not found"}
	}

	if strings.TrimSpace(lines[0]) != "ply" {
		return nil, lineError(lines, 0, "first line must be 'ply'")
	}
	if strings.Join(strings.Fields(lines[1]), " ") != "format ascii 1.0" {
		return nil, lineError(lines, 1, "unsupported format, expected 'format ascii 1.0'")
	}

	h := &PLYHeader{EndHeader: end}
	for i := 2; i < end; i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			continue

		case "element":
			if len(fields) != 3 {
				return nil, lineError(lines, i, "malformed element declaration")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, lineError(lines, i, "invalid element count")
			}
			if h.Element(fields[1]) != nil {
				return nil, lineError(lines, i, "duplicate element %q", fields[1])
			}
			h.Elements = append(h.Elements, PLYElement{Name: fields[1], NumLines: n, declLine: i})

		case "property":
			if len(h.Elements) == 0 {
				return nil, lineError(lines, i, "property declared before any element")
			}
			elem := &h.Elements[len(h.Elements)-1]
			var prop PLYProperty
			switch {
			case len(fields) == 5 && fields[1] == "list":
				prop = PLYProperty{Name: normalizeListName(fields[4]), Type: fields[3], List: true, CountType: fields[2]}
			case len(fields) == 3 && fields[1] != "list":
				prop = PLYProperty{Name: fields[2], Type: fields[1]}
			default:
				return nil, lineError(lines, i, "malformed property declaration")
			}
			if elem.PropertyIndex(prop.Name) >= 0 {
				return nil, lineError(lines, i, "duplicate property %q", prop.Name)
			}
			elem.Properties = append(elem.Properties, prop)

		default:
			return nil, lineError(lines, i, "unknown header keyword %q", fields[0])
		}
	}

	// Body lines follow the header in element declaration order
	offset := end + 1
	for i := range h.Elements {
		e := &h.Elements[i]
		if remain := len(lines) - offset; e.NumLines > remain {
			return nil, lineError(lines, e.declLine,
				"unexpected end of file: %s element needs %d lines, %d remain", e.Name, e.NumLines, remain)
		}
		e.FirstLine = offset
		e.LastLine = offset + e.NumLines - 1
		offset += e.NumLines
	}

	vertex := h.Element("vertex")
	if vertex == nil {
		return nil, &ParseError{Msg: "vertex element not found"}
	}
	if vertex.PropertyIndex("x") < 0 || vertex.PropertyIndex("y") < 0 || vertex.PropertyIndex("z") < 0 {
		return nil, &ParseError{Msg: "vertex element lacks x, y or z property"}
	}
	if vertex.PropertyIndex("x") != 0 {
		return nil, &ParseError{Msg: "x must be the first vertex property"}
	}

	face := h.Element("face")
	if face == nil {
		return nil, &ParseError{Msg: "face element not found"}
	}
	if idx := face.PropertyIndex("vertex_index"); idx < 0 || !face.Properties[idx].List {
		return nil, &ParseError{Msg: "face element lacks vertex_index list property"}
	}

	h.Layout = detectPLYLayout(vertex, face)

	return h, nil
}

// detectPLYLayout picks the body layout from the vertex and face declarations.
// Vertex colors are read only when the vertex properties are exactly xyz rgb or
// xyz rgba; any other property list is read as plain xyz.
func detectPLYLayout(vertex, face *PLYElement) PLYLayout {
	if idx := face.PropertyIndex("texcoord"); idx >= 0 && face.Properties[idx].List {
		return PLYFaceTexCoord
	}
	if hasProperties(vertex, plyRGB) || hasProperties(vertex, plyRGBA) {
		return PLYVertexColor
	}
	return PLYPlain
}

func hasProperties(e *PLYElement, names []string) bool {
	if len(e.Properties) != len(names) {
		return false
	}
	for i, name := range names {
		if e.Properties[i].Name != name {
			return false
		}
	}
	return true
}

// parseFinite parses a float32 token, rejecting inf and nan.
func parseFinite(tok string) (float32, bool) {
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return float32(f), true
}

// ParsePLY parses an ASCII PLY file given as lines. On success the coordinates are
// remapped to (-x, z, y) and normalized so the longest bounding box axis spans [-1, 1].
// Structural problems are reported as *ParseError.
func ParsePLY(lines []string) (*RawMesh, error) {
	h, err := ParsePLYHeader(lines)
	if err != nil {
		return nil, err
	}

	vertex := h.Element("vertex")
	face := h.Element("face")

	raw := &RawMesh{
		NumVerts:  vertex.NumLines,
		NumTris:   face.NumLines,
		Coords:    make([]float32, 0, 3*vertex.NumLines),
		Triangles: make([]uint32, 0, 3*face.NumLines),
	}
	switch h.Layout {
	case PLYVertexColor:
		raw.Colors = make([]float32, 0, 3*vertex.NumLines)
	case PLYFaceTexCoord:
		raw.TexCoords = make([]float32, 2*vertex.NumLines)
	}

	if err := parsePLYVertices(lines, h, vertex, raw); err != nil {
		return nil, err
	}
	if err := parsePLYFaces(lines, h, face, raw); err != nil {
		return nil, err
	}

	if raw.NumVerts == 0 {
		return nil, &ParseError{Msg: "file has no vertices"}
	}
	bbox, err := geom.ComputeBBox(raw.Coords)
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	if err := geom.NormalizeCoords(bbox, raw.Coords); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	return raw, nil
}

func parsePLYVertices(lines []string, h *PLYHeader, vertex *PLYElement, raw *RawMesh) error {
	ix, iy, iz := vertex.PropertyIndex("x"), vertex.PropertyIndex("y"), vertex.PropertyIndex("z")
	nprops := len(vertex.Properties)

	for i := vertex.FirstLine; i <= vertex.LastLine; i++ {
		tok := strings.Fields(lines[i])
		if len(tok) != nprops {
			return lineError(lines, i, "expected %d values on vertex line, got %d", nprops, len(tok))
		}

		var xyz [3]float32
		for k, idx := range [3]int{ix, iy, iz} {
			f, ok := parseFinite(tok[idx])
			if !ok {
				return lineError(lines, i, "invalid vertex coordinate %q", tok[idx])
			}
			xyz[k] = f
		}
		raw.Coords = append(raw.Coords, -xyz[0], xyz[2], xyz[1])

		if h.Layout == PLYVertexColor {
			for k := 3; k < 6; k++ {
				c, err := strconv.Atoi(tok[k])
				if err != nil || c < 0 || c > 255 {
					return lineError(lines, i, "invalid color value %q", tok[k])
				}
				raw.Colors = append(raw.Colors, float32(c)/255)
			}
			if nprops == len(plyRGBA) {
				if a, err := strconv.Atoi(tok[6]); err != nil || a < 0 || a > 255 {
					return lineError(lines, i, "invalid alpha value %q", tok[6])
				}
			}
		}
	}
	return nil
}

func parsePLYFaces(lines []string, h *PLYHeader, face *PLYElement, raw *RawMesh) error {
	want := plyFaceTokens
	if h.Layout == PLYFaceTexCoord {
		want = plyFaceTexCoordTokens
	}
	numVerts := raw.NumVerts

	for i := face.FirstLine; i <= face.LastLine; i++ {
		tok := strings.Fields(lines[i])
		if len(tok) == 0 || tok[0] != "3" {
			return lineError(lines, i, "only triangular faces are supported")
		}
		if len(tok) != want {
			return lineError(lines, i, "expected %d values on face line, got %d", want, len(tok))
		}

		var tri [3]uint32
		for k := 0; k < 3; k++ {
			idx, err := strconv.Atoi(tok[1+k])
			if err != nil {
				return lineError(lines, i, "invalid vertex index %q", tok[1+k])
			}
			// An index equal to the vertex count passes here; mesh construction rejects it.
			if idx < 0 || idx > numVerts {
				return lineError(lines, i, "vertex index %d out of range", idx)
			}
			tri[k] = uint32(idx)
		}
		raw.Triangles = append(raw.Triangles, tri[0], tri[1], tri[2])

		if h.Layout == PLYFaceTexCoord {
			if tok[4] != "6" {
				return lineError(lines, i, "expected 6 texture coordinates per face")
			}
			for k := 0; k < 3; k++ {
				u, okU := parseFinite(tok[5+2*k])
				v, okV := parseFinite(tok[6+2*k])
				if !okU || !okV {
					return lineError(lines, i, "invalid texture coordinate")
				}
				vi := int(tri[k])
				if vi == numVerts {
					continue
				}
				raw.TexCoords[2*vi] = u
				raw.TexCoords[2*vi+1] = v
			}
		}
	}
	return nil
}

// ParsePLYFile parses a PLY file from disk.
func ParsePLYFile(path string) (*RawMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return ParsePLY(SplitLines(data))
}
