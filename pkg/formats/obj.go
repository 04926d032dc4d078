package formats

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultGroupName names the group opened implicitly by geometry before any g line.
const defaultGroupName = "default"

// objGroup accumulates one group's arrays. OBJ indices are file-global, so each
// group keeps a map from global vertex index to its own local index.
type objGroup struct {
	name      string
	counts    Counts
	local     map[int]uint32
	coords    []float32
	texCoords []float32
	hasTex    bool
	triangles []uint32
}

type objParser struct {
	lines     []string
	positions []float32 // global v
	uvs       []float32 // global vt
	groups    map[string]*objGroup
	order     []*objGroup
	current   *objGroup
}

// ParseOBJ parses a Wavefront OBJ file given as lines into one group per g/o
// name. Groups without faces are dropped and all groups are normalized with the
// union of their bounding boxes. Structural problems are reported as *ParseError.
func ParseOBJ(lines []string) (*Model, error) {
	p := &objParser{
		lines:  lines,
		groups: make(map[string]*objGroup),
	}

	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.parseLine(i, fields); err != nil {
			return nil, err
		}
	}

	model := &Model{}
	for _, g := range p.order {
		if len(g.triangles) == 0 {
			continue
		}
		raw := &RawMesh{
			NumVerts:  len(g.coords) / 3,
			NumTris:   len(g.triangles) / 3,
			Coords:    g.coords,
			Triangles: g.triangles,
		}
		if g.hasTex {
			raw.TexCoords = g.texCoords
		}
		model.Groups = append(model.Groups, Group{Name: g.name, Counts: g.counts, Raw: raw})
	}
	if len(model.Groups) == 0 {
		return nil, &ParseError{Msg: "no faces found"}
	}
	if err := model.normalizeGroups(); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	return model, nil
}

func (p *objParser) parseLine(i int, fields []string) error {
	switch fields[0] {
	case "g", "o":
		if len(fields) < 2 {
			return lineError(p.lines, i, "missing group name")
		}
		name := fields[1]
		if len(fields) >= 3 {
			name = fields[1] + "/" + fields[2]
		}
		p.open(name)

	case "v":
		p.ensureGroup()
		if len(fields) < 4 {
			return lineError(p.lines, i, "vertex needs 3 coordinates")
		}
		for _, f := range fields[1:4] {
			x, ok := parseFinite(f)
			if !ok {
				return lineError(p.lines, i, "invalid vertex coordinate %q", f)
			}
			p.positions = append(p.positions, x)
		}
		p.current.counts.Verts++

	case "vt":
		p.ensureGroup()
		if len(fields) < 3 {
			return lineError(p.lines, i, "texture coordinate needs 2 values")
		}
		for _, f := range fields[1:3] {
			x, ok := parseFinite(f)
			if !ok {
				return lineError(p.lines, i, "invalid texture coordinate %q", f)
			}
			p.uvs = append(p.uvs, x)
		}
		p.current.counts.TexCoords++

	case "f":
		p.ensureGroup()
		if len(fields) < 4 {
			return lineError(p.lines, i, "face needs at least 3 vertices")
		}
		return p.parseFace(i, fields[1:])
	}
	// vn, s, usemtl, mtllib and friends carry nothing the mesh stores
	return nil
}

func (p *objParser) open(name string) {
	if g, ok := p.groups[name]; ok {
		p.current = g
		return
	}
	g := &objGroup{name: name, local: make(map[int]uint32)}
	p.groups[name] = g
	p.order = append(p.order, g)
	p.current = g
}

func (p *objParser) ensureGroup() {
	if p.current == nil {
		p.open(defaultGroupName)
	}
}

// resolve converts a 1-based or negative OBJ index into a 0-based one.
func resolve(tok string, n int) (int, error) {
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", tok)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += n
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("index %s out of range", tok)
	}
	return idx, nil
}

// parseFace reads the vertex references of one face and fan-triangulates it.
func (p *objParser) parseFace(i int, refs []string) error {
	g := p.current
	local := make([]uint32, len(refs))

	for k, ref := range refs {
		parts := strings.Split(ref, "/")

		vi, err := resolve(parts[0], len(p.positions)/3)
		if err != nil {
			return lineError(p.lines, i, "vertex %s", err)
		}
		li, ok := g.local[vi]
		if !ok {
			li = uint32(len(g.coords) / 3)
			g.local[vi] = li
			g.coords = append(g.coords, p.positions[3*vi:3*vi+3]...)
			g.texCoords = append(g.texCoords, 0, 0)
		}
		local[k] = li

		if len(parts) > 1 && parts[1] != "" {
			ti, err := resolve(parts[1], len(p.uvs)/2)
			if err != nil {
				return lineError(p.lines, i, "texture coordinate %s", err)
			}
			g.texCoords[2*li] = p.uvs[2*ti]
			g.texCoords[2*li+1] = p.uvs[2*ti+1]
			g.hasTex = true
		}
	}

	for k := 1; k+1 < len(local); k++ {
		g.triangles = append(g.triangles, local[0], local[k], local[k+1])
		g.counts.Tris++
	}
	return nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(SplitLines(data))
}
