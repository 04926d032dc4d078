package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrGridTooSmall is returned when a parametric grid has fewer than 2 divisions on an axis.
var ErrGridTooSmall = errors.New("parametric grid needs ns > 1 and nt > 1")

// SurfaceFunc maps (s, t) in [0,1]² to a surface position and normal.
type SurfaceFunc func(s, t float64) (pos, normal r3.Vec)

// ParamSurface samples f on an (ns+1)×(nt+1) grid and builds a mesh with two
// triangles per cell. Vertex (i, j) samples s = i/ns, t = j/nt. Colors follow a
// debug checkerboard, texture coordinates are (1-s, 1-t) and triangle duals are
// computed before returning.
func ParamSurface(ns, nt int, f SurfaceFunc) (*Mesh, error) {
	if ns <= 1 || nt <= 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, ns, nt)
	}

	nv := (ns + 1) * (nt + 1)
	coords := make([]float32, 0, 3*nv)
	normals := make([]float32, 0, 3*nv)
	colors := make([]float32, 0, 3*nv)
	texCoords := make([]float32, 0, 2*nv)

	for i := 0; i <= ns; i++ {
		s := float64(i) / float64(ns)
		for j := 0; j <= nt; j++ {
			t := float64(j) / float64(nt)
			pos, n := f(s, t)
			coords = append(coords, float32(pos.X), float32(pos.Y), float32(pos.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))

			shade := float32(0.25)
			if (i+j)%2 == 0 {
				shade = 0.75
			}
			colors = append(colors, float32(s), float32(t), shade)
			texCoords = append(texCoords, float32(1-s), float32(1-t))
		}
	}

	row := uint32(nt + 1)
	triangles := make([]uint32, 0, 6*ns*nt)
	for i := 0; i < ns; i++ {
		for j := 0; j < nt; j++ {
			v00 := uint32(i)*row + uint32(j)
			v10 := v00 + row
			v01 := v00 + 1
			v11 := v10 + 1
			triangles = append(triangles,
				v00, v10, v11,
				v00, v11, v01,
			)
		}
	}

	m, err := New(coords, triangles)
	if err != nil {
		return nil, err
	}
	if err := m.SetNormals(normals); err != nil {
		return nil, err
	}
	if err := m.SetColors(colors); err != nil {
		return nil, err
	}
	if err := m.SetTexCoords(texCoords); err != nil {
		return nil, err
	}
	m.ComputeTriangleDuals()
	return m, nil
}

// Sphere returns a unit sphere centered at the origin, s running around the
// Y axis and t from the north pole to the south pole.
func Sphere(ns, nt int) (*Mesh, error) {
	return ParamSurface(ns, nt, func(s, t float64) (r3.Vec, r3.Vec) {
		theta := 2 * math.Pi * s
		phi := math.Pi * t
		p := r3.Vec{
			X: math.Sin(phi) * math.Cos(theta),
			Y: math.Cos(phi),
			Z: math.Sin(phi) * math.Sin(theta),
		}
		return p, p
	})
}

// Cylinder returns an open unit-radius cylinder around the Y axis spanning y in [-1, 1].
func Cylinder(ns, nt int) (*Mesh, error) {
	return ParamSurface(ns, nt, func(s, t float64) (r3.Vec, r3.Vec) {
		theta := 2 * math.Pi * s
		c, sn := math.Cos(theta), math.Sin(theta)
		return r3.Vec{X: c, Y: 2*t - 1, Z: sn}, r3.Vec{X: c, Z: sn}
	})
}

// Cone returns an open cone around the Y axis with a unit-radius base at y = -1
// and its apex at y = 1.
func Cone(ns, nt int) (*Mesh, error) {
	slope := 1 / math.Sqrt(5)
	return ParamSurface(ns, nt, func(s, t float64) (r3.Vec, r3.Vec) {
		theta := 2 * math.Pi * s
		c, sn := math.Cos(theta), math.Sin(theta)
		r := 1 - t
		pos := r3.Vec{X: r * c, Y: 2*t - 1, Z: r * sn}
		n := r3.Vec{X: 2 * c * slope, Y: slope, Z: 2 * sn * slope}
		return pos, n
	})
}
