package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DualStride is the number of scalars stored per triangle dual:
// e1d(3), e2d(3), n(3), k(3), valid(1).
const DualStride = 13

// minGramDet is the Gram determinant below which a triangle is degenerate.
const minGramDet = 1e-12

// Dual is the precomputed intersection record of one triangle.
//
// E1 and E2 are the dual basis of the triangle edges e1 = v1-v0 and e2 = v2-v0
// (E1·e1 = 1, E1·e2 = 0, E2·e1 = 0, E2·e2 = 1), N is the unit face normal and
// K holds (v0·E1, v0·E2, v0·N). Degenerate triangles have Valid false and
// zero vectors.
type Dual struct {
	E1, E2, N r3.Vec
	K         r3.Vec
	Valid     bool
}

// ComputeDual builds the dual record of the triangle (v0, v1, v2).
func ComputeDual(v0, v1, v2 r3.Vec) Dual {
	e1 := r3.Sub(v1, v0)
	e2 := r3.Sub(v2, v0)

	a := r3.Dot(e1, e1)
	b := r3.Dot(e1, e2)
	c := r3.Dot(e2, e2)
	det := a*c - b*b
	if math.Abs(det) < minGramDet {
		return Dual{}
	}

	inv := 1 / det
	e1d := r3.Scale(inv, r3.Sub(r3.Scale(c, e1), r3.Scale(b, e2)))
	e2d := r3.Scale(inv, r3.Sub(r3.Scale(a, e2), r3.Scale(b, e1)))
	n := r3.Unit(r3.Cross(e1, e2))

	return Dual{
		E1:    e1d,
		E2:    e2d,
		N:     n,
		K:     r3.Vec{X: r3.Dot(v0, e1d), Y: r3.Dot(v0, e2d), Z: r3.Dot(v0, n)},
		Valid: true,
	}
}

// ComputeTriangleDuals precomputes the dual record of every triangle. Once the
// duals exist IntersectRay uses them for all triangles. Repeated calls are no-ops.
func (m *Mesh) ComputeTriangleDuals() {
	if m.IsEmpty() || m.duals != nil {
		return
	}

	duals := make([]float64, DualStride*m.numTris)
	for t := 0; t < m.numTris; t++ {
		d := ComputeDual(m.corners(t))
		if !d.Valid {
			continue
		}
		o := DualStride * t
		copy(duals[o:o+12], []float64{
			d.E1.X, d.E1.Y, d.E1.Z,
			d.E2.X, d.E2.Y, d.E2.Z,
			d.N.X, d.N.Y, d.N.Z,
			d.K.X, d.K.Y, d.K.Z,
		})
		duals[o+12] = 1
	}
	m.duals = duals
}

// HasDuals reports whether triangle duals have been computed.
func (m *Mesh) HasDuals() bool {
	return m.duals != nil
}

// TriangleDuals returns the flat dual buffer (DualStride scalars per triangle), or nil.
func (m *Mesh) TriangleDuals() []float64 {
	return m.duals
}

// DualAt decodes the dual record of triangle t. It returns the zero Dual if
// duals have not been computed.
func (m *Mesh) DualAt(t int) Dual {
	if m.duals == nil {
		return Dual{}
	}
	d := m.duals[DualStride*t : DualStride*(t+1)]
	return Dual{
		E1:    r3.Vec{X: d[0], Y: d[1], Z: d[2]},
		E2:    r3.Vec{X: d[3], Y: d[4], Z: d[5]},
		N:     r3.Vec{X: d[6], Y: d[7], Z: d[8]},
		K:     r3.Vec{X: d[9], Y: d[10], Z: d[11]},
		Valid: d[12] != 0,
	}
}

// FaceNormal returns the unit normal of triangle t, from the duals when present.
func (m *Mesh) FaceNormal(t int) r3.Vec {
	if m.duals != nil {
		return m.DualAt(t).N
	}
	v0, v1, v2 := m.corners(t)
	n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	if r3.Norm2(n) < minNormalLen2 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Barycentric returns the barycentric weights of p, assumed to lie in the plane
// of triangle t. Degenerate triangles give (1, 0, 0).
func (m *Mesh) Barycentric(t int, p r3.Vec) [3]float64 {
	var d Dual
	if m.duals != nil {
		d = m.DualAt(t)
	} else {
		d = ComputeDual(m.corners(t))
	}
	if !d.Valid {
		return [3]float64{1, 0, 0}
	}
	u := r3.Dot(p, d.E1) - d.K.X
	v := r3.Dot(p, d.E2) - d.K.Y
	return [3]float64{1 - u - v, u, v}
}

// Interpolate blends attribute a over the corners of triangle t with weights w.
// It returns nil when the attribute is not set.
func (m *Mesh) Interpolate(a Attribute, t int, w [3]float64) []float32 {
	data := m.Attribute(a)
	if data == nil {
		return nil
	}
	n := a.VecLen()
	out := make([]float32, n)
	for k, vi := range m.Triangle(t) {
		base := int(vi) * n
		for j := 0; j < n; j++ {
			out[j] += float32(w[k]) * data[base+j]
		}
	}
	return out
}
