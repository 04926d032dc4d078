package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// minNormalLen2 is the squared length below which an accumulated vertex normal
// is treated as unusable and left as the zero vector.
const minNormalLen2 = 1e-12

// vec returns vertex i as a float64 vector.
func (m *Mesh) vec(i uint32) r3.Vec {
	j := 3 * int(i)
	return r3.Vec{X: float64(m.coords[j]), Y: float64(m.coords[j+1]), Z: float64(m.coords[j+2])}
}

// corners returns the three vertices of triangle t.
func (m *Mesh) corners(t int) (v0, v1, v2 r3.Vec) {
	return m.vec(m.triangles[3*t]), m.vec(m.triangles[3*t+1]), m.vec(m.triangles[3*t+2])
}

// ComputeVertexNormals derives per-vertex normals from the triangles and stores them
// in the normal slot. Each triangle contributes its unnormalized cross product, so
// larger triangles weigh more. Vertices whose accumulated normal is (nearly) zero
// keep a zero normal. Repeated calls are no-ops until SetNormals replaces the slot.
func (m *Mesh) ComputeVertexNormals() {
	if m.IsEmpty() || m.normalsComputed {
		return
	}

	acc := make([]r3.Vec, m.numVerts)
	for t := 0; t < m.numTris; t++ {
		v0, v1, v2 := m.corners(t)
		n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
		for k := 0; k < 3; k++ {
			i := m.triangles[3*t+k]
			acc[i] = r3.Add(acc[i], n)
		}
	}

	normals := make([]float32, 3*m.numVerts)
	for i, n := range acc {
		if r3.Norm2(n) < minNormalLen2 {
			continue
		}
		n = r3.Unit(n)
		normals[3*i] = float32(n.X)
		normals[3*i+1] = float32(n.Y)
		normals[3*i+2] = float32(n.Z)
	}

	m.normals = normals
	m.normalsComputed = true
}
