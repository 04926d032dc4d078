package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/geom"
)

// parallelEps is the threshold below which a ray is considered parallel to a triangle.
const parallelEps = 1e-12

// RayTriangleInt intersects r with the triangle (v0, v1, v2) by solving for the
// barycentric coordinates and ray parameter directly. It reports a hit only for
// t > 0 with the point inside the triangle (edges included).
func RayTriangleInt(r Ray, v0, v1, v2 r3.Vec) (float64, bool) {
	e1 := r3.Sub(v1, v0)
	e2 := r3.Sub(v2, v0)

	h := r3.Cross(r.Dir, e2)
	a := r3.Dot(e1, h)
	if math.Abs(a) < parallelEps {
		return 0, false // parallel or degenerate
	}

	f := 1 / a
	s := r3.Sub(r.Origin, v0)
	u := f * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := r3.Cross(s, e1)
	v := f * r3.Dot(r.Dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * r3.Dot(e2, q)
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// RayTriDualInt intersects r with a triangle through its precomputed dual record.
// Degenerate triangles never hit.
func RayTriDualInt(r Ray, d Dual) (float64, bool) {
	if !d.Valid {
		return 0, false
	}

	nd := r3.Dot(d.N, r.Dir)
	if math.Abs(nd) < parallelEps {
		return 0, false
	}
	t := (d.K.Z - r3.Dot(d.N, r.Origin)) / nd
	if t <= 0 {
		return 0, false
	}

	p := r.At(t)
	u := r3.Dot(d.E1, p) - d.K.X
	if u < 0 {
		return 0, false
	}
	v := r3.Dot(d.E2, p) - d.K.Y
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return t, true
}

// RayBoxInt tests r against an axis-aligned box with the slab method. It returns
// the entry parameter, or the exit parameter when the origin is inside the box.
func RayBoxInt(r Ray, b geom.BBox) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}

	for a := 0; a < 3; a++ {
		lo, hi := float64(b[a]), float64(b[a+3])
		if dir[a] == 0 {
			if origin[a] < lo || origin[a] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin[a]) / dir[a]
		t2 := (hi - origin[a]) / dir[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// pickBounds returns the bounding box padded so hits on the boundary are not
// lost to rounding.
func (m *Mesh) pickBounds() geom.BBox {
	return m.bbox.Expand(1e-5*m.bbox.MaxExtent() + 1e-6)
}

// IntersectRay returns the nearest hit of r against the mesh. The dual path is
// used for every triangle once ComputeTriangleDuals has run, otherwise the
// direct solve is used. It fails on the empty mesh.
func (m *Mesh) IntersectRay(r Ray) (Hit, error) {
	return m.IntersectRayStats(r, nil)
}

// IntersectRayStats is IntersectRay that also accumulates work counters into st when non-nil.
func (m *Mesh) IntersectRayStats(r Ray, st *Stats) (Hit, error) {
	if m.numTris == 0 {
		return NoHit(), ErrEmptyMesh
	}

	var local Stats
	local.Rays = 1
	best := m.nearest(r, &local)
	if st != nil {
		st.Add(local)
	}
	return best, nil
}

func (m *Mesh) nearest(r Ray, st *Stats) Hit {
	best := NoHit()
	if _, ok := RayBoxInt(r, m.pickBounds()); !ok {
		st.BoxRejects++
		return best
	}

	consider := func(t float64, tri int) {
		st.Hits++
		if t < best.T {
			best = Hit{OK: true, T: t, Triangle: tri}
		}
	}

	if m.duals != nil {
		for tri := 0; tri < m.numTris; tri++ {
			d := m.DualAt(tri)
			if !d.Valid {
				st.Degenerate++
				continue
			}
			st.Tested++
			if t, ok := RayTriDualInt(r, d); ok {
				consider(t, tri)
			}
		}
	} else {
		for tri := 0; tri < m.numTris; tri++ {
			st.Tested++
			v0, v1, v2 := m.corners(tri)
			if t, ok := RayTriangleInt(r, v0, v1, v2); ok {
				consider(t, tri)
			}
		}
	}

	if best.OK {
		best.Mesh = 0
	}
	return best
}
