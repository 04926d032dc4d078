package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line Origin + t*Dir for t > 0. Dir need not be unit length;
// hit distances are expressed in multiples of Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NewRay builds a ray from float32 components.
func NewRay(origin, dir [3]float32) Ray {
	return Ray{
		Origin: r3.Vec{X: float64(origin[0]), Y: float64(origin[1]), Z: float64(origin[2])},
		Dir:    r3.Vec{X: float64(dir[0]), Y: float64(dir[1]), Z: float64(dir[2])},
	}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Hit is the nearest intersection found so far.
type Hit struct {
	OK       bool
	T        float64 // ray parameter, valid only when OK
	Triangle int     // triangle index within the mesh
	Mesh     int     // sub-mesh index within a MultiMesh, 0 for a single mesh
}

// NoHit returns the empty accumulator.
func NoHit() Hit {
	return Hit{T: math.Inf(1), Triangle: -1, Mesh: -1}
}

// Nearer returns whichever of h and other is the closer valid hit.
// Ties keep h.
func (h Hit) Nearer(other Hit) Hit {
	if !other.OK {
		return h
	}
	if !h.OK || other.T < h.T {
		return other
	}
	return h
}

// Point returns the world position of the hit along r.
func (h Hit) Point(r Ray) r3.Vec {
	return r.At(h.T)
}

// Stats counts the work done by intersection calls.
type Stats struct {
	Rays       int // intersection calls
	BoxRejects int // calls rejected by the bounding box test
	Tested     int // ray/triangle tests performed
	Degenerate int // degenerate triangles skipped
	Hits       int // candidate intersections found before nearest-hit selection
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rays += other.Rays
	s.BoxRejects += other.BoxRejects
	s.Tested += other.Tested
	s.Degenerate += other.Degenerate
	s.Hits += other.Hits
}

// Intersector is anything that can be picked with a ray.
type Intersector interface {
	IntersectRay(r Ray) (Hit, error)
}
