package mesh

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshview/pkg/geom"
)

// Group is a named sub-mesh of a MultiMesh.
type Group struct {
	Name string
	Mesh *Mesh
}

// MultiMesh is an ordered set of independent meshes normalized with one shared
// bounding box. BBox returns the union of the sub-mesh boxes.
type MultiMesh struct {
	groups []Group
	bbox   geom.BBox
}

// NewMultiMesh wraps groups sharing bbox.
func NewMultiMesh(groups []Group, bbox geom.BBox) *MultiMesh {
	return &MultiMesh{groups: groups, bbox: bbox}
}

// Single wraps one mesh as a MultiMesh with a single group.
func Single(name string, m *Mesh) *MultiMesh {
	return &MultiMesh{groups: []Group{{Name: name, Mesh: m}}, bbox: m.BBox()}
}

// Len returns the number of sub-meshes.
func (mm *MultiMesh) Len() int {
	return len(mm.groups)
}

// Group returns sub-mesh i.
func (mm *MultiMesh) Group(i int) Group {
	return mm.groups[i]
}

// Groups returns all sub-meshes in order.
func (mm *MultiMesh) Groups() []Group {
	return mm.groups
}

// BBox returns the box enclosing every sub-mesh.
func (mm *MultiMesh) BBox() geom.BBox {
	return mm.bbox
}

// NumVerts returns the total vertex count over all sub-meshes.
func (mm *MultiMesh) NumVerts() int {
	n := 0
	for _, g := range mm.groups {
		n += g.Mesh.NumVerts()
	}
	return n
}

// NumTris returns the total triangle count over all sub-meshes.
func (mm *MultiMesh) NumTris() int {
	n := 0
	for _, g := range mm.groups {
		n += g.Mesh.NumTris()
	}
	return n
}

// ComputeTriangleDuals precomputes duals for every sub-mesh.
func (mm *MultiMesh) ComputeTriangleDuals() {
	for _, g := range mm.groups {
		g.Mesh.ComputeTriangleDuals()
	}
}

// ComputeVertexNormals computes vertex normals for every sub-mesh.
func (mm *MultiMesh) ComputeVertexNormals() {
	for _, g := range mm.groups {
		g.Mesh.ComputeVertexNormals()
	}
}

// IntersectRay returns the nearest hit of r over all sub-meshes, visiting them in order.
func (mm *MultiMesh) IntersectRay(r Ray) (Hit, error) {
	return mm.IntersectRayStats(r, nil)
}

// IntersectRayStats is IntersectRay that also accumulates work counters into st when non-nil.
func (mm *MultiMesh) IntersectRayStats(r Ray, st *Stats) (Hit, error) {
	if len(mm.groups) == 0 {
		return NoHit(), ErrEmptyMesh
	}

	best := NoHit()
	for i, g := range mm.groups {
		h, err := g.Mesh.IntersectRayStats(r, st)
		if err != nil {
			return NoHit(), fmt.Errorf("group %d (%s): %w", i, g.Name, err)
		}
		if h.OK {
			h.Mesh = i
		}
		best = best.Nearer(h)
	}
	return best, nil
}

// IntersectRayParallel intersects every sub-mesh concurrently and reduces the
// per-mesh results to the nearest hit. Ties resolve to the lower sub-mesh index,
// matching IntersectRay.
func (mm *MultiMesh) IntersectRayParallel(ctx context.Context, r Ray) (Hit, error) {
	return mm.IntersectRayParallelStats(ctx, r, nil)
}

// IntersectRayParallelStats is IntersectRayParallel that also accumulates work
// counters into st when non-nil. Each sub-mesh counts into its own Stats and the
// totals are merged after all of them finish.
func (mm *MultiMesh) IntersectRayParallelStats(ctx context.Context, r Ray, st *Stats) (Hit, error) {
	if len(mm.groups) == 0 {
		return NoHit(), ErrEmptyMesh
	}

	hits := make([]Hit, len(mm.groups))
	stats := make([]Stats, len(mm.groups))
	g, ctx := errgroup.WithContext(ctx)
	for i, grp := range mm.groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := grp.Mesh.IntersectRayStats(r, &stats[i])
			if err != nil {
				return fmt.Errorf("group %d (%s): %w", i, grp.Name, err)
			}
			if h.OK {
				h.Mesh = i
			}
			hits[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return NoHit(), err
	}

	best := NoHit()
	for i, h := range hits {
		best = best.Nearer(h)
		if st != nil {
			st.Add(stats[i])
		}
	}
	return best, nil
}
