package picking

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Faultbox/meshview/pkg/mesh"
)

// ErrNoHit is returned when annotating a ray that missed.
var ErrNoHit = errors.New("ray did not hit the model")

// Annotation marks a picked surface point.
type Annotation struct {
	ID       int
	Label    string
	Point    [3]float32
	Mesh     int
	Triangle int
}

func (a Annotation) String() string {
	return fmt.Sprintf("#%d %q at (%.4f, %.4f, %.4f) mesh %d triangle %d",
		a.ID, a.Label, a.Point[0], a.Point[1], a.Point[2], a.Mesh, a.Triangle)
}

// Annotator keeps an ordered list of annotations with increasing ids.
type Annotator struct {
	mu    sync.Mutex
	next  int
	items []Annotation
}

// Add records the hit point of r as a new annotation. Labels default to "P<id>".
func (a *Annotator) Add(label string, r mesh.Ray, h mesh.Hit) (Annotation, error) {
	if !h.OK {
		return Annotation{}, ErrNoHit
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.next++
	if label == "" {
		label = fmt.Sprintf("P%d", a.next)
	}
	p := h.Point(r)
	ann := Annotation{
		ID:       a.next,
		Label:    label,
		Point:    [3]float32{float32(p.X), float32(p.Y), float32(p.Z)},
		Mesh:     h.Mesh,
		Triangle: h.Triangle,
	}
	a.items = append(a.items, ann)
	return ann, nil
}

// Remove deletes the annotation with the given id and reports whether it existed.
func (a *Annotator) Remove(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := slices.IndexFunc(a.items, func(ann Annotation) bool { return ann.ID == id })
	if i < 0 {
		return false
	}
	a.items = slices.Delete(a.items, i, i+1)
	return true
}

// List returns a copy of the annotations in creation order.
func (a *Annotator) List() []Annotation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.items)
}

// Clear removes every annotation. Ids keep increasing.
func (a *Annotator) Clear() {
	a.mu.Lock()
	a.items = nil
	a.mu.Unlock()
}
