// Package picking turns screen positions into rays and rays into mesh hits.
package picking

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/mesh"
)

// ErrBadViewport is returned for a viewport without area.
var ErrBadViewport = errors.New("viewport must have positive width and height")

// ScreenToRay converts pixel coordinates (origin top-left) to a world-space ray
// starting on the near plane. The direction is unit length, so hit distances are
// world units from the near plane.
func ScreenToRay(screenX, screenY float32, width, height int, view, proj mgl32.Mat4) (mesh.Ray, error) {
	if width <= 0 || height <= 0 {
		return mesh.Ray{}, ErrBadViewport
	}

	// UnProject expects window coordinates with the origin at the bottom left
	winX := screenX
	winY := float32(height) - screenY

	near, err := mgl32.UnProject(mgl32.Vec3{winX, winY, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return mesh.Ray{}, fmt.Errorf("unprojecting near point: %w", err)
	}
	far, err := mgl32.UnProject(mgl32.Vec3{winX, winY, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return mesh.Ray{}, fmt.Errorf("unprojecting far point: %w", err)
	}

	dir := far.Sub(near)
	if dir.Len() == 0 {
		return mesh.Ray{}, errors.New("degenerate projection: near and far points coincide")
	}
	dir = dir.Normalize()

	return mesh.NewRay([3]float32(near), [3]float32(dir)), nil
}

// PixelRay returns the ray through the center of pixel (px, py).
func PixelRay(px, py, width, height int, view, proj mgl32.Mat4) (mesh.Ray, error) {
	return ScreenToRay(float32(px)+0.5, float32(py)+0.5, width, height, view, proj)
}
