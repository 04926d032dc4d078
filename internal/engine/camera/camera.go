// Package camera provides the orbit camera used to view and pick meshes.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/pkg/geom"
)

// OrbitCamera orbits around a center point, always looking at it with +Y up.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (radians)
	RotationY float32 // Yaw (radians)

	// Projection
	FOV  float32 // vertical field of view (radians)
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32 // radians per pixel
	ZoomSensitivity float32 // fraction of distance per wheel step
}

// NewOrbitCamera creates an orbit camera from the default configuration.
func NewOrbitCamera() *OrbitCamera {
	return FromConfig(config.Default().Camera)
}

// FromConfig creates an orbit camera from cfg, converting degrees to radians.
func FromConfig(cfg config.CameraConfig) *OrbitCamera {
	c := &OrbitCamera{
		Distance:        cfg.Distance,
		RotationX:       mgl32.DegToRad(cfg.Pitch),
		RotationY:       mgl32.DegToRad(cfg.Yaw),
		FOV:             mgl32.DegToRad(cfg.FOV),
		Near:            cfg.Near,
		Far:             cfg.Far,
		MinDistance:     cfg.MinDistance,
		MaxDistance:     cfg.MaxDistance,
		MinPitch:        mgl32.DegToRad(-89),
		MaxPitch:        mgl32.DegToRad(89),
		DragSensitivity: mgl32.DegToRad(cfg.DragSensitivity),
		ZoomSensitivity: cfg.ZoomSensitivity,
	}
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sx, cx := math32.Sincos(c.RotationX)
	sy, cy := math32.Sincos(c.RotationY)
	offset := mgl32.Vec3{cx * sy, sx, cx * cy}.Mul(c.Distance)
	return c.Center.Add(offset)
}

// ViewMatrix returns the world-to-camera matrix.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view for a width x height viewport.
func (c *OrbitCamera) ViewProjection(width, height int) mgl32.Mat4 {
	return c.ProjectionMatrix(float32(width) / float32(height)).Mul4(c.ViewMatrix())
}

// HandleDrag updates rotation based on mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta. Positive delta moves closer.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off until the bounding sphere
// of b fills the vertical field of view. Orientation is kept.
func (c *OrbitCamera) FitToBounds(b geom.BBox) {
	center := b.Center()
	c.Center = mgl32.Vec3{center[0], center[1], center[2]}

	ext := b.Extent()
	radius := mgl32.Vec3{ext[0], ext[1], ext[2]}.Len() / 2
	if radius == 0 {
		radius = 1
	}

	c.Distance = radius / math32.Sin(c.FOV/2)
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.MaxDistance = c.Distance
	}
	if c.Far < c.Distance+radius {
		c.Far = 2 * (c.Distance + radius)
	}
}
