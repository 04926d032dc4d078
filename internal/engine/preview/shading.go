// Package preview renders a mesh to an image by casting one pick ray per pixel.
package preview

import (
	"fmt"
	"image/color"
	"math"

	lin "github.com/sgreben/piecewiselinear"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/mesh"
)

// Shading selects how a hit pixel is colored.
type Shading int

// Shading modes.
const (
	ShadeFlat    Shading = iota // headlight Lambert on the face normal, vertex colors when present
	ShadeNormal                 // face normal mapped to rgb
	ShadeDepth                  // grey ramp on hit distance
	ShadeChecker                // 8x8 checkerboard in texture space
)

var shadingNames = [...]string{"flat", "normal", "depth", "checker"}

func (s Shading) String() string {
	if int(s) < len(shadingNames) {
		return shadingNames[s]
	}
	return fmt.Sprintf("Shading(%d)", int(s))
}

// ParseShading maps a mode name to a Shading.
func ParseShading(name string) (Shading, error) {
	for i, n := range shadingNames {
		if n == name {
			return Shading(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading %q", name)
}

// baseColor is used by flat shading for meshes without vertex colors.
var baseColor = [3]float64{0.78, 0.80, 0.84}

// depthRamp maps normalized depth to brightness. Near surfaces are bright and
// the falloff is steeper in the back half.
var depthRamp = lin.Function{
	X: []float64{0, 0.5, 1},
	Y: []float64{1, 0.6, 0.15},
}

// checkerScale is the number of checker cells per texture unit.
const checkerScale = 8

// hitContext is everything a shader needs about one pixel's hit.
type hitContext struct {
	ray   mesh.Ray
	hit   mesh.Hit
	mesh  *mesh.Mesh
	depth float64 // normalized to [0, 1]
}

func shade(mode Shading, hc hitContext) color.RGBA {
	m, tri := hc.mesh, hc.hit.Triangle
	n := m.FaceNormal(tri)

	switch mode {
	case ShadeNormal:
		return rgb((n.X+1)/2, (n.Y+1)/2, (n.Z+1)/2)

	case ShadeDepth:
		g := depthRamp.At(clamp01(hc.depth))
		return rgb(g, g, g)

	case ShadeChecker:
		w := m.Barycentric(tri, hc.hit.Point(hc.ray))
		u, v := w[1], w[2]
		if uv := m.Interpolate(mesh.AttrTexCoord, tri, w); uv != nil {
			u, v = float64(uv[0]), float64(uv[1])
		}
		cell := int(math.Floor(u*checkerScale)) + int(math.Floor(v*checkerScale))
		g := 0.85
		if cell%2 != 0 {
			g = 0.25
		}
		l := lambert(n, hc.ray.Dir)
		return rgb(g*l, g*l, g*l)

	default:
		c := baseColor
		if col := m.Interpolate(mesh.AttrColor, tri, m.Barycentric(tri, hc.hit.Point(hc.ray))); col != nil {
			c = [3]float64{float64(col[0]), float64(col[1]), float64(col[2])}
		}
		l := lambert(n, hc.ray.Dir)
		return rgb(c[0]*l, c[1]*l, c[2]*l)
	}
}

// lambert is a two-sided headlight term with a small ambient floor.
func lambert(n, dir r3.Vec) float64 {
	dn := r3.Norm(dir)
	if dn == 0 {
		return 1
	}
	return 0.15 + 0.85*math.Abs(r3.Dot(n, dir))/dn
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func rgb(r, g, b float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(255 * clamp01(r))),
		G: uint8(math.Round(255 * clamp01(g))),
		B: uint8(math.Round(255 * clamp01(b))),
		A: 255,
	}
}
