// Package geom provides bounding boxes and coordinate normalization for flat vertex arrays.
package geom

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Bounding box errors.
var (
	ErrNoVertices     = errors.New("cannot compute bounding box of zero vertices")
	ErrBadCoordLength = errors.New("coordinate array length is not a multiple of 3")
	ErrDegenerateBBox = errors.New("degenerate bounding box: zero extent on every axis")
)

// BBox is an axis-aligned bounding box stored as [minX, minY, minZ, maxX, maxY, maxZ].
type BBox [6]float32

// Min returns the minimum corner.
func (b BBox) Min() [3]float32 {
	return [3]float32{b[0], b[1], b[2]}
}

// Max returns the maximum corner.
func (b BBox) Max() [3]float32 {
	return [3]float32{b[3], b[4], b[5]}
}

// Center returns the midpoint of the box.
func (b BBox) Center() [3]float32 {
	return [3]float32{
		(b[0] + b[3]) / 2,
		(b[1] + b[4]) / 2,
		(b[2] + b[5]) / 2,
	}
}

// Extent returns the size of the box along each axis.
func (b BBox) Extent() [3]float32 {
	return [3]float32{b[3] - b[0], b[4] - b[1], b[5] - b[2]}
}

// MaxExtent returns the size of the longest axis.
func (b BBox) MaxExtent() float32 {
	e := b.Extent()
	return math32.Max(e[0], math32.Max(e[1], e[2]))
}

// Contains reports whether other lies entirely inside b (boundaries included).
func (b BBox) Contains(other BBox) bool {
	for i := 0; i < 3; i++ {
		if other[i] < b[i] || other[i+3] > b[i+3] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside b (boundaries included).
func (b BBox) ContainsPoint(p [3]float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b[i] || p[i] > b[i+3] {
			return false
		}
	}
	return true
}

// Expand returns the box grown by pad on every side.
func (b BBox) Expand(pad float32) BBox {
	return BBox{b[0] - pad, b[1] - pad, b[2] - pad, b[3] + pad, b[4] + pad, b[5] + pad}
}

// ComputeBBox computes the bounding box of a flat xyz coordinate array in one pass.
func ComputeBBox(coords []float32) (BBox, error) {
	if len(coords) == 0 {
		return BBox{}, ErrNoVertices
	}
	if len(coords)%3 != 0 {
		return BBox{}, fmt.Errorf("%w: %d", ErrBadCoordLength, len(coords))
	}

	b := BBox{coords[0], coords[1], coords[2], coords[0], coords[1], coords[2]}
	for i := 3; i < len(coords); i += 3 {
		for a := 0; a < 3; a++ {
			c := coords[i+a]
			if c < b[a] {
				b[a] = c
			}
			if c > b[a+3] {
				b[a+3] = c
			}
		}
	}
	return b, nil
}

// MergeBBoxes returns the component-wise union of two boxes.
func MergeBBoxes(a, b BBox) BBox {
	return BBox{
		math32.Min(a[0], b[0]),
		math32.Min(a[1], b[1]),
		math32.Min(a[2], b[2]),
		math32.Max(a[3], b[3]),
		math32.Max(a[4], b[4]),
		math32.Max(a[5], b[5]),
	}
}

// NormalizeCoords recenters coords on the box midpoint and scales them uniformly
// so the longest axis of the box maps to [-1, 1]. Coordinates are rewritten in place.
func NormalizeCoords(b BBox, coords []float32) error {
	if len(coords)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrBadCoordLength, len(coords))
	}
	maxDim := b.MaxExtent()
	if !(maxDim > 0) {
		return ErrDegenerateBBox
	}

	center := b.Center()
	scale := 2 / maxDim
	for i := 0; i < len(coords); i += 3 {
		coords[i] = scale * (coords[i] - center[0])
		coords[i+1] = scale * (coords[i+1] - center[1])
		coords[i+2] = scale * (coords[i+2] - center[2])
	}
	return nil
}

// WireframeVertices returns line-segment endpoints for the 12 edges of the box,
// 24 vertices of [x, y, z].
func (b BBox) WireframeVertices() []float32 {
	minX, minY, minZ := b[0], b[1], b[2]
	maxX, maxY, maxZ := b[3], b[4], b[5]
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}
