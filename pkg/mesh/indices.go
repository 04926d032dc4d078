package mesh

import "fmt"

// ArrayKind identifies the numeric element type of a mesh buffer.
type ArrayKind uint8

// Supported buffer element kinds.
const (
	KindFloat32 ArrayKind = iota + 1
	KindUint16
	KindUint32
)

// String returns the element type name.
func (k ArrayKind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	default:
		return fmt.Sprintf("ArrayKind(%d)", k)
	}
}

// Indices is a triangle index buffer in one of the supported integer kinds.
// The zero value is an empty buffer.
type Indices struct {
	kind ArrayKind
	u16  []uint16
	u32  []uint32
}

// Uint16Indices wraps a 16-bit index buffer.
func Uint16Indices(v []uint16) Indices {
	return Indices{kind: KindUint16, u16: v}
}

// Uint32Indices wraps a 32-bit index buffer.
func Uint32Indices(v []uint32) Indices {
	return Indices{kind: KindUint32, u32: v}
}

// Kind returns the element kind, or 0 for the zero value.
func (ix Indices) Kind() ArrayKind {
	return ix.kind
}

// Len returns the number of indices.
func (ix Indices) Len() int {
	switch ix.kind {
	case KindUint16:
		return len(ix.u16)
	case KindUint32:
		return len(ix.u32)
	default:
		return 0
	}
}

// At returns index i widened to uint32.
func (ix Indices) At(i int) uint32 {
	if ix.kind == KindUint16 {
		return uint32(ix.u16[i])
	}
	return ix.u32[i]
}

// widen copies the buffer into a fresh uint32 slice.
func (ix Indices) widen() []uint32 {
	out := make([]uint32, ix.Len())
	for i := range out {
		out[i] = ix.At(i)
	}
	return out
}

// Attribute names a per-vertex attribute slot.
type Attribute uint8

// Per-vertex attribute slots.
const (
	AttrColor Attribute = iota
	AttrNormal
	AttrTexCoord
)

// VecLen returns the number of components per vertex for the attribute.
func (a Attribute) VecLen() int {
	if a == AttrTexCoord {
		return 2
	}
	return 3
}

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case AttrColor:
		return "color"
	case AttrNormal:
		return "normal"
	case AttrTexCoord:
		return "texcoord"
	default:
		return fmt.Sprintf("Attribute(%d)", a)
	}
}
