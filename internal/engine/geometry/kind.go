// Package geometry implements the indexed shape-group engine: vertex stores,
// per-kind index buckets, batched draw descriptors, and the transforms that
// let one geometry buffer serve mirrored, inverted, flattened and
// transparent placements.
package geometry

import "math/bits"

// Kind is a primitive kind. Each kind is a single bit so that a set of
// kinds fits in one Kind value.
type Kind uint8

// Primitive kinds in draw order.
const (
	Point Kind = 1 << iota
	Line
	Triangle
	Quad
	ConditionalLine
	TriangleStrip
	QuadStrip
	TriangleFan
)

const (
	// FirstStrip is the lowest kind stored as variable-length strips.
	FirstStrip = TriangleStrip

	kindCount = 8
)

// Kinds lists every primitive kind in ascending order.
var Kinds = [kindCount]Kind{
	Point, Line, Triangle, Quad, ConditionalLine, TriangleStrip, QuadStrip, TriangleFan,
}

// IsStrip reports whether shapes of this kind have a variable vertex count.
func (k Kind) IsStrip() bool {
	return k >= FirstStrip
}

// Arity returns the fixed vertex count of a simple kind, or 0 for strips.
func (k Kind) Arity() int {
	switch k {
	case Point:
		return 1
	case Line, ConditionalLine:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	default:
		return 0
	}
}

func (k Kind) slot() int {
	return bits.TrailingZeros8(uint8(k))
}

func (k Kind) String() string {
	switch k {
	case Point:
		return "point"
	case Line:
		return "line"
	case Triangle:
		return "triangle"
	case Quad:
		return "quad"
	case ConditionalLine:
		return "conditional-line"
	case TriangleStrip:
		return "triangle-strip"
	case QuadStrip:
		return "quad-strip"
	case TriangleFan:
		return "triangle-fan"
	default:
		return "mixed"
	}
}
