package geometry

import "github.com/Faultbox/brickview/pkg/math"

// ScanPoints calls fn with every vertex referenced by the group,
// transformed by matrix. Control points are not visited.
func (g *ShapeGroup) ScanPoints(matrix math.Mat4, fn func(p math.Vec3)) {
	for _, k := range Kinds {
		b := g.bucketFor(k, false)
		if b == nil {
			continue
		}
		for _, i := range b.indices {
			fn(matrix.TransformPoint(g.store.Position(int(i))))
		}
	}
}

// Bounds is an axis-aligned bounding box. OK is false until a point has
// been added.
type Bounds struct {
	Min, Max math.Vec3
	OK       bool
}

// Add grows the bounds to include p.
func (b *Bounds) Add(p math.Vec3) {
	if !b.OK {
		b.Min, b.Max, b.OK = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// ShapeCount returns the number of shapes of kind k: strips count once
// each.
func (g *ShapeGroup) ShapeCount(k Kind) int {
	b := g.bucketFor(k, false)
	if b == nil {
		return 0
	}
	if k.IsStrip() {
		return len(b.counts)
	}
	return len(b.indices) / k.Arity()
}
