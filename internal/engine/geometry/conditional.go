package geometry

import "github.com/Faultbox/brickview/pkg/math"

// ConditionalDraw is the output of DrawConditionalLines.
type ConditionalDraw struct {
	// Stencil is the triangle pass that marks silhouette pixels in the
	// stencil buffer. Lines must then be drawn where the stencil is set.
	Stencil *DrawCall
	// Lines holds the line pass and, with LineJoins, its point pass.
	Lines []DrawCall
}

// ShouldDrawConditional reports whether the conditional edge p1-p2 with
// control points p3 and p4 is visible under matrix, the combined
// projection and model-view transform. The edge is drawn when both control
// points fall on the same side of it on screen.
func ShouldDrawConditional(p1, p2, p3, p4 math.Vec3, matrix math.Mat4) bool {
	s1 := matrix.Project(p1)
	s2 := matrix.Project(p2)
	s3 := matrix.Project(p3)
	s4 := matrix.Project(p4)

	edge := s2.Sub(s1)
	return turn(edge, s3.Sub(s2)) == turn(edge, s4.Sub(s2))
}

// turn returns 1 if b bends left of a, -1 if right, 0 if straight ahead.
func turn(a, b math.Vec2) int {
	switch p := a.Cross(b); {
	case p > 0:
		return 1
	case p < 0:
		return -1
	default:
		return 0
	}
}

// DrawConditionalLines resolves the conditional lines for one view. matrix
// is the combined projection and model-view transform for the group.
func (g *ShapeGroup) DrawConditionalLines(matrix math.Mat4) ConditionalDraw {
	var out ConditionalDraw
	b := g.bucketFor(ConditionalLine, false)
	if b == nil || len(b.indices) == 0 {
		return out
	}
	opts := g.options
	indices := b.indices
	cps := g.controlPoints

	var active []uint32
	offset := 0
	switch {
	case opts.ShowAllConditional && !opts.ConditionalControlPoints:
		active = indices
	case opts.StencilConditionals:
		out.Stencil = g.stencilPass(indices)
		active = indices
	default:
		offset = -1
		for i := 0; i+1 < len(indices); i += 2 {
			i1, i2 := indices[i], indices[i+1]
			c1, c2 := cps[i], cps[i+1]
			if !opts.ShowAllConditional && !ShouldDrawConditional(
				g.store.Position(int(i1)), g.store.Position(int(i2)),
				g.store.Position(int(c1)), g.store.Position(int(c2)), matrix) {
				continue
			}
			active = append(active, i1, i2)
			if opts.ConditionalControlPoints {
				active = append(active, i1, c1, i1, c2)
			}
		}
	}
	if len(active) == 0 {
		return out
	}

	out.Lines = append(out.Lines, DrawCall{Kind: Line, Indices: active, Offset: offset})
	if opts.LineJoins {
		out.Lines = append(out.Lines, DrawCall{Kind: Point, Indices: active, Offset: offset})
	}
	return out
}

// stencilPass builds the two triangles per conditional line whose visible
// edges are the line itself. Only that edge has its flag set, so drawing
// them as outlines marks the stencil wherever the line is a silhouette.
func (g *ShapeGroup) stencilPass(indices []uint32) *DrawCall {
	cps := g.controlPoints
	call := &DrawCall{Kind: Triangle, Offset: -1}
	hw := g.hiddenCopies
	for i := 0; i+1 < len(indices); i += 2 {
		i1, i2 := indices[i], indices[i+1]
		c1, c2 := cps[i], cps[i+1]
		if hw {
			// index+1 is the endpoint copy whose visibility flag is clear.
			call.Indices = append(call.Indices, i1, i2+1, c1, i2, i1+1, c2)
			continue
		}
		call.Indices = append(call.Indices, i1, i2, c1, i1, c2, i2)
		call.EdgeFlags = append(call.EdgeFlags, true, false, false, false, false, true)
	}
	return call
}
