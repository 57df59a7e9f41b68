package geometry

import "github.com/Faultbox/brickview/pkg/math"

// DrawCall describes one batched draw. The renderer submits it verbatim.
type DrawCall struct {
	Kind Kind
	// Indices is the index list for a single draw. For a multi-draw it
	// spans the whole bucket.
	Indices []uint32
	// Offset is the position of Indices[0] inside the kind's bucket, or -1
	// when Indices was generated for this draw only.
	Offset int
	// Strips is set for a batched multi-draw.
	Strips *MultiDraw
	// EdgeFlags, when set, holds one edge flag per index.
	EdgeFlags []bool
}

// MultiDraw lists the strips drawn by one multi-draw call.
type MultiDraw struct {
	Counts  []int32
	Offsets []int
	Views   [][]uint32
}

// Len returns the number of indices the call submits.
func (c DrawCall) Len() int {
	return len(c.Indices)
}

type stripView struct {
	offset  int
	indices []uint32
}

// Draw returns the draw calls for the surface kinds: triangles, quads and
// every strip kind.
func (g *ShapeGroup) Draw() []DrawCall {
	var calls []DrawCall
	calls = g.appendSimple(calls, Triangle)
	calls = g.appendSimple(calls, Quad)
	return append(calls, g.DrawStrips()...)
}

// DrawStrips returns the draw calls for the strip kinds. With MultiDraw
// each kind becomes one call; otherwise each strip is its own call. Both
// forms cover the same indices.
func (g *ShapeGroup) DrawStrips() []DrawCall {
	var calls []DrawCall
	for _, k := range [...]Kind{TriangleStrip, QuadStrip, TriangleFan} {
		b := g.bucketFor(k, false)
		if b == nil || len(b.counts) == 0 {
			continue
		}
		if g.options.MultiDraw {
			views := g.stripViews(k)
			md := &MultiDraw{
				Counts:  make([]int32, len(views)),
				Offsets: make([]int, len(views)),
				Views:   make([][]uint32, len(views)),
			}
			for i, v := range views {
				md.Counts[i] = int32(len(v.indices))
				md.Offsets[i] = v.offset
				md.Views[i] = v.indices
			}
			calls = append(calls, DrawCall{Kind: k, Indices: b.indices, Strips: md})
			continue
		}
		offset := 0
		for _, n := range b.counts {
			calls = append(calls, DrawCall{Kind: k, Indices: b.indices[offset : offset+n], Offset: offset})
			offset += n
		}
	}
	return calls
}

// DrawLines returns the draw calls for points and plain lines, followed
// by a point pass over the lines when LineJoins is set.
func (g *ShapeGroup) DrawLines() []DrawCall {
	var calls []DrawCall
	calls = g.appendSimple(calls, Point)
	calls = g.appendSimple(calls, Line)
	if g.options.LineJoins {
		if b := g.bucketFor(Line, false); b != nil && len(b.indices) > 0 {
			calls = append(calls, DrawCall{Kind: Point, Indices: b.indices})
		}
	}
	return calls
}

func (g *ShapeGroup) appendSimple(calls []DrawCall, k Kind) []DrawCall {
	b := g.bucketFor(k, false)
	if b == nil || len(b.indices) == 0 {
		return calls
	}
	return append(calls, DrawCall{Kind: k, Indices: b.indices})
}

// stripViews returns the cached per-strip views of kind k, rebuilding the
// cache after any mutation.
func (g *ShapeGroup) stripViews(k Kind) []stripView {
	if g.multi == nil {
		g.multi = make([][]stripView, len(g.order))
		for i, kind := range g.order {
			b := g.buckets[kind.slot()]
			if !kind.IsStrip() || len(b.counts) == 0 {
				continue
			}
			views := make([]stripView, len(b.counts))
			offset := 0
			for j, n := range b.counts {
				views[j] = stripView{offset: offset, indices: b.indices[offset : offset+n]}
				offset += n
			}
			g.multi[i] = views
		}
	}
	return g.multi[g.DenseIndex(k)]
}

// NormalSegments returns line segment endpoints running from each surface
// vertex along its normal, for debug display. It returns nil unless
// DrawNormals is set.
func (g *ShapeGroup) NormalSegments() []math.Vec3 {
	if !g.options.DrawNormals {
		return nil
	}
	var segments []math.Vec3
	for _, k := range g.order {
		if k == Point || k == Line || k == ConditionalLine {
			continue
		}
		for _, i := range g.buckets[k.slot()].indices {
			p := g.store.Position(int(i))
			segments = append(segments, p, p.Add(g.store.Normal(int(i)).Scale(1.1)))
		}
	}
	return segments
}
