package geometry

import (
	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/pkg/math"
)

// Copy returns a deep copy bound to the same store. Every vertex used by a
// surface or line bucket is duplicated, so transforming the copy never
// touches vertices this group still draws. Conditional lines are shared:
// no transform rewrites them.
func (g *ShapeGroup) Copy() *ShapeGroup {
	c := &ShapeGroup{
		store:   g.store,
		options: g.options,
		order:   append([]Kind(nil), g.order...),
		present: g.present,
	}
	for _, k := range g.order {
		src := g.buckets[k.slot()]
		dst := &bucket{indices: make([]uint32, len(src.indices))}
		if src.counts != nil {
			dst.counts = append([]int{}, src.counts...)
		}
		if k == ConditionalLine {
			copy(dst.indices, src.indices)
		} else {
			for j, i := range src.indices {
				dst.indices[j] = g.store.duplicate(int(i), false)
			}
		}
		c.buckets[k.slot()] = dst
	}
	c.controlPoints = append([]uint32(nil), g.controlPoints...)
	c.hiddenCopies = g.hiddenCopies
	return c
}

// Invert flips every surface to face the other way. Reversed shapes use
// new vertices with negated normals, so the vertices the group used
// before are left as they were. Conditional lines are not touched.
func (g *ShapeGroup) Invert() {
	for _, k := range g.order {
		b := g.buckets[k.slot()]
		switch k {
		case ConditionalLine:
			continue
		case TriangleStrip:
			reordered := append([]uint32(nil), b.indices...)
			forEachStrip(b, func(offset, n int) {
				if n%2 == 1 {
					reverse(reordered[offset : offset+n])
					return
				}
				logger.Warn("cannot invert triangle strip with even vertex count", zap.Int("count", n))
			})
			b.indices = g.flipAll(reordered)
		case QuadStrip:
			flipped := make([]uint32, len(b.indices))
			for j := 0; j+1 < len(b.indices); j += 2 {
				flipped[j] = g.store.duplicate(int(b.indices[j+1]), true)
				flipped[j+1] = g.store.duplicate(int(b.indices[j]), true)
			}
			b.indices = flipped
		case TriangleFan:
			reordered := append([]uint32(nil), b.indices...)
			forEachStrip(b, func(offset, n int) {
				reverse(reordered[offset+1 : offset+n])
			})
			b.indices = g.flipAll(reordered)
		default:
			flipped := make([]uint32, 0, len(b.indices))
			for j := len(b.indices) - 1; j >= 0; j-- {
				flipped = append(flipped, g.store.duplicate(int(b.indices[j]), true))
			}
			b.indices = flipped
		}
	}
	g.invalidate()
}

func (g *ShapeGroup) flipAll(indices []uint32) []uint32 {
	for j, i := range indices {
		indices[j] = g.store.duplicate(int(i), true)
	}
	return indices
}

// UnMirror reverses the winding of every surface in place, undoing the
// reversal a mirroring placement matrix causes. Texture U is mirrored for
// simple kinds and fans. No vertices are added.
func (g *ShapeGroup) UnMirror() {
	for _, k := range g.order {
		b := g.buckets[k.slot()]
		switch k {
		case ConditionalLine:
			continue
		case TriangleStrip:
			forEachStrip(b, func(offset, n int) {
				if n%2 == 1 {
					reverse(b.indices[offset : offset+n])
					return
				}
				logger.Warn("cannot un-mirror triangle strip with even vertex count", zap.Int("count", n))
			})
		case QuadStrip:
			for j := 0; j+1 < len(b.indices); j += 2 {
				b.indices[j], b.indices[j+1] = b.indices[j+1], b.indices[j]
			}
		case TriangleFan:
			forEachStrip(b, func(offset, n int) {
				reverse(b.indices[offset+1 : offset+n])
			})
			g.mirrorTexCoords(b.indices)
		default:
			reverse(b.indices)
			g.mirrorTexCoords(b.indices)
		}
	}
	g.invalidate()
}

func (g *ShapeGroup) mirrorTexCoords(indices []uint32) {
	if !g.store.Has(ChannelTexCoords) {
		return
	}
	for _, i := range indices {
		g.store.mirrorTexCoord(int(i))
	}
}

// Flatten appends every shape of src to g, transformed by matrix. Normals
// go through the inverse-transpose of matrix and are renormalized; a
// singular matrix yields zero normals. A non-nil color replaces the source
// vertex colors. Strip counts are copied unchanged.
func (g *ShapeGroup) Flatten(src *ShapeGroup, matrix math.Mat4, color *Color) {
	if src == nil || src.store == nil || src.IsEmpty() {
		return
	}
	xf := newVertexTransform(matrix, color)
	if !xf.normalsOK {
		logger.Debug("flattening through singular matrix, normals dropped")
	}
	hw := g.conditionalLayout()
	if hw {
		g.store.Activate(ChannelVisibility)
	}

	for _, k := range Kinds {
		sb := src.bucketFor(k, false)
		if sb == nil {
			continue
		}
		db := g.bucketFor(k, true)
		if k.IsStrip() {
			db.counts = append(db.counts, sb.counts...)
		}
		for j, i := range sb.indices {
			v := xf.apply(src.store.Vertex(int(i)))
			db.indices = append(db.indices, uint32(g.store.AddVertex(v)))
			if k != ConditionalLine {
				continue
			}
			if hw {
				hidden := v
				hidden.Normal = math.Vec3{}
				hidden.Visible = false
				hidden.Channels |= ChannelVisibility
				g.store.AddVertex(hidden)
			}
			cp := xf.apply(src.store.Vertex(int(src.controlPoints[j])))
			if hw {
				cp.Visible = false
				cp.Channels |= ChannelVisibility
			}
			g.controlPoints = append(g.controlPoints, uint32(g.store.AddVertex(cp)))
		}
	}
	g.invalidate()
}

type vertexTransform struct {
	matrix    math.Mat4
	normals   math.Mat4
	normalsOK bool
	color     *Color
}

func newVertexTransform(matrix math.Mat4, color *Color) vertexTransform {
	nm, ok := matrix.NormalMatrix()
	return vertexTransform{matrix: matrix, normals: nm, normalsOK: ok, color: color}
}

func (xf vertexTransform) position(p math.Vec3) math.Vec3 {
	return xf.matrix.TransformPoint(p)
}

func (xf vertexTransform) normal(n math.Vec3) math.Vec3 {
	if !xf.normalsOK {
		return math.Vec3{}
	}
	return xf.normals.TransformDirection(n).Normalize()
}

func (xf vertexTransform) apply(v Vertex) Vertex {
	v.Position = xf.position(v.Position)
	v.Normal = xf.normal(v.Normal)
	v.Channels &^= ChannelVisibility
	v.Visible = true
	if xf.color != nil {
		v.Color = *xf.color
		v.Channels |= ChannelColors
	}
	return v
}

func forEachStrip(b *bucket, fn func(offset, n int)) {
	offset := 0
	for _, n := range b.counts {
		fn(offset, n)
		offset += n
	}
}

func reverse(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
