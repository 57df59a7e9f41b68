package geometry

import "github.com/Faultbox/brickview/pkg/math"

// ColoredShapeGroup is a ShapeGroup whose shapes carry their own color in
// the vertex store instead of inheriting the color of the placement.
type ColoredShapeGroup struct {
	*ShapeGroup
}

// NewColoredShapeGroup returns an empty colored group. The store's color
// channel is activated.
func NewColoredShapeGroup(store *VertexStore, options *Options) *ColoredShapeGroup {
	store.Activate(ChannelColors)
	return &ColoredShapeGroup{ShapeGroup: NewShapeGroup(store, options)}
}

func fill(color Color, n int) []Color {
	colors := make([]Color, n)
	for i := range colors {
		colors[i] = color
	}
	return colors
}

// AddShape stores one simple shape drawn in color.
func (g *ColoredShapeGroup) AddShape(k Kind, color Color, positions, normals []math.Vec3, texCoords []math.Vec2) int {
	return g.addShape(k, VertexData{
		Positions: positions,
		Normals:   normals,
		TexCoords: texCoords,
		Colors:    fill(color, len(positions)),
	})
}

// AddStrip stores one strip or fan drawn in color.
func (g *ColoredShapeGroup) AddStrip(k Kind, color Color, positions, normals []math.Vec3, texCoords []math.Vec2) int {
	return g.addStrip(k, VertexData{
		Positions: positions,
		Normals:   normals,
		TexCoords: texCoords,
		Colors:    fill(color, len(positions)),
	})
}

// AddConditionalLine stores one conditional line drawn in color.
func (g *ColoredShapeGroup) AddConditionalLine(color Color, p, controlPoints [2]math.Vec3) int {
	return g.addConditionalLine(p, controlPoints, &color)
}

// shapeColor is the color of a shape, taken from its first vertex.
func (g *ColoredShapeGroup) shapeColor(idx []uint32) Color {
	return g.store.colors[idx[0]]
}

func (g *ColoredShapeGroup) transparent(idx []uint32) bool {
	return g.shapeColor(idx).IsTransparent(g.options.TransparencyThreshold)
}

// TransferColoredTransparent hands every shape whose own color is
// transparent to sink, transformed by matrix. The shapes stay in the group
// until CleanupTransparent is called.
func (g *ColoredShapeGroup) TransferColoredTransparent(matrix math.Mat4, sink TriangleSink) {
	t := g.newTransfer(matrix, sink)
	for _, k := range Kinds {
		b := g.bucketFor(k, false)
		if b == nil {
			continue
		}
		switch {
		case k == Triangle || k == Quad:
			n := k.Arity()
			for i := len(b.indices) - n; i >= 0; i -= n {
				if shape := b.indices[i : i+n]; g.transparent(shape) {
					t.shape(g.shapeColor(shape), k, shape)
				}
			}
		case k.IsStrip():
			offset := len(b.indices)
			for s := len(b.counts) - 1; s >= 0; s-- {
				offset -= b.counts[s]
				if shape := b.indices[offset : offset+b.counts[s]]; len(shape) > 0 && g.transparent(shape) {
					t.shape(g.shapeColor(shape), k, shape)
				}
			}
		}
	}
}

// HasTransparent reports whether any surface shape has a transparent color.
func (g *ColoredShapeGroup) HasTransparent() bool {
	found := false
	g.forEachSurface(func(_ Kind, shape []uint32) {
		if !found && g.transparent(shape) {
			found = true
		}
	})
	return found
}

// CleanupTransparent removes the surface shapes whose color is
// transparent, keeping the order of the rest.
func (g *ColoredShapeGroup) CleanupTransparent() {
	for _, k := range g.order {
		b := g.buckets[k.slot()]
		switch {
		case k == Triangle || k == Quad:
			n := k.Arity()
			kept := b.indices[:0]
			for i := 0; i+n <= len(b.indices); i += n {
				if shape := b.indices[i : i+n]; !g.transparent(shape) {
					kept = append(kept, shape...)
				}
			}
			b.indices = kept
		case k.IsStrip():
			kept := b.indices[:0]
			counts := b.counts[:0]
			offset := 0
			for _, n := range b.counts {
				shape := b.indices[offset : offset+n]
				offset += n
				if n > 0 && g.transparent(shape) {
					continue
				}
				kept = append(kept, shape...)
				counts = append(counts, n)
			}
			b.indices = kept
			b.counts = counts
		}
	}
	g.invalidate()
}

func (g *ColoredShapeGroup) forEachSurface(fn func(k Kind, shape []uint32)) {
	for _, k := range g.order {
		b := g.buckets[k.slot()]
		switch {
		case k == Triangle || k == Quad:
			n := k.Arity()
			for i := 0; i+n <= len(b.indices); i += n {
				fn(k, b.indices[i:i+n])
			}
		case k.IsStrip():
			forEachStrip(b, func(offset, n int) {
				if n > 0 {
					fn(k, b.indices[offset:offset+n])
				}
			})
		}
	}
}

// Copy returns a deep copy of the colored group.
func (g *ColoredShapeGroup) Copy() *ColoredShapeGroup {
	return &ColoredShapeGroup{ShapeGroup: g.ShapeGroup.Copy()}
}
