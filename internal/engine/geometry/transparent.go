package geometry

import "github.com/Faultbox/brickview/pkg/math"

// TransparentTriangle is one discrete triangle extracted for transparency
// sorting.
type TransparentTriangle struct {
	Color     Color
	Positions [3]math.Vec3
	Normals   [3]math.Vec3
	TexCoords [3]math.Vec2
	Textured  bool
}

// Centroid returns the average of the three positions.
func (t *TransparentTriangle) Centroid() math.Vec3 {
	return t.Positions[0].Add(t.Positions[1]).Add(t.Positions[2]).Scale(1.0 / 3)
}

// TriangleSink receives transparent triangles.
type TriangleSink interface {
	AddTransparentTriangle(t TransparentTriangle)
}

// TransferTransparent hands every shape of the group to sink as discrete
// triangles transformed by matrix, provided color is transparent. Shapes
// are walked from the end of each bucket towards the front.
func (g *ShapeGroup) TransferTransparent(color Color, matrix math.Mat4, sink TriangleSink) {
	if !color.IsTransparent(g.options.TransparencyThreshold) {
		return
	}
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
				t.shape(color, k, b.indices[i:i+n])
			}
		case k.IsStrip():
			offset := len(b.indices)
			for s := len(b.counts) - 1; s >= 0; s-- {
				offset -= b.counts[s]
				t.shape(color, k, b.indices[offset:offset+b.counts[s]])
			}
		}
	}
}

type transfer struct {
	store    *VertexStore
	xf       vertexTransform
	mirrored bool
	sink     TriangleSink
}

func (g *ShapeGroup) newTransfer(matrix math.Mat4, sink TriangleSink) *transfer {
	return &transfer{
		store:    g.store,
		xf:       newVertexTransform(matrix, nil),
		mirrored: matrix.Determinant3() < 0,
		sink:     sink,
	}
}

// shape decomposes one shape of kind k into triangles.
func (t *transfer) shape(color Color, k Kind, idx []uint32) {
	switch k {
	case Triangle:
		t.triangle(color, idx[0], idx[1], idx[2])
	case Quad:
		t.triangle(color, idx[0], idx[1], idx[2])
		t.triangle(color, idx[0], idx[2], idx[3])
	case TriangleStrip, QuadStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 1 {
				t.triangle(color, idx[i], idx[i+2], idx[i+1])
			} else {
				t.triangle(color, idx[i], idx[i+1], idx[i+2])
			}
		}
	case TriangleFan:
		for i := 0; i+2 < len(idx); i++ {
			t.triangle(color, idx[0], idx[i+1], idx[i+2])
		}
	}
}

func (t *transfer) triangle(color Color, i0, i1, i2 uint32) {
	tri := TransparentTriangle{Color: color, Textured: t.store.Has(ChannelTexCoords)}
	for j, i := range [3]uint32{i0, i1, i2} {
		tri.Positions[j] = t.xf.position(t.store.Position(int(i)))
		n := t.xf.normal(t.store.Normal(int(i)))
		if t.mirrored {
			n = n.Neg()
		}
		tri.Normals[j] = n
		if tri.Textured {
			tri.TexCoords[j] = t.store.texCoords[i]
		}
	}
	t.sink.AddTransparentTriangle(tri)
}
