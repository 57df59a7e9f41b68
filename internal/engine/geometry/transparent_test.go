package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/pkg/math"
)

type collector []TransparentTriangle

func (c *collector) AddTransparentTriangle(t TransparentTriangle) {
	*c = append(*c, t)
}

var glass = RGBA(200, 220, 255, 128)

func TestTransferTransparentOpaqueIsIgnored(t *testing.T) {
	g := newGroup(nil)
	g.AddShape(Quad, line(4), upNormals(4), nil)

	var c collector
	g.TransferTransparent(RGBA(255, 0, 0, 255), math.Identity(), &c)
	g.TransferTransparent(RGBA(255, 0, 0, 240), math.Identity(), &c)
	assert.Empty(t, c)
}

func TestTransferTransparentQuad(t *testing.T) {
	g := newGroup(nil)
	ps := []math.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0), v3(0, 1, 0)}
	g.AddShape(Quad, ps, upNormals(4), nil)

	var c collector
	g.TransferTransparent(glass, math.Translate(0, 0, 2), &c)

	require.Len(t, c, 2)
	at := func(p math.Vec3) math.Vec3 { return p.Add(v3(0, 0, 2)) }
	assert.Equal(t, [3]math.Vec3{at(ps[0]), at(ps[1]), at(ps[2])}, c[0].Positions)
	assert.Equal(t, [3]math.Vec3{at(ps[0]), at(ps[2]), at(ps[3])}, c[1].Positions)
	assert.Equal(t, glass, c[0].Color)
	assert.Equal(t, v3(0, 0, 1), c[0].Normals[1])
	assert.False(t, c[0].Textured)
}

func TestTransferTransparentBackToFront(t *testing.T) {
	g := newGroup(nil)
	g.AddShape(Triangle, []math.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0)}, nil, nil)
	g.AddShape(Triangle, []math.Vec3{v3(5, 0, 0), v3(6, 0, 0), v3(5, 1, 0)}, nil, nil)
	g.AddStrip(TriangleFan, []math.Vec3{v3(0, 0, 1), v3(1, 0, 1), v3(1, 1, 1)}, nil, nil)
	g.AddStrip(TriangleFan, []math.Vec3{v3(0, 0, 9), v3(1, 0, 9), v3(1, 1, 9)}, nil, nil)

	var c collector
	g.TransferTransparent(glass, math.Identity(), &c)

	require.Len(t, c, 4)
	assert.Equal(t, v3(5, 0, 0), c[0].Positions[0])
	assert.Equal(t, v3(0, 0, 0), c[1].Positions[0])
	assert.Equal(t, v3(0, 0, 9), c[2].Positions[0])
	assert.Equal(t, v3(0, 0, 1), c[3].Positions[0])
}

func TestTransferTransparentStripCounts(t *testing.T) {
	t.Run("quad strip of 6", func(t *testing.T) {
		g := newGroup(nil)
		g.AddStrip(QuadStrip, line(6), upNormals(6), nil)

		var c collector
		g.TransferTransparent(glass, math.Identity(), &c)
		assert.Len(t, c, 4)
	})

	t.Run("fan of 5", func(t *testing.T) {
		g := newGroup(nil)
		ps := []math.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0), v3(0, 1, 0), v3(-1, 1, 0)}
		g.AddStrip(TriangleFan, ps, upNormals(5), nil)

		var c collector
		g.TransferTransparent(glass, math.Identity(), &c)
		require.Len(t, c, 3)
		for i, tri := range c {
			assert.Equal(t, ps[0], tri.Positions[0])
			assert.Equal(t, [3]math.Vec3{ps[0], ps[i+1], ps[i+2]}, tri.Positions)
		}
	})

	t.Run("triangle strip alternates winding", func(t *testing.T) {
		g := newGroup(nil)
		ps := line(4)
		g.AddStrip(TriangleStrip, ps, upNormals(4), nil)

		var c collector
		g.TransferTransparent(glass, math.Identity(), &c)
		require.Len(t, c, 2)
		assert.Equal(t, [3]math.Vec3{ps[0], ps[1], ps[2]}, c[0].Positions)
		assert.Equal(t, [3]math.Vec3{ps[1], ps[3], ps[2]}, c[1].Positions)
	})
}

func TestTransferTransparentMirroredNormals(t *testing.T) {
	g := newGroup(nil)
	g.AddShape(Triangle, line(3), upNormals(3), []math.Vec2{{X: 0.5}, {X: 1}, {Y: 1}})

	var c collector
	g.TransferTransparent(glass, math.Scale(-1, 1, 1), &c)

	require.Len(t, c, 1)
	assert.Equal(t, v3(0, 0, -1), c[0].Normals[0])
	assert.Equal(t, v3(-1, 1, 0), c[0].Positions[1])
	assert.True(t, c[0].Textured)
	assert.Equal(t, math.Vec2{X: 1}, c[0].TexCoords[1])
}

func TestColoredTransferAndCleanup(t *testing.T) {
	red := RGBA(255, 0, 0, 255)
	g := NewColoredShapeGroup(NewVertexStore(), nil)
	g.AddShape(Quad, red, line(4), upNormals(4), nil)
	g.AddShape(Quad, glass, line(4), upNormals(4), nil)
	g.AddShape(Triangle, glass, line(3), upNormals(3), nil)
	g.AddStrip(TriangleStrip, glass, line(5), upNormals(5), nil)
	g.AddStrip(TriangleStrip, red, line(3), upNormals(3), nil)
	g.AddShape(Line, glass, line(2), nil, nil)

	require.True(t, g.HasTransparent())

	var c collector
	g.TransferColoredTransparent(math.Identity(), &c)

	// Quad 2, triangle 1, strip of 5 gives 3.
	require.Len(t, c, 6)
	for _, tri := range c {
		assert.Equal(t, glass, tri.Color)
	}

	g.CleanupTransparent()

	assert.False(t, g.HasTransparent())
	assert.Len(t, g.Indices(Quad), 4)
	assert.Empty(t, g.Indices(Triangle))
	assert.Equal(t, []int{3}, g.StripCounts(TriangleStrip))
	assert.Len(t, g.Indices(TriangleStrip), 3)
	assert.Equal(t, red, g.Store().Colors()[g.Indices(TriangleStrip)[0]])
	// Lines are not surfaces and stay.
	assert.Len(t, g.Indices(Line), 2)
	assert.True(t, g.Has(Triangle))
}
