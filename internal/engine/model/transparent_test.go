package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

func quadAt(y float32) [4]math.Vec3 {
	return [4]math.Vec3{v3(0, y, 0), v3(1, y, 0), v3(1, y, 1), v3(0, y, 1)}
}

func transparentScene() (*MainModel, *Model) {
	main := newMain()
	child := main.NewModel("child.dat")
	child.AddTriangle(Standard, tri)
	child.AddColoredQuad(Standard, glass, quadAt(0))
	child.AddColoredQuad(Standard, red, quadAt(1))
	child.AddColoredLine(glass, [2]math.Vec3{tri[0], tri[1]})
	main.AddColoredSubModel(glass, black, math.Identity(), child, false)
	main.AddColoredSubModel(red, black, math.Translate(5, 0, 0), child, false)
	return main, child
}

func TestFinishMovesTransparentGeometry(t *testing.T) {
	main, child := transparentScene()

	main.Finish()

	// One triangle from the glass placement, two per placement from the
	// glass quad.
	assert.Equal(t, 5, main.Transparent().Len())
	for _, tri := range main.Transparent().Triangles() {
		assert.Equal(t, glass, tri.Color)
	}

	colored := child.ColoredShapes(Standard)
	assert.False(t, colored.HasTransparent())
	assert.Len(t, colored.Indices(geometry.Quad), 4)
	assert.Len(t, child.Shapes(Standard).Indices(geometry.Triangle), 3, "plain groups are kept")
	assert.Len(t, child.ColoredShapes(Lines).Indices(geometry.Line), 2, "lines are kept")

	group := main.Transparent().Group()
	require.NotNil(t, group)
	assert.Same(t, group, main.ColoredShapes(Transparent))
	assert.Equal(t, 5, group.ShapeCount(geometry.Triangle))
}

func TestFinishTransformsTriangles(t *testing.T) {
	main := newMain()
	child := main.NewModel("child.dat")
	child.AddTriangle(Standard, tri)
	main.AddColoredSubModel(glass, black, math.Translate(0, 0, 7), child, false)

	main.Finish()

	require.Equal(t, 1, main.Transparent().Len())
	got := main.Transparent().Triangles()[0]
	assert.Equal(t, tri[2].Add(v3(0, 0, 7)), got.Positions[2])
	assert.Equal(t, v3(0, -1, 0), got.Normals[0])
}

func TestFinishWithoutTransparency(t *testing.T) {
	main := newMain()
	main.AddTriangle(Standard, tri)

	main.Finish()

	assert.Zero(t, main.Transparent().Len())
	assert.Nil(t, main.Transparent().Group())
	assert.Nil(t, main.Transparent().DrawCalls(math.Identity()))
}

func TestTransparentDrawCallsSorted(t *testing.T) {
	main := newMain()
	c := main.Transparent()
	near := geometry.TransparentTriangle{Color: glass, Positions: [3]math.Vec3{v3(0, 0, -1), v3(1, 0, -1), v3(0, 1, -1)}}
	far := geometry.TransparentTriangle{Color: glass, Positions: [3]math.Vec3{v3(0, 0, -10), v3(1, 0, -10), v3(0, 1, -10)}}
	c.AddTransparentTriangle(near)
	c.AddTransparentTriangle(far)
	c.build()

	calls := c.DrawCalls(math.Identity())
	require.Len(t, calls, 1)
	assert.Equal(t, geometry.Triangle, calls[0].Kind)
	assert.Equal(t, -1, calls[0].Offset)
	assert.Equal(t, []uint32{3, 4, 5, 0, 1, 2}, calls[0].Indices)

	// Turning around puts the other triangle at the back.
	calls = c.DrawCalls(math.RotateY(3.14159265))
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, calls[0].Indices)
}

func TestTransparentDrawCallsUnsorted(t *testing.T) {
	settings := DefaultSettings()
	settings.SortTransparent = false
	main := NewMainModel("test.ldr", nil, settings)
	c := main.Transparent()
	c.AddTransparentTriangle(geometry.TransparentTriangle{Color: glass, Positions: tri})
	c.build()

	calls := c.DrawCalls(math.Identity())
	require.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].Offset)
	assert.Equal(t, []uint32{0, 1, 2}, calls[0].Indices)
}

func TestFinishCleansNestedVariants(t *testing.T) {
	main := newMain()
	shape := main.NewModel("s.dat")
	shape.AddColoredTriangle(BFC, glass, tri)

	// Flattening the part builds the mirrored and inverted variant of
	// shape before Finish runs.
	part := main.NewModel("p.dat")
	part.AddSubModel(math.Scale(-1, 1, 1), shape, true)
	part.Flatten()
	nested := shape.UnMirroredModel().InvertedModel()
	require.True(t, nested.ColoredShapes(BFC).HasTransparent())

	main.AddSubModel(math.Scale(-1, 1, 1), shape, true)
	main.Finish()

	assert.Equal(t, 1, main.Transparent().Len())
	assert.False(t, nested.ColoredShapes(BFC).HasTransparent())
	assert.Empty(t, nested.ColoredShapes(BFC).Indices(geometry.Triangle))

	list := main.DrawList(math.Identity(), math.Identity())
	for _, b := range list.Batches {
		assert.False(t, b.Colored && b.Section == BFC, "glass drawn in an opaque batch")
	}
	require.NotNil(t, list.Transparent)
}
