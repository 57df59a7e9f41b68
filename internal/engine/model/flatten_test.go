package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

func TestFlattenMergesSubTree(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	child := main.NewModel("child.dat")
	child.AddTriangle(Standard, tri)
	child.AddEdgeLine([2]math.Vec3{tri[0], tri[1]})
	part.AddSubModel(math.Translate(10, 0, 0), child, false)

	part.Flatten()

	assert.True(t, part.IsFlattened())
	assert.Empty(t, part.SubModels())
	offset := v3(10, 0, 0)
	assert.Equal(t,
		[]math.Vec3{tri[0].Add(offset), tri[1].Add(offset), tri[2].Add(offset)},
		positions(part.Shapes(Standard), geometry.Triangle))
	assert.Len(t, part.Shapes(EdgeLines).Indices(geometry.Line), 2)
	assert.Nil(t, part.ColoredShapes(Standard))

	// Flattening twice is a no-op.
	part.Flatten()
	assert.Len(t, part.Shapes(Standard).Indices(geometry.Triangle), 3)
}

func TestFlattenForcedColors(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	child := main.NewModel("child.dat")
	child.AddTriangle(Standard, tri)
	child.AddEdgeLine([2]math.Vec3{tri[0], tri[1]})
	child.AddColoredQuad(Standard, blue, [4]math.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(1, 0, 1), v3(0, 0, 1)})
	part.AddColoredSubModel(red, black, math.Identity(), child, false)

	part.Flatten()

	assert.Nil(t, part.Shapes(Standard))
	assert.Nil(t, part.Shapes(EdgeLines))

	colored := part.ColoredShapes(Standard)
	require.NotNil(t, colored)
	colors := colored.Store().Colors()
	for _, i := range colored.Indices(geometry.Triangle) {
		assert.Equal(t, red, colors[i])
	}
	for _, i := range colored.Indices(geometry.Quad) {
		assert.Equal(t, blue, colors[i], "own color wins")
	}
	edges := part.ColoredShapes(EdgeLines)
	require.NotNil(t, edges)
	for _, i := range edges.Indices(geometry.Line) {
		assert.Equal(t, black, edges.Store().Colors()[i])
	}
}

func TestFlattenNestedComposesMatricesAndColors(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	mid := main.NewModel("mid.dat")
	leaf := main.NewModel("leaf.dat")
	leaf.AddTriangle(Standard, tri)
	mid.AddSubModel(math.Translate(0, 2, 0), leaf, false)
	part.AddColoredSubModel(red, black, math.Translate(1, 0, 0), mid, false)

	part.Flatten()

	colored := part.ColoredShapes(Standard)
	require.NotNil(t, colored)
	got := positions(colored.ShapeGroup, geometry.Triangle)
	require.Len(t, got, 3)
	assert.Equal(t, tri[0].Add(v3(1, 2, 0)), got[0])
	assert.Equal(t, red, colored.Store().Colors()[colored.Indices(geometry.Triangle)[0]])
}

func TestFlattenMirroredKeepsFrontFaces(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	child := main.NewModel("child.dat")
	child.AddTriangle(BFC, tri)
	part.AddSubModel(math.Scale(-1, 1, 1), child, false)

	part.Flatten()

	g := part.Shapes(BFC)
	require.NotNil(t, g)
	p := positions(g, geometry.Triangle)
	require.Len(t, p, 3)
	winding := faceNormal(p[0], p[1], p[2])
	stored := g.Store().Normal(int(g.Indices(geometry.Triangle)[0]))
	assert.InDelta(t, 1, winding.Dot(stored), 1e-5)
}

func TestFlattenInvertedPlacement(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	child := main.NewModel("child.dat")
	child.AddTriangle(BFC, tri)
	part.AddSubModel(math.Identity(), child, true)

	part.Flatten()

	g := part.Shapes(BFC)
	require.NotNil(t, g)
	assert.Equal(t, []math.Vec3{tri[2], tri[1], tri[0]}, positions(g, geometry.Triangle))
	assert.Equal(t, v3(0, 1, 0), g.Store().Normal(int(g.Indices(geometry.Triangle)[0])))
}

func TestFlattenDropsStaleVariants(t *testing.T) {
	main := newMain()
	part := main.NewModel("part.dat")
	child := main.NewModel("child.dat")
	child.AddTriangle(Standard, tri)
	part.AddSubModel(math.Identity(), child, false)

	before := part.UnMirroredModel()
	part.Flatten()
	after := part.UnMirroredModel()

	assert.NotSame(t, before, after)
	assert.NotNil(t, after.Shapes(Standard))
}
