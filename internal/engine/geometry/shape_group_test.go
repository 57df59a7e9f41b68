package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/pkg/math"
)

func v3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

func line(n int) []math.Vec3 {
	ps := make([]math.Vec3, n)
	for i := range ps {
		ps[i] = v3(float32(i), float32(i%2), 0)
	}
	return ps
}

func upNormals(n int) []math.Vec3 {
	ns := make([]math.Vec3, n)
	for i := range ns {
		ns[i] = v3(0, 0, 1)
	}
	return ns
}

func newGroup(opts *Options) *ShapeGroup {
	return NewShapeGroup(NewVertexStore(), opts)
}

func TestAddShapeAppendsSequentialIndices(t *testing.T) {
	g := newGroup(nil)

	first := g.AddShape(Triangle, line(3), upNormals(3), nil)
	second := g.AddShape(Triangle, line(3), nil, nil)

	assert.Equal(t, 0, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, g.Indices(Triangle))
	assert.Equal(t, 2, g.ShapeCount(Triangle))
	assert.True(t, g.Has(Triangle))
	assert.False(t, g.Has(Quad))
	assert.Nil(t, g.Indices(Quad))
}

func TestAddShapeWrongArityPanics(t *testing.T) {
	g := newGroup(nil)

	assert.Panics(t, func() { g.AddShape(Quad, line(3), nil, nil) })
	assert.Panics(t, func() { g.AddShape(Line, line(3), nil, nil) })
	assert.Panics(t, func() { g.AddShape(TriangleStrip, line(5), nil, nil) })
	assert.Panics(t, func() { g.AddStrip(Quad, line(4), nil, nil) })
}

func TestAddStripRecordsCounts(t *testing.T) {
	g := newGroup(nil)
	g.AddStrip(QuadStrip, line(6), upNormals(6), nil)
	g.AddStrip(QuadStrip, line(4), upNormals(4), nil)

	assert.Equal(t, []int{6, 4}, g.StripCounts(QuadStrip))
	assert.Len(t, g.Indices(QuadStrip), 10)
	assert.Equal(t, 2, g.ShapeCount(QuadStrip))
}

func TestDenseIndexIsStable(t *testing.T) {
	g := newGroup(nil)
	g.AddStrip(TriangleFan, line(5), upNormals(5), nil)
	fan := g.DenseIndex(TriangleFan)

	// Lower kinds added later must not move the fan.
	for _, k := range []Kind{Quad, Line, Triangle, Point} {
		g.AddShape(k, line(k.Arity()), nil, nil)
		assert.Equal(t, fan, g.DenseIndex(TriangleFan), "after adding %s", k)
	}
	g.AddConditionalLine([2]math.Vec3{v3(0, 0, 0), v3(1, 0, 0)}, [2]math.Vec3{v3(0, 1, 0), v3(0, -1, 0)})
	g.AddStrip(TriangleStrip, line(3), upNormals(3), nil)

	assert.Equal(t, 0, fan)
	assert.Equal(t, fan, g.DenseIndex(TriangleFan))
	assert.Equal(t, -1, g.DenseIndex(QuadStrip))
	assert.Equal(t, TriangleFan|Quad|Line|Triangle|Point|ConditionalLine|TriangleStrip, g.Present())
}

func TestAddConditionalLineKeepsControlPointsInStep(t *testing.T) {
	g := newGroup(nil)
	for i := 0; i < 3; i++ {
		g.AddConditionalLine(
			[2]math.Vec3{v3(float32(i), 0, 0), v3(float32(i)+1, 0, 0)},
			[2]math.Vec3{v3(0, 1, 0), v3(0, 2, 0)},
		)
	}

	idx := g.Indices(ConditionalLine)
	cps := g.ControlPoints()
	require.Len(t, idx, 6)
	require.Len(t, cps, 6)
	s := g.Store()
	assert.Equal(t, v3(2, 0, 0), s.Position(int(idx[4])))
	assert.Equal(t, v3(3, 0, 0), s.Position(int(idx[5])))
	assert.Equal(t, v3(0, 1, 0), s.Position(int(cps[4])))
	assert.Equal(t, v3(0, 2, 0), s.Position(int(cps[5])))
	assert.False(t, s.Has(ChannelVisibility))
}

func TestAddConditionalLineWithVisibilityFlags(t *testing.T) {
	g := newGroup(&Options{StencilConditionals: true, VisibilityFlags: true})
	g.AddConditionalLine([2]math.Vec3{v3(0, 0, 0), v3(1, 0, 0)}, [2]math.Vec3{v3(0, 1, 0), v3(0, -1, 0)})

	s := g.Store()
	idx := g.Indices(ConditionalLine)
	require.Len(t, idx, 2)
	require.True(t, s.Has(ChannelVisibility))
	for _, i := range idx {
		assert.True(t, s.Vertex(int(i)).Visible)
		// The hidden copy of each endpoint sits right after it.
		hidden := s.Vertex(int(i) + 1)
		assert.False(t, hidden.Visible)
		assert.Equal(t, s.Position(int(i)), hidden.Position)
	}
	for _, cp := range g.ControlPoints() {
		assert.False(t, s.Vertex(int(cp)).Visible)
	}
}

func TestDrawSimpleKinds(t *testing.T) {
	g := newGroup(nil)
	g.AddShape(Quad, line(4), nil, nil)
	g.AddShape(Triangle, line(3), nil, nil)
	g.AddShape(Line, line(2), nil, nil)

	calls := g.Draw()
	require.Len(t, calls, 2)
	assert.Equal(t, Triangle, calls[0].Kind)
	assert.Equal(t, []uint32{4, 5, 6}, calls[0].Indices)
	assert.Equal(t, Quad, calls[1].Kind)
	assert.Equal(t, 4, calls[1].Len())

	lines := g.DrawLines()
	require.Len(t, lines, 1)
	assert.Equal(t, Line, lines[0].Kind)
}

func TestDrawLinesWithJoins(t *testing.T) {
	g := newGroup(&Options{LineJoins: true})
	g.AddShape(Line, line(2), nil, nil)

	calls := g.DrawLines()
	require.Len(t, calls, 2)
	assert.Equal(t, Point, calls[1].Kind)
	assert.Equal(t, calls[0].Indices, calls[1].Indices)
}

func TestDrawStripsSingleAndMultiMatch(t *testing.T) {
	build := func(opts *Options) *ShapeGroup {
		g := newGroup(opts)
		g.AddStrip(TriangleStrip, line(5), upNormals(5), nil)
		g.AddStrip(TriangleStrip, line(3), upNormals(3), nil)
		g.AddStrip(TriangleFan, line(6), upNormals(6), nil)
		return g
	}

	single := build(&Options{}).DrawStrips()
	multi := build(&Options{MultiDraw: true}).DrawStrips()

	require.Len(t, single, 3)
	require.Len(t, multi, 2)

	var fromSingle, fromMulti [][]uint32
	for _, c := range single {
		assert.Nil(t, c.Strips)
		fromSingle = append(fromSingle, c.Indices)
	}
	for _, c := range multi {
		require.NotNil(t, c.Strips)
		assert.Len(t, c.Strips.Counts, len(c.Strips.Views))
		for i, v := range c.Strips.Views {
			assert.Equal(t, int32(len(v)), c.Strips.Counts[i])
			assert.Equal(t, c.Indices[c.Strips.Offsets[i]:c.Strips.Offsets[i]+len(v)], v)
			fromMulti = append(fromMulti, v)
		}
	}
	assert.Equal(t, fromSingle, fromMulti)
	assert.Equal(t, 5, single[1].Offset)
}

func TestMultiDrawCacheInvalidatedOnAdd(t *testing.T) {
	g := newGroup(&Options{MultiDraw: true})
	g.AddStrip(QuadStrip, line(4), upNormals(4), nil)
	require.Len(t, g.DrawStrips()[0].Strips.Views, 1)

	g.AddStrip(QuadStrip, line(6), upNormals(6), nil)
	calls := g.DrawStrips()
	require.Len(t, calls, 1)
	assert.Equal(t, []int32{4, 6}, calls[0].Strips.Counts)
	assert.Equal(t, []int{0, 4}, calls[0].Strips.Offsets)
}

func TestNormalSegments(t *testing.T) {
	g := newGroup(&Options{DrawNormals: true})
	g.AddShape(Triangle, []math.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0)}, upNormals(3), nil)
	g.AddShape(Line, line(2), nil, nil)

	segs := g.NormalSegments()
	require.Len(t, segs, 6)
	assert.Equal(t, v3(0, 0, 0), segs[0])
	assert.InDelta(t, 1.1, segs[1].Z, 1e-6)

	g.Options().DrawNormals = false
	assert.Nil(t, g.NormalSegments())
}

func TestScanPointsAndBounds(t *testing.T) {
	g := newGroup(nil)
	g.AddShape(Triangle, []math.Vec3{v3(0, 0, 0), v3(2, 0, 0), v3(0, 4, 0)}, nil, nil)
	g.AddStrip(TriangleFan, []math.Vec3{v3(0, 0, 1), v3(1, 0, 1), v3(1, 1, 1), v3(0, 1, -3)}, nil, nil)

	var b Bounds
	count := 0
	g.ScanPoints(math.Translate(10, 0, 0), func(p math.Vec3) {
		count++
		b.Add(p)
	})

	assert.Equal(t, 7, count)
	require.True(t, b.OK)
	assert.Equal(t, v3(10, 0, -3), b.Min)
	assert.Equal(t, v3(12, 4, 1), b.Max)
	assert.Equal(t, v3(11, 2, -1), b.Center())
}
