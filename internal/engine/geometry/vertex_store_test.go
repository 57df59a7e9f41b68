package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/pkg/math"
)

func assertStoreLengths(t *testing.T, s *VertexStore) {
	t.Helper()
	n := s.Len()
	assert.Len(t, s.Normals(), n, "normals")
	if s.Has(ChannelTexCoords) {
		assert.Len(t, s.TexCoords(), n, "texcoords")
	}
	if s.Has(ChannelColors) {
		assert.Len(t, s.Colors(), n, "colors")
	}
	if s.Has(ChannelVisibility) {
		assert.Len(t, s.VisibilityFlags(), n, "visibility")
	}
}

func TestVertexStoreAddReturnsFirstIndex(t *testing.T) {
	s := NewVertexStore()

	assert.Equal(t, 0, s.AddVertex(Vertex{Position: math.Vec3{X: 1}}))
	assert.Equal(t, 1, s.AddVertices(VertexData{Positions: make([]math.Vec3, 3)}))
	assert.Equal(t, 4, s.AddVertex(Vertex{}))
	assert.Equal(t, 5, s.Len())
}

func TestVertexStoreChannelsStayAligned(t *testing.T) {
	s := NewVertexStore()
	steps := []func(){
		func() { s.AddVertex(Vertex{Position: math.Vec3{X: 1}}) },
		func() {
			s.AddVertices(VertexData{
				Positions: []math.Vec3{{X: 2}, {X: 3}},
				TexCoords: []math.Vec2{{X: 0.25}, {X: 0.5}},
			})
		},
		func() { s.AddVertex(Vertex{Color: RGBA(1, 2, 3, 4), Channels: ChannelColors}) },
		func() { s.AddVertices(VertexData{Positions: make([]math.Vec3, 4)}) },
		func() { s.AddVertex(Vertex{Visible: false, Channels: ChannelVisibility}) },
		func() { s.AddVertex(Vertex{}) },
	}
	for i, step := range steps {
		step()
		assertStoreLengths(t, s)
		assert.NotZero(t, s.Revision(), "step %d", i)
	}

	assert.Equal(t, ChannelTexCoords|ChannelColors|ChannelVisibility, s.Channels())
}

func TestVertexStoreBackFillDefaults(t *testing.T) {
	s := NewVertexStore()
	s.AddVertex(Vertex{Position: math.Vec3{X: 1}, Normal: math.Vec3{Y: 1}})
	s.AddVertex(Vertex{Visible: false, Channels: ChannelVisibility})
	s.AddVertex(Vertex{Color: 0xFF0000FF, Channels: ChannelColors})

	require.True(t, s.Has(ChannelVisibility|ChannelColors))
	assert.Equal(t, []bool{true, false, true}, s.VisibilityFlags())
	assert.Equal(t, []Color{0, 0, 0xFF0000FF}, s.Colors())
	assert.Nil(t, s.TexCoords())

	v := s.Vertex(0)
	assert.Equal(t, math.Vec3{Y: 1}, v.Normal)
	assert.True(t, v.Visible)
	assert.False(t, s.Vertex(1).Visible)
}

func TestVertexStoreMissingNormalsAreZero(t *testing.T) {
	s := NewVertexStore()
	first := s.AddVertices(VertexData{Positions: []math.Vec3{{X: 1}, {X: 2}}})

	assert.Equal(t, math.Vec3{}, s.Normal(first))
	assert.Equal(t, math.Vec3{X: 2}, s.Position(first+1))
}

func TestVertexStoreMismatchedLengthsPanic(t *testing.T) {
	s := NewVertexStore()
	assert.Panics(t, func() {
		s.AddVertices(VertexData{
			Positions: make([]math.Vec3, 3),
			Normals:   make([]math.Vec3, 2),
		})
	})
	assert.Equal(t, 0, s.Len())
}

func TestVertexStoreDuplicate(t *testing.T) {
	s := NewVertexStore()
	s.AddVertex(Vertex{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		Normal:   math.Vec3{Z: 1},
		TexCoord: math.Vec2{X: 0.25, Y: 0.75},
		Channels: ChannelTexCoords,
	})

	plain := s.duplicate(0, false)
	flipped := s.duplicate(0, true)

	assert.Equal(t, s.Vertex(0), s.Vertex(int(plain)))
	v := s.Vertex(int(flipped))
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, v.Position)
	assert.Equal(t, math.Vec3{Z: -1}, v.Normal)
	assert.Equal(t, math.Vec2{X: 0.75, Y: 0.75}, v.TexCoord)
}
