package geometry

import (
	"fmt"

	"github.com/Faultbox/brickview/pkg/math"
)

// Channels is a set of optional per-vertex arrays.
type Channels uint8

// Optional vertex channels. Positions and normals are always present.
const (
	ChannelTexCoords Channels = 1 << iota
	ChannelColors
	ChannelVisibility
)

// Vertex is one vertex record. Only the optional fields named in Channels
// carry data; the rest are filled with defaults when stored.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
	Color    Color
	Visible  bool
	Channels Channels
}

// VertexData is the bulk form accepted by AddVertices. Nil optional slices
// mean "not supplied"; non-nil slices must match len(Positions).
type VertexData struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Colors    []Color
	Visible   []bool
}

// VertexStore holds parallel vertex arrays. It only grows: indices handed
// out by AddVertex and AddVertices stay valid for the store's lifetime.
//
// Invariant: every active array has the same length.
type VertexStore struct {
	positions []math.Vec3
	normals   []math.Vec3
	texCoords []math.Vec2
	colors    []Color
	visible   []bool

	channels Channels
	revision uint64
}

// NewVertexStore returns an empty store with no optional channels.
func NewVertexStore() *VertexStore {
	return &VertexStore{}
}

// Len returns the number of vertices.
func (s *VertexStore) Len() int {
	return len(s.positions)
}

// Channels returns the active optional channels.
func (s *VertexStore) Channels() Channels {
	return s.channels
}

// Has reports whether every channel in c is active.
func (s *VertexStore) Has(c Channels) bool {
	return s.channels&c == c
}

// Revision changes every time the store is mutated.
func (s *VertexStore) Revision() uint64 {
	return s.revision
}

// Activate creates the given channels, back-filling defaults for the
// vertices already stored.
func (s *VertexStore) Activate(c Channels) {
	missing := c &^ s.channels
	if missing == 0 {
		return
	}
	n := len(s.positions)
	if missing&ChannelTexCoords != 0 {
		s.texCoords = make([]math.Vec2, n, max(n, 16))
	}
	if missing&ChannelColors != 0 {
		s.colors = make([]Color, n, max(n, 16))
	}
	if missing&ChannelVisibility != 0 {
		s.visible = make([]bool, n, max(n, 16))
		for i := range s.visible {
			s.visible[i] = true
		}
	}
	s.channels |= missing
	s.revision++
}

// AddVertex appends one vertex and returns its index.
func (s *VertexStore) AddVertex(v Vertex) int {
	s.Activate(v.Channels)
	index := len(s.positions)
	s.positions = append(s.positions, v.Position)
	s.normals = append(s.normals, v.Normal)
	if s.channels&ChannelTexCoords != 0 {
		var tc math.Vec2
		if v.Channels&ChannelTexCoords != 0 {
			tc = v.TexCoord
		}
		s.texCoords = append(s.texCoords, tc)
	}
	if s.channels&ChannelColors != 0 {
		var c Color
		if v.Channels&ChannelColors != 0 {
			c = v.Color
		}
		s.colors = append(s.colors, c)
	}
	if s.channels&ChannelVisibility != 0 {
		s.visible = append(s.visible, v.Channels&ChannelVisibility == 0 || v.Visible)
	}
	s.revision++
	return index
}

// AddVertices appends len(d.Positions) vertices and returns the index of
// the first one.
func (s *VertexStore) AddVertices(d VertexData) int {
	n := len(d.Positions)
	var supplied Channels
	if d.TexCoords != nil {
		supplied |= ChannelTexCoords
	}
	if d.Colors != nil {
		supplied |= ChannelColors
	}
	if d.Visible != nil {
		supplied |= ChannelVisibility
	}
	if err := d.check(); err != nil {
		panic(err)
	}
	s.Activate(supplied)

	first := len(s.positions)
	s.positions = append(s.positions, d.Positions...)
	if d.Normals != nil {
		s.normals = append(s.normals, d.Normals...)
	} else {
		s.normals = append(s.normals, make([]math.Vec3, n)...)
	}
	if s.channels&ChannelTexCoords != 0 {
		if d.TexCoords != nil {
			s.texCoords = append(s.texCoords, d.TexCoords...)
		} else {
			s.texCoords = append(s.texCoords, make([]math.Vec2, n)...)
		}
	}
	if s.channels&ChannelColors != 0 {
		if d.Colors != nil {
			s.colors = append(s.colors, d.Colors...)
		} else {
			s.colors = append(s.colors, make([]Color, n)...)
		}
	}
	if s.channels&ChannelVisibility != 0 {
		if d.Visible != nil {
			s.visible = append(s.visible, d.Visible...)
		} else {
			for i := 0; i < n; i++ {
				s.visible = append(s.visible, true)
			}
		}
	}
	s.revision++
	return first
}

func (d VertexData) check() error {
	n := len(d.Positions)
	if d.Normals != nil && len(d.Normals) != n {
		return fmt.Errorf("geometry: %d normals for %d positions", len(d.Normals), n)
	}
	if d.TexCoords != nil && len(d.TexCoords) != n {
		return fmt.Errorf("geometry: %d texture coordinates for %d positions", len(d.TexCoords), n)
	}
	if d.Colors != nil && len(d.Colors) != n {
		return fmt.Errorf("geometry: %d colors for %d positions", len(d.Colors), n)
	}
	if d.Visible != nil && len(d.Visible) != n {
		return fmt.Errorf("geometry: %d visibility flags for %d positions", len(d.Visible), n)
	}
	return nil
}

// Vertex returns a copy of the vertex at index i, tagged with the store's
// active channels.
func (s *VertexStore) Vertex(i int) Vertex {
	v := Vertex{
		Position: s.positions[i],
		Normal:   s.normals[i],
		Visible:  true,
		Channels: s.channels,
	}
	if s.channels&ChannelTexCoords != 0 {
		v.TexCoord = s.texCoords[i]
	}
	if s.channels&ChannelColors != 0 {
		v.Color = s.colors[i]
	}
	if s.channels&ChannelVisibility != 0 {
		v.Visible = s.visible[i]
	}
	return v
}

// Position returns the position of vertex i.
func (s *VertexStore) Position(i int) math.Vec3 { return s.positions[i] }

// Normal returns the normal of vertex i.
func (s *VertexStore) Normal(i int) math.Vec3 { return s.normals[i] }

// Positions returns the position array. Callers must not modify it.
func (s *VertexStore) Positions() []math.Vec3 { return s.positions }

// Normals returns the normal array. Callers must not modify it.
func (s *VertexStore) Normals() []math.Vec3 { return s.normals }

// TexCoords returns the texture coordinate array, or nil if inactive.
func (s *VertexStore) TexCoords() []math.Vec2 { return s.texCoords }

// Colors returns the color array, or nil if inactive.
func (s *VertexStore) Colors() []Color { return s.colors }

// VisibilityFlags returns the visibility array, or nil if inactive.
func (s *VertexStore) VisibilityFlags() []bool { return s.visible }

func (s *VertexStore) mirrorTexCoord(i int) {
	if s.texCoords == nil {
		return
	}
	s.texCoords[i].X = 1 - s.texCoords[i].X
	s.revision++
}

// duplicate appends a copy of vertex i, with its normal negated when flip
// is set, and returns the new index. Flipping also mirrors texture U.
func (s *VertexStore) duplicate(i int, flip bool) uint32 {
	v := s.Vertex(i)
	if flip {
		v.Normal = v.Normal.Neg()
		v.TexCoord.X = 1 - v.TexCoord.X
	}
	return uint32(s.AddVertex(v))
}
