package geometry

import (
	"fmt"

	"github.com/Faultbox/brickview/pkg/math"
)

type bucket struct {
	indices []uint32
	// counts holds the per-strip vertex counts; nil for simple kinds.
	counts []int
}

// ShapeGroup buckets shapes by primitive kind. Its index arrays point into
// a VertexStore that may be shared with other groups.
type ShapeGroup struct {
	store   *VertexStore
	options *Options

	buckets [kindCount]*bucket
	// order holds kinds in the order they were first added; a kind's
	// position in it is its dense index and never changes.
	order   []Kind
	present Kind

	// controlPoints pairs entry for entry with the ConditionalLine bucket.
	controlPoints []uint32
	// hiddenCopies is set when each conditional endpoint is followed by a
	// copy with its visibility flag clear. The first conditional line fixes
	// it for the life of the group.
	hiddenCopies bool

	// multi caches per-strip index views, indexed by dense index.
	multi [][]stripView
}

// NewShapeGroup returns an empty group bound to store. A nil options value
// selects DefaultOptions.
func NewShapeGroup(store *VertexStore, options *Options) *ShapeGroup {
	if options == nil {
		options = DefaultOptions()
	}
	return &ShapeGroup{store: store, options: options}
}

// Store returns the bound vertex store.
func (g *ShapeGroup) Store() *VertexStore { return g.store }

// Options returns the shared options.
func (g *ShapeGroup) Options() *Options { return g.options }

// Present returns the set of kinds that have a bucket.
func (g *ShapeGroup) Present() Kind { return g.present }

// Has reports whether kind k has a bucket.
func (g *ShapeGroup) Has(k Kind) bool { return g.present&k != 0 }

// IsEmpty reports whether no bucket holds any index.
func (g *ShapeGroup) IsEmpty() bool {
	for _, k := range g.order {
		if len(g.buckets[k.slot()].indices) > 0 {
			return false
		}
	}
	return true
}

// DenseIndex returns the stable position of kind k among the group's
// buckets, or -1 if k has never been added.
func (g *ShapeGroup) DenseIndex(k Kind) int {
	for i, o := range g.order {
		if o == k {
			return i
		}
	}
	return -1
}

// Indices returns the index bucket for kind k, or nil.
func (g *ShapeGroup) Indices(k Kind) []uint32 {
	if b := g.buckets[k.slot()]; b != nil {
		return b.indices
	}
	return nil
}

// StripCounts returns the per-strip vertex counts for strip kind k, or nil.
func (g *ShapeGroup) StripCounts(k Kind) []int {
	if b := g.buckets[k.slot()]; b != nil {
		return b.counts
	}
	return nil
}

// ControlPoints returns the conditional-line control point indices.
func (g *ShapeGroup) ControlPoints() []uint32 {
	return g.controlPoints
}

func (g *ShapeGroup) bucketFor(k Kind, create bool) *bucket {
	b := g.buckets[k.slot()]
	if b == nil && create {
		b = &bucket{}
		if k.IsStrip() {
			b.counts = []int{}
		}
		g.buckets[k.slot()] = b
		g.order = append(g.order, k)
		g.present |= k
	}
	return b
}

// conditionalLayout returns how conditional endpoints are stored. It reads
// the options only while the group holds no conditional line.
func (g *ShapeGroup) conditionalLayout() bool {
	if b := g.buckets[ConditionalLine.slot()]; b == nil || len(b.indices) == 0 {
		g.hiddenCopies = g.options.hardwareConditionals()
	}
	return g.hiddenCopies
}

func (g *ShapeGroup) invalidate() {
	g.multi = nil
}

func (g *ShapeGroup) addIndices(k Kind, first, count int) {
	b := g.bucketFor(k, true)
	for i := 0; i < count; i++ {
		b.indices = append(b.indices, uint32(first+i))
	}
	g.invalidate()
}

func (g *ShapeGroup) addStripCount(k Kind, count int) {
	b := g.bucketFor(k, true)
	b.counts = append(b.counts, count)
	g.invalidate()
}

// AddShape stores one simple shape and returns the index of its first
// vertex. normals and texCoords may be nil. Passing the wrong number of
// vertices for the kind panics.
func (g *ShapeGroup) AddShape(k Kind, positions, normals []math.Vec3, texCoords []math.Vec2) int {
	return g.addShape(k, VertexData{Positions: positions, Normals: normals, TexCoords: texCoords})
}

func (g *ShapeGroup) addShape(k Kind, d VertexData) int {
	if k.IsStrip() || k == ConditionalLine {
		panic(fmt.Sprintf("geometry: AddShape called with %s", k))
	}
	if len(d.Positions) != k.Arity() {
		panic(fmt.Sprintf("geometry: %s needs %d vertices, got %d", k, k.Arity(), len(d.Positions)))
	}
	index := g.store.AddVertices(d)
	g.addIndices(k, index, len(d.Positions))
	return index
}

// AddStrip stores one strip or fan and returns the index of its first
// vertex.
func (g *ShapeGroup) AddStrip(k Kind, positions, normals []math.Vec3, texCoords []math.Vec2) int {
	return g.addStrip(k, VertexData{Positions: positions, Normals: normals, TexCoords: texCoords})
}

func (g *ShapeGroup) addStrip(k Kind, d VertexData) int {
	if !k.IsStrip() {
		panic(fmt.Sprintf("geometry: AddStrip called with %s", k))
	}
	index := g.store.AddVertices(d)
	g.addStripCount(k, len(d.Positions))
	g.addIndices(k, index, len(d.Positions))
	return index
}

// AddConditionalLine stores the edge p[0]-p[1] with its two control points
// and returns the index of the last endpoint vertex added.
func (g *ShapeGroup) AddConditionalLine(p, controlPoints [2]math.Vec3) int {
	return g.addConditionalLine(p, controlPoints, nil)
}

func (g *ShapeGroup) addConditionalLine(p, controlPoints [2]math.Vec3, color *Color) int {
	vertex := func(pos math.Vec3, visible bool) Vertex {
		v := Vertex{Position: pos, Visible: visible}
		if !visible {
			v.Channels |= ChannelVisibility
		}
		if color != nil {
			v.Color = *color
			v.Channels |= ChannelColors
		}
		return v
	}

	hw := g.conditionalLayout()
	if hw {
		g.store.Activate(ChannelVisibility)
	}
	// With edge flags, control points are never drawn as line ends.
	cp := g.store.AddVertex(vertex(controlPoints[0], !hw))
	g.store.AddVertex(vertex(controlPoints[1], !hw))
	g.controlPoints = append(g.controlPoints, uint32(cp), uint32(cp+1))

	var index int
	if hw {
		// Each endpoint is followed by a hidden copy, reached as index+1.
		for _, pos := range p {
			index = g.store.AddVertex(vertex(pos, true))
			g.addIndices(ConditionalLine, index, 1)
			g.store.AddVertex(vertex(pos, false))
		}
	} else {
		index = g.store.AddVertex(vertex(p[0], true))
		g.store.AddVertex(vertex(p[1], true))
		g.addIndices(ConditionalLine, index, 2)
		index++
	}
	return index
}
