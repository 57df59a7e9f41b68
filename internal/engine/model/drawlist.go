package model

import (
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// Batch is one shape group placed in the world, with the draw calls to
// submit for it.
type Batch struct {
	Group   *geometry.ShapeGroup
	Section Section
	// Matrix is the model-view matrix of the placement.
	Matrix math.Mat4
	// Color is the inherited color. Colored groups carry their own per
	// vertex and ignore it.
	Color   geometry.Color
	Colored bool
	Calls   []geometry.DrawCall
	// Stencil is the conditional-line stencil pass, drawn before Calls.
	Stencil *geometry.DrawCall
	// Normals holds debug segment endpoints in group coordinates.
	Normals []math.Vec3
}

// DrawList is everything to submit for one frame.
type DrawList struct {
	Batches []Batch
	// Transparent is drawn last, after every opaque batch.
	Transparent *Batch
}

// Len returns the number of draw calls in the list.
func (l *DrawList) Len() int {
	n := 0
	for i := range l.Batches {
		n += len(l.Batches[i].Calls)
	}
	if l.Transparent != nil {
		n += len(l.Transparent.Calls)
	}
	return n
}

type drawState struct {
	matrix    math.Mat4
	color     geometry.Color
	edgeColor geometry.Color
	inverted  bool
}

// DrawList walks the tree and returns the batches for one view.
// Conditional lines are resolved against projection*view every call.
func (m *MainModel) DrawList(view, projection math.Mat4) *DrawList {
	list := &DrawList{}
	m.appendBatches(list, m.Model, drawState{
		matrix:    view,
		color:     m.Color,
		edgeColor: m.EdgeColor,
	}, projection)

	if calls := m.transparent.DrawCalls(view); len(calls) > 0 {
		list.Transparent = &Batch{
			Group:   m.transparent.group.ShapeGroup,
			Section: Transparent,
			Matrix:  view,
			Colored: true,
			Calls:   calls,
		}
	}
	return list
}

func (m *MainModel) appendBatches(list *DrawList, model *Model, st drawState, projection math.Mat4) {
	threshold := m.options.TransparencyThreshold
	drawn := resolve(model, st.matrix.Determinant3() < 0, st.inverted)

	for _, s := range Sections {
		if s == Transparent {
			continue
		}
		color := st.color
		if s == EdgeLines || s == ConditionalLines {
			color = st.edgeColor
		}
		if g := drawn.shapes[s]; g != nil {
			// Transparent surfaces were moved to the collector.
			if s.IsLine() || !color.IsTransparent(threshold) || m.transparent.group == nil {
				list.add(m.batch(g, s, st.matrix, color, false, projection))
			}
		}
		if g := drawn.colored[s]; g != nil {
			list.add(m.batch(g.ShapeGroup, s, st.matrix, color, true, projection))
		}
	}

	for _, sub := range model.subModels {
		color, edgeColor := sub.inherit(st.color, st.edgeColor)
		m.appendBatches(list, sub.Model, drawState{
			matrix:    st.matrix.Mul(sub.Matrix),
			color:     color,
			edgeColor: edgeColor,
			inverted:  st.inverted != sub.Invert,
		}, projection)
	}
}

func (m *MainModel) batch(g *geometry.ShapeGroup, s Section, matrix math.Mat4, color geometry.Color, colored bool, projection math.Mat4) Batch {
	b := Batch{Group: g, Section: s, Matrix: matrix, Color: color, Colored: colored}
	switch s {
	case Lines, EdgeLines:
		b.Calls = g.DrawLines()
	case ConditionalLines:
		cond := g.DrawConditionalLines(projection.Mul(matrix))
		b.Stencil = cond.Stencil
		b.Calls = cond.Lines
	default:
		b.Calls = g.Draw()
	}
	if !s.IsLine() {
		b.Normals = g.NormalSegments()
	}
	return b
}

func (l *DrawList) add(b Batch) {
	if len(b.Calls) == 0 && b.Stencil == nil {
		return
	}
	l.Batches = append(l.Batches, b)
}
