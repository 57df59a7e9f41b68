package model

import (
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// Model is one node of the model tree: the geometry of one LDraw file plus
// the placements of the files it references.
type Model struct {
	name string
	main *MainModel

	shapes    [sectionCount]*geometry.ShapeGroup
	colored   [sectionCount]*geometry.ColoredShapeGroup
	subModels []*SubModel

	unMirrored *Model
	inverted   *Model

	part      bool
	stud      bool
	flattened bool

	bounds  geometry.Bounds
	scanned bool
}

// Name returns the file name the model was loaded from.
func (m *Model) Name() string { return m.name }

// Main returns the main model that owns m.
func (m *Model) Main() *MainModel { return m.main }

// SetPart marks the model as an official part.
func (m *Model) SetPart(part bool) { m.part = part }

// IsPart reports whether the model is a part.
func (m *Model) IsPart() bool { return m.part }

// SetStud marks the model as stud geometry.
func (m *Model) SetStud(stud bool) { m.stud = stud }

// IsStud reports whether the model holds stud geometry.
func (m *Model) IsStud() bool { return m.stud }

// IsFlattened reports whether Flatten has merged the sub-tree into m.
func (m *Model) IsFlattened() bool { return m.flattened }

// Shapes returns the plain shape group of a section, or nil.
func (m *Model) Shapes(section Section) *geometry.ShapeGroup {
	return m.shapes[section]
}

// ColoredShapes returns the colored shape group of a section, or nil.
func (m *Model) ColoredShapes(section Section) *geometry.ColoredShapeGroup {
	return m.colored[section]
}

// SubModels returns the placements of the models m references.
func (m *Model) SubModels() []*SubModel { return m.subModels }

// IsEmpty reports whether m has neither geometry nor sub-models.
func (m *Model) IsEmpty() bool {
	if len(m.subModels) > 0 {
		return false
	}
	for _, s := range Sections {
		if g := m.shapes[s]; g != nil && !g.IsEmpty() {
			return false
		}
		if g := m.colored[s]; g != nil && !g.IsEmpty() {
			return false
		}
	}
	return true
}

func (m *Model) group(section Section) *geometry.ShapeGroup {
	if m.shapes[section] == nil {
		m.shapes[section] = geometry.NewShapeGroup(m.main.store(section, false), m.main.options)
	}
	return m.shapes[section]
}

func (m *Model) coloredGroup(section Section) *geometry.ColoredShapeGroup {
	if m.colored[section] == nil {
		m.colored[section] = geometry.NewColoredShapeGroup(m.main.store(section, true), m.main.options)
	}
	return m.colored[section]
}

func (m *Model) changed() {
	m.scanned = false
}

// AddSubModel places child under matrix. The child inherits the color of
// the placement.
func (m *Model) AddSubModel(matrix math.Mat4, child *Model, invert bool) *SubModel {
	sub := &SubModel{Model: child, Matrix: matrix, Invert: invert}
	m.subModels = append(m.subModels, sub)
	m.changed()
	return sub
}

// AddColoredSubModel places child under matrix with a forced color and
// edge color.
func (m *Model) AddColoredSubModel(color, edgeColor geometry.Color, matrix math.Mat4, child *Model, invert bool) *SubModel {
	sub := m.AddSubModel(matrix, child, invert)
	sub.SetColor(color, edgeColor)
	return sub
}

// AddLine adds a line drawn in the inherited color.
func (m *Model) AddLine(p [2]math.Vec3) {
	m.group(Lines).AddShape(geometry.Line, p[:], nil, nil)
	m.changed()
}

// AddColoredLine adds a line with its own color.
func (m *Model) AddColoredLine(color geometry.Color, p [2]math.Vec3) {
	m.coloredGroup(Lines).AddShape(geometry.Line, color, p[:], nil, nil)
	m.changed()
}

// AddEdgeLine adds a line drawn in the inherited edge color.
func (m *Model) AddEdgeLine(p [2]math.Vec3) {
	m.group(EdgeLines).AddShape(geometry.Line, p[:], nil, nil)
	m.changed()
}

// AddColoredEdgeLine adds an edge line with its own color.
func (m *Model) AddColoredEdgeLine(color geometry.Color, p [2]math.Vec3) {
	m.coloredGroup(EdgeLines).AddShape(geometry.Line, color, p[:], nil, nil)
	m.changed()
}

// AddConditionalLine adds an optional line with its two control points,
// drawn in the inherited edge color.
func (m *Model) AddConditionalLine(p, controlPoints [2]math.Vec3) {
	m.group(ConditionalLines).AddConditionalLine(p, controlPoints)
	m.changed()
}

// AddColoredConditionalLine adds an optional line with its own color.
func (m *Model) AddColoredConditionalLine(color geometry.Color, p, controlPoints [2]math.Vec3) {
	m.coloredGroup(ConditionalLines).AddConditionalLine(color, p, controlPoints)
	m.changed()
}

// AddTriangle adds a flat-shaded triangle to a surface section.
func (m *Model) AddTriangle(section Section, p [3]math.Vec3) {
	m.group(section).AddShape(geometry.Triangle, p[:], flatNormals(p[:]), nil)
	m.changed()
}

// AddColoredTriangle adds a flat-shaded triangle with its own color.
func (m *Model) AddColoredTriangle(section Section, color geometry.Color, p [3]math.Vec3) {
	m.coloredGroup(section).AddShape(geometry.Triangle, color, p[:], flatNormals(p[:]), nil)
	m.changed()
}

// AddQuad adds a flat-shaded quad to a surface section.
func (m *Model) AddQuad(section Section, p [4]math.Vec3) {
	m.group(section).AddShape(geometry.Quad, p[:], flatNormals(p[:]), nil)
	m.changed()
}

// AddColoredQuad adds a flat-shaded quad with its own color.
func (m *Model) AddColoredQuad(section Section, color geometry.Color, p [4]math.Vec3) {
	m.coloredGroup(section).AddShape(geometry.Quad, color, p[:], flatNormals(p[:]), nil)
	m.changed()
}

// AddStrip adds a triangle strip, quad strip or fan to a surface section.
// Nil normals are computed per strip from its first three points.
func (m *Model) AddStrip(section Section, k geometry.Kind, p, normals []math.Vec3, texCoords []math.Vec2) {
	if normals == nil {
		normals = flatNormals(p)
	}
	m.group(section).AddStrip(k, p, normals, texCoords)
	m.changed()
}

// AddColoredStrip adds a strip or fan with its own color.
func (m *Model) AddColoredStrip(section Section, k geometry.Kind, color geometry.Color, p, normals []math.Vec3) {
	if normals == nil {
		normals = flatNormals(p)
	}
	m.coloredGroup(section).AddStrip(k, color, p, normals, nil)
	m.changed()
}

// faceNormal returns the unit normal of the plane through a, b and c, or
// the zero vector for a degenerate face.
func faceNormal(a, b, c math.Vec3) math.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < 1e-5 {
		return math.Vec3{}
	}
	return n.Normalize()
}

// flatNormals repeats the face normal of the first three points.
func flatNormals(p []math.Vec3) []math.Vec3 {
	normals := make([]math.Vec3, len(p))
	if len(p) < 3 {
		return normals
	}
	n := faceNormal(p[0], p[1], p[2])
	for i := range normals {
		normals[i] = n
	}
	return normals
}
