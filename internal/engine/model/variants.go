package model

import "github.com/Faultbox/brickview/internal/engine/geometry"

// UnMirroredModel returns the variant of m to draw under a matrix with a
// negative determinant: every surface has its winding reversed so that the
// mirrored placement keeps its front faces. The variant is built once and
// shares the sub-model list of m. The un-mirrored variant of the variant
// is m itself.
func (m *Model) UnMirroredModel() *Model {
	if m.unMirrored != nil {
		return m.unMirrored
	}
	v := m.variant()
	for _, s := range Sections {
		if s.IsLine() {
			continue
		}
		if g := m.shapes[s]; g != nil {
			v.shapes[s] = g.Copy()
			v.shapes[s].UnMirror()
		}
		if g := m.colored[s]; g != nil {
			v.colored[s] = g.Copy()
			v.colored[s].UnMirror()
		}
	}
	v.unMirrored = m
	m.unMirrored = v
	return v
}

// InvertedModel returns the variant of m placed after BFC INVERTNEXT: the
// BFC sections face the other way. Sections without BFC are shared with m.
// The inverted variant of the variant is m itself.
func (m *Model) InvertedModel() *Model {
	if m.inverted != nil {
		return m.inverted
	}
	v := m.variant()
	for _, s := range [...]Section{BFC, StudBFC} {
		if g := m.shapes[s]; g != nil {
			v.shapes[s] = g.Copy()
			v.shapes[s].Invert()
		}
		if g := m.colored[s]; g != nil {
			v.colored[s] = g.Copy()
			v.colored[s].Invert()
		}
	}
	v.inverted = m
	m.inverted = v
	return v
}

// variant returns a model sharing everything with m.
func (m *Model) variant() *Model {
	return &Model{
		name:      m.name,
		main:      m.main,
		shapes:    m.shapes,
		colored:   m.colored,
		subModels: m.subModels,
		part:      m.part,
		stud:      m.stud,
		flattened: m.flattened,
	}
}

// variants lists m and every variant reachable from it, including variants
// built on other variants.
func (m *Model) variants() []*Model {
	seen := make(map[*Model]bool)
	var out []*Model
	var walk func(v *Model)
	walk = func(v *Model) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
		walk(v.unMirrored)
		walk(v.inverted)
	}
	walk(m)
	return out
}

// groups calls fn for every shape group of m, plain and colored.
func (m *Model) groups(fn func(s Section, g *geometry.ShapeGroup, colored *geometry.ColoredShapeGroup)) {
	for _, s := range Sections {
		if g := m.shapes[s]; g != nil {
			fn(s, g, nil)
		}
		if g := m.colored[s]; g != nil {
			fn(s, g.ShapeGroup, g)
		}
	}
}
