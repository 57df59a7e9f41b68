package model

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/pkg/math"
)

// Flatten merges the geometry of every model below m into m's own shape
// groups and drops the sub-models. Placements with a forced color land in
// the colored groups with that color; geometry that still inherits its
// color stays in the plain groups.
func (m *Model) Flatten() {
	if m.flattened || len(m.subModels) == 0 {
		m.flattened = true
		return
	}
	start := time.Now()
	for _, sub := range m.subModels {
		color, edgeColor := sub.forcedColors()
		m.flattenSubTree(sub.Model, sub.Matrix, color, edgeColor, sub.Invert)
	}
	m.subModels = nil
	m.flattened = true
	m.forgetVariants()
	m.changed()
	logger.Since("model flattened", start, zap.String("model", m.name))
}

// forcedColors returns pointers to the forced colors of the placement, nil
// where the color is inherited.
func (s *SubModel) forcedColors() (color, edgeColor *geometry.Color) {
	if s.colorSet {
		c := s.color
		color = &c
	}
	if s.edgeColorSet {
		e := s.edgeColor
		edgeColor = &e
	}
	return color, edgeColor
}

func (m *Model) flattenSubTree(src *Model, matrix math.Mat4, color, edgeColor *geometry.Color, inverted bool) {
	src = resolve(src, matrix.Determinant3() < 0, inverted)
	for _, s := range Sections {
		forced := color
		if s == EdgeLines || s == ConditionalLines {
			forced = edgeColor
		}
		if g := src.shapes[s]; g != nil {
			if forced != nil {
				m.coloredGroup(s).Flatten(g, matrix, forced)
			} else {
				m.group(s).Flatten(g, matrix, nil)
			}
		}
		if g := src.colored[s]; g != nil {
			m.coloredGroup(s).Flatten(g.ShapeGroup, matrix, nil)
		}
	}
	for _, sub := range src.subModels {
		subColor, subEdge := sub.forcedColors()
		if subColor == nil {
			subColor = color
		}
		if subEdge == nil {
			subEdge = edgeColor
		}
		m.flattenSubTree(sub.Model, matrix.Mul(sub.Matrix), subColor, subEdge, inverted != sub.Invert)
	}
}

// forgetVariants drops memoized variants built before m changed.
func (m *Model) forgetVariants() {
	for _, v := range [...]*Model{m.unMirrored, m.inverted} {
		if v != nil {
			v.unMirrored, v.inverted = nil, nil
		}
	}
	m.unMirrored, m.inverted = nil, nil
}
