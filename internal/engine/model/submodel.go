package model

import (
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// SubModel is one placement of a model inside its parent.
type SubModel struct {
	Model  *Model
	Matrix math.Mat4
	// Invert is set when the placement was preceded by BFC INVERTNEXT.
	Invert bool

	color        geometry.Color
	edgeColor    geometry.Color
	colorSet     bool
	edgeColorSet bool
}

// SetColor forces the color and edge color of everything placed below.
func (s *SubModel) SetColor(color, edgeColor geometry.Color) {
	s.color, s.colorSet = color, true
	s.edgeColor, s.edgeColorSet = edgeColor, true
}

// SetEdgeColor forces only the edge color.
func (s *SubModel) SetEdgeColor(edgeColor geometry.Color) {
	s.edgeColor, s.edgeColorSet = edgeColor, true
}

// Color returns the forced color, if any.
func (s *SubModel) Color() (geometry.Color, bool) { return s.color, s.colorSet }

// EdgeColor returns the forced edge color, if any.
func (s *SubModel) EdgeColor() (geometry.Color, bool) { return s.edgeColor, s.edgeColorSet }

// IsMirrored reports whether the placement matrix flips handedness.
func (s *SubModel) IsMirrored() bool {
	return s.Matrix.Determinant3() < 0
}

// inherit resolves the colors seen by the placed model given the colors
// seen by its parent.
func (s *SubModel) inherit(color, edgeColor geometry.Color) (geometry.Color, geometry.Color) {
	if s.colorSet {
		color = s.color
	}
	if s.edgeColorSet {
		edgeColor = s.edgeColor
	}
	return color, edgeColor
}

// resolve returns the variant of the placed model to draw once mirroring
// and inversion along the path are known.
func resolve(m *Model, mirrored, inverted bool) *Model {
	if mirrored {
		m = m.UnMirroredModel()
	}
	if inverted {
		m = m.InvertedModel()
	}
	return m
}
