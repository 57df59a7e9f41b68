package model

import (
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// ScanPoints calls fn with every point of the tree below m, transformed by
// matrix.
func (m *Model) ScanPoints(matrix math.Mat4, fn func(p math.Vec3)) {
	m.groups(func(_ Section, g *geometry.ShapeGroup, _ *geometry.ColoredShapeGroup) {
		g.ScanPoints(matrix, fn)
	})
	for _, sub := range m.subModels {
		sub.Model.ScanPoints(matrix.Mul(sub.Matrix), fn)
	}
}

// Bounds returns the bounding box of the tree below m in m's coordinates.
// The result is cached until m changes; changes to sub-models after the
// first call are not seen.
func (m *Model) Bounds() geometry.Bounds {
	if m.scanned {
		return m.bounds
	}
	var b geometry.Bounds
	m.ScanPoints(math.Identity(), b.Add)
	m.bounds, m.scanned = b, true
	return b
}

// ShapeCount returns the number of shapes of kind k in m's own groups.
func (m *Model) ShapeCount(k geometry.Kind) int {
	n := 0
	m.groups(func(_ Section, g *geometry.ShapeGroup, _ *geometry.ColoredShapeGroup) {
		n += g.ShapeCount(k)
	})
	return n
}

// Stats summarizes the geometry reachable from a model, counting each
// placement.
type Stats struct {
	Models       int
	Placements   int
	Shapes       map[geometry.Kind]int
	Conditionals int
}

// Stats walks the tree below m.
func (m *Model) Stats() Stats {
	st := Stats{Shapes: make(map[geometry.Kind]int)}
	seen := make(map[*Model]bool)
	var walk func(*Model)
	walk = func(model *Model) {
		if !seen[model] {
			seen[model] = true
			st.Models++
		}
		for _, k := range geometry.Kinds {
			if n := model.ShapeCount(k); n > 0 {
				st.Shapes[k] += n
			}
		}
		for _, sub := range model.subModels {
			st.Placements++
			walk(sub.Model)
		}
	}
	walk(m)
	st.Conditionals = st.Shapes[geometry.ConditionalLine]
	return st
}
