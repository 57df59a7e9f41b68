package model

import (
	"sort"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// TransparentCollector receives the transparent triangles of the tree in
// root coordinates and holds them in one colored group so they can be
// drawn last, optionally sorted back to front.
type TransparentCollector struct {
	main      *MainModel
	triangles []geometry.TransparentTriangle
	group     *geometry.ColoredShapeGroup
	depths    []float32
	order     []int
}

func newTransparentCollector(main *MainModel) *TransparentCollector {
	return &TransparentCollector{main: main}
}

// AddTransparentTriangle implements geometry.TriangleSink.
func (c *TransparentCollector) AddTransparentTriangle(t geometry.TransparentTriangle) {
	c.triangles = append(c.triangles, t)
}

// Len returns the number of collected triangles.
func (c *TransparentCollector) Len() int { return len(c.triangles) }

// Triangles returns the collected triangles in collection order.
func (c *TransparentCollector) Triangles() []geometry.TransparentTriangle { return c.triangles }

// Group returns the group the triangles were stored in, or nil before the
// main model is finished.
func (c *TransparentCollector) Group() *geometry.ColoredShapeGroup { return c.group }

// build stores every collected triangle in the Transparent section of the
// root model. Triangle i uses bucket entries 3i to 3i+2.
func (c *TransparentCollector) build() {
	if len(c.triangles) == 0 {
		return
	}
	root := c.main.Model
	c.group = root.coloredGroup(Transparent)
	for i := range c.triangles {
		t := &c.triangles[i]
		var texCoords []math.Vec2
		if t.Textured {
			texCoords = t.TexCoords[:]
		}
		c.group.AddShape(geometry.Triangle, t.Color, t.Positions[:], t.Normals[:], texCoords)
	}
	root.changed()
}

// DrawCalls returns the draw calls for the transparent triangles seen
// through view. With sorting the triangles are ordered by the depth of
// their centroid, farthest first; otherwise the group is drawn as stored.
func (c *TransparentCollector) DrawCalls(view math.Mat4) []geometry.DrawCall {
	if c.group == nil {
		return nil
	}
	if !c.main.settings.SortTransparent {
		return c.group.Draw()
	}
	n := len(c.triangles)
	if cap(c.depths) < n {
		c.depths = make([]float32, n)
		c.order = make([]int, n)
	}
	c.depths, c.order = c.depths[:n], c.order[:n]
	for i := range c.triangles {
		c.depths[i] = view.TransformPoint(c.triangles[i].Centroid()).Z
		c.order[i] = i
	}
	// Eye space looks down -Z, so the farthest triangle has the lowest Z.
	sort.SliceStable(c.order, func(a, b int) bool {
		return c.depths[c.order[a]] < c.depths[c.order[b]]
	})

	bucket := c.group.Indices(geometry.Triangle)
	indices := make([]uint32, 0, 3*n)
	for _, i := range c.order {
		indices = append(indices, bucket[3*i:3*i+3]...)
	}
	return []geometry.DrawCall{{Kind: geometry.Triangle, Indices: indices, Offset: -1}}
}

// transferTransparent moves every transparent surface of the tree into the
// collector. Plain groups are transferred for each placement whose color
// is transparent and are skipped by the draw list from then on; colored
// groups lose their transparent shapes once every placement has been seen.
func (m *MainModel) transferTransparent() {
	visited := make(map[*Model]bool)
	threshold := m.options.TransparencyThreshold

	var walk func(model *Model, matrix math.Mat4, color geometry.Color)
	walk = func(model *Model, matrix math.Mat4, color geometry.Color) {
		visited[model] = true
		for _, s := range Sections {
			if s.IsLine() || s == Transparent {
				continue
			}
			if g := model.shapes[s]; g != nil && color.IsTransparent(threshold) {
				g.TransferTransparent(color, matrix, m.transparent)
			}
			if g := model.colored[s]; g != nil {
				g.TransferColoredTransparent(matrix, m.transparent)
			}
		}
		for _, sub := range model.subModels {
			subColor, _ := sub.inherit(color, color)
			walk(sub.Model, matrix.Mul(sub.Matrix), subColor)
		}
	}
	walk(m.Model, math.Identity(), m.Color)

	for model := range visited {
		for _, v := range model.variants() {
			for _, s := range Sections {
				if g := v.colored[s]; g != nil && !s.IsLine() && g.HasTransparent() {
					g.CleanupTransparent()
				}
			}
		}
	}
	m.transparent.build()
}
