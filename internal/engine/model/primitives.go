package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// Circle is a full circle or an arc in the XZ plane, split into Segments
// equal segments of which the first Used are generated.
type Circle struct {
	Center   math.Vec3
	Radius   float32
	Segments int
	Used     int
}

func (c Circle) used() int {
	if c.Used <= 0 || c.Used > c.Segments {
		return c.Segments
	}
	return c.Used
}

func (c Circle) angle(i int) (sin, cos float32) {
	return math32.Sincos(2 * math32.Pi * float32(i) / float32(c.Segments))
}

// point returns point i at the given radius, lifted by y.
func (c Circle) point(i int, radius, y float32) math.Vec3 {
	s, co := c.angle(i)
	return c.Center.Add(math.Vec3{X: radius * co, Y: y, Z: radius * s})
}

// AddDisc adds a filled disc as a triangle fan around the center.
func (m *Model) AddDisc(section Section, c Circle) {
	n := c.used()
	points := make([]math.Vec3, 0, n+2)
	points = append(points, c.Center)
	for i := 0; i <= n; i++ {
		points = append(points, c.point(i, c.Radius, 0))
	}
	m.AddStrip(section, geometry.TriangleFan, points, nil, nil)
}

// AddCylinder adds the side of a cylinder of the given height as a quad
// strip with smooth radial normals.
func (m *Model) AddCylinder(section Section, c Circle, height float32) {
	m.AddCone(section, c, c.Radius, height)
}

// AddCone adds the side of a truncated cone running from c.Radius at the
// circle to topRadius at height, as a quad strip with smooth normals.
func (m *Model) AddCone(section Section, c Circle, topRadius, height float32) {
	n := c.used()
	points := make([]math.Vec3, 0, 2*(n+1))
	normals := make([]math.Vec3, 0, 2*(n+1))
	slope := float32(0)
	if height != 0 {
		slope = (c.Radius - topRadius) / height
	}
	for i := 0; i <= n; i++ {
		s, co := c.angle(i)
		normal := math.Vec3{X: co, Y: slope, Z: s}.Normalize()
		points = append(points, c.point(i, c.Radius, 0), c.point(i, topRadius, height))
		normals = append(normals, normal, normal)
	}
	m.AddStrip(section, geometry.QuadStrip, points, normals, nil)
}

// AddCircularEdge adds the outline of c as edge lines.
func (m *Model) AddCircularEdge(c Circle) {
	n := c.used()
	for i := 0; i < n; i++ {
		m.AddEdgeLine([2]math.Vec3{c.point(i, c.Radius, 0), c.point(i+1, c.Radius, 0)})
	}
}

// AddConeConditionals adds one conditional line along the side of a cone
// or cylinder at every segment boundary. The control points are the
// neighbouring points on the base circle, so each line shows only where
// the side is seen edge-on.
func (m *Model) AddConeConditionals(c Circle, topRadius, height float32) {
	last := c.used()
	if last == c.Segments {
		// The closing line is the first one.
		last--
	}
	for i := 0; i <= last; i++ {
		m.AddConditionalLine(
			[2]math.Vec3{c.point(i, c.Radius, 0), c.point(i, topRadius, height)},
			[2]math.Vec3{c.point(i-1, c.Radius, 0), c.point(i+1, c.Radius, 0)},
		)
	}
}
