package loader

import (
	"regexp"
	"strconv"

	"github.com/Faultbox/brickview/internal/engine/model"
)

// primitiveName matches the circle primitives that can be generated:
// n-d disc, edge, cylinder and cone files, optionally hi-res.
var primitiveName = regexp.MustCompile(`^(48/)?(\d+)-(\d+)(disc|edge|cyli|con(\d+))\.dat$`)

// primitive builds a generated stand-in for a circle primitive, or returns
// nil when name is not one or its fraction does not fit the segment count.
func (l *Loader) primitive(name string, stud bool) *model.Model {
	match := primitiveName.FindStringSubmatch(name)
	if match == nil {
		return nil
	}
	segments := l.opts.Segments
	if match[1] != "" {
		segments = 48
	}
	num, _ := strconv.Atoi(match[2])
	den, _ := strconv.Atoi(match[3])
	if num <= 0 || den <= 0 || num > den || segments*num%den != 0 {
		return nil
	}
	circle := model.Circle{Radius: 1, Segments: segments, Used: segments * num / den}

	m := l.main.NewModel(name)
	m.SetStud(stud)
	section := model.SurfaceSection(stud, l.opts.Settings.BFC)
	switch match[4] {
	case "disc":
		m.AddDisc(section, circle)
	case "edge":
		m.AddCircularEdge(circle)
	case "cyli":
		m.AddCylinder(section, circle, 1)
		m.AddConeConditionals(circle, 1, 1)
	default:
		// n-dconK runs from radius K+1 at the base to K one unit up.
		top, _ := strconv.Atoi(match[5])
		circle.Radius = float32(top + 1)
		m.AddCone(section, circle, float32(top), 1)
		m.AddConeConditionals(circle, float32(top), 1)
	}
	l.main.Register(m)
	return m
}
