// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// BoxLineCount is the number of line endpoints of a box outline.
const BoxLineCount = 24

// BoxLines returns the 12 edges of b grown by padding on every side, as
// pairs of line endpoints. Empty bounds give nil.
func BoxLines(b geometry.Bounds, padding float32) []math.Vec3 {
	if !b.OK {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)
	corner := func(i int) math.Vec3 {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}

	lines := make([]math.Vec3, 0, BoxLineCount)
	for i := 0; i < 8; i++ {
		// Each edge joins corners differing in one bit; emit it from the
		// corner where that bit is clear.
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				lines = append(lines, corner(i), corner(i|bit))
			}
		}
	}
	return lines
}
