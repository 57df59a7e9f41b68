package geometry

import "fmt"

// DefaultTransparencyThreshold is the alpha below which a color is drawn
// through the transparent-triangle path.
const DefaultTransparencyThreshold = 240

// Color is a packed 0xRRGGBBAA color.
type Color uint32

// RGBA packs four components into a Color.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// Components unpacks the color.
func (c Color) Components() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Alpha returns the alpha component.
func (c Color) Alpha() uint8 {
	return uint8(c)
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	return c&^0xFF | Color(a)
}

// IsTransparent reports whether the alpha is below threshold.
func (c Color) IsTransparent(threshold uint8) bool {
	return c.Alpha() < threshold
}

// Floats returns the components scaled to [0, 1].
func (c Color) Floats() [4]float32 {
	r, g, b, a := c.Components()
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}
