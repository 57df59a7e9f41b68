// Package camera provides the orbit camera of the model viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/pkg/math"
)

// ldrawToGL turns LDraw's -Y up, -Z front axes into GL's +Y up with the
// front facing the viewer.
var ldrawToGL = math.Scale(1, -1, -1)

var (
	axisX = math.Vec3{X: 1}
	axisY = math.Vec3{Y: 1}
)

// OrbitCamera turns a model around its center. The model rotation is a
// quaternion so that drags never lock up at the poles.
type OrbitCamera struct {
	// Center point to orbit around, in model coordinates
	Center math.Vec3

	Distance float32
	Rotation math.Quat

	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32

	MinDistance float32
	MaxDistance float32

	DragSensitivity float32
	ZoomSensitivity float32

	// radius of the fitted bounds, used for the clip planes
	radius float32
}

// DefaultRotation is the three-quarter view a model opens with.
func DefaultRotation() math.Quat {
	return math.QuatFromAxisAngle(axisX, math32.Pi/6).Mul(math.QuatFromAxisAngle(axisY, math32.Pi/4))
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        400,
		Rotation:        DefaultRotation(),
		FieldOfView:     45,
		MinDistance:     1,
		MaxDistance:     1e6,
		DragSensitivity: 0.01,
		ZoomSensitivity: 0.1,
		radius:          100,
	}
}

// orientation is the rotation part of the view matrix.
func (c *OrbitCamera) orientation() math.Mat4 {
	return c.Rotation.ToMat4().Mul(ldrawToGL)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.Translate(0, 0, -c.Distance).
		Mul(c.orientation()).
		Mul(math.Translate(-c.Center.X, -c.Center.Y, -c.Center.Z))
}

// ProjectionMatrix returns the perspective projection for the given
// aspect ratio. The clip planes hug the fitted bounds.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	near := c.Distance - 2*c.radius
	if min := c.Distance * 0.01; near < min {
		near = min
	}
	far := c.Distance + 2*c.radius
	return math.Perspective(c.FieldOfView*math32.Pi/180, aspect, near, far)
}

// Position returns the eye position in model coordinates.
func (c *OrbitCamera) Position() math.Vec3 {
	back := c.orientation().Transpose().TransformDirection(math.Vec3{Z: 1})
	return c.Center.Add(back.Scale(c.Distance))
}

// HandleDrag turns the model by a mouse drag in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	turn := math.QuatFromAxisAngle(axisY, deltaX*c.DragSensitivity).
		Mul(math.QuatFromAxisAngle(axisX, deltaY*c.DragSensitivity))
	c.Rotation = turn.Mul(c.Rotation).Normalize()
}

// HandlePan moves the center in the view plane by a drag in pixels.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	inv := c.orientation().Transpose()
	right := inv.TransformDirection(axisX)
	up := inv.TransformDirection(axisY)
	speed := c.Distance * 0.002
	c.Center = c.Center.Sub(right.Scale(deltaX * speed)).Add(up.Scale(deltaY * speed))
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centers the camera on b and backs off until the bounding
// sphere fills the view. Empty bounds leave the camera unchanged.
func (c *OrbitCamera) FitToBounds(b geometry.Bounds) {
	if !b.OK {
		return
	}
	c.Center = b.Center()
	c.radius = b.Size().Length() / 2
	if c.radius < 1 {
		c.radius = 1
	}
	c.Distance = c.radius / math32.Sin(c.FieldOfView*math32.Pi/360)
	c.MinDistance = c.radius * 0.05
	c.MaxDistance = c.Distance * 20
}

// Reset restores the default rotation and refits b.
func (c *OrbitCamera) Reset(b geometry.Bounds) {
	c.Rotation = DefaultRotation()
	c.FitToBounds(b)
}
