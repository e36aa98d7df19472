package camera

import "github.com/Faultbox/skyscene/pkg/math"

// Zoom moves the eye toward the target by delta times their distance.
// Orthographic cameras shrink their view width instead.
func Zoom(c Camera, delta float32) {
	if o, ok := c.(*Ortho); ok {
		o.Scale *= 1 - delta
		return
	}
	gaze := c.Target().Sub(c.Eye())
	c.SetEye(c.Eye().Add(gaze.Scale(delta)))
}

// Translate moves eye and target together.
func Translate(c Camera, delta math.Vec3) {
	c.SetEye(c.Eye().Add(delta))
	c.SetTarget(c.Target().Add(delta))
}

// Dolly moves eye and target along the gaze by d times its length.
func Dolly(c Camera, d float32) {
	Translate(c, c.Target().Sub(c.Eye()).Scale(d))
}

// Pan moves eye and target within the view plane.
func Pan(c Camera, dx, dy float32) {
	Translate(c, c.Right().Scale(dx).Add(c.Vertical().Scale(dy)))
}

// Orbit rotates the eye about the target: dx radians around the vertical
// axis, then dy radians around the right axis.
func Orbit(c Camera, dx, dy float32) {
	t := c.Target()
	rot := math.Translate(t).
		Mul(math.RotateAxis(c.Vertical().Normalize(), dx)).
		Mul(math.RotateAxis(c.Right(), dy)).
		Mul(math.Translate(t.Neg()))
	c.SetEye(rot.TransformPoint(c.Eye()))
}

// Button identifies the mouse button of a drag.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Controller maps mouse input onto a camera: wheel zooms, left drag orbits
// and right drag pans.
type Controller struct {
	Camera Camera

	ZoomSensitivity  float32 // per wheel unit
	OrbitSensitivity float32 // radians per pixel
	PanSensitivity   float32 // per pixel, times the eye-target distance
}

// NewController returns a controller with the default sensitivities.
func NewController(c Camera) *Controller {
	return &Controller{
		Camera:           c,
		ZoomSensitivity:  0.01,
		OrbitSensitivity: 0.01,
		PanSensitivity:   0.0005,
	}
}

// HandleZoom applies a wheel movement.
func (ctl *Controller) HandleZoom(wheelY float32) {
	Zoom(ctl.Camera, wheelY*ctl.ZoomSensitivity)
}

// HandleDrag applies a mouse drag of (dx, dy) pixels with button held.
func (ctl *Controller) HandleDrag(button Button, dx, dy float32) {
	switch button {
	case ButtonLeft:
		Orbit(ctl.Camera, dx*ctl.OrbitSensitivity, dy*ctl.OrbitSensitivity)
	case ButtonRight:
		scale := ctl.Camera.Eye().Distance(ctl.Camera.Target()) * ctl.PanSensitivity
		Pan(ctl.Camera, -dx*scale, dy*scale)
	}
}
