// Package camera provides the viewing cameras and the mouse controller that
// moves them.
package camera

import (
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Camera is what the render passes and controllers need from a camera.
type Camera interface {
	View() math.Mat4
	Projection() math.Mat4
	Eye() math.Vec3
	Target() math.Vec3
	// Vertical is the up hint the view frame is built from.
	Vertical() math.Vec3
	// Right and Up are the orthonormal screen axes in world space.
	Right() math.Vec3
	Up() math.Vec3
	SetEye(math.Vec3)
	SetTarget(math.Vec3)
	SetAspect(float32)
	Near() float32
	Far() float32
}

// frame is the pose shared by every camera variant.
type frame struct {
	eye, target, vertical math.Vec3
	aspect, near, far     float32
}

func (f *frame) Eye() math.Vec3 { return f.eye }
func (f *frame) Target() math.Vec3 { return f.target }
func (f *frame) Vertical() math.Vec3 { return f.vertical }
func (f *frame) SetEye(e math.Vec3) { f.eye = e }
func (f *frame) SetTarget(t math.Vec3) { f.target = t }
func (f *frame) SetAspect(a float32) { f.aspect = a }
func (f *frame) Near() float32 { return f.near }
func (f *frame) Far() float32 { return f.far }
func (f *frame) View() math.Mat4 { return math.LookAt(f.eye, f.target, f.vertical) }
func (f *frame) negGaze() math.Vec3 { return f.eye.Sub(f.target).Normalize() }
func (f *frame) Right() math.Vec3 { return f.vertical.Cross(f.negGaze()).Normalize() }
func (f *frame) Up() math.Vec3 { return f.negGaze().Cross(f.Right()) }
func (f *frame) Distance() float32 { return f.eye.Distance(f.target) }
func (f *frame) Gaze() math.Vec3 { return f.target.Sub(f.eye) }

// Perspective is a pinhole camera.
type Perspective struct {
	frame
	FovY float32 // radians
}

// NewPerspective returns a perspective camera.
func NewPerspective(eye, target, vertical math.Vec3, aspect, near, far, fovY float32) *Perspective {
	return &Perspective{
		frame: frame{eye: eye, target: target, vertical: vertical, aspect: aspect, near: near, far: far},
		FovY:  fovY,
	}
}

// Projection returns the OpenGL perspective matrix.
func (c *Perspective) Projection() math.Mat4 {
	return math.Perspective(c.FovY, c.aspect, c.near, c.far)
}

// Ortho is an orthographic camera showing Scale world units across.
type Ortho struct {
	frame
	Scale float32
}

// NewOrtho returns an orthographic camera.
func NewOrtho(eye, target, vertical math.Vec3, aspect, near, far, scale float32) *Ortho {
	return &Ortho{
		frame: frame{eye: eye, target: target, vertical: vertical, aspect: aspect, near: near, far: far},
		Scale: scale,
	}
}

// Projection returns the orthographic matrix.
func (c *Ortho) Projection() math.Mat4 {
	hw := c.Scale / 2
	hh := hw / c.aspect
	return math.Ortho(-hw, hw, -hh, hh, c.near, c.far)
}

// Default camera parameters.
const (
	DefaultNear = 0.1
	DefaultFar  = 50.0
	DefaultFovY = 42.0 // degrees
)

// Default returns the camera used when the scene does not bring one:
// looking at the origin from (6, 0, 10).
func Default(aspect float32) *Perspective {
	return NewPerspective(
		math.V3(6, 0, 10),
		math.Vec3{},
		math.V3(0, 1, 0),
		aspect,
		DefaultNear, DefaultFar,
		math.Radians(DefaultFovY),
	)
}

// FromScene builds a camera from the graph's embedded camera. The target
// is the point of the view ray closest to the origin, or one unit ahead
// when the ray starts there. ok is false when the scene has no camera.
func FromScene(g *scene.Graph, aspect float32) (cam *Perspective, ok bool) {
	eye, dir, _, ok := g.CameraPose()
	if !ok {
		return nil, false
	}
	c := g.Camera

	// d is the distance from the origin to the view line.
	d := eye.Sub(dir.Scale(eye.Dot(dir))).Length()
	e := eye.Length()
	x := math.Sqrt(max(e*e-d*d, 0))
	target := eye.Add(dir.Scale(x))
	if x == 0 {
		target = eye.Add(dir)
	}

	near, far := c.Near, c.Far
	if near <= 0 {
		near = DefaultNear
	}
	if far <= near {
		far = DefaultFar
	}
	fov := c.FovY
	if fov <= 0 {
		fov = math.Radians(DefaultFovY)
	}
	// The asset's up vector is used untransformed.
	up := c.Up
	if up == (math.Vec3{}) {
		up = math.V3(0, 1, 0)
	}
	return NewPerspective(eye, target, up, aspect, near, far, fov), true
}
