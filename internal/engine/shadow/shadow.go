// Package shadow sets up point-light shadow mapping: the depth target the
// shadow pass renders into and the camera it renders from.
package shadow

import (
	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// DefaultResolution is the shadow map edge length in texels.
const DefaultResolution = 1024

// Light camera frustum.
const (
	Near = 0.1
	Far  = 20.0
	FovY = 1.0 // radians
)

// Map describes a square depth-only shadow target.
type Map struct {
	Resolution int
}

// NewMap returns a map of the given resolution, or DefaultResolution when
// resolution is not positive.
func NewMap(resolution int) Map {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return Map{Resolution: resolution}
}

// FramebufferDesc returns the target description.
func (m Map) FramebufferDesc() gpu.FramebufferDesc {
	return gpu.FramebufferDesc{
		Label:  "shadow",
		Width:  m.Resolution,
		Height: m.Resolution,
		Depth:  true,
	}
}

// LightCamera looks from a point light at the world origin. aspect is the
// viewport aspect ratio, matching the main camera.
func LightCamera(position math.Vec3, aspect float32) *camera.Perspective {
	up := math.V3(0, 1, 0)
	if position.Normalize().Cross(up).Length() < 1e-4 {
		// Straight above or below the origin.
		up = math.V3(0, 0, -1)
	}
	return camera.NewPerspective(position, math.Vec3{}, up, aspect, Near, Far, FovY)
}

// ViewProjection returns the light camera's matrices.
func ViewProjection(position math.Vec3, aspect float32) (view, proj math.Mat4) {
	c := LightCamera(position, aspect)
	return c.View(), c.Projection()
}
