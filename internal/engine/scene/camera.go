package scene

import "github.com/Faultbox/skyscene/pkg/math"

// EmbeddedCamera is the camera stored in the scene asset, expressed in the
// local frame of the node it hangs from.
type EmbeddedCamera struct {
	Name     string
	Node     NodeID
	Position math.Vec3 // local eye position
	LookAt   math.Vec3 // local view direction
	Up       math.Vec3
	FovY     float32 // radians
	Near     float32
	Far      float32
}

// CameraPose returns the world eye, view direction and up vector of the
// embedded camera under the graph's import-time transforms.
func (g *Graph) CameraPose() (eye, dir, up math.Vec3, ok bool) {
	c := g.Camera
	if c == nil || !g.valid(c.Node) {
		return eye, dir, up, false
	}
	t := g.GlobalTransform(c.Node)
	eye = t.TransformPoint(c.Position)
	dir = t.TransformDirection(c.LookAt).Normalize()
	up = t.TransformDirection(c.Up).Normalize()
	return eye, dir, up, true
}
