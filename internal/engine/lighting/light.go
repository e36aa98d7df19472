// Package lighting describes the scene lights the render passes evaluate.
package lighting

import (
	"fmt"

	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Kind tags the variant stored in a Light.
type Kind uint8

const (
	KindPoint Kind = iota
	// KindArea is a rectangular emitter. It is shaded as a point light at
	// its center.
	KindArea
	KindAmbient
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindArea:
		return "area"
	case KindAmbient:
		return "ambient"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Light is a closed variant over the supported light types. Positions are
// in the frame of the scene node named by Node.
type Light struct {
	Node string
	Kind Kind

	// Point and area lights.
	Position math.Vec3
	Power    math.Vec3

	// Area lights.
	Normal math.Vec3
	Up     math.Vec3
	Size   math.Vec2

	// Ambient lights. Range is +Inf when unbounded.
	Radiance math.Vec3
	Range    float32
}

// DefaultNodeName anchors the fallback light. No scene node carries it, so
// the light sits in world space.
const DefaultNodeName = "DefaultPointLight"

// Default returns the point light used when the scene defines none.
func Default() Light {
	return Light{
		Node:     DefaultNodeName,
		Kind:     KindPoint,
		Position: math.V3(3, 3, 3),
		Power:    math.Splat3(300),
	}
}

// ShadesAsPoint reports whether the light goes through the shadow and
// point-lighting passes.
func (l Light) ShadesAsPoint() bool { return l.Kind == KindPoint || l.Kind == KindArea }

// WorldPosition transforms the light position by its node's global
// transform. A missing node leaves the position untouched.
func (l Light) WorldPosition(g *scene.Graph) math.Vec3 {
	if g == nil {
		return l.Position
	}
	return g.NodeTransform(l.Node).TransformPoint(l.Position)
}

// FirstPoint returns the first point light, or Default when there is none.
func FirstPoint(lights []Light) Light {
	for _, l := range lights {
		if l.Kind == KindPoint {
			return l
		}
	}
	return Default()
}
