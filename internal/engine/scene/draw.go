package scene

import (
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/pkg/math"
)

// SkinMode selects how the mesh program positions vertices. The values are
// the ones the programs read from their hasAnimation uniform.
type SkinMode int32

const (
	// SkinStatic draws with the node's global transform.
	SkinStatic SkinMode = iota
	// SkinBones blends the frame's bone matrices per vertex.
	SkinBones
	// SkinNode draws with the node's animated global transform.
	SkinNode
)

func (m SkinMode) String() string {
	switch m {
	case SkinBones:
		return "bones"
	case SkinNode:
		return "node"
	default:
		return "static"
	}
}

// Pose is the set of transforms one frame is drawn with.
type Pose struct {
	// Static holds the import-time global transform of every node.
	Static []math.Mat4
	// Animated holds the animated global transform of every node. Nil when
	// no clip is playing.
	Animated []math.Mat4
	// Bones is set when the playing clip drives a skeleton.
	Bones bool
}

// StaticPose returns the pose of a graph without animation.
func (g *Graph) StaticPose() Pose { return Pose{Static: g.StaticGlobals()} }

// DrawItem is everything a pass needs to draw one mesh instance.
type DrawItem struct {
	Node     NodeID
	Mesh     int
	Material material.Handle
	Model    math.Mat4
	Skin     SkinMode
}

// DrawList returns one item per mesh instance in traversal order.
//
// With a skeleton clip, skinned meshes keep their static model transform and
// the bone matrices carry the animation. A clip without bones moves whole
// nodes, so their animated global transform becomes the model transform.
func (g *Graph) DrawList(pose Pose) []DrawItem {
	var items []DrawItem
	g.Walk(func(id NodeID) {
		n := &g.Nodes[id]
		for i, mi := range n.Meshes {
			item := DrawItem{
				Node:     id,
				Mesh:     mi,
				Material: n.Materials[i],
				Model:    pose.Static[id],
			}
			switch {
			case pose.Animated == nil:
			case pose.Bones:
				if g.Meshes[mi].HasBones() {
					item.Skin = SkinBones
				}
			default:
				item.Skin = SkinNode
				item.Model = pose.Animated[id]
			}
			items = append(items, item)
		}
	})
	return items
}
