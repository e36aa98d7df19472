package anim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Bone is one joint of the skeleton.
type Bone struct {
	Name   string
	Node   scene.NodeID // NoNode when no node carries the bone's name
	Offset math.Mat4
}

// Skeleton assigns every bone name used by the graph's meshes a dense id.
// IDs follow first appearance in traversal order; a bone listed by several
// meshes keeps the offset of the last one.
type Skeleton struct {
	Bones []Bone

	ids   map[string]int32
	remap map[int][]int32 // mesh index -> skeleton id per mesh-local bone
}

// NewSkeleton collects the bones of every mesh in g.
func NewSkeleton(g *scene.Graph) (*Skeleton, error) {
	s := &Skeleton{ids: make(map[string]int32), remap: make(map[int][]int32)}
	g.Walk(func(id scene.NodeID) {
		for _, mi := range g.Nodes[id].Meshes {
			m := g.Meshes[mi]
			if len(m.Bones) == 0 {
				continue
			}
			ids := make([]int32, len(m.Bones))
			for i, b := range m.Bones {
				ids[i] = s.add(g, b)
			}
			s.remap[mi] = ids
		}
	})
	if len(s.Bones) > shaders.MaxBones {
		return nil, fmt.Errorf("skeleton has %d bones, programs support %d", len(s.Bones), shaders.MaxBones)
	}
	return s, nil
}

func (s *Skeleton) add(g *scene.Graph, b scene.Bone) int32 {
	if id, ok := s.ids[b.Name]; ok {
		s.Bones[id].Offset = b.Offset
		return id
	}
	node, ok := g.Find(b.Name)
	if !ok {
		node = scene.NoNode
		logger.Warn("bone has no node", zap.String("bone", b.Name))
	}
	id := int32(len(s.Bones))
	s.ids[b.Name] = id
	s.Bones = append(s.Bones, Bone{Name: b.Name, Node: node, Offset: b.Offset})
	return id
}

// Len returns the number of bones.
func (s *Skeleton) Len() int { return len(s.Bones) }

// ID returns the dense id of a bone.
func (s *Skeleton) ID(name string) (int32, bool) {
	id, ok := s.ids[name]
	return id, ok
}

// Remap returns the skeleton ids of mesh mi's local bones, or nil for an
// unskinned mesh.
func (s *Skeleton) Remap(mi int) []int32 { return s.remap[mi] }
