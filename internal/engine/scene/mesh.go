package scene

import (
	"fmt"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// MaxInfluences is the number of bones that may weight one vertex.
const MaxInfluences = 4

// Bone is a skinning joint as seen by one mesh.
type Bone struct {
	Name   string    // name of the node driving the bone
	Offset math.Mat4 // mesh space to bone space in the bind pose
}

// Mesh is immutable triangle data owned by exactly one node.
type Mesh struct {
	Name string
	// Material is the asset-side material name used to look up the
	// material table.
	Material string

	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32

	// Bones lists the joints this mesh is skinned to. BoneIDs index Bones,
	// -1 marks an unused slot whose weight is 0.
	Bones       []Bone
	BoneIDs     [][MaxInfluences]int32
	BoneWeights [][MaxInfluences]float32
}

// HasBones reports whether the mesh carries skinning data.
func (m *Mesh) HasBones() bool { return len(m.Bones) > 0 && len(m.BoneIDs) == len(m.Positions) }

// AddBoneInfluence records that bone weights vertex v. Influences beyond
// MaxInfluences are dropped in arrival order.
func (m *Mesh) AddBoneInfluence(v int, bone int32, weight float32) error {
	if v < 0 || v >= len(m.Positions) {
		return fmt.Errorf("mesh %q: vertex %d out of range", m.Name, v)
	}
	if bone < 0 || int(bone) >= len(m.Bones) {
		return fmt.Errorf("mesh %q: bone %d out of range", m.Name, bone)
	}
	if len(m.BoneIDs) == 0 {
		m.BoneIDs = make([][MaxInfluences]int32, len(m.Positions))
		m.BoneWeights = make([][MaxInfluences]float32, len(m.Positions))
		for i := range m.BoneIDs {
			m.BoneIDs[i] = [MaxInfluences]int32{-1, -1, -1, -1}
		}
	}
	ids := &m.BoneIDs[v]
	for slot := range ids {
		if ids[slot] == -1 {
			ids[slot] = bone
			m.BoneWeights[v][slot] = weight
			return nil
		}
	}
	return nil
}

// GPUData converts the mesh into device vertex streams. remap translates
// the mesh-local bone indices into skeleton-wide bone IDs; with a nil remap
// the bone streams are omitted.
func (m *Mesh) GPUData(remap []int32) gpu.MeshData {
	data := gpu.MeshData{
		Positions: m.Positions,
		Normals:   m.Normals,
		Indices:   m.Indices,
	}
	if remap == nil || !m.HasBones() {
		return data
	}
	data.BoneIDs = make([][4]int32, len(m.BoneIDs))
	data.BoneWeights = make([][4]float32, len(m.BoneWeights))
	for v, ids := range m.BoneIDs {
		for s, id := range ids {
			data.BoneIDs[v][s] = -1
			if id >= 0 && int(id) < len(remap) {
				data.BoneIDs[v][s] = remap[id]
				data.BoneWeights[v][s] = m.BoneWeights[v][s]
			}
		}
	}
	return data
}

// Bounds returns the axis-aligned bounds of the vertex positions.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}
