package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/pkg/math"
)

func skinnedGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	root, _ := g.AddNode("root", NoNode, math.Translate(math.V3(0, 1, 0)))
	body, _ := g.AddNode("body", root, math.Identity())
	prop, _ := g.AddNode("prop", root, math.Translate(math.V3(2, 0, 0)))

	skin := &Mesh{
		Name:      "skin",
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Bones:     []Bone{{Name: "body", Offset: math.Identity()}},
	}
	for v := range skin.Positions {
		require.NoError(t, skin.AddBoneInfluence(v, 0, 1))
	}
	_, err := g.AddMesh(body, skin)
	require.NoError(t, err)
	_, err = g.AddMesh(prop, &Mesh{Name: "rigid", Positions: []math.Vec3{{}, {X: 1}, {Y: 1}}})
	require.NoError(t, err)
	return g
}

func TestDrawListStatic(t *testing.T) {
	g := skinnedGraph(t)
	items := g.DrawList(g.StaticPose())
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, SkinStatic, it.Skin)
		assert.Equal(t, g.GlobalTransform(it.Node), it.Model)
	}
}

func TestDrawListBoneClipKeepsStaticModel(t *testing.T) {
	g := skinnedGraph(t)
	static := g.StaticGlobals()
	animated := g.Resolve(func(NodeID) math.Mat4 { return math.Translate(math.V3(5, 5, 5)) })

	items := g.DrawList(Pose{Static: static, Animated: animated, Bones: true})
	require.Len(t, items, 2)
	assert.Equal(t, SkinBones, items[0].Skin)
	assert.Equal(t, static[items[0].Node], items[0].Model)
	// A mesh without weights is drawn rigidly.
	assert.Equal(t, SkinStatic, items[1].Skin)
}

func TestDrawListNodeClipUsesAnimatedModel(t *testing.T) {
	g := skinnedGraph(t)
	animated := g.Resolve(func(NodeID) math.Mat4 { return math.Translate(math.V3(0, 0, 1)) })

	items := g.DrawList(Pose{Static: g.StaticGlobals(), Animated: animated})
	for _, it := range items {
		assert.Equal(t, SkinNode, it.Skin)
		assert.Equal(t, animated[it.Node], it.Model)
	}
}

func TestAddBoneInfluenceKeepsFourSlots(t *testing.T) {
	m := &Mesh{Name: "m", Positions: []math.Vec3{{}}, Bones: make([]Bone, 6)}
	for b := range 6 {
		require.NoError(t, m.AddBoneInfluence(0, int32(b), 0.1*float32(b+1)))
	}
	assert.Equal(t, [MaxInfluences]int32{0, 1, 2, 3}, m.BoneIDs[0])
	assert.InDelta(t, 0.4, m.BoneWeights[0][3], 1e-6)

	assert.Error(t, m.AddBoneInfluence(1, 0, 1))
	assert.Error(t, m.AddBoneInfluence(0, 6, 1))
}

func TestGPUDataRemapsBoneIDs(t *testing.T) {
	m := &Mesh{
		Name:      "m",
		Positions: []math.Vec3{{}, {X: 1}},
		Bones:     []Bone{{Name: "a"}, {Name: "b"}},
	}
	require.NoError(t, m.AddBoneInfluence(0, 1, 0.75))
	require.NoError(t, m.AddBoneInfluence(0, 0, 0.25))

	data := m.GPUData([]int32{7, 3})
	assert.Equal(t, [4]int32{3, 7, -1, -1}, data.BoneIDs[0])
	assert.Equal(t, [4]float32{0.75, 0.25, 0, 0}, data.BoneWeights[0])
	assert.Equal(t, [4]int32{-1, -1, -1, -1}, data.BoneIDs[1])

	assert.Nil(t, m.GPUData(nil).BoneIDs)
}

func TestCameraPose(t *testing.T) {
	g := New()
	root, _ := g.AddNode("root", NoNode, math.Translate(math.V3(0, 0, 10)))
	g.Camera = &EmbeddedCamera{Node: root, LookAt: math.V3(0, 0, -1), Up: math.V3(0, 1, 0), FovY: 0.8}

	eye, dir, up, ok := g.CameraPose()
	require.True(t, ok)
	assert.Equal(t, math.V3(0, 0, 10), eye)
	assert.Equal(t, math.V3(0, 0, -1), dir)
	assert.Equal(t, math.V3(0, 1, 0), up)

	g.Camera = nil
	_, _, _, ok = g.CameraPose()
	assert.False(t, ok)
}
