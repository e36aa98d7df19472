package softgpu

import (
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// texture stores every mip level as a float slice with row 0 at the bottom.
// Cube faces keep row 0 at t = 0, the top row of the uploaded image.
type texture struct {
	desc   gpu.TextureDesc
	levels [][]math.Vec4
	faces  [6][]math.Vec4
}

func newTexture(desc gpu.TextureDesc) *texture {
	desc.Levels = max(desc.Levels, 1)
	t := &texture{desc: desc, levels: make([][]math.Vec4, desc.Levels)}
	for l := range t.levels {
		w, h := desc.LevelSize(l)
		t.levels[l] = make([]math.Vec4, w*h)
	}
	return t
}

func (t *texture) Desc() gpu.TextureDesc { return t.desc }

func (t *texture) level(l int) ([]math.Vec4, int, int) {
	l = min(max(l, 0), len(t.levels)-1)
	w, h := t.desc.LevelSize(l)
	return t.levels[l], w, h
}

type framebuffer struct {
	label string
	w, h  int
	color []*texture
	depth *texture
}

func (f *framebuffer) Label() string { return f.label }
func (f *framebuffer) Size() (int, int) { return f.w, f.h }
func (f *framebuffer) ColorCount() int { return len(f.color) }
func (f *framebuffer) Color(i int) gpu.Texture { return f.color[i] }

func (f *framebuffer) Depth() gpu.Texture {
	if f.depth == nil {
		return nil
	}
	return f.depth
}

type mesh struct {
	data gpu.MeshData
}

func (m *mesh) VertexCount() int { return len(m.data.Positions) }
func (m *mesh) IndexCount() int { return len(m.data.Indices) }

func (m *mesh) normal(i int) math.Vec3 {
	if i < len(m.data.Normals) {
		return m.data.Normals[i]
	}
	return math.Vec3{}
}

func (m *mesh) bones(i int) ([4]int32, [4]float32) {
	if i < len(m.data.BoneIDs) {
		return m.data.BoneIDs[i], m.data.BoneWeights[i]
	}
	return [4]int32{-1, -1, -1, -1}, [4]float32{}
}
