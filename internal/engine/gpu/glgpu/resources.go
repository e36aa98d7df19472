package glgpu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

type texture struct {
	id     uint32
	target uint32 // TEXTURE_2D or TEXTURE_CUBE_MAP
	desc   gpu.TextureDesc
}

func (t *texture) Desc() gpu.TextureDesc { return t.desc }

// glFormat returns internal format, pixel format and pixel type for f.
func glFormat(f gpu.Format) (int32, uint32, uint32) {
	switch f {
	case gpu.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gpu.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case gpu.FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

func newTexture(desc gpu.TextureDesc) *texture {
	desc.Levels = max(desc.Levels, 1)
	t := &texture{target: gl.TEXTURE_2D, desc: desc}
	internal, format, typ := glFormat(desc.Format)

	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	for l := 0; l < desc.Levels; l++ {
		w, h := desc.LevelSize(l)
		gl.TexImage2D(gl.TEXTURE_2D, int32(l), internal, int32(w), int32(h), 0, format, typ, nil)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(desc.Levels-1))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

func newCubeMap(label string, faces [6]*image.RGBA) (*texture, error) {
	if faces[0] == nil {
		return nil, fmt.Errorf("cube map %q: face 0 is missing", label)
	}
	size := faces[0].Bounds().Size()
	t := &texture{
		target: gl.TEXTURE_CUBE_MAP,
		desc: gpu.TextureDesc{
			Label:  label,
			Width:  size.X,
			Height: size.Y,
			Format: gpu.FormatRGBA8,
			Levels: 1,
			Cube:   true,
		},
	}
	for i, f := range faces {
		if f == nil {
			return nil, fmt.Errorf("cube map %q: face %d is missing", label, i)
		}
		if f.Bounds().Size() != size {
			return nil, fmt.Errorf("cube map %q: face %d is %v, want %v", label, i, f.Bounds().Size(), size)
		}
	}

	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, f := range faces {
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(f.Stride/4))
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAX_LEVEL, 0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return t, nil
}

type framebuffer struct {
	fbo   uint32
	label string
	w, h  int
	color []*texture
	depth *texture
	level int // mip level the color attachments are bound at
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

func (f *framebuffer) isDefault() bool { return f.fbo == 0 }

func newFramebuffer(desc gpu.FramebufferDesc) (*framebuffer, error) {
	fb := &framebuffer{label: desc.Label, w: desc.Width, h: desc.Height}
	for i, c := range desc.Color {
		if c.Format.IsDepth() {
			return nil, fmt.Errorf("framebuffer %q: color attachment %d has depth format", desc.Label, i)
		}
		c.Width, c.Height = desc.Width, desc.Height
		if c.Label == "" {
			c.Label = fmt.Sprintf("%s.color%d", desc.Label, i)
		}
		fb.color = append(fb.color, newTexture(c))
	}
	if desc.Depth {
		fb.depth = newTexture(gpu.TextureDesc{
			Label:  desc.Label + ".depth",
			Width:  desc.Width,
			Height: desc.Height,
			Format: gpu.FormatDepth32F,
		})
	}

	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	fb.attach(0)
	if fb.depth != nil {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, fb.depth.id, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.destroy()
		return nil, fmt.Errorf("framebuffer %q incomplete: 0x%x", desc.Label, status)
	}
	return fb, nil
}

// attach binds every color attachment at mip level l. The framebuffer must be
// bound to GL_FRAMEBUFFER.
func (f *framebuffer) attach(l int) {
	if len(f.color) == 0 {
		// Depth-only target, as for shadow maps.
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
		return
	}
	bufs := make([]uint32, len(f.color))
	for i, t := range f.color {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, t.id, int32(l))
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
	f.level = l
}

// bind makes f the draw target at mip level l and returns the level size.
func (f *framebuffer) bind(l int) (int, int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	if f.isDefault() {
		return f.w, f.h
	}
	if len(f.color) > 0 && f.level != l {
		f.attach(l)
	}
	if len(f.color) > 0 {
		return f.color[0].desc.LevelSize(l)
	}
	return f.w, f.h
}

func (f *framebuffer) destroy() {
	if f.fbo != 0 {
		gl.DeleteFramebuffers(1, &f.fbo)
		f.fbo = 0
	}
	for _, t := range f.color {
		deleteTexture(t)
	}
	f.color = nil
	if f.depth != nil {
		deleteTexture(f.depth)
		f.depth = nil
	}
}

func deleteTexture(t *texture) {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

type mesh struct {
	vao    uint32
	vbos   [4]uint32
	ebo    uint32
	nverts int
	nindex int
}

func (m *mesh) VertexCount() int { return m.nverts }
func (m *mesh) IndexCount() int { return m.nindex }

// Vertex attribute locations shared with the GLSL sources.
const (
	attribPosition = 0
	attribNormal   = 1
	attribBoneIDs  = 2
	attribWeights  = 3
)

func newMesh(data gpu.MeshData) *mesh {
	n := len(data.Positions)
	normals := data.Normals
	if len(normals) == 0 {
		normals = make([]math.Vec3, n)
	}
	ids, weights := data.BoneIDs, data.BoneWeights
	if len(ids) == 0 {
		ids = make([][4]int32, n)
		for i := range ids {
			ids[i] = [4]int32{-1, -1, -1, -1}
		}
		weights = make([][4]float32, n)
	}
	indices := data.Indices
	if len(indices) == 0 {
		indices = make([]uint32, n-n%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m := &mesh{nverts: n, nindex: len(indices)}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(4, &m.vbos[0])

	upload := func(vbo uint32, size int, ptr any) {
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(ptr), gl.STATIC_DRAW)
	}

	upload(m.vbos[0], n*12, data.Positions)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, 12, 0)

	upload(m.vbos[1], n*12, normals)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, 12, 0)

	upload(m.vbos[2], n*16, ids)
	gl.EnableVertexAttribArray(attribBoneIDs)
	gl.VertexAttribIPointerWithOffset(attribBoneIDs, 4, gl.INT, 16, 0)

	upload(m.vbos[3], n*16, weights)
	gl.EnableVertexAttribArray(attribWeights)
	gl.VertexAttribPointerWithOffset(attribWeights, 4, gl.FLOAT, false, 16, 0)

	if len(indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func (m *mesh) destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	gl.DeleteBuffers(4, &m.vbos[0])
	m.vbos = [4]uint32{}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}

// TextureID returns the GL name of a texture created by a Device, for
// handing render results to other GL code such as an ImGui image.
func TextureID(t gpu.Texture) (uint32, bool) {
	tex, ok := t.(*texture)
	if !ok || tex == nil {
		return 0, false
	}
	return tex.id, true
}
