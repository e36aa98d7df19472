// Package glgpu implements gpu.Device on OpenGL 4.1 core. It needs a current
// context with function pointers loaded (gl.Init) and must be used from the
// thread owning that context.
package glgpu

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
)

// Device is an OpenGL gpu.Device.
type Device struct {
	def      *framebuffer
	programs map[shaders.ID]*program
	samplers [3]uint32 // indexed by gpu.Filter
	log      *zap.Logger
}

// New wraps the current context. width and height are the default
// framebuffer size in pixels.
func New(width, height int, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Device{
		def:      &framebuffer{label: "default", w: width, h: height},
		programs: make(map[shaders.ID]*program),
		log:      log,
	}

	gl.GenSamplers(int32(len(d.samplers)), &d.samplers[0])
	filters := [3][2]int32{
		gpu.FilterNearest:   {gl.NEAREST, gl.NEAREST},
		gpu.FilterLinear:    {gl.LINEAR, gl.LINEAR},
		gpu.FilterTrilinear: {gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR},
	}
	for i, s := range d.samplers {
		gl.SamplerParameteri(s, gl.TEXTURE_MIN_FILTER, filters[i][0])
		gl.SamplerParameteri(s, gl.TEXTURE_MAG_FILTER, filters[i][1])
		gl.SamplerParameteri(s, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.SamplerParameteri(s, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.SamplerParameteri(s, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	}
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	return d
}

// Name implements gpu.Device.
func (d *Device) Name() string { return "opengl" }

// Default implements gpu.Device.
func (d *Device) Default() gpu.Framebuffer { return d.def }

// LoadProgram implements gpu.Device.
func (d *Device) LoadProgram(id shaders.ID) error {
	if _, ok := d.programs[id]; ok {
		return nil
	}
	vs, fs, err := shaders.Source(id)
	if err != nil {
		return fmt.Errorf("glgpu: load %v: %w", id, gpu.ErrUnknownProgram)
	}
	prog, err := compileProgram(vs, fs)
	if err != nil {
		return fmt.Errorf("glgpu: compile %v: %w", id, err)
	}
	d.programs[id] = &program{id: prog, locations: make(map[string]int32)}
	d.log.Debug("program loaded", zap.Stringer("program", id), zap.Uint32("id", prog))
	return nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("glgpu: texture %q has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if desc.Cube {
		return nil, fmt.Errorf("glgpu: texture %q: use NewCubeMap for cube maps", desc.Label)
	}
	return newTexture(desc), nil
}

// NewCubeMap implements gpu.Device.
func (d *Device) NewCubeMap(label string, faces [6]*image.RGBA) (gpu.Texture, error) {
	t, err := newCubeMap(label, faces)
	if err != nil {
		return nil, fmt.Errorf("glgpu: %w", err)
	}
	return t, nil
}

// NewFramebuffer implements gpu.Device.
func (d *Device) NewFramebuffer(desc gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("glgpu: framebuffer %q has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	fb, err := newFramebuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("glgpu: %w", err)
	}
	d.log.Debug("framebuffer created",
		zap.String("label", desc.Label),
		zap.Int("width", desc.Width),
		zap.Int("height", desc.Height),
		zap.Int("colors", len(desc.Color)),
		zap.Bool("depth", desc.Depth),
	)
	return fb, nil
}

// NewMesh implements gpu.Device.
func (d *Device) NewMesh(data gpu.MeshData) (gpu.Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("glgpu: %w", err)
	}
	return newMesh(data), nil
}

func (d *Device) resolve(fb gpu.Framebuffer) *framebuffer {
	if fb == nil {
		return d.def
	}
	f, ok := fb.(*framebuffer)
	if !ok {
		d.log.Error("foreign framebuffer", zap.String("type", fmt.Sprintf("%T", fb)))
		return d.def
	}
	return f
}

// Clear implements gpu.Device.
func (d *Device) Clear(op gpu.ClearOp) {
	fb := d.resolve(op.Target)
	w, h := fb.bind(op.Level)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Viewport(0, 0, int32(w), int32(h))

	var mask uint32
	if op.ClearColor {
		gl.ColorMask(true, true, true, true)
		gl.ClearColor(op.Color.X, op.Color.Y, op.Color.Z, op.Color.W)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if op.ClearDepth {
		gl.DepthMask(true)
		gl.ClearDepth(float64(op.Depth))
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) applyState(st gpu.State, w, h int) {
	vp := st.Viewport
	if vp.Empty() {
		vp = gpu.Rect{W: w, H: h}
	}
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	gl.Disable(gl.CULL_FACE)

	if st.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		switch st.DepthFunc {
		case gpu.DepthLEqual:
			gl.DepthFunc(gl.LEQUAL)
		case gpu.DepthAlways:
			gl.DepthFunc(gl.ALWAYS)
		default:
			gl.DepthFunc(gl.LESS)
		}
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(st.DepthWrite)

	if st.Blend == gpu.BlendAdditive {
		gl.Enable(gl.BLEND)
		gl.BlendEquation(gl.FUNC_ADD)
		gl.BlendFunc(gl.ONE, gl.ONE)
	} else {
		gl.Disable(gl.BLEND)
	}
}

// Draw implements gpu.Device.
func (d *Device) Draw(dr gpu.Draw) {
	prog, ok := d.programs[dr.Program]
	if !ok {
		d.log.Error("draw with unloaded program", zap.Stringer("program", dr.Program))
		return
	}
	m, ok := dr.Mesh.(*mesh)
	if !ok || m == nil {
		d.log.Error("draw with invalid mesh", zap.Stringer("program", dr.Program))
		return
	}

	fb := d.resolve(dr.Target)
	w, h := fb.bind(dr.Level)
	d.applyState(dr.State, w, h)

	gl.UseProgram(prog.id)
	if err := prog.setAll(dr.Uniforms); err != nil {
		d.log.Error("uniform upload failed", zap.Stringer("program", dr.Program), zap.Error(err))
	}

	// Bind samplers in name order so units are stable across frames.
	names := make([]string, 0, len(dr.Textures))
	for name := range dr.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for unit, name := range names {
		b := dr.Textures[name]
		t, ok := b.Texture.(*texture)
		if !ok || t == nil {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(t.target, t.id)
		gl.BindSampler(uint32(unit), d.samplers[b.Filter])
		if loc := prog.location(name); loc >= 0 {
			gl.Uniform1i(loc, int32(unit))
		}
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(m.nindex), gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)

	for unit := range names {
		gl.BindSampler(uint32(unit), 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

// Blit implements gpu.Device.
func (d *Device) Blit(op gpu.BlitOp) {
	src, dst := d.resolve(op.Src), d.resolve(op.Dst)
	sr, dr := op.SrcRect, op.DstRect
	if sr.Empty() {
		sr = gpu.Rect{W: src.w, H: src.h}
	}
	if dr.Empty() {
		dr = gpu.Rect{W: dst.w, H: dst.h}
	}

	src.bind(0)
	dst.bind(0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst.fbo)

	var mask uint32
	if op.Mask&gpu.BlitColor != 0 {
		mask |= gl.COLOR_BUFFER_BIT
		if src.isDefault() {
			gl.ReadBuffer(gl.BACK)
		} else {
			gl.ReadBuffer(gl.COLOR_ATTACHMENT0 + uint32(op.SrcAttachment))
		}
		if dst.isDefault() {
			gl.DrawBuffer(gl.BACK)
		} else {
			buf := uint32(gl.COLOR_ATTACHMENT0 + op.DstAttachment)
			gl.DrawBuffers(1, &buf)
		}
	}
	filter := uint32(gl.NEAREST)
	if op.Mask&gpu.BlitDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	} else if op.Filter != gpu.FilterNearest {
		filter = gl.LINEAR
	}

	gl.BlitFramebuffer(
		int32(sr.X), int32(sr.Y), int32(sr.X+sr.W), int32(sr.Y+sr.H),
		int32(dr.X), int32(dr.Y), int32(dr.X+dr.W), int32(dr.Y+dr.H),
		mask, filter,
	)

	// Restore the full draw buffer list of the destination.
	gl.BindFramebuffer(gl.FRAMEBUFFER, dst.fbo)
	if !dst.isDefault() {
		dst.attach(dst.level)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// GenerateMipmaps implements gpu.Device.
func (d *Device) GenerateMipmaps(t gpu.Texture) {
	tex, ok := t.(*texture)
	if !ok || tex.target != gl.TEXTURE_2D {
		d.log.Error("cannot build mipmaps", zap.String("type", fmt.Sprintf("%T", t)))
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ReadPixels implements gpu.Device.
func (d *Device) ReadPixels(fb gpu.Framebuffer, attachment int) (*gpu.Image, error) {
	f := d.resolve(fb)
	w, h := f.w, f.h
	f.bind(0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, f.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	img := gpu.NewImage(w, h)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	switch {
	case attachment == gpu.DepthAttachment:
		if !f.isDefault() && f.depth == nil {
			return nil, fmt.Errorf("glgpu: %s has no depth attachment", f.label)
		}
		depth := make([]float32, w*h)
		gl.ReadPixels(0, 0, int32(w), int32(h), gl.DEPTH_COMPONENT, gl.FLOAT, gl.Ptr(depth))
		for i, v := range depth {
			img.Pix[i].X, img.Pix[i].Y, img.Pix[i].Z, img.Pix[i].W = v, v, v, 1
		}
		return img, nil
	case f.isDefault():
		gl.ReadBuffer(gl.BACK)
	case attachment >= 0 && attachment < len(f.color):
		gl.ReadBuffer(gl.COLOR_ATTACHMENT0 + uint32(attachment))
	default:
		return nil, fmt.Errorf("glgpu: %s has no attachment %d", f.label, attachment)
	}
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.FLOAT, gl.Ptr(img.Pix))
	return img, nil
}

// Release implements gpu.Device.
func (d *Device) Release(r any) error {
	switch v := r.(type) {
	case *texture:
		deleteTexture(v)
	case *framebuffer:
		if v.isDefault() {
			return errors.New("glgpu: cannot release the default framebuffer")
		}
		v.destroy()
	case *mesh:
		v.destroy()
	case nil:
		return errors.New("glgpu: release of nil resource")
	default:
		return fmt.Errorf("glgpu: cannot release %T", r)
	}
	return nil
}

// Close deletes programs and samplers.
func (d *Device) Close() {
	for id, p := range d.programs {
		gl.DeleteProgram(p.id)
		delete(d.programs, id)
	}
	gl.DeleteSamplers(int32(len(d.samplers)), &d.samplers[0])
}
