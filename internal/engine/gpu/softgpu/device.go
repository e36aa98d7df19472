// Package softgpu implements gpu.Device on the CPU. It runs Go ports of the
// shading programs through a small rasterizer with OpenGL conventions:
// lower-left origin, clip-space depth in [-1, 1] mapped to [0, 1], shared
// edges covered exactly once. Tests and headless rendering use it.
package softgpu

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Device is a software gpu.Device.
type Device struct {
	def    *framebuffer
	loaded map[shaders.ID]bool
	log    *zap.Logger
	err    error

	draws     int
	fragments int
}

// Option configures a Device.
type Option func(*Device)

// WithLogger routes device diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) { d.log = l }
}

// New creates a device whose default target is width x height.
func New(width, height int, opts ...Option) *Device {
	d := &Device{
		loaded: make(map[shaders.ID]bool),
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	d.def = &framebuffer{
		label: "default",
		w:     width,
		h:     height,
		color: []*texture{newTexture(gpu.TextureDesc{Label: "default.color", Width: width, Height: height, Format: gpu.FormatRGBA32F})},
		depth: newTexture(gpu.TextureDesc{Label: "default.depth", Width: width, Height: height, Format: gpu.FormatDepth32F}),
	}
	return d
}

// Name implements gpu.Device.
func (d *Device) Name() string { return "soft" }

// Default implements gpu.Device.
func (d *Device) Default() gpu.Framebuffer { return d.def }

// Err returns the first draw or blit failure since the device was created.
func (d *Device) Err() error { return d.err }

// Stats returns the number of draws issued and fragments written.
func (d *Device) Stats() (draws, fragments int) { return d.draws, d.fragments }

func (d *Device) fail(err error) {
	d.log.Warn("soft device call failed", zap.Error(err))
	if d.err == nil {
		d.err = err
	}
}

// LoadProgram implements gpu.Device.
func (d *Device) LoadProgram(id shaders.ID) error {
	if _, ok := programs[id]; !ok {
		return fmt.Errorf("softgpu: load %v: %w", id, gpu.ErrUnknownProgram)
	}
	d.loaded[id] = true
	return nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("softgpu: texture %q has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if desc.Cube {
		return nil, fmt.Errorf("softgpu: texture %q: use NewCubeMap for cube maps", desc.Label)
	}
	return newTexture(desc), nil
}

// NewCubeMap implements gpu.Device.
func (d *Device) NewCubeMap(label string, faces [6]*image.RGBA) (gpu.Texture, error) {
	if faces[0] == nil {
		return nil, fmt.Errorf("softgpu: cube map %q: face 0 is missing", label)
	}
	size := faces[0].Bounds().Size()
	t := &texture{desc: gpu.TextureDesc{
		Label:  label,
		Width:  size.X,
		Height: size.Y,
		Format: gpu.FormatRGBA8,
		Levels: 1,
		Cube:   true,
	}}
	for i, f := range faces {
		if f == nil {
			return nil, fmt.Errorf("softgpu: cube map %q: face %d is missing", label, i)
		}
		if f.Bounds().Size() != size {
			return nil, fmt.Errorf("softgpu: cube map %q: face %d is %v, want %v", label, i, f.Bounds().Size(), size)
		}
		pix := make([]math.Vec4, size.X*size.Y)
		b := f.Bounds()
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				c := f.RGBAAt(b.Min.X+x, b.Min.Y+y)
				pix[y*size.X+x] = math.Vec4{
					X: float32(c.R) / 255,
					Y: float32(c.G) / 255,
					Z: float32(c.B) / 255,
					W: float32(c.A) / 255,
				}
			}
		}
		t.faces[i] = pix
	}
	return t, nil
}

// NewFramebuffer implements gpu.Device.
func (d *Device) NewFramebuffer(desc gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("softgpu: framebuffer %q has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if len(desc.Color) == 0 && !desc.Depth {
		return nil, fmt.Errorf("softgpu: framebuffer %q has no attachments", desc.Label)
	}
	fb := &framebuffer{label: desc.Label, w: desc.Width, h: desc.Height}
	for i, c := range desc.Color {
		if c.Format.IsDepth() {
			return nil, fmt.Errorf("softgpu: framebuffer %q: color attachment %d has depth format", desc.Label, i)
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
	return fb, nil
}

// NewMesh implements gpu.Device.
func (d *Device) NewMesh(data gpu.MeshData) (gpu.Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("softgpu: %w", err)
	}
	return &mesh{data: data}, nil
}

func (d *Device) resolve(fb gpu.Framebuffer) (*framebuffer, error) {
	if fb == nil {
		return d.def, nil
	}
	f, ok := fb.(*framebuffer)
	if !ok {
		return nil, fmt.Errorf("softgpu: foreign framebuffer %T", fb)
	}
	return f, nil
}

// Clear implements gpu.Device.
func (d *Device) Clear(op gpu.ClearOp) {
	fb, err := d.resolve(op.Target)
	if err != nil {
		d.fail(err)
		return
	}
	if op.ClearColor {
		for _, t := range fb.color {
			pix, _, _ := t.level(op.Level)
			for i := range pix {
				pix[i] = op.Color
			}
		}
	}
	if op.ClearDepth && fb.depth != nil {
		pix, _, _ := fb.depth.level(0)
		for i := range pix {
			pix[i] = math.Vec4{X: op.Depth}
		}
	}
}

// Draw implements gpu.Device.
func (d *Device) Draw(dr gpu.Draw) {
	prog, ok := programs[dr.Program]
	if !ok || !d.loaded[dr.Program] {
		d.fail(fmt.Errorf("softgpu: draw with %v: %w", dr.Program, gpu.ErrUnknownProgram))
		return
	}
	m, ok := dr.Mesh.(*mesh)
	if !ok || m == nil {
		d.fail(fmt.Errorf("softgpu: draw with %v: invalid mesh %T", dr.Program, dr.Mesh))
		return
	}
	fb, err := d.resolve(dr.Target)
	if err != nil {
		d.fail(err)
		return
	}

	tg := &target{w: fb.w, h: fb.h}
	for _, t := range fb.color {
		pix, w, h := t.level(dr.Level)
		tg.color = append(tg.color, pix)
		tg.w, tg.h = w, h
	}
	if fb.depth != nil && dr.Level == 0 {
		tg.depth, _, _ = fb.depth.level(0)
	}
	tg.vp = dr.State.Viewport
	if tg.vp.Empty() {
		tg.vp = gpu.Rect{W: tg.w, H: tg.h}
	}

	e := &env{uniforms: dr.Uniforms, textures: dr.Textures}
	verts := make([]clipVertex, len(m.data.Positions))
	for i := range verts {
		verts[i].pos, verts[i].v = prog.vertex(e, m, i)
	}

	idx := m.data.Indices
	if len(idx) == 0 {
		idx = make([]uint32, len(verts)-len(verts)%3)
		for i := range idx {
			idx[i] = uint32(i)
		}
	}
	for i := 0; i+2 < len(idx); i += 3 {
		d.rasterize(tg, dr.State, prog, e, [3]clipVertex{verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]})
	}
	d.draws++
}

// Blit implements gpu.Device.
func (d *Device) Blit(op gpu.BlitOp) {
	src, err := d.resolve(op.Src)
	if err != nil {
		d.fail(err)
		return
	}
	dst, err := d.resolve(op.Dst)
	if err != nil {
		d.fail(err)
		return
	}
	sr, dr := op.SrcRect, op.DstRect
	if sr.Empty() {
		sr = gpu.Rect{W: src.w, H: src.h}
	}
	if dr.Empty() {
		dr = gpu.Rect{W: dst.w, H: dst.h}
	}

	if op.Mask&gpu.BlitColor != 0 {
		if op.SrcAttachment >= len(src.color) || op.DstAttachment >= len(dst.color) {
			d.fail(fmt.Errorf("softgpu: blit %s -> %s: attachment out of range", src.label, dst.label))
			return
		}
		blitPlane(src.color[op.SrcAttachment], dst.color[op.DstAttachment], sr, dr, op.Filter)
	}
	if op.Mask&gpu.BlitDepth != 0 {
		if src.depth == nil || dst.depth == nil {
			d.fail(fmt.Errorf("softgpu: blit %s -> %s: missing depth attachment", src.label, dst.label))
			return
		}
		blitPlane(src.depth, dst.depth, sr, dr, gpu.FilterNearest)
	}
}

func blitPlane(src, dst *texture, sr, dr gpu.Rect, f gpu.Filter) {
	spix, sw, sh := src.level(0)
	dpix, dw, dh := dst.level(0)
	for y := max(dr.Y, 0); y < min(dr.Y+dr.H, dh); y++ {
		v := (float32(sr.Y) + (float32(y-dr.Y)+0.5)*float32(sr.H)/float32(dr.H)) / float32(sh)
		for x := max(dr.X, 0); x < min(dr.X+dr.W, dw); x++ {
			u := (float32(sr.X) + (float32(x-dr.X)+0.5)*float32(sr.W)/float32(dr.W)) / float32(sw)
			dpix[y*dw+x] = sampleLevel(spix, sw, sh, u, v, f)
		}
	}
}

// GenerateMipmaps implements gpu.Device with a 2x2 box filter.
func (d *Device) GenerateMipmaps(t gpu.Texture) {
	tex, ok := t.(*texture)
	if !ok || tex.desc.Cube {
		d.fail(fmt.Errorf("softgpu: cannot build mipmaps for %T", t))
		return
	}
	for l := 1; l < len(tex.levels); l++ {
		src, sw, sh := tex.level(l - 1)
		dst, w, h := tex.level(l)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				s := fetch(src, sw, sh, 2*x, 2*y).
					Add(fetch(src, sw, sh, 2*x+1, 2*y)).
					Add(fetch(src, sw, sh, 2*x, 2*y+1)).
					Add(fetch(src, sw, sh, 2*x+1, 2*y+1))
				dst[y*w+x] = s.Scale(0.25)
			}
		}
	}
}

// ReadPixels implements gpu.Device.
func (d *Device) ReadPixels(fb gpu.Framebuffer, attachment int) (*gpu.Image, error) {
	f, err := d.resolve(fb)
	if err != nil {
		return nil, err
	}
	var t *texture
	switch {
	case attachment == gpu.DepthAttachment:
		t = f.depth
	case attachment >= 0 && attachment < len(f.color):
		t = f.color[attachment]
	}
	if t == nil {
		return nil, fmt.Errorf("softgpu: %s has no attachment %d", f.label, attachment)
	}

	pix, w, h := t.level(0)
	img := gpu.NewImage(w, h)
	for i, p := range pix {
		if attachment == gpu.DepthAttachment {
			p = math.Vec4{X: p.X, Y: p.X, Z: p.X, W: 1}
		}
		img.Pix[i] = p
	}
	return img, nil
}

// Release implements gpu.Device. Software resources are garbage collected;
// release only drops the storage early.
func (d *Device) Release(r any) error {
	switch v := r.(type) {
	case *texture:
		v.levels = nil
		v.faces = [6][]math.Vec4{}
	case *framebuffer:
		for _, t := range v.color {
			t.levels = nil
		}
		v.color = nil
		v.depth = nil
	case *mesh:
		v.data = gpu.MeshData{}
	case nil:
		return errors.New("softgpu: release of nil resource")
	default:
		return fmt.Errorf("softgpu: cannot release %T", r)
	}
	return nil
}
