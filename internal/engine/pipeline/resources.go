package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/shadow"
)

// BloomLevels is the mip chain length of the bloom targets: the sharp image
// plus four blur levels.
const BloomLevels = 5

// G-buffer attachments.
const (
	GNormal = iota
	GDiffuse
	GParams
	GViewDepth

	gbufferAttachments
)

// Resources is the fixed set of render targets one pipeline draws through.
// It is created once for a viewport size and never resized.
type Resources struct {
	Width  int
	Height int

	GBuffer gpu.Framebuffer
	Shadow  gpu.Framebuffer
	Accum   gpu.Framebuffer
	Temp1   gpu.Framebuffer
	Temp2   gpu.Framebuffer
	Merge   gpu.Framebuffer
	Skybox  gpu.Framebuffer

	dev gpu.Device
}

func colorDesc(levels int) gpu.TextureDesc {
	return gpu.TextureDesc{Format: gpu.FormatRGBA32F, Levels: levels}
}

// NewResources allocates every target. On failure the targets created so far
// are released.
func NewResources(dev gpu.Device, width, height int, shadowMap shadow.Map) (*Resources, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", width, height)
	}
	r := &Resources{Width: width, Height: height, dev: dev}

	gbuffer := make([]gpu.TextureDesc, gbufferAttachments)
	for i := range gbuffer {
		gbuffer[i] = colorDesc(1)
	}
	descs := []struct {
		dst  *gpu.Framebuffer
		desc gpu.FramebufferDesc
	}{
		{&r.GBuffer, gpu.FramebufferDesc{Label: "gbuffer", Color: gbuffer, Depth: true}},
		{&r.Shadow, shadowMap.FramebufferDesc()},
		{&r.Accum, gpu.FramebufferDesc{Label: "accum", Color: []gpu.TextureDesc{colorDesc(BloomLevels)}, Depth: true}},
		{&r.Temp1, gpu.FramebufferDesc{Label: "temp1", Color: []gpu.TextureDesc{colorDesc(BloomLevels)}}},
		{&r.Temp2, gpu.FramebufferDesc{Label: "temp2", Color: []gpu.TextureDesc{colorDesc(BloomLevels)}}},
		{&r.Merge, gpu.FramebufferDesc{Label: "merge", Color: []gpu.TextureDesc{colorDesc(1)}}},
		{&r.Skybox, gpu.FramebufferDesc{Label: "skybox", Color: []gpu.TextureDesc{colorDesc(1)}, Depth: true}},
	}
	for _, d := range descs {
		if d.desc.Width == 0 {
			d.desc.Width, d.desc.Height = width, height
		}
		fb, err := dev.NewFramebuffer(d.desc)
		if err != nil {
			err = fmt.Errorf("creating %s framebuffer: %w", d.desc.Label, err)
			return nil, multierr.Append(err, r.Destroy())
		}
		*d.dst = fb
	}
	return r, nil
}

// All returns the allocated targets in creation order.
func (r *Resources) All() []gpu.Framebuffer {
	var out []gpu.Framebuffer
	for _, fb := range []gpu.Framebuffer{r.GBuffer, r.Shadow, r.Accum, r.Temp1, r.Temp2, r.Merge, r.Skybox} {
		if fb != nil {
			out = append(out, fb)
		}
	}
	return out
}

// Destroy releases every target and reports all failures together.
func (r *Resources) Destroy() error {
	var err error
	for _, fb := range r.All() {
		err = multierr.Append(err, r.dev.Release(fb))
	}
	r.GBuffer, r.Shadow, r.Accum, r.Temp1, r.Temp2, r.Merge, r.Skybox = nil, nil, nil, nil, nil, nil, nil
	return err
}
