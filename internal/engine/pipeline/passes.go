package pipeline

import (
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/internal/engine/shadow"
	"github.com/Faultbox/skyscene/internal/engine/sky"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Bloom kernels for blur levels 1 through 4, in level-0 pixels.
var (
	BlurStdev  = [4]float32{6.2, 24.9, 81.0, 263.0}
	BlurRadius = [4]float32{24, 80, 243, 799}
)

// Flat shading terms.
const (
	flatAmbient = 0.1
	flatDiffuse = 0.9
)

var flatLightDir = math.V3(1, 1, 1).Normalize()

// Item is one mesh instance ready to draw.
type Item struct {
	Mesh     gpu.Mesh
	Material material.Material
	Model    math.Mat4
	Skin     scene.SkinMode
}

// Frame is everything the passes of one frame read. Lights carry world-space
// positions.
type Frame struct {
	Res    *Resources
	Target gpu.Framebuffer // nil draws to the device default target
	Modes  Modes

	View     math.Mat4
	Proj     math.Mat4
	Eye      math.Vec3
	Exposure float32

	Items  []Item
	Bones  []math.Mat4
	Lights []lighting.Light
	Sky    sky.Coefficients
	Skybox gpu.Texture // cube map, nil when none is loaded

	Quad gpu.Mesh
	Cube gpu.Mesh
}

func (f *Frame) viewProjInv() math.Mat4 { return f.Proj.Mul(f.View).Inverse() }

// Pass renders one step of a frame. It sets every piece of state it depends
// on and returns the state of its last draw.
type Pass func(dev gpu.Device, f *Frame) gpu.State

var passes = [numPasses]Pass{
	PassForward:         forwardPass,
	PassForwardSkybox:   forwardSkyboxPass,
	PassGeometry:        geometryPass,
	PassGBufferView:     gbufferViewPass,
	PassLights:          lightsPass,
	PassMirror:          mirrorPass,
	PassSkyboxComposite: skyboxCompositePass,
	PassSunSky:          sunSkyPass,
	PassBlur:            blurPass,
	PassMerge:           mergePass,
	PassDisplayAccum:    func(dev gpu.Device, f *Frame) gpu.State { return display(dev, f, f.Res.Accum) },
	PassDisplaySkybox:   func(dev gpu.Device, f *Frame) gpu.State { return display(dev, f, f.Res.Skybox) },
	PassDisplayMerge:    func(dev gpu.Device, f *Frame) gpu.State { return display(dev, f, f.Res.Merge) },
}

var (
	opaque   = gpu.State{DepthTest: true, DepthFunc: gpu.DepthLess, DepthWrite: true}
	additive = gpu.State{Blend: gpu.BlendAdditive}
	behind   = gpu.State{DepthTest: true, DepthFunc: gpu.DepthLEqual}
)

// meshUniforms sets the transforms and skinning inputs of the mesh programs.
func meshUniforms(it Item, view, proj math.Mat4, bones []math.Mat4) gpu.Uniforms {
	u := gpu.Uniforms{
		shaders.UModel:        it.Model,
		shaders.UView:         view,
		shaders.UProjection:   proj,
		shaders.UHasAnimation: int32(it.Skin),
	}
	if it.Skin == scene.SkinBones {
		u[shaders.UBoneTransform] = bones
	}
	return u
}

func materialUniforms(u gpu.Uniforms, m material.Material) gpu.Uniforms {
	diffuse, eta, alpha, ks := m.Params()
	u[shaders.UDiffuse] = diffuse
	u[shaders.UEta] = eta
	u[shaders.UAlpha] = alpha
	u[shaders.UKs] = ks
	return u
}

func clearAll(dev gpu.Device, fb gpu.Framebuffer) {
	dev.Clear(gpu.ClearOp{Target: fb, ClearColor: true, ClearDepth: true, Depth: 1})
}

func forwardPass(dev gpu.Device, f *Frame) gpu.State {
	clearAll(dev, f.Target)
	light := lighting.FirstPoint(f.Lights)
	prog := shaders.Forward
	if f.Modes.Flat() {
		prog = shaders.Flat
	}
	for _, it := range f.Items {
		u := materialUniforms(meshUniforms(it, f.View, f.Proj, f.Bones), it.Material)
		u[shaders.UExposure] = f.Exposure
		if prog == shaders.Flat {
			u[shaders.UAmbientCoeff] = float32(flatAmbient)
			u[shaders.UDiffuseCoeff] = float32(flatDiffuse)
			u[shaders.UFlatLightDir] = flatLightDir
		} else {
			u[shaders.UCameraEye] = f.Eye
			u[shaders.ULightPosition] = light.Position
			u[shaders.ULightPower] = light.Power
		}
		dev.Draw(gpu.Draw{Target: f.Target, Program: prog, Mesh: it.Mesh, State: opaque, Uniforms: u})
	}
	return opaque
}

// skybox draws the cube behind whatever depth target already holds.
func skybox(dev gpu.Device, f *Frame, target gpu.Framebuffer) gpu.State {
	if f.Skybox == nil {
		return gpu.State{}
	}
	dev.Draw(gpu.Draw{
		Target:   target,
		Program:  shaders.Skybox,
		Mesh:     f.Cube,
		State:    behind,
		Uniforms: gpu.Uniforms{shaders.UView: f.View, shaders.UProjection: f.Proj},
		Textures: map[string]gpu.Binding{shaders.SSkybox: {Texture: f.Skybox, Filter: gpu.FilterLinear}},
	})
	return behind
}

func forwardSkyboxPass(dev gpu.Device, f *Frame) gpu.State { return skybox(dev, f, f.Target) }

func geometryPass(dev gpu.Device, f *Frame) gpu.State {
	clearAll(dev, f.Res.GBuffer)
	for _, it := range f.Items {
		u := materialUniforms(meshUniforms(it, f.View, f.Proj, f.Bones), it.Material)
		dev.Draw(gpu.Draw{Target: f.Res.GBuffer, Program: shaders.GBuffer, Mesh: it.Mesh, State: opaque, Uniforms: u})
	}
	return opaque
}

// gbufferViewPass tiles the four color attachments over the display target:
// normal top left, diffuse top right, parameters bottom left, view depth
// bottom right.
func gbufferViewPass(dev gpu.Device, f *Frame) gpu.State {
	clearAll(dev, f.Target)
	target := f.Target
	if target == nil {
		target = dev.Default()
	}
	w, h := target.Size()
	hw, hh := w/2, h/2
	quadrants := [gbufferAttachments]gpu.Rect{
		GNormal:    {X: 0, Y: hh, W: hw, H: h - hh},
		GDiffuse:   {X: hw, Y: hh, W: w - hw, H: h - hh},
		GParams:    {X: 0, Y: 0, W: hw, H: hh},
		GViewDepth: {X: hw, Y: 0, W: w - hw, H: hh},
	}
	for i, r := range quadrants {
		dev.Blit(gpu.BlitOp{
			Src:           f.Res.GBuffer,
			SrcAttachment: i,
			Dst:           f.Target,
			DstRect:       r,
			Mask:          gpu.BlitColor,
			Filter:        gpu.FilterLinear,
		})
	}
	return gpu.State{}
}

func gbufferTextures(res *Resources) map[string]gpu.Binding {
	gb := res.GBuffer
	return map[string]gpu.Binding{
		shaders.SNormal:  {Texture: gb.Color(GNormal), Filter: gpu.FilterNearest},
		shaders.SDiffuse: {Texture: gb.Color(GDiffuse), Filter: gpu.FilterNearest},
		shaders.SAlpha:   {Texture: gb.Color(GParams), Filter: gpu.FilterNearest},
		shaders.SConvert: {Texture: gb.Color(GViewDepth), Filter: gpu.FilterNearest},
		shaders.SDepth:   {Texture: gb.Depth(), Filter: gpu.FilterNearest},
	}
}

// screenUniforms are the inputs of every full-screen pass that reconstructs
// world positions from the G-buffer.
func screenUniforms(f *Frame) gpu.Uniforms {
	return gpu.Uniforms{
		shaders.UViewProjInv:  f.viewProjInv(),
		shaders.UCameraEye:    f.Eye,
		shaders.UWindowWidth:  float32(f.Res.Width),
		shaders.UWindowHeight: float32(f.Res.Height),
	}
}

// lightsPass clears the accumulation target once and adds every light to it.
func lightsPass(dev gpu.Device, f *Frame) gpu.State {
	clearAll(dev, f.Res.Accum)
	state := gpu.State{}
	for _, l := range f.Lights {
		switch {
		case l.ShadesAsPoint():
			view, proj := shadow.ViewProjection(l.Position, float32(f.Res.Width)/float32(f.Res.Height))
			shadowPass(dev, f, view, proj)
			state = pointLightPass(dev, f, l, view, proj)
		case l.Kind == lighting.KindAmbient:
			state = ambientPass(dev, f, l)
		}
	}
	return state
}

// shadowPass renders scene depth from a light camera into the shadow map.
func shadowPass(dev gpu.Device, f *Frame, view, proj math.Mat4) gpu.State {
	dev.Clear(gpu.ClearOp{Target: f.Res.Shadow, ClearDepth: true, Depth: 1})
	for _, it := range f.Items {
		dev.Draw(gpu.Draw{
			Target:   f.Res.Shadow,
			Program:  shaders.Shadow,
			Mesh:     it.Mesh,
			State:    opaque,
			Uniforms: meshUniforms(it, view, proj, f.Bones),
		})
	}
	return opaque
}

func pointLightPass(dev gpu.Device, f *Frame, l lighting.Light, view, proj math.Mat4) gpu.State {
	u := screenUniforms(f)
	u[shaders.ULightPosition] = l.Position
	u[shaders.ULightPower] = l.Power
	u[shaders.ULightView] = view
	u[shaders.ULightProj] = proj
	tex := gbufferTextures(f.Res)
	tex[shaders.SShadowMap] = gpu.Binding{Texture: f.Res.Shadow.Depth(), Filter: gpu.FilterNearest}
	dev.Draw(gpu.Draw{Target: f.Res.Accum, Program: shaders.PointLight, Mesh: f.Quad, State: additive, Uniforms: u, Textures: tex})
	return additive
}

func ambientPass(dev gpu.Device, f *Frame, l lighting.Light) gpu.State {
	u := screenUniforms(f)
	u[shaders.ULightRadiance] = l.Radiance
	u[shaders.ULightRange] = l.Range
	dev.Draw(gpu.Draw{Target: f.Res.Accum, Program: shaders.Ambient, Mesh: f.Quad, State: additive, Uniforms: u, Textures: gbufferTextures(f.Res)})
	return additive
}

// mirrorPass adds the skybox seen along reflected view rays.
func mirrorPass(dev gpu.Device, f *Frame) gpu.State {
	if f.Skybox == nil {
		return gpu.State{}
	}
	tex := gbufferTextures(f.Res)
	tex[shaders.SSkyboxReflection] = gpu.Binding{Texture: f.Skybox, Filter: gpu.FilterLinear}
	dev.Draw(gpu.Draw{Target: f.Res.Accum, Program: shaders.Mirror, Mesh: f.Quad, State: additive, Uniforms: screenUniforms(f), Textures: tex})
	return additive
}

// skyboxCompositePass copies the lit image and scene depth into the skybox
// target and fills the background with the cube.
func skyboxCompositePass(dev gpu.Device, f *Frame) gpu.State {
	dev.Blit(gpu.BlitOp{Src: f.Res.Accum, Dst: f.Res.Skybox, Mask: gpu.BlitColor, Filter: gpu.FilterNearest})
	dev.Blit(gpu.BlitOp{Src: f.Res.GBuffer, Dst: f.Res.Skybox, Mask: gpu.BlitDepth, Filter: gpu.FilterNearest})
	return skybox(dev, f, f.Res.Skybox)
}

func skyUniforms(u gpu.Uniforms, c sky.Coefficients) gpu.Uniforms {
	u[shaders.USkyA] = c.A
	u[shaders.USkyB] = c.B
	u[shaders.USkyC] = c.C
	u[shaders.USkyD] = c.D
	u[shaders.USkyE] = c.E
	u[shaders.UZenith] = c.Zenith
	u[shaders.UThetaSun] = c.ThetaSun
	return u
}

func sunSkyPass(dev gpu.Device, f *Frame) gpu.State {
	u := skyUniforms(screenUniforms(f), f.Sky)
	dev.Draw(gpu.Draw{Target: f.Res.Accum, Program: shaders.SunSky, Mesh: f.Quad, State: additive, Uniforms: u, Textures: gbufferTextures(f.Res)})
	return additive
}

// blurPass builds the accumulation mip chain and blurs levels 1 to 4 with a
// separable Gaussian: horizontally into Temp1, then vertically into Temp2.
func blurPass(dev gpu.Device, f *Frame) gpu.State {
	res := f.Res
	dev.GenerateMipmaps(res.Accum.Color(0))
	state := gpu.State{}
	for i := range BlurStdev {
		level := i + 1
		w, h := res.Accum.Color(0).Desc().LevelSize(level)
		state = gpu.State{Viewport: gpu.Rect{W: w, H: h}}
		for _, step := range []struct {
			src, dst gpu.Framebuffer
			dir      math.Vec2
		}{
			{res.Accum, res.Temp1, math.Vec2{X: 1}},
			{res.Temp1, res.Temp2, math.Vec2{Y: 1}},
		} {
			dev.Clear(gpu.ClearOp{Target: step.dst, Level: level, ClearColor: true})
			dev.Draw(gpu.Draw{
				Target:  step.dst,
				Level:   level,
				Program: shaders.Blur,
				Mesh:    f.Quad,
				State:   state,
				Uniforms: gpu.Uniforms{
					shaders.UDir:          step.dir,
					shaders.UStdev:        BlurStdev[i],
					shaders.URadius:       BlurRadius[i],
					shaders.ULevel:        int32(level),
					shaders.UWindowWidth:  float32(res.Width),
					shaders.UWindowHeight: float32(res.Height),
				},
				Textures: map[string]gpu.Binding{
					shaders.SImage: {Texture: step.src.Color(0), Filter: gpu.FilterTrilinear},
				},
			})
		}
	}
	return state
}

// mergePass weights the sharp image and the four blur levels into Merge.
func mergePass(dev gpu.Device, f *Frame) gpu.State {
	state := gpu.State{}
	dev.Draw(gpu.Draw{
		Target:  f.Res.Merge,
		Program: shaders.Merge,
		Mesh:    f.Quad,
		State:   state,
		Textures: map[string]gpu.Binding{
			shaders.SImage:         {Texture: f.Res.Temp2.Color(0), Filter: gpu.FilterTrilinear},
			shaders.SOriginalImage: {Texture: f.Res.Accum.Color(0), Filter: gpu.FilterTrilinear},
		},
	})
	return state
}

// display converts src from linear radiance to sRGB on the display target.
func display(dev gpu.Device, f *Frame, src gpu.Framebuffer) gpu.State {
	clearAll(dev, f.Target)
	state := gpu.State{}
	dev.Draw(gpu.Draw{
		Target:   f.Target,
		Program:  shaders.SRGB,
		Mesh:     f.Quad,
		State:    state,
		Uniforms: gpu.Uniforms{shaders.UExposure: f.Exposure},
		Textures: map[string]gpu.Binding{shaders.SImage: {Texture: src.Color(0), Filter: gpu.FilterNearest}},
	})
	return state
}
